package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tubefetch/internal/core/domain"
	"tubefetch/internal/core/ports"
	"tubefetch/internal/textutil"
)

// BestResolution is offered when the backend lists no video heights.
const BestResolution = "best"

// ProbeSummary is a probe result plus the choices derived from it.
type ProbeSummary struct {
	Result      *domain.ProbeResult `json:"result"`
	Title       string              `json:"title"` // sanitized, usable as a file name
	Resolutions []string            `json:"resolutions"`
}

// Orchestrator coordinates probing, downloading and history.
type Orchestrator struct {
	prober     *Prober
	extractor  ports.Extractor
	store      ports.Store
	defaultDir string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewOrchestrator creates a new Orchestrator. defaultDir is used when a
// download names no destination and no recent one is saved.
func NewOrchestrator(
	prober *Prober,
	extractor ports.Extractor,
	store ports.Store,
	defaultDir string,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		prober:     prober,
		extractor:  extractor,
		store:      store,
		defaultDir: defaultDir,
		logger:     logger,
		now:        time.Now,
	}
}

// Probe resolves url and prepares title and resolution choices.
func (o *Orchestrator) Probe(ctx context.Context, url string) (*ProbeSummary, error) {
	res, err := o.prober.Probe(ctx, url)
	if err != nil {
		return nil, err
	}
	return &ProbeSummary{
		Result:      res,
		Title:       textutil.SanitizeName(res.Metadata.Title),
		Resolutions: Resolutions(res.Metadata),
	}, nil
}

// DefaultDir returns the most recent destination, or the configured default.
func (o *Orchestrator) DefaultDir(ctx context.Context) string {
	if paths := o.store.LoadSettings(ctx).Paths; len(paths) > 0 {
		return paths[0]
	}
	return o.defaultDir
}

// Download saves the probed item with the options that won the probe and
// records it in history. Backend errors are returned as they are.
func (o *Orchestrator) Download(ctx context.Context, probe *domain.ProbeResult, req domain.DownloadRequest, progress ports.ProgressFunc) (*domain.DownloadResult, error) {
	if probe == nil || probe.Metadata == nil {
		return nil, fmt.Errorf("%w: download requires a probe result", ErrInvalidInput)
	}
	if req.URL == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidInput)
	}
	kind, err := ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	req.Kind = kind

	if req.FileName == "" {
		req.FileName = probe.Metadata.Title
	}
	req.FileName = textutil.SanitizeName(req.FileName)
	if req.Dir == "" {
		req.Dir = o.DefaultDir(ctx)
	}

	if err := o.store.AddRecentPath(ctx, req.Dir); err != nil {
		o.logger.Warn().Err(err).Msg("failed to save recent path")
	}

	log := o.logger.With().Str("strategy", probe.Strategy).Str("type", string(req.Kind)).Logger()
	log.Info().Str("dir", req.Dir).Str("name", req.FileName).Msg("starting download")

	result, err := o.extractor.Download(ctx, req, probe.Options, progress)
	if err != nil {
		log.Error().Err(err).Msg("download failed")
		return nil, err
	}

	entry := domain.HistoryEntry{
		ID:    uuid.New().String(),
		Title: probe.Metadata.Title,
		Type:  req.Kind,
		Path:  req.Dir,
		Size:  probe.Metadata.Filesize,
		Date:  o.now().Format(domain.HistoryDateLayout),
	}
	if err := o.store.AppendHistory(ctx, entry); err != nil {
		log.Warn().Err(err).Msg("failed to save history")
	}

	log.Info().Str("file", result.FilePath).Msg("download completed")
	return result, nil
}

// History returns saved downloads, newest first.
func (o *Orchestrator) History(ctx context.Context) []domain.HistoryEntry {
	return o.store.LoadHistory(ctx)
}

// Settings returns the saved settings.
func (o *Orchestrator) Settings(ctx context.Context) domain.Settings {
	return o.store.LoadSettings(ctx)
}

// ParseKind validates a requested media type; empty means video.
func ParseKind(kind domain.MediaKind) (domain.MediaKind, error) {
	switch kind {
	case "":
		return domain.KindVideo, nil
	case domain.KindVideo, domain.KindAudio:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: unknown media type %q", ErrInvalidInput, kind)
	}
}

// Resolutions lists the distinct video heights in md, highest first.
func Resolutions(md *domain.Metadata) []string {
	seen := make(map[int]bool)
	var heights []int
	for _, f := range md.Formats {
		if f.Height <= 0 || seen[f.Height] {
			continue
		}
		seen[f.Height] = true
		heights = append(heights, f.Height)
	}
	if len(heights) == 0 {
		return []string{BestResolution}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(heights)))
	out := make([]string, len(heights))
	for i, h := range heights {
		out[i] = strconv.Itoa(h)
	}
	return out
}
