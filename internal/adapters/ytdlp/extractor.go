package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"tubefetch/internal/core/domain"
	"tubefetch/internal/core/ports"
)

const (
	defaultProbeTimeout = 2 * time.Minute
	progressInterval    = 250 * time.Millisecond
)

// Extractor runs the local yt-dlp binary through go-ytdlp.
type Extractor struct {
	binaryPath   string
	ffmpegDir    string
	probeTimeout time.Duration
}

// NewExtractor creates a new Extractor. ffmpegDir may be empty to let yt-dlp
// find ffmpeg on PATH.
func NewExtractor(binaryPath, ffmpegDir string, probeTimeout time.Duration) *Extractor {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return &Extractor{
		binaryPath:   binaryPath,
		ffmpegDir:    ffmpegDir,
		probeTimeout: probeTimeout,
	}
}

// command builds a yt-dlp invocation carrying the strategy options.
func (e *Extractor) command(opts domain.Options) *ytdlp.Command {
	cmd := ytdlp.New().SetExecutable(e.binaryPath).NoPlaylist()
	if opts.NoWarnings {
		cmd = cmd.NoWarnings()
	}
	if opts.NoCheckCertificate {
		cmd = cmd.NoCheckCertificates()
	}
	if opts.CookieFile != "" {
		cmd = cmd.Cookies(opts.CookieFile)
	}
	if opts.PlayerClient != "" {
		cmd = cmd.ExtractorArgs("youtube:player_client=" + opts.PlayerClient)
	}
	return cmd
}

// Extract fetches metadata only (--skip-download --dump-single-json).
func (e *Extractor) Extract(ctx context.Context, url string, opts domain.Options) (*domain.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()

	result, err := e.command(opts).SkipDownload().DumpSingleJSON().Run(ctx, url)
	if err != nil {
		return nil, newRunError(result, err)
	}
	return ParseMetadata([]byte(result.Stdout))
}

// ClearCache removes yt-dlp's filesystem cache (--rm-cache-dir).
func (e *Extractor) ClearCache(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := ytdlp.New().SetExecutable(e.binaryPath).RmCacheDir().Run(ctx)
	if err != nil {
		return newRunError(result, err)
	}
	return nil
}

// Download saves the media described by req using the options that won the probe.
func (e *Extractor) Download(ctx context.Context, req domain.DownloadRequest, opts domain.Options, progress ports.ProgressFunc) (*domain.DownloadResult, error) {
	if err := os.MkdirAll(req.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination %s: %w", req.Dir, err)
	}

	cmd := e.command(opts).
		Format(FormatSelector(req.Kind, req.Resolution)).
		Output(OutputTemplate(req.Dir, req.FileName))

	if e.ffmpegDir != "" {
		cmd = cmd.FFmpegLocation(e.ffmpegDir)
	}
	if req.Kind == domain.KindAudio {
		cmd = cmd.ExtractAudio().AudioFormat("mp3")
	} else {
		cmd = cmd.MergeOutputFormat("mp4")
	}
	if progress != nil {
		cmd = cmd.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			if p, ok := toProgress(string(update.Status), update.Percent()); ok {
				progress(p)
			}
		})
	}

	result, err := cmd.Run(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", newRunError(result, err))
	}

	return &domain.DownloadResult{
		FilePath:    findOutput(req.Dir, req.FileName),
		CompletedAt: time.Now().UTC(),
	}, nil
}

// OutputTemplate returns the yt-dlp output template for dir/name.
func OutputTemplate(dir, name string) string {
	return filepath.Join(dir, name+".%(ext)s")
}

// findOutput returns the newest finished file named name.* inside dir.
func findOutput(dir, name string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		fn := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(fn, name+".") {
			continue
		}
		if strings.HasSuffix(fn, ".part") || strings.HasSuffix(fn, ".ytdl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest, newestMod = filepath.Join(dir, fn), info.ModTime()
		}
	}
	return newest
}
