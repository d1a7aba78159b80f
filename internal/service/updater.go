package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"tubefetch/internal/core/domain"
	"tubefetch/internal/core/ports"
)

// UpdateResult reports the outcome of one update check.
type UpdateResult struct {
	Offline         bool   `json:"offline"`
	Updated         bool   `json:"updated"`
	RestartRequired bool   `json:"restart_required"`
	Version         string `json:"version"`
}

// Updater keeps the files in appDir in step with a remote manifest. Files are
// staged completely before any of them replaces a local copy, and nothing is
// reloaded in the running process.
type Updater struct {
	source ports.UpdateSource
	store  ports.Store
	appDir string
	logger zerolog.Logger

	mu sync.Mutex
}

// NewUpdater creates a new Updater.
func NewUpdater(source ports.UpdateSource, store ports.Store, appDir string, logger zerolog.Logger) *Updater {
	return &Updater{
		source: source,
		store:  store,
		appDir: appDir,
		logger: logger,
	}
}

// Check compares the remote manifest against the applied one and installs the
// remote files when the version differs or an update is forced. An unreachable
// or unreadable remote is reported as Offline, not as an error.
func (u *Updater) Check(ctx context.Context, progress ports.ProgressFunc) (*UpdateResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	report := func(pct float64, msg string) {
		if progress != nil {
			progress(domain.Progress{Percent: pct, Status: "updating", Message: msg})
		}
	}

	report(10, "Checking version...")
	local := u.store.LoadManifest(ctx)

	remote, err := u.source.Manifest(ctx)
	if err != nil {
		u.logger.Info().Err(err).Msg("update source unreachable, continuing offline")
		return &UpdateResult{Offline: true, Version: local.Version}, nil
	}

	if remote.Version == local.Version && !remote.ForceUpdate {
		report(100, "Up to date")
		return &UpdateResult{Version: local.Version}, nil
	}

	log := u.logger.With().Str("from", local.Version).Str("to", remote.Version).Logger()
	log.Info().Int("files", len(remote.Files)).Bool("forced", remote.ForceUpdate).Msg("applying update")

	if err := u.apply(ctx, remote.Files, report); err != nil {
		log.Error().Err(err).Msg("update aborted")
		return nil, err
	}
	if err := u.store.SaveManifest(ctx, *remote); err != nil {
		return nil, fmt.Errorf("failed to record version %s: %w", remote.Version, err)
	}

	report(100, "Update complete, restart to apply")
	log.Info().Msg("update installed")
	return &UpdateResult{Updated: true, RestartRequired: true, Version: remote.Version}, nil
}

// apply stages every file, then moves them all into appDir. Files replaced
// during the move are kept aside until every move succeeded, so a failure
// puts the previous files back.
func (u *Updater) apply(ctx context.Context, files []string, report func(float64, string)) error {
	for _, name := range files {
		if !filepath.IsLocal(name) {
			return fmt.Errorf("refusing to install %q: not a local path", name)
		}
	}

	if err := os.MkdirAll(u.appDir, 0755); err != nil {
		return fmt.Errorf("failed to create app directory: %w", err)
	}
	staging, err := os.MkdirTemp(u.appDir, ".staging-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)
	incoming := filepath.Join(staging, "new")
	previous := filepath.Join(staging, "old")

	for i, name := range files {
		report(30+60*float64(i)/float64(len(files)), "Downloading "+name)
		if err := u.stage(ctx, incoming, name); err != nil {
			return err
		}
	}

	report(90, "Installing...")
	var done []installed
	for _, name := range files {
		step, err := install(u.appDir, incoming, previous, name)
		if err != nil {
			rollback(done)
			return fmt.Errorf("failed to install %s: %w", name, err)
		}
		done = append(done, step)
	}
	return nil
}

// installed records one file moved into place and where its previous copy went.
type installed struct {
	dst    string
	backup string // empty when there was no previous copy
}

func install(appDir, incoming, previous, name string) (installed, error) {
	step := installed{dst: filepath.Join(appDir, name)}
	if err := os.MkdirAll(filepath.Dir(step.dst), 0755); err != nil {
		return step, err
	}

	if _, err := os.Lstat(step.dst); err == nil {
		backup := filepath.Join(previous, name)
		if err := os.MkdirAll(filepath.Dir(backup), 0755); err != nil {
			return step, err
		}
		if err := os.Rename(step.dst, backup); err != nil {
			return step, err
		}
		step.backup = backup
	}

	if err := os.Rename(filepath.Join(incoming, name), step.dst); err != nil {
		if step.backup != "" {
			_ = os.Rename(step.backup, step.dst)
		}
		return step, err
	}
	return step, nil
}

func rollback(done []installed) {
	for i := len(done) - 1; i >= 0; i-- {
		_ = os.RemoveAll(done[i].dst)
		if done[i].backup != "" {
			_ = os.Rename(done[i].backup, done[i].dst)
		}
	}
}

func (u *Updater) stage(ctx context.Context, staging, name string) error {
	body, err := u.source.File(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	defer body.Close()

	dst := filepath.Join(staging, name)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to stage %s: %w", name, err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", name, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	return f.Close()
}
