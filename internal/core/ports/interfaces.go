package ports

import (
	"context"
	"io"

	"tubefetch/internal/core/domain"
)

// ProgressFunc receives download progress. It may be called from a goroutine
// owned by the backend.
type ProgressFunc func(domain.Progress)

// Extractor defines the contract for the media extraction backend.
type Extractor interface {
	// Extract fetches metadata only, without downloading media.
	Extract(ctx context.Context, url string, opts domain.Options) (*domain.Metadata, error)

	// Download fetches and saves the media using opts and the request's format choice.
	Download(ctx context.Context, req domain.DownloadRequest, opts domain.Options, progress ProgressFunc) (*domain.DownloadResult, error)

	// ClearCache drops any local backend cache.
	ClearCache(ctx context.Context) error
}

// Store defines the contract for persisting settings, history and the applied update manifest.
type Store interface {
	LoadSettings(ctx context.Context) domain.Settings
	AddRecentPath(ctx context.Context, path string) error

	LoadHistory(ctx context.Context) []domain.HistoryEntry
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error

	LoadManifest(ctx context.Context) domain.Manifest
	SaveManifest(ctx context.Context, m domain.Manifest) error
}

// Fetcher defines the contract for downloading remote files.
type Fetcher interface {
	// Fetch returns the body of url. The caller must close it.
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// UpdateSource defines the contract for the remote update repository.
type UpdateSource interface {
	Manifest(ctx context.Context) (*domain.Manifest, error)
	File(ctx context.Context, name string) (io.ReadCloser, error)
}
