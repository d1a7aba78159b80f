package service

import (
	"context"
	"errors"
	"sync"

	"tubefetch/internal/core/domain"
	"tubefetch/internal/core/ports"
)

// fakeExtractor answers Extract through a function and records every call.
type fakeExtractor struct {
	mu sync.Mutex

	extract  func(opts domain.Options) (*domain.Metadata, error)
	download func(req domain.DownloadRequest, progress ports.ProgressFunc) (*domain.DownloadResult, error)
	clearErr error

	events    []string
	extracted []domain.Options
	downloads []domain.DownloadRequest
}

func (f *fakeExtractor) Extract(ctx context.Context, url string, opts domain.Options) (*domain.Metadata, error) {
	f.mu.Lock()
	f.events = append(f.events, "extract")
	f.extracted = append(f.extracted, opts)
	f.mu.Unlock()
	return f.extract(opts)
}

func (f *fakeExtractor) Download(ctx context.Context, req domain.DownloadRequest, opts domain.Options, progress ports.ProgressFunc) (*domain.DownloadResult, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, req)
	f.mu.Unlock()
	if f.download == nil {
		return &domain.DownloadResult{}, nil
	}
	return f.download(req, progress)
}

func (f *fakeExtractor) ClearCache(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "clear")
	return f.clearErr
}

func (f *fakeExtractor) clients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.extracted))
	for i, o := range f.extracted {
		out[i] = o.PlayerClient
	}
	return out
}

// byClient builds an extract func keyed by Options.PlayerClient; clients not
// listed fail with "blocked".
func byClient(outcomes map[string]error) func(domain.Options) (*domain.Metadata, error) {
	return func(opts domain.Options) (*domain.Metadata, error) {
		err, ok := outcomes[opts.PlayerClient]
		if !ok {
			return nil, errors.New("blocked")
		}
		if err != nil {
			return nil, err
		}
		return &domain.Metadata{ID: opts.PlayerClient, Title: "meta from " + opts.PlayerClient}, nil
	}
}

// named returns strategies whose PlayerClient equals their name.
func named(names ...string) []domain.Strategy {
	out := make([]domain.Strategy, len(names))
	for i, n := range names {
		out[i] = domain.Strategy{Name: n, Options: domain.Options{PlayerClient: n}}
	}
	return out
}
