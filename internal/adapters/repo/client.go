package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"

	"tubefetch/internal/core/domain"
	"tubefetch/internal/core/ports"
)

const manifestName = "version.json"

// Client implements ports.UpdateSource over a raw file host such as
// raw.githubusercontent.com. Every file lives directly under baseURL.
type Client struct {
	baseURL string
	fetcher ports.Fetcher
}

// NewClient creates a new Client. baseURL must end with "/".
func NewClient(baseURL string, fetcher ports.Fetcher) *Client {
	return &Client{baseURL: baseURL, fetcher: fetcher}
}

// Manifest fetches and decodes the remote version.json.
func (c *Client) Manifest(ctx context.Context) (*domain.Manifest, error) {
	body, err := c.File(ctx, manifestName)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var m domain.Manifest
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", manifestName, err)
	}
	if m.Version == "" {
		return nil, fmt.Errorf("%s has no version", manifestName)
	}
	return &m, nil
}

// File fetches one file relative to the repository root. The caller must close it.
func (c *Client) File(ctx context.Context, name string) (io.ReadCloser, error) {
	u, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	return c.fetcher.Fetch(ctx, u)
}

func (c *Client) resolve(name string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid update base url %q: %w", c.baseURL, err)
	}
	ref := &url.URL{Path: path.Clean("/" + name)[1:]}
	return base.ResolveReference(ref).String(), nil
}
