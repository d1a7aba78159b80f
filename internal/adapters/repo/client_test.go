package repo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubefetch/internal/adapters/downloader"
)

func newServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestManifest(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/main/version.json": `{"version":"5.4","force_update":true,"files":["strategies.json"]}`,
	})
	c := NewClient(srv.URL+"/main/", downloader.NewHTTPDownloader(time.Second))

	m, err := c.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5.4", m.Version)
	assert.True(t, m.ForceUpdate)
	assert.Equal(t, []string{"strategies.json"}, m.Files)
}

func TestManifest_Invalid(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/a/version.json": `not json`,
		"/b/version.json": `{"files":[]}`,
	})
	fetcher := downloader.NewHTTPDownloader(time.Second)

	_, err := NewClient(srv.URL+"/a/", fetcher).Manifest(context.Background())
	assert.Error(t, err)

	_, err = NewClient(srv.URL+"/b/", fetcher).Manifest(context.Background())
	assert.Error(t, err)

	_, err = NewClient(srv.URL+"/c/", fetcher).Manifest(context.Background())
	assert.Error(t, err)
}

func TestFile_StaysUnderBase(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/main/data/strategies.json": `[]`,
	})
	c := NewClient(srv.URL+"/main/", downloader.NewHTTPDownloader(time.Second))

	body, err := c.File(context.Background(), "data/strategies.json")
	require.NoError(t, err)
	body.Close()

	u, err := c.resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/main/etc/passwd", u)
}
