package localstorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubefetch/internal/core/domain"
)

func TestSettings_DefaultsWhenMissingOrCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	assert.Equal(t, domain.Settings{Paths: []string{}}, s.LoadSettings(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFile), []byte("{broken"), 0644))
	assert.Equal(t, domain.Settings{Paths: []string{}}, s.LoadSettings(ctx))
}

func TestAddRecentPath_FrontDedupCap(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	for i := 0; i < 12; i++ {
		require.NoError(t, s.AddRecentPath(ctx, fmt.Sprintf("/dl/%d", i)))
	}
	require.NoError(t, s.AddRecentPath(ctx, "/dl/5"))

	paths := s.LoadSettings(ctx).Paths
	require.Len(t, paths, MaxRecentPaths)
	assert.Equal(t, "/dl/5", paths[0])
	assert.Equal(t, "/dl/11", paths[1])
	assert.NotContains(t, paths, "/dl/0")

	count := 0
	for _, p := range paths {
		if p == "/dl/5" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAddRecentPath_IgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	require.NoError(t, s.AddRecentPath(ctx, ""))
	assert.NoFileExists(t, filepath.Join(dir, settingsFile))
}

func TestHistory_NewestFirst(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	assert.Empty(t, s.LoadHistory(ctx))

	require.NoError(t, s.AppendHistory(ctx, domain.HistoryEntry{ID: "1", Title: "first", Type: domain.KindVideo}))
	require.NoError(t, s.AppendHistory(ctx, domain.HistoryEntry{ID: "2", Title: "second", Type: domain.KindAudio, Size: 2048}))

	history := s.LoadHistory(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Title)
	assert.Equal(t, int64(2048), history[0].Size)
	assert.Equal(t, "first", history[1].Title)

	reloaded := NewLocalStorage(dir).LoadHistory(ctx)
	assert.Equal(t, history, reloaded)
}

func TestManifest_RoundTripAndDefault(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	assert.Equal(t, InitialVersion, s.LoadManifest(ctx).Version)

	m := domain.Manifest{Version: "5.3", ForceUpdate: true, Files: []string{"strategies.json"}}
	require.NoError(t, s.SaveManifest(ctx, m))
	assert.Equal(t, m, s.LoadManifest(ctx))
}
