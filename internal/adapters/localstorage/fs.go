package localstorage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tubefetch/internal/core/domain"
)

const (
	settingsFile = "settings.json"
	historyFile  = "history.json"
	versionFile  = "version.json"

	// MaxRecentPaths caps the recent destination list.
	MaxRecentPaths = 10
	// InitialVersion is reported when no update was ever applied.
	InitialVersion = "0.0.0"
)

// LocalStorage implements ports.Store with JSON documents in a data directory.
type LocalStorage struct {
	BaseDir string
	mu      sync.Mutex
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

// LoadSettings returns the saved settings, or empty defaults when missing or corrupt.
func (s *LocalStorage) LoadSettings(ctx context.Context) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSettings()
}

func (s *LocalStorage) loadSettings() domain.Settings {
	settings := domain.Settings{Paths: []string{}}
	if !s.load(settingsFile, &settings) || settings.Paths == nil {
		return domain.Settings{Paths: []string{}}
	}
	return settings
}

// AddRecentPath moves path to the front of the recent destinations.
func (s *LocalStorage) AddRecentPath(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.loadSettings()
	paths := []string{path}
	for _, p := range settings.Paths {
		if p != path {
			paths = append(paths, p)
		}
	}
	if len(paths) > MaxRecentPaths {
		paths = paths[:MaxRecentPaths]
	}
	settings.Paths = paths
	return s.save(settingsFile, settings)
}

// LoadHistory returns history entries, newest first.
func (s *LocalStorage) LoadHistory(ctx context.Context) []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory()
}

func (s *LocalStorage) loadHistory() []domain.HistoryEntry {
	var history []domain.HistoryEntry
	if !s.load(historyFile, &history) || history == nil {
		return []domain.HistoryEntry{}
	}
	return history
}

// AppendHistory inserts entry at the front of the history.
func (s *LocalStorage) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append([]domain.HistoryEntry{entry}, s.loadHistory()...)
	return s.save(historyFile, history)
}

// LoadManifest returns the last applied update manifest.
func (s *LocalStorage) LoadManifest(ctx context.Context) domain.Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := domain.Manifest{Version: InitialVersion}
	if !s.load(versionFile, &m) || m.Version == "" {
		return domain.Manifest{Version: InitialVersion}
	}
	return m
}

// SaveManifest records m as the applied update manifest.
func (s *LocalStorage) SaveManifest(ctx context.Context, m domain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(versionFile, m)
}

// load decodes name into v and reports success.
func (s *LocalStorage) load(name string, v any) bool {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, name))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// save writes v as indented JSON through a temp file and rename.
func (s *LocalStorage) save(name string, v any) error {
	if err := os.MkdirAll(s.BaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", s.BaseDir, err)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(s.BaseDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}
