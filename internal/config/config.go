package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"tubefetch/internal/platform"
)

// Config holds runtime settings read from the environment (and .env).
type Config struct {
	Root        string // Install root; bin/, data/ and app/ live under it.
	BinDir      string
	DataDir     string
	AppDir      string
	CookiesTxt  string
	CookiesJSON string

	YtDlpPath   string
	DownloadDir string

	UpdateBaseURL  string // Empty disables self-update.
	UpdateInterval time.Duration
	ProbeTimeout   time.Duration
	JobRetention   time.Duration // How long finished API jobs stay readable.

	HTTPAddr string
}

func Load() *Config {
	root := getEnv("TUBEFETCH_HOME", defaultRoot())
	binDir := filepath.Join(root, "bin")

	return &Config{
		Root:        root,
		BinDir:      binDir,
		DataDir:     filepath.Join(root, "data"),
		AppDir:      filepath.Join(root, "app"),
		CookiesTxt:  filepath.Join(root, "cookies.txt"),
		CookiesJSON: filepath.Join(root, "cookies.json"),

		YtDlpPath:   getEnv("YTDLP_PATH", platform.BinaryPath(binDir, "yt-dlp")),
		DownloadDir: getEnv("DOWNLOAD_DIR", defaultDownloadDir()),

		UpdateBaseURL:  normalizeBaseURL(getEnv("UPDATE_BASE_URL", "")),
		UpdateInterval: parseDuration(getEnv("UPDATE_INTERVAL", "6h"), 6*time.Hour),
		ProbeTimeout:   parseDuration(getEnv("PROBE_TIMEOUT", "2m"), 2*time.Minute),
		JobRetention:   parseDuration(getEnv("JOB_RETENTION", "1h"), time.Hour),

		HTTPAddr: getEnv("HTTP_ADDR", "127.0.0.1:8090"),
	}
}

// StrategiesFile is the optional candidate list shipped through self-update.
func (c *Config) StrategiesFile() string {
	return filepath.Join(c.AppDir, "strategies.json")
}

// EnsureDirs creates the data and app directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.AppDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

func defaultRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
