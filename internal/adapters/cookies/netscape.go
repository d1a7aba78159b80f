package cookies

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLifetime is the expiry applied to exported cookies that carry none.
const DefaultLifetime = 365 * 24 * time.Hour

const header = "# Netscape HTTP Cookie File\n\n"

// exportedCookie is one entry of a browser extension JSON export.
type exportedCookie struct {
	Domain         string   `json:"domain"`
	Path           *string  `json:"path"`
	Secure         bool     `json:"secure"`
	ExpirationDate *float64 `json:"expirationDate"`
	Expiry         *float64 `json:"expiry"`
	Name           string   `json:"name"`
	Value          string   `json:"value"`
}

// Exists reports whether a cookie file is present on disk.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Materialize converts the JSON export at jsonPath into the Netscape text file at
// txtPath. It does nothing when txtPath already exists or jsonPath is absent, and
// reports whether a file was written.
func Materialize(txtPath, jsonPath string, now time.Time) (bool, error) {
	if _, err := os.Stat(txtPath); err == nil {
		return false, nil
	}
	data, err := os.ReadFile(jsonPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}

	var entries []exportedCookie
	if err := json.Unmarshal(data, &entries); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(txtPath), ".cookies-*.tmp")
	if err != nil {
		return false, fmt.Errorf("failed to create cookie file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	w.WriteString(header)
	for _, c := range entries {
		w.WriteString(formatLine(c, now))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to write cookie file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to write cookie file: %w", err)
	}
	if err := os.Rename(tmp.Name(), txtPath); err != nil {
		return false, fmt.Errorf("failed to save %s: %w", txtPath, err)
	}
	return true, nil
}

// formatLine renders one cookie in the tab-separated Netscape layout:
// domain, include-subdomains, path, secure, expiry, name, value.
func formatLine(c exportedCookie, now time.Time) string {
	domain := c.Domain
	if !strings.HasPrefix(domain, ".") {
		domain = "." + domain
	}

	path := "/"
	if c.Path != nil {
		path = *c.Path
	}

	secure := "FALSE"
	if c.Secure {
		secure = "TRUE"
	}

	var expiry int64
	switch {
	case c.ExpirationDate != nil:
		expiry = int64(*c.ExpirationDate)
	case c.Expiry != nil:
		expiry = int64(*c.Expiry)
	default:
		expiry = now.Add(DefaultLifetime).Unix()
	}

	return fmt.Sprintf("%s\tTRUE\t%s\t%s\t%d\t%s\t%s", domain, path, secure, expiry, c.Name, c.Value)
}
