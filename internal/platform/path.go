package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnsureOnPath appends dir to PATH so helper executables in it can be found.
// It reports whether PATH changed; a missing dir or one already listed is a no-op.
func EnsureOnPath(dir string) (bool, error) {
	if dir == "" {
		return false, nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return false, nil
	}

	current := os.Getenv("PATH")
	for _, p := range filepath.SplitList(current) {
		if filepath.Clean(p) == filepath.Clean(dir) {
			return false, nil
		}
	}

	next := dir
	if current != "" {
		next = current + string(os.PathListSeparator) + dir
	}
	if err := os.Setenv("PATH", next); err != nil {
		return false, fmt.Errorf("failed to update PATH: %w", err)
	}
	return true, nil
}

// BinaryPath returns binDir/name (with .exe on Windows) when that file exists,
// otherwise the bare name so the OS resolves it through PATH.
func BinaryPath(binDir, name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		name += ".exe"
	}
	p := filepath.Join(binDir, name)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return name
}
