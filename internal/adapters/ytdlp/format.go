package ytdlp

import (
	"fmt"
	"strings"

	"tubefetch/internal/core/domain"
)

// FormatSelector returns the -f expression for a media kind and a requested
// resolution. A resolution that is not all digits means "best available".
func FormatSelector(kind domain.MediaKind, resolution string) string {
	if kind == domain.KindAudio {
		return "bestaudio/best"
	}
	if isDigits(resolution) {
		return fmt.Sprintf("bestvideo[height<=%s]+bestaudio/best", resolution)
	}
	return "bestvideo+bestaudio/best"
}

func isDigits(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
