package textutil

import "fmt"

// FormatSize renders a byte count with one decimal in B, KB, MB, GB or TB.
// Non-positive sizes are unknown.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "Unknown"
	}
	size := float64(bytes)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}
