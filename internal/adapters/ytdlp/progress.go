package ytdlp

import (
	"fmt"
	"math"

	"tubefetch/internal/core/domain"
)

// toProgress maps a backend progress update to a domain notification. Updates
// with an unusable percentage are dropped.
func toProgress(status string, percent float64) (domain.Progress, bool) {
	switch status {
	case "finished":
		return domain.Progress{Percent: 100, Status: status, Message: "Finalizing..."}, true
	case "downloading":
		if math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 || percent > 100 {
			return domain.Progress{}, false
		}
		return domain.Progress{
			Percent: percent,
			Status:  status,
			Message: fmt.Sprintf("Downloading: %d%%", int(percent)),
		}, true
	default:
		return domain.Progress{}, false
	}
}
