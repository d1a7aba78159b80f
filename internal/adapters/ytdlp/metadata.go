package ytdlp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"tubefetch/internal/core/domain"
)

type ytdlpInfo struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Duration       float64       `json:"duration"`
	Filesize       float64       `json:"filesize"`
	FilesizeApprox float64       `json:"filesize_approx"`
	Formats        []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Height         int     `json:"height"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

// ParseMetadata converts the --dump-single-json document into domain metadata.
// Exported for testing without a real yt-dlp binary.
func ParseMetadata(data []byte) (*domain.Metadata, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("yt-dlp returned no metadata")
	}

	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}

	md := &domain.Metadata{
		ID:       info.ID,
		Title:    info.Title,
		Duration: info.Duration,
		Filesize: sizeOf(info.Filesize, info.FilesizeApprox),
		Raw:      json.RawMessage(data),
	}
	for _, f := range info.Formats {
		md.Formats = append(md.Formats, domain.Format{
			ID:       f.FormatID,
			Ext:      f.Ext,
			Height:   f.Height,
			VCodec:   f.VCodec,
			ACodec:   f.ACodec,
			Filesize: sizeOf(f.Filesize, f.FilesizeApprox),
		})
	}
	return md, nil
}

func sizeOf(exact, approx float64) int64 {
	if exact > 0 {
		return int64(exact)
	}
	if approx > 0 {
		return int64(approx)
	}
	return 0
}
