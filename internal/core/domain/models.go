package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrMalformedURL marks a backend failure caused by the URL itself (truncated or
// incomplete video identifier) rather than by the site blocking the client.
var ErrMalformedURL = errors.New("malformed video url")

// Options is the extraction configuration handed to the backend for one attempt.
type Options struct {
	PlayerClient       string `json:"player_client,omitempty"` // "", "ios", "android", "tv"
	CookieFile         string `json:"cookie_file,omitempty"`
	NoCheckCertificate bool   `json:"no_check_certificate"`
	NoWarnings         bool   `json:"no_warnings"`
}

// Strategy is one named candidate configuration tried during a probe.
type Strategy struct {
	Name            string  `json:"name"`
	Options         Options `json:"options"`
	RequiresCookies bool    `json:"requires_cookies,omitempty"`
}

// Format is one downloadable rendition reported by the backend.
type Format struct {
	ID       string `json:"format_id"`
	Ext      string `json:"ext"`
	Height   int    `json:"height,omitempty"`
	VCodec   string `json:"vcodec,omitempty"`
	ACodec   string `json:"acodec,omitempty"`
	Filesize int64  `json:"filesize,omitempty"`
}

// Metadata describes a media item as resolved by the backend.
// Raw keeps the untouched backend document.
type Metadata struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Duration float64         `json:"duration,omitempty"`
	Filesize int64           `json:"filesize,omitempty"` // filesize, else filesize_approx
	Formats  []Format        `json:"formats"`
	Raw      json.RawMessage `json:"-"`
}

// ProbeResult is the single outcome of a successful probe.
type ProbeResult struct {
	Metadata *Metadata `json:"metadata"`
	Options  Options   `json:"options"`
	Strategy string    `json:"strategy"`
}

// MediaKind selects what the download produces.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// DownloadRequest describes where and how to save a probed item.
type DownloadRequest struct {
	URL        string    `json:"url"`
	Dir        string    `json:"dir"`
	FileName   string    `json:"file_name"`
	Kind       MediaKind `json:"type"`
	Resolution string    `json:"resolution"`
}

// DownloadResult holds the outcome of a completed download.
type DownloadResult struct {
	FilePath    string    `json:"file_path,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// Progress is one progress notification from a running download.
type Progress struct {
	Percent float64 `json:"percent"`
	Status  string  `json:"status"`
	Message string  `json:"message"`
}

// Settings is the persisted user preferences document.
type Settings struct {
	Paths []string `json:"paths"`
}

// HistoryEntry records one finished download.
type HistoryEntry struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Type  MediaKind `json:"type"`
	Path  string    `json:"path"`
	Size  int64     `json:"size,omitempty"`
	Date  string    `json:"date"`
}

// HistoryDateLayout is the layout used for HistoryEntry.Date.
const HistoryDateLayout = "02/01/2006 15:04"

// Manifest is the remote (and last applied local) update descriptor.
type Manifest struct {
	Version     string   `json:"version"`
	ForceUpdate bool     `json:"force_update"`
	Files       []string `json:"files"`
}
