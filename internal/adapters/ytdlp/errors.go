package ytdlp

import (
	"regexp"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"tubefetch/internal/core/domain"
)

// reTruncatedURL matches yt-dlp's reports of an incomplete or truncated video id.
var reTruncatedURL = regexp.MustCompile(`(?i)incomplete (youtube |video ?)?id|looks truncated`)

// ExtractError is a failed yt-dlp run. Message is the backend's own error text.
type ExtractError struct {
	Message  string
	ExitCode int
	Stderr   string
	err      error
}

func (e *ExtractError) Error() string {
	return e.Message
}

func (e *ExtractError) Unwrap() []error {
	errs := []error{e.err}
	if reTruncatedURL.MatchString(e.Message) {
		errs = append(errs, domain.ErrMalformedURL)
	}
	return errs
}

// newRunError wraps a go-ytdlp failure, surfacing the last "ERROR:" line of
// stderr as the message when there is one.
func newRunError(result *ytdlp.Result, err error) error {
	e := &ExtractError{Message: err.Error(), ExitCode: -1, err: err}
	if result == nil {
		return e
	}
	e.ExitCode = result.ExitCode
	e.Stderr = result.Stderr
	if msg := lastErrorLine(result.Stderr); msg != "" {
		e.Message = msg
	}
	return e
}

func lastErrorLine(stderr string) string {
	lines := strings.Split(stderr, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	return ""
}
