package service

import (
	"errors"
	"regexp"

	"tubefetch/internal/core/domain"
)

// reMalformedURL matches backend error text that points at the URL itself
// rather than at the site refusing the client. Heuristic: extend it when the
// backend words a new kind of bad-URL failure.
var reMalformedURL = regexp.MustCompile(
	`(?i)incomplete.*(video ?id|youtube id)|(video ?id|youtube id).*incomplete|` +
		`looks truncated|` +
		`is not a valid url|` +
		`unsupported url`)

// IsMalformedIdentifier reports whether a strategy failure means the URL is
// unusable, so trying other client identities cannot help.
func IsMalformedIdentifier(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrMalformedURL) {
		return true
	}
	return reMalformedURL.MatchString(err.Error())
}
