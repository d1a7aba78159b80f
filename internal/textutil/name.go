package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UntitledName replaces names that sanitize to nothing.
const UntitledName = "untitled"

var (
	reDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\-()\[\]]`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// SanitizeName turns a media title into a portable file name: accents are
// folded away, anything outside letters, digits, "-", "()" and "[]" becomes a
// space, and runs of spaces collapse.
func SanitizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return UntitledName
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	out := reDisallowed.ReplaceAllString(folded, " ")
	out = strings.TrimSpace(reSpaces.ReplaceAllString(out, " "))
	if out == "" {
		return UntitledName
	}
	return out
}
