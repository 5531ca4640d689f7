// Package slug derives URL-safe identifiers from free-form titles.
package slug

import (
	"strconv"
	"strings"
	"unicode"
)

// Make lowercases the input and reduces it to runs of letters and digits
// joined by single hyphens. Characters outside those classes act as
// separators; leading and trailing hyphens are stripped. An input with no
// usable characters yields an empty string, which callers must reject.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// WithSuffix appends a numeric disambiguator to a base slug.
func WithSuffix(base string, n int) string {
	return base + "-" + strconv.Itoa(n)
}
