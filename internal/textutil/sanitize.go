package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe to use as part of a file name on common
// filesystems. Path separators, colons, and asterisks become dashes, runs of
// whitespace become a single underscore, and quoting or redirection characters
// are dropped. Leading and trailing separators are trimmed.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	space := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte('_')
			space = false
		}
		switch r {
		case '/', '\\', ':', '*':
			b.WriteByte('-')
		case '?', '"', '<', '>', '|':
		default:
			if unicode.IsControl(r) {
				continue
			}
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_-")
}
