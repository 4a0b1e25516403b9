package vocab

import (
	"regexp"
	"strings"
)

var parenthesized = regexp.MustCompile(`\s*\([^)]*\)\s*`)

// Normalize strips annotations from a vocabulary field before it is spoken:
// everything after the first comma goes, then every parenthesized part along
// with the whitespace around it.
//
//	Normalize("Hund (dog), canine") == "Hund"
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s, _, _ := strings.Cut(raw, ",")
	s = strings.TrimSpace(s)
	s = parenthesized.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
