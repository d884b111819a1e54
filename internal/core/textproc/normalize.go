package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds compatibility characters, drops everything outside the
// clinical character set [A-Za-z0-9%:.,/\- ()] and collapses whitespace runs
// to a single space. The output is a fixed point of Normalize.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	folded := norm.NFKC.String(raw)
	filtered := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case isAllowedRune(r):
			return r
		default:
			return -1
		}
	}, folded)
	return strings.Join(strings.Fields(filtered), " ")
}

func isAllowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '%', ':', '.', ',', '/', '-', ' ', '(', ')':
		return true
	}
	return false
}
