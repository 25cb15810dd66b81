package utils

import (
	"strings"
	"unicode"
)

// CollapseWhitespace trims the string and squeezes every internal run of
// whitespace down to a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripUnprintable removes non-printable characters, allowing common
// whitespace like space, tab, newline, and carriage return. Statement
// text extracted from page layouts tends to carry control characters.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
