package textutil

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// Truncate cuts s to at most n runes. Rune based so CJK text is never split mid-character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Ellipsize truncates s to n runes and marks the cut with "...".
func Ellipsize(s string, n int) string {
	cut := Truncate(s, n)
	if cut == s {
		return s
	}
	return strings.TrimRightFunc(cut, isSpace) + ellipsis
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
