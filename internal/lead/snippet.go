package lead

import (
	"strings"
	"unicode"
)

const (
	snippetLen    = 200
	snippetBefore = 50
	snippetAfter  = 150
)

// Snippet returns a short excerpt of text centred on the earliest keyword
// occurrence, or the opening of text when no keyword occurs.
func Snippet(text string, keywords []string) string {
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	first := -1
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if pos := indexRunes(lower, []rune(kw)); pos >= 0 && (first < 0 || pos < first) {
			first = pos
		}
	}
	if first < 0 {
		return Truncate(text, snippetLen)
	}

	start := max(0, first-snippetBefore)
	end := min(len(runes), first+snippetAfter)
	out := string(runes[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}

// Truncate cuts s to n runes and marks the cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 || len(sub) > len(s) {
		return -1
	}
outer:
	for i := 0; i+len(sub) <= len(s); i++ {
		for j := range sub {
			if s[i+j] != sub[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
