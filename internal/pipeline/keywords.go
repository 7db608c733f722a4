package pipeline

import (
	"regexp"
	"strings"

	"github.com/matheuskafuri/leadfinder/internal/catalog"
)

var wordRe = regexp.MustCompile(`\b\w+\b`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "must": true, "can": true, "cannot": true,
	"i": true, "me": true, "my": true, "we": true, "our": true, "you": true,
	"your": true, "they": true, "their": true, "it": true, "its": true, "this": true,
	"that": true, "these": true, "those": true,
}

// EnhancedKeywords tokenizes problem text into distinct lower-case words,
// dropping stop words and words of two letters or fewer.
func EnhancedKeywords(problem string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range wordRe.FindAllString(strings.ToLower(problem), -1) {
		if len(w) <= 2 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// ScoringKeywords is the category's keywords followed by the problem's
// enhanced keywords, without repeats.
func ScoringKeywords(problem string, c catalog.Category) []string {
	out := catalog.Keywords(c)
	seen := make(map[string]bool, len(out))
	for _, kw := range out {
		seen[kw] = true
	}
	for _, kw := range EnhancedKeywords(problem) {
		if !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}
