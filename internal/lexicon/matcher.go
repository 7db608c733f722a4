package lexicon

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Matcher finds which dictionary phrases occur in a text in one pass.
// Phrases match as plain substrings of the lower-cased text.
type Matcher struct {
	mu      sync.Mutex // ahocorasick.Matcher.Match is not safe for concurrent use
	ac      *ahocorasick.Matcher
	phrases []string
	index   map[string]struct{}
}

// NewMatcher builds a matcher over the union of the given phrase lists.
// Phrases are lower-cased; empty and repeated phrases are dropped.
func NewMatcher(lists ...[]string) *Matcher {
	m := &Matcher{index: make(map[string]struct{})}
	for _, list := range lists {
		for _, p := range list {
			p = strings.ToLower(p)
			if p == "" {
				continue
			}
			if _, dup := m.index[p]; dup {
				continue
			}
			m.index[p] = struct{}{}
			m.phrases = append(m.phrases, p)
		}
	}
	if len(m.phrases) > 0 {
		m.ac = ahocorasick.NewStringMatcher(m.phrases)
	}
	return m
}

// Knows reports whether phrase is part of the dictionary.
func (m *Matcher) Knows(phrase string) bool {
	_, ok := m.index[strings.ToLower(phrase)]
	return ok
}

// Len returns the number of distinct phrases.
func (m *Matcher) Len() int { return len(m.phrases) }

// Match returns the set of dictionary phrases found in text.
func (m *Matcher) Match(text string) Hits {
	hits := Hits{}
	if m.ac == nil || text == "" {
		return hits
	}
	lower := []byte(strings.ToLower(text))

	m.mu.Lock()
	idx := m.ac.Match(lower)
	m.mu.Unlock()

	for _, i := range idx {
		if i < len(m.phrases) {
			hits[m.phrases[i]] = struct{}{}
		}
	}
	return hits
}

// Hits is the set of phrases found in one text.
type Hits map[string]struct{}

// Has reports whether phrase was found.
func (h Hits) Has(phrase string) bool {
	_, ok := h[phrase]
	return ok
}

// Count returns how many entries of list were found. Repeated entries in
// list are counted each time.
func (h Hits) Count(list []string) int {
	n := 0
	for _, p := range list {
		if h.Has(p) {
			n++
		}
	}
	return n
}

// Any reports whether at least one entry of list was found.
func (h Hits) Any(list []string) bool {
	for _, p := range list {
		if h.Has(p) {
			return true
		}
	}
	return false
}

var (
	defaultOnce    sync.Once
	defaultMatcher *Matcher
)

// Default returns a shared matcher over AllPhrases.
func Default() *Matcher {
	defaultOnce.Do(func() {
		defaultMatcher = NewMatcher(AllPhrases())
	})
	return defaultMatcher
}
