package lexicon

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcherFindsOverlappingPhrases(t *testing.T) {
	m := NewMatcher([]string{"help", "need help", "need help with", "i need help", "advice"})
	hits := m.Match("I need help with my store")

	assert.True(t, hits.Has("help"))
	assert.True(t, hits.Has("need help"))
	assert.True(t, hits.Has("need help with"))
	assert.True(t, hits.Has("i need help"))
	assert.False(t, hits.Has("advice"))
	assert.Equal(t, 4, hits.Count([]string{"help", "need help", "need help with", "i need help", "advice"}))
}

func TestMatcherIsCaseInsensitive(t *testing.T) {
	m := NewMatcher([]string{"SaaS", "mrr"})
	hits := m.Match("Our SAAS hit 10k MRR")
	assert.True(t, hits.Has("saas"))
	assert.True(t, hits.Has("mrr"))
}

func TestMatcherSubstringSemantics(t *testing.T) {
	// "app" matches inside "happy", like a plain substring test.
	m := NewMatcher([]string{"app"})
	assert.True(t, m.Match("so happy today").Has("app"))
}

func TestMatcherDropsEmptyAndDuplicates(t *testing.T) {
	m := NewMatcher([]string{"help", "", "HELP"}, []string{"help"})
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Knows("Help"))
	assert.False(t, m.Knows(""))
}

func TestMatcherEmpty(t *testing.T) {
	m := NewMatcher()
	assert.Empty(t, m.Match("anything"))
	assert.Empty(t, Default().Match(""))
}

func TestHitsCountRepeats(t *testing.T) {
	h := Hits{"help": {}}
	assert.Equal(t, 2, h.Count([]string{"help", "help", "stuck"}))
	assert.True(t, h.Any([]string{"stuck", "help"}))
	assert.False(t, h.Any(nil))
}

func TestDefaultMatcherCoversLexicon(t *testing.T) {
	m := Default()
	for _, p := range AllPhrases() {
		assert.True(t, m.Knows(p), "phrase %q missing from default matcher", p)
	}
}

func TestCurrencyAmount(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"i hit $50k mrr", true},
		{"made $1200 last month", true},
		{"$3m raised", true},
		{"costs a few dollars", false},
		{"$ signs everywhere", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CurrencyAmount.MatchString(tt.text), tt.text)
	}
}

func TestMatcherConcurrentUse(t *testing.T) {
	m := Default()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits := m.Match("I'm struggling, any advice?")
			assert.True(t, hits.Has("i'm struggling"))
			assert.True(t, hits.Has("any advice"))
		}()
	}
	wg.Wait()
}
