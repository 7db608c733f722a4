package signal

import (
	"strings"
	"testing"

	"github.com/matheuskafuri/leadfinder/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saasKeywords(extra ...string) []string {
	return append(catalog.Keywords(catalog.SaaSCompanies), extra...)
}

func TestScoreEmptyInput(t *testing.T) {
	for _, mode := range []Mode{Improved, Legacy} {
		b := NewScorer(mode).ScoreWithBreakdown(Input{})
		assert.Equal(t, Breakdown{Urgency: UrgencyLow}, b, "mode %s", mode)
	}
}

func TestScoreStrugglingPost(t *testing.T) {
	s := NewScorer(Improved)
	a := s.Analyze(Input{
		Title:    "I'm struggling to get my first 10 customers, any advice?",
		Keywords: saasKeywords("customer", "acquisition"),
		Category: catalog.SaaSCompanies,
	})

	assert.Equal(t, 100, a.StruggleDetection)
	assert.Equal(t, 5, a.KeywordMatch) // 1 of 22
	assert.Equal(t, 0, a.BusinessRelevance)
	assert.Equal(t, 61, a.Overall)
	assert.Equal(t, UrgencyHigh, a.Urgency)
	assert.Equal(t, []string{"customer"}, a.Matched)
}

func TestScoreSuccessStoryPenalized(t *testing.T) {
	s := NewScorer(Improved)
	success := s.ScoreWithBreakdown(Input{
		Title:    "I hit $50k MRR, here's what worked",
		Keywords: saasKeywords(),
		Category: catalog.SaaSCompanies,
	})
	struggle := s.ScoreWithBreakdown(Input{
		Title:    "I can't get my first users, how do i start?",
		Keywords: saasKeywords(),
		Category: catalog.SaaSCompanies,
	})

	assert.Equal(t, 0, success.StruggleDetection)
	assert.Equal(t, 5, success.BusinessRelevance)
	assert.Equal(t, 2, success.Overall)
	assert.Greater(t, struggle.StruggleDetection, success.StruggleDetection+50)
}

func TestScorePromotionDisclaimer(t *testing.T) {
	s := NewScorer(Improved)
	base := s.ScoreWithBreakdown(Input{Title: "stuck and frustrated with churn?"})
	promo := s.ScoreWithBreakdown(Input{Title: "stuck and frustrated with churn? i will not promote"})
	require.Equal(t, 50, base.StruggleDetection)
	// promotion family (-30) plus the disclaimer itself (-15)
	assert.Equal(t, base.StruggleDetection-45, promo.StruggleDetection)
}

func TestScoreLegacyMode(t *testing.T) {
	a := NewScorer(Legacy).Analyze(Input{
		Title:    "I'm struggling to get my first 10 customers, any advice?",
		Keywords: saasKeywords("customer", "acquisition"),
		Category: catalog.SaaSCompanies,
	})
	assert.Equal(t, 75, a.StruggleDetection)
	assert.Equal(t, 32, a.Overall)
	assert.Equal(t, UrgencyHigh, a.Urgency)
}

func TestScoreLegacyHasNoPenalties(t *testing.T) {
	a := NewScorer(Legacy).Analyze(Input{Title: "I hit $50k MRR, here's what worked"})
	assert.Equal(t, 0, a.StruggleDetection)
	b := NewScorer(Legacy).Analyze(Input{Title: "I hit $50k MRR but I'm stuck, help?"})
	// stuck, help: 2 high entries; question mark
	assert.Equal(t, 55, b.StruggleDetection)
}

func TestScoreSimpleMode(t *testing.T) {
	s := NewScorer(Simple)
	a := s.Analyze(Input{
		Title:    "I'm struggling to get my first 10 customers, any advice?",
		Keywords: saasKeywords("customer", "acquisition"),
		Category: catalog.SaaSCompanies,
	})
	assert.Equal(t, 55, a.StruggleDetection)
	assert.Equal(t, 0, a.BusinessRelevance)
	assert.Equal(t, 33, a.Overall)
	assert.Equal(t, UrgencyMedium, a.Urgency)

	neutral := s.Analyze(Input{Title: "any advice?", Category: catalog.JobsAndHiring})
	assert.Equal(t, 50, neutral.BusinessRelevance)
	// advice, any advice: 30 + 10 for the question mark
	assert.Equal(t, 40, neutral.StruggleDetection)
	assert.Equal(t, (40*6+50*4)/10, neutral.Overall)
}

func TestBusinessRelevanceBonus(t *testing.T) {
	a := NewScorer(Improved).Analyze(Input{
		Title:    "our saas platform has a dashboard and an api",
		Category: catalog.SaaSCompanies,
	})
	// 4 of 20 keywords is 20%, plus 20 for three or more matches
	assert.Equal(t, 40, a.BusinessRelevance)
}

func TestBusinessRelevanceRivalPenalty(t *testing.T) {
	a := NewScorer(Improved).Analyze(Input{
		Title:    "my gym members also want a saas app with a dashboard",
		Category: catalog.Gyms,
	})
	// 2 of 15 gym keywords: 13 + 10 bonus, minus 15 for the SaaS rival
	assert.Equal(t, 8, a.BusinessRelevance)
}

func TestBusinessRelevanceNoCategory(t *testing.T) {
	a := NewScorer(Improved).Analyze(Input{Title: "saas saas saas"})
	assert.Equal(t, 0, a.BusinessRelevance)
}

func TestKeywordMatchMonotonic(t *testing.T) {
	s := NewScorer(Improved)
	kws := []string{"alpha", "beta", "gamma"}
	texts := []string{"", "alpha", "alpha beta", "alpha beta gamma"}
	want := []int{0, 33, 67, 100}

	prev := -1
	for i, text := range texts {
		got := s.Analyze(Input{Title: text, Keywords: kws}).KeywordMatch
		assert.Equal(t, want[i], got, "text %q", text)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestKeywordMatchDeduplicatesKeywords(t *testing.T) {
	a := NewScorer(Improved).Analyze(Input{Title: "alpha", Keywords: []string{"Alpha", "alpha", " beta "}})
	assert.Equal(t, 50, a.KeywordMatch)
	assert.Equal(t, []string{"alpha"}, a.Matched)
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		high, medium int
		want         Urgency
	}{
		{0, 0, UrgencyLow},
		{0, 1, UrgencyLow},
		{0, 2, UrgencyMedium},
		{1, 0, UrgencyMedium},
		{2, 0, UrgencyHigh},
		{5, 5, UrgencyHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, urgency(tt.high, tt.medium), "urgency(%d, %d)", tt.high, tt.medium)
	}
}

func TestScoreBoundsAndDeterminism(t *testing.T) {
	texts := []string{
		"",
		"?",
		strings.Repeat("help stuck desperate urgent failing lost can't any advice how do i ", 20),
		strings.Repeat("i grew i built i launched $900k revenue mrr arr here's how i will not promote ", 10),
		"gym fitness saas app store shopify agency seo coffee cafe course contractor ios coach",
		"Plain text about the weather and nothing else.",
	}
	for _, mode := range []Mode{Improved, Legacy, Simple} {
		s := NewScorer(mode)
		for _, c := range append(catalog.AllCategories(), "") {
			for _, text := range texts {
				in := Input{Title: text, Body: text, Keywords: catalog.Keywords(c), Category: c}
				b := s.ScoreWithBreakdown(in)
				for _, v := range []int{b.KeywordMatch, b.StruggleDetection, b.BusinessRelevance, b.Overall} {
					assert.GreaterOrEqual(t, v, 0)
					assert.LessOrEqual(t, v, 100)
				}
				assert.Equal(t, b, s.ScoreWithBreakdown(in))
				assert.Equal(t, b.Overall, s.Score(in))
			}
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
		err   bool
	}{
		{"", Improved, false},
		{"improved", Improved, false},
		{"LEGACY", Legacy, false},
		{"high-quality", Simple, false},
		{"simple", Simple, false},
		{"fancy", Improved, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if tt.err {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) Mode {
	t.Helper()
	m, err := ParseMode(s)
	require.NoError(t, err)
	return m
}
