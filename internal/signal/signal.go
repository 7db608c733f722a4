package signal

import (
	"fmt"
	"math"
	"strings"

	"github.com/matheuskafuri/leadfinder/internal/catalog"
	"github.com/matheuskafuri/leadfinder/internal/lexicon"
)

// Mode selects the scoring regime.
type Mode int

const (
	// Improved penalizes success stories and weights struggle at 60%.
	Improved Mode = iota
	// Legacy uses flat indicator weights and a 40/40/20 blend.
	Legacy
	// Simple is the high-quality regime: flat indicator counting and a
	// 60/40 struggle/business blend with no keyword component.
	Simple
)

func (m Mode) String() string {
	switch m {
	case Legacy:
		return "legacy"
	case Simple:
		return "simple"
	default:
		return "improved"
	}
}

// ParseMode maps a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "improved":
		return Improved, nil
	case "legacy":
		return Legacy, nil
	case "simple", "high_quality", "high-quality":
		return Simple, nil
	}
	return Improved, fmt.Errorf("unknown scoring mode %q (valid: improved, legacy, simple)", s)
}

// Urgency is a coarse read on how pressing a post sounds.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// Input holds the data needed to score a post.
type Input struct {
	Title    string
	Body     string
	Keywords []string
	Category catalog.Category
}

// Breakdown shows how each component contributed to the final score.
// Every score is in [0,100].
type Breakdown struct {
	KeywordMatch      int     `json:"keyword_match"`
	StruggleDetection int     `json:"struggle_detection"`
	BusinessRelevance int     `json:"business_relevance"`
	Overall           int     `json:"overall"`
	Urgency           Urgency `json:"urgency"`
}

// Analysis is a Breakdown plus the supplied keywords the post contained.
type Analysis struct {
	Breakdown
	Matched []string
}

// Blend weights in tenths, so overall scores truncate the same way for
// every input.
const (
	improvedKeyword, improvedStruggle, improvedBusiness = 3, 6, 1
	legacyKeyword, legacyStruggle, legacyBusiness       = 4, 4, 2
	simpleStruggle, simpleBusiness                      = 6, 4
)

const (
	activeBoost       = 25
	highBoost         = 15
	mediumBoost       = 8
	questionBoost     = 20
	successPenalty    = 30
	currencyPenalty   = 25
	disclaimerPenalty = 15

	legacyHigh     = 20
	legacyMedium   = 10
	legacyQuestion = 15

	indicatorPoints = 15
	simpleQuestion  = 10
	simpleNeutral   = 50

	rivalsChecked = 3
	rivalMinHits  = 2
	rivalPenalty  = 15
)

// Scorer turns one post into a Breakdown. It is safe for concurrent use.
type Scorer struct {
	mode    Mode
	matcher *lexicon.Matcher
}

// NewScorer builds a scorer for mode. The lexicon and every category
// keyword list share one matcher so each post is scanned once.
func NewScorer(mode Mode) *Scorer {
	lists := [][]string{lexicon.AllPhrases()}
	for _, c := range catalog.AllCategories() {
		lists = append(lists, catalog.Keywords(c))
	}
	return &Scorer{mode: mode, matcher: lexicon.NewMatcher(lists...)}
}

// Mode returns the scoring regime.
func (s *Scorer) Mode() Mode { return s.mode }

// Score returns the overall score (0–100) for a post.
func (s *Scorer) Score(in Input) int {
	return s.ScoreWithBreakdown(in).Overall
}

// ScoreWithBreakdown scores a post and never panics; on an internal
// failure it returns an all-zero breakdown with Low urgency.
func (s *Scorer) ScoreWithBreakdown(in Input) (b Breakdown) {
	defer func() {
		if r := recover(); r != nil {
			b = Breakdown{Urgency: UrgencyLow}
		}
	}()
	return s.Analyze(in).Breakdown
}

// Analyze scores a post and reports which supplied keywords it matched.
func (s *Scorer) Analyze(in Input) Analysis {
	text := strings.ToLower(strings.TrimSpace(in.Title + " " + in.Body))
	hits := s.matcher.Match(text)
	keywords := normalizeKeywords(in.Keywords)
	matched := matchedKeywords(text, hits, keywords, s.matcher)

	a := Analysis{Matched: matched}
	a.KeywordMatch = keywordScore(len(matched), len(keywords))

	switch s.mode {
	case Simple:
		a.StruggleDetection = indicatorScore(text, hits)
		a.BusinessRelevance = simpleBusinessScore(hits, in.Category)
		a.Overall = (a.StruggleDetection*simpleStruggle + a.BusinessRelevance*simpleBusiness) / 10
		a.Urgency = urgency(hits.Count(lexicon.IndicatorHigh), hits.Count(lexicon.IndicatorMedium))
	case Legacy:
		a.StruggleDetection = legacyStruggleScore(text, hits)
		a.BusinessRelevance = businessScore(hits, in.Category)
		a.Overall = (a.KeywordMatch*legacyKeyword + a.StruggleDetection*legacyStruggle + a.BusinessRelevance*legacyBusiness) / 10
		a.Urgency = urgency(hits.Count(lexicon.HighUrgency), hits.Count(lexicon.MediumUrgency))
	default:
		a.StruggleDetection = struggleScore(text, hits)
		a.BusinessRelevance = businessScore(hits, in.Category)
		a.Overall = (a.KeywordMatch*improvedKeyword + a.StruggleDetection*improvedStruggle + a.BusinessRelevance*improvedBusiness) / 10
		a.Urgency = urgency(hits.Count(lexicon.HighUrgency), hits.Count(lexicon.MediumUrgency))
	}
	a.Overall = clamp(a.Overall)
	return a
}

// keywordScore is the rounded share of supplied keywords found.
func keywordScore(matched, total int) int {
	if total == 0 {
		return 0
	}
	return clamp(int(math.Round(100 * float64(matched) / float64(total))))
}

// struggleScore rewards present-tense help seeking and penalizes success
// narration.
func struggleScore(text string, hits lexicon.Hits) int {
	score := 0
	for _, f := range lexicon.ActiveStruggle {
		score += activeBoost * hits.Count(f.Phrases)
	}
	score += highBoost * hits.Count(lexicon.HighUrgency)
	score += mediumBoost * hits.Count(lexicon.MediumUrgency)
	if strings.Contains(text, "?") {
		score += questionBoost
	}
	for _, f := range lexicon.SuccessStory {
		if hits.Any(f.Phrases) {
			score -= successPenalty
		}
	}
	if lexicon.CurrencyAmount.MatchString(text) {
		score -= currencyPenalty
	}
	if hits.Has(lexicon.PromotionDisclaimer) {
		score -= disclaimerPenalty
	}
	return clamp(score)
}

// legacyStruggleScore counts urgency entries with no penalties.
func legacyStruggleScore(text string, hits lexicon.Hits) int {
	score := legacyHigh*hits.Count(lexicon.HighUrgency) + legacyMedium*hits.Count(lexicon.MediumUrgency)
	if strings.Contains(text, "?") {
		score += legacyQuestion
	}
	return clamp(score)
}

// indicatorScore is the flat per-indicator count of the high-quality regime.
func indicatorScore(text string, hits lexicon.Hits) int {
	score := indicatorPoints * hits.Count(lexicon.Indicators)
	if strings.Contains(text, "?") {
		score += simpleQuestion
	}
	return clamp(score)
}

// businessScore is category relevance minus a penalty for each rival
// category the post clearly belongs to.
func businessScore(hits lexicon.Hits, c catalog.Category) int {
	kws := catalog.Keywords(c)
	if len(kws) == 0 {
		return 0
	}
	rel := relevance(hits.Count(kws), len(kws))
	penalty := 0
	for _, rival := range catalog.Rivals(c, rivalsChecked) {
		if hits.Count(catalog.Keywords(rival)) >= rivalMinHits {
			penalty += rivalPenalty
		}
	}
	return clamp(max(0, rel-penalty))
}

// simpleBusinessScore skips rival penalties and treats an unscoped search
// as neutral.
func simpleBusinessScore(hits lexicon.Hits, c catalog.Category) int {
	kws := catalog.Keywords(c)
	if len(kws) == 0 {
		return simpleNeutral
	}
	return relevance(hits.Count(kws), len(kws))
}

// relevance is the matched share of kws plus a bonus for multiple matches.
func relevance(matches, total int) int {
	pct := 100 * float64(matches) / float64(total)
	switch {
	case matches >= 3:
		pct += 20
	case matches == 2:
		pct += 10
	}
	return clamp(int(pct))
}

func urgency(high, medium int) Urgency {
	switch {
	case high >= 2:
		return UrgencyHigh
	case high >= 1 || medium >= 2:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// matchedKeywords returns the keywords present in text, in input order.
// Keywords the matcher knows are read from hits; the rest fall back to a
// substring test.
func matchedKeywords(text string, hits lexicon.Hits, keywords []string, m *lexicon.Matcher) []string {
	var out []string
	for _, kw := range keywords {
		if m.Knows(kw) {
			if hits.Has(kw) {
				out = append(out, kw)
			}
			continue
		}
		if strings.Contains(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}

func normalizeKeywords(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
