// Package lexicon holds the phrase lists used to tell someone asking for
// help apart from someone telling a success story, plus a single-pass
// matcher over them.
package lexicon

import "regexp"

// Family is a named group of phrases that share a weight.
type Family struct {
	Name    string
	Phrases []string
}

// ActiveStruggle lists present-tense help-seeking patterns.
var ActiveStruggle = []Family{
	{Name: "present_tense_questions", Phrases: []string{
		"how do i", "what should i", "any advice", "can someone help", "need help with",
	}},
	{Name: "current_problems", Phrases: []string{
		"i'm struggling", "i can't", "i need help", "stuck with", "can't figure out",
	}},
	{Name: "direct_help_requests", Phrases: []string{
		"help me", "advice needed", "any suggestions", "what should i do",
	}},
}

// SuccessStory lists families that mark a post as a retrospective or a pitch.
var SuccessStory = []Family{
	{Name: "revenue_indicators", Phrases: []string{
		"hit $", "made $", "reached $", "grew to $", "earned $", "revenue", "mrr", "arr",
	}},
	{Name: "success_phrases", Phrases: []string{
		"here's what worked", "here's how i", "my advice is", "try this", "what you should do",
	}},
	{Name: "past_tense_success", Phrases: []string{
		"i grew", "i built", "i launched", "i created", "i developed", "i achieved",
	}},
	{Name: "teaching_indicators", Phrases: []string{
		"here's what", "let me share", "i want to tell", "here's my story", "here's how",
	}},
	{Name: "promotion_disclaimers", Phrases: []string{
		"i will not promote", "not promoting", "no promotion",
	}},
}

// HighUrgency entries signal someone in active trouble.
var HighUrgency = []string{
	"struggling", "struggle", "desperate", "urgent", "failing", "lost",
	"can't", "cannot", "can not", "help", "advice", "stuck", "frustrated",
	"overwhelmed", "declining", "losing", "first client", "first customer",
	"no customers", "no clients", "getting clients", "customer acquisition",
	"lead generation", "need help", "looking for", "how to", "what should",
	"any advice", "trouble", "problem", "issue",
}

// MediumUrgency entries signal friction rather than crisis.
var MediumUrgency = []string{
	"challenging", "difficult", "hard", "tough", "slow", "low", "few",
	"not enough", "lack of", "need more", "want to improve", "trying to",
	"working on", "focusing on",
}

// Indicators is the flat list used by the high-quality strategy and the
// basic keyword filter.
var Indicators = []string{
	"struggling", "struggle", "help", "advice", "can't", "cannot", "can not",
	"trouble", "problem", "issue", "stuck", "frustrated", "overwhelmed",
	"desperate", "urgent", "failing", "lost", "losing", "declining",
	"first client", "first customer", "no customers", "no clients",
	"getting clients", "customer acquisition", "lead generation",
	"need help", "looking for", "how to", "what should", "any advice",
}

// Urgency words used by the high-quality strategy.
var (
	IndicatorHigh   = []string{"desperate", "urgent", "failing", "lost", "can't", "cannot", "struggling"}
	IndicatorMedium = []string{"help", "advice", "trouble", "problem", "issue", "stuck"}
)

// PromotionDisclaimer carries an extra penalty on top of its family.
const PromotionDisclaimer = "i will not promote"

// CurrencyAmount matches dollar figures such as "$50k" or "$1200".
var CurrencyAmount = regexp.MustCompile(`\$\d+[k|m]?`)

// AllPhrases returns every phrase in the lexicon, duplicates included.
func AllPhrases() []string {
	var out []string
	for _, f := range ActiveStruggle {
		out = append(out, f.Phrases...)
	}
	for _, f := range SuccessStory {
		out = append(out, f.Phrases...)
	}
	out = append(out, HighUrgency...)
	out = append(out, MediumUrgency...)
	out = append(out, Indicators...)
	out = append(out, IndicatorHigh...)
	out = append(out, IndicatorMedium...)
	return out
}
