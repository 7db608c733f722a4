// Package summary produces the one-line description attached to each lead.
package summary

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matheuskafuri/leadfinder/internal/catalog"
)

// ModelRuleBased names the deterministic generator in metrics.
const ModelRuleBased = "rule_based"

// Request is the material a summarizer may use.
type Request struct {
	Title    string
	Body     string
	Problem  string
	Category catalog.Category
}

// Usage reports what a summarizer call cost.
type Usage struct {
	Tokens int
	Cost   float64
	Model  string
}

// Add accumulates another call's usage.
func (u *Usage) Add(o Usage) {
	u.Tokens += o.Tokens
	u.Cost += o.Cost
	if o.Model != "" {
		u.Model = o.Model
	}
}

// Summarizer generates a short summary for a lead.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, Usage, error)
}

// BatchSummarizer summarizes several leads in one call. The result has one
// entry per request, also when err is non-nil; unfinished entries are empty.
type BatchSummarizer interface {
	Summarizer
	SummarizeBatch(ctx context.Context, reqs []Request) ([]string, Usage, error)
}

// Rules is the deterministic, offline Summarizer.
type Rules struct{}

// Summarize never fails.
func (Rules) Summarize(_ context.Context, req Request) (string, Usage, error) {
	return Generate(req.Title, req.Category), Usage{Model: ModelRuleBased}, nil
}

const maxLen = 120

var businessTerms = map[catalog.Category]string{
	catalog.SaaSCompanies:   "SaaS founder",
	catalog.EcommerceStores: "e-commerce store owner",
	catalog.MarketingAgency: "marketing agency owner",
	catalog.Gyms:            "fitness business owner",
	catalog.CoffeeShops:     "coffee shop owner",
	catalog.FreelanceDesign: "freelance designer",
	catalog.CourseCreators:  "course creator",
	catalog.LocalServiceBiz: "local business owner",
	catalog.AppDevelopers:   "app developer",
	catalog.Consultants:     "consultant",
	catalog.JobsAndHiring:   "job seeker",

	catalog.Fitness:         "fitness business owner",
	catalog.SaaSTech:        "tech founder",
	catalog.Ecommerce:       "online seller",
	catalog.MarketingAds:    "marketer",
	catalog.Education:       "educator",
	catalog.FoodBeverage:    "food business owner",
	catalog.LocalServices:   "local business owner",
	catalog.Finance:         "fintech founder",
	catalog.Creatives:       "freelancer",
	catalog.ConsultingCoach: "coach",
}

var redditPrefixes = []string{
	"[serious]", "[help]", "[advice]", "[question]", "[discussion]", "[vent]",
	"serious:", "help:", "advice:", "question:", "discussion:", "vent:",
}

var numberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`first\s+(\d+(?:-\d+)?)\s*(?:to\s+\d+)?\s*(?:users?|customers?|clients?)`),
	regexp.MustCompile(`(\d+(?:-\d+)?)\s*(?:to\s+\d+)?\s*(?:users?|customers?|clients?)`),
	regexp.MustCompile(`first\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s+(?:paying\s+)?users?`),
	regexp.MustCompile(`(\d+)\s+(?:active\s+)?users?`),
}

var problemTerms = []struct {
	words []string
	label string
}{
	{[]string{"marketing"}, "marketing and customer acquisition"},
	{[]string{"conversion"}, "conversion optimization"},
	{[]string{"feedback"}, "user feedback and validation"},
	{[]string{"adoption"}, "user adoption and engagement"},
	{[]string{"traffic"}, "traffic generation"},
	{[]string{"sales"}, "sales and revenue generation"},
	{[]string{"scaling", "scale"}, "scaling and growth"},
}

var fallbacks = [3]string{
	"%s seeking advice and guidance for business growth",
	"%s looking for solutions to current challenges",
	"%s requesting help with business development",
}

// Generate paraphrases a post title for the given category. The result
// depends only on its inputs.
func Generate(title string, c catalog.Category) string {
	cleaned := CleanTitle(title)
	lower := strings.ToLower(cleaned)
	who := capitalize(BusinessTerm(c))

	numbers := extractNumbers(lower)
	stage := extractStage(lower)

	var out string
	switch {
	case strings.Contains(lower, "first") && numbers != "":
		out = fmt.Sprintf("%s seeking %s for initial validation and feedback", who, numbers)
	case strings.Contains(lower, "struggling"):
		out = fmt.Sprintf("%s facing %s challenges, seeking solutions", who, extractProblem(lower))
	case strings.Contains(lower, "help") && numbers != "":
		out = fmt.Sprintf("%s looking for assistance to reach %s", who, numbers)
	case strings.Contains(lower, "feedback"):
		out = who + " requesting feedback and user validation"
	case strings.Contains(lower, "launch"):
		out = who + " recently launched and seeking initial traction"
	case strings.Contains(lower, "marketing"):
		out = who + " struggling with marketing and customer acquisition"
	case stage != "":
		out = fmt.Sprintf("%s at %s stage, seeking growth strategies", who, stage)
	case strings.Contains(lower, "trial") || strings.Contains(lower, "beta"):
		out = who + " looking for beta users and early adopters"
	case strings.Contains(lower, "grow") || strings.Contains(lower, "scale"):
		out = who + " looking to grow and scale their business"
	default:
		out = fmt.Sprintf(fallbacks[titleBucket(cleaned)], who)
	}

	if utf8.RuneCountInString(out) > maxLen {
		out = string([]rune(out)[:maxLen-3]) + "..."
	}
	return out
}

// BusinessTerm is how a summary refers to someone in category c.
func BusinessTerm(c catalog.Category) string {
	if term, ok := businessTerms[c]; ok {
		return term
	}
	return "business owner"
}

// CleanTitle strips Reddit tag prefixes and HTML entities and capitalizes
// the first letter.
func CleanTitle(title string) string {
	cleaned := strings.TrimSpace(title)
	for _, p := range redditPrefixes {
		if len(cleaned) >= len(p) && strings.EqualFold(cleaned[:len(p)], p) {
			cleaned = strings.TrimSpace(cleaned[len(p):])
		}
	}
	cleaned = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">").Replace(cleaned)
	return capitalize(cleaned)
}

// titleBucket picks one of three fallback templates from a stable hash.
func titleBucket(title string) int {
	h := fnv.New32a()
	h.Write([]byte(title))
	return int(h.Sum32() % 3)
}

func extractNumbers(lower string) string {
	for _, re := range numberPatterns {
		m := re.FindStringSubmatch(lower)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		if strings.Contains(lower, "first") {
			return "their first " + m[1] + " users"
		}
		return m[1] + " users"
	}
	return ""
}

func extractProblem(lower string) string {
	for _, p := range problemTerms {
		for _, w := range p.words {
			if strings.Contains(lower, w) {
				return p.label
			}
		}
	}
	return "customer acquisition"
}

func extractStage(lower string) string {
	switch {
	case strings.Contains(lower, "launch"):
		return "early launch"
	case strings.Contains(lower, "beta") || strings.Contains(lower, "trial"):
		return "beta testing"
	case strings.Contains(lower, "first") && (strings.Contains(lower, "user") || strings.Contains(lower, "customer")):
		return "initial user acquisition"
	case strings.Contains(lower, "startup"):
		return "startup"
	}
	return ""
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
