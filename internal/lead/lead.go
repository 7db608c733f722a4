// Package lead defines the posts leadfinder consumes and the leads it
// produces.
package lead

import (
	"strings"
	"time"

	"github.com/matheuskafuri/leadfinder/internal/signal"
)

// Post is a fetched social post. It is never modified after fetch.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Author      string    `json:"author"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	UpvoteScore int       `json:"upvote_score"`
	NumComments int       `json:"num_comments"`
	Permalink   string    `json:"permalink"`
}

// Text is the title and body joined the way they are scored.
func (p Post) Text() string {
	if p.Body == "" {
		return p.Title
	}
	return p.Title + " " + p.Body
}

// Lead is a post that passed the filter, with its scores attached.
type Lead struct {
	Title           string           `json:"title"`
	Source          string           `json:"source"`
	Snippet         string           `json:"snippet"`
	Permalink       string           `json:"permalink"`
	Author          string           `json:"author"`
	CreatedAt       time.Time        `json:"created_at"`
	UpvoteScore     int              `json:"upvote_score"`
	MatchedKeywords []string         `json:"matched_keywords"`
	Score           signal.Breakdown `json:"score"`
	BusinessContext string           `json:"business_context"`
	ProblemCategory string           `json:"problem_category"`
	Summary         string           `json:"summary"`
}

// Clone returns a deep copy so callers can hold leads without sharing
// slices with a cache.
func (l Lead) Clone() Lead {
	l.MatchedKeywords = append([]string(nil), l.MatchedKeywords...)
	return l
}

// CloneAll copies a slice of leads.
func CloneAll(leads []Lead) []Lead {
	if leads == nil {
		return nil
	}
	out := make([]Lead, len(leads))
	for i, l := range leads {
		out[i] = l.Clone()
	}
	return out
}

var businessPatterns = []struct {
	name     string
	patterns []string
}{
	{"SaaS", []string{"saas", "software", "app", "platform", "subscription", "mrr", "arr"}},
	{"Ecommerce", []string{"ecommerce", "shopify", "amazon", "etsy", "store", "products", "inventory"}},
	{"Agency", []string{"agency", "client", "campaign", "creative", "brand", "marketing"}},
	{"Fitness", []string{"gym", "fitness", "trainer", "workout", "members", "membership"}},
	{"Consulting", []string{"consulting", "consultant", "client", "project", "strategy"}},
	{"Freelance", []string{"freelance", "freelancer", "client", "project", "gig"}},
}

var problemCategories = []struct {
	name     string
	keywords []string
}{
	{"Client Acquisition", []string{"client", "customer", "lead", "acquisition", "getting clients"}},
	{"Marketing", []string{"marketing", "advertising", "promotion", "brand"}},
	{"Sales", []string{"sales", "revenue", "conversion", "closing"}},
	{"Growth", []string{"growth", "scaling", "expansion", "development"}},
	{"Operations", []string{"operations", "process", "efficiency", "workflow"}},
}

// BusinessContext guesses what kind of business wrote text.
func BusinessContext(text string) string {
	lower := strings.ToLower(text)
	for _, b := range businessPatterns {
		if containsAny(lower, b.patterns) {
			return b.name
		}
	}
	return "General Business"
}

// ProblemCategory buckets the problem described in text.
func ProblemCategory(text string) string {
	lower := strings.ToLower(text)
	for _, c := range problemCategories {
		if containsAny(lower, c.keywords) {
			return c.name
		}
	}
	return "General Problem"
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
