// Package pipeline turns a batch of fetched posts into ranked, summarized
// leads.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/matheuskafuri/leadfinder/internal/catalog"
	"github.com/matheuskafuri/leadfinder/internal/lead"
	"github.com/matheuskafuri/leadfinder/internal/signal"
	"github.com/matheuskafuri/leadfinder/internal/summary"
)

// Metrics describes one Run.
type Metrics struct {
	PostsAnalyzed      int     `json:"posts_analyzed"`
	PostsFiltered      int     `json:"posts_filtered"`
	ResultsReturned    int     `json:"results_returned"`
	SummariesGenerated int     `json:"summaries_generated"`
	TokensUsed         int     `json:"tokens_used"`
	Cost               float64 `json:"cost"`
	ModelUsed          string  `json:"model_used"`
	FilterMethod       string  `json:"filter_method"`
}

type Config struct {
	Mode                 signal.Mode
	Threshold            int
	HighQualityThreshold int
}

func DefaultConfig() Config {
	return Config{
		Mode:                 signal.Improved,
		Threshold:            DefaultThreshold,
		HighQualityThreshold: HighQualityThreshold,
	}
}

type Pipeline struct {
	strategies []Strategy
	summarizer summary.Summarizer
	rules      summary.Rules
	log        *zap.Logger
}

type Option func(*Pipeline)

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithSummarizer sets a network summarizer. Leads it fails on fall back to
// the rule-based summary.
func WithSummarizer(s summary.Summarizer) Option {
	return func(p *Pipeline) { p.summarizer = s }
}

// WithStrategies replaces the strategy chain.
func WithStrategies(s ...Strategy) Option {
	return func(p *Pipeline) { p.strategies = s }
}

// New builds a pipeline whose chain is the strategy for cfg.Mode followed by
// the basic filter.
func New(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{log: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	if p.strategies == nil {
		threshold := cfg.Threshold
		if cfg.Mode == signal.Simple {
			threshold = cfg.HighQualityThreshold
		}
		p.strategies = []Strategy{
			NewWeighted(cfg.Mode, threshold, p.log),
			NewBasic(p.log),
		}
	}
	return p
}

// Strategies returns the chain in order.
func (p *Pipeline) Strategies() []Strategy {
	return p.strategies
}

// Run scores posts, keeps those the first working strategy admits, ranks
// them by overall score (ties keep input order) and returns at most count
// leads. An unknown category yields no leads and zero metrics.
func (p *Pipeline) Run(ctx context.Context, posts []lead.Post, problem string, c catalog.Category, count int) ([]lead.Lead, Metrics) {
	if !catalog.Valid(c) {
		p.log.Error("pipeline setup failed", zap.String("category", string(c)), zap.Error(fmt.Errorf("unknown category")))
		return []lead.Lead{}, Metrics{}
	}

	m := Metrics{PostsAnalyzed: len(posts), ModelUsed: summary.ModelRuleBased}
	keywords := ScoringKeywords(problem, c)

	var candidates []Candidate
	admitted := false
	for _, s := range p.strategies {
		cands, err := runStrategy(ctx, s, posts, keywords, c)
		if err != nil {
			p.log.Warn("filter strategy failed", zap.String("strategy", s.Name()), zap.Error(err))
			continue
		}
		candidates = cands
		m.FilterMethod = s.Name()
		admitted = true
		break
	}
	if !admitted {
		return []lead.Lead{}, m
	}
	m.PostsFiltered = len(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Analysis.Overall > candidates[j].Analysis.Overall
	})
	if count > 0 && len(candidates) > count {
		candidates = candidates[:count]
	}

	leads := make([]lead.Lead, 0, len(candidates))
	for _, cand := range candidates {
		leads = append(leads, toLead(cand))
	}

	leads, usage := p.summarize(ctx, leads, candidates, problem, c)
	m.ResultsReturned = len(leads)
	m.SummariesGenerated = len(leads)
	m.TokensUsed = usage.Tokens
	m.Cost = usage.Cost
	if usage.Model != "" {
		m.ModelUsed = usage.Model
	}

	p.log.Debug("pipeline run",
		zap.String("strategy", m.FilterMethod),
		zap.Int("posts_analyzed", m.PostsAnalyzed),
		zap.Int("posts_filtered", m.PostsFiltered),
		zap.Int("results_returned", m.ResultsReturned),
	)
	return leads, m
}

func runStrategy(ctx context.Context, s Strategy, posts []lead.Post, keywords []string, c catalog.Category) (cands []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Filter(ctx, posts, keywords, c)
}

func toLead(c Candidate) lead.Lead {
	text := c.Post.Text()
	return lead.Lead{
		Title:           c.Post.Title,
		Source:          c.Post.Source,
		Snippet:         lead.Snippet(text, c.Analysis.Matched),
		Permalink:       c.Post.Permalink,
		Author:          c.Post.Author,
		CreatedAt:       c.Post.CreatedAt,
		UpvoteScore:     c.Post.UpvoteScore,
		MatchedKeywords: c.Analysis.Matched,
		Score:           c.Analysis.Breakdown,
		BusinessContext: lead.BusinessContext(text),
		ProblemCategory: lead.ProblemCategory(text),
	}
}

// summarize fills every lead's summary. The network summarizer is tried
// first; any lead still without a summary gets the rule-based one. A lead
// whose summary cannot be produced at all is dropped.
func (p *Pipeline) summarize(ctx context.Context, leads []lead.Lead, cands []Candidate, problem string, c catalog.Category) ([]lead.Lead, summary.Usage) {
	var usage summary.Usage
	if len(leads) == 0 {
		return leads, usage
	}

	reqs := make([]summary.Request, len(leads))
	for i, cand := range cands {
		reqs[i] = summary.Request{Title: cand.Post.Title, Body: cand.Post.Body, Problem: problem, Category: c}
	}

	if p.summarizer != nil {
		var n int
		usage, n = p.networkSummaries(ctx, leads, reqs)
		if n == 0 {
			usage.Model = ""
		}
	}

	out := leads[:0]
	for i := range leads {
		if leads[i].Summary == "" {
			s, err := p.ruleSummary(ctx, reqs[i])
			if err != nil {
				p.log.Warn("skipping lead without summary", zap.String("title", leads[i].Title), zap.Error(err))
				continue
			}
			leads[i].Summary = s
		}
		out = append(out, leads[i])
	}
	return out, usage
}

// networkSummaries returns the combined usage and how many leads got a
// summary.
func (p *Pipeline) networkSummaries(ctx context.Context, leads []lead.Lead, reqs []summary.Request) (summary.Usage, int) {
	var (
		usage summary.Usage
		done  int
	)

	// A failed batch keeps whatever it finished. The rest go to the rules.
	if b, ok := p.summarizer.(summary.BatchSummarizer); ok {
		texts, u, err := b.SummarizeBatch(ctx, reqs)
		usage.Add(u)
		if err != nil {
			p.log.Warn("batch summary failed", zap.Error(err))
		}
		if len(texts) != len(leads) {
			return usage, 0
		}
		for i, t := range texts {
			leads[i].Summary = t
			if t != "" {
				done++
			}
		}
		return usage, done
	}

	for i, req := range reqs {
		if leads[i].Summary != "" {
			continue
		}
		t, u, err := p.summarizer.Summarize(ctx, req)
		usage.Add(u)
		if err != nil {
			p.log.Warn("summary failed", zap.String("title", req.Title), zap.Error(err))
			continue
		}
		leads[i].Summary = t
		if t != "" {
			done++
		}
	}
	return usage, done
}

func (p *Pipeline) ruleSummary(ctx context.Context, req summary.Request) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("summarizing: %v", r)
		}
	}()
	s, _, err = p.rules.Summarize(ctx, req)
	return s, err
}
