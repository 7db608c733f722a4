package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/matheuskafuri/leadfinder/internal/catalog"
	"github.com/matheuskafuri/leadfinder/internal/lead"
	"github.com/matheuskafuri/leadfinder/internal/lexicon"
	"github.com/matheuskafuri/leadfinder/internal/signal"
)

const (
	DefaultThreshold     = 5
	HighQualityThreshold = 35

	// basicMinIndicators is how many struggle indicators the basic filter
	// wants alongside a keyword match.
	basicMinIndicators = 2
)

// Candidate is a post admitted by a strategy, with its analysis.
type Candidate struct {
	Post     lead.Post
	Analysis signal.Analysis
}

// Strategy admits posts. A strategy that returns an error or panics hands
// the batch to the next one in the chain.
type Strategy interface {
	Name() string
	Filter(ctx context.Context, posts []lead.Post, keywords []string, c catalog.Category) ([]Candidate, error)
}

// analyze scores one post, turning a panic into an error.
func analyze(s *signal.Scorer, p lead.Post, keywords []string, c catalog.Category) (a signal.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring post %s: %v", p.ID, r)
		}
	}()
	return s.Analyze(signal.Input{Title: p.Title, Body: p.Body, Keywords: keywords, Category: c}), nil
}

// Weighted admits posts whose overall score reaches a threshold.
type Weighted struct {
	scorer    *signal.Scorer
	threshold int
	log       *zap.Logger
}

func NewWeighted(mode signal.Mode, threshold int, log *zap.Logger) *Weighted {
	if log == nil {
		log = zap.NewNop()
	}
	return &Weighted{scorer: signal.NewScorer(mode), threshold: threshold, log: log}
}

func (w *Weighted) Name() string {
	if w.scorer.Mode() == signal.Simple {
		return "high_quality"
	}
	return w.scorer.Mode().String() + "_weighted"
}

func (w *Weighted) Threshold() int { return w.threshold }

func (w *Weighted) Filter(ctx context.Context, posts []lead.Post, keywords []string, c catalog.Category) ([]Candidate, error) {
	var out []Candidate
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a, err := analyze(w.scorer, p, keywords, c)
		if err != nil {
			w.log.Warn("skipping post", zap.String("post_id", p.ID), zap.Error(err))
			continue
		}
		if a.Overall >= w.threshold {
			out = append(out, Candidate{Post: p, Analysis: a})
		}
	}
	return out, nil
}

// Basic admits posts that match a keyword and carry at least two struggle
// indicators. Scores are reported from the simple regime.
type Basic struct {
	scorer  *signal.Scorer
	matcher *lexicon.Matcher
	log     *zap.Logger
}

func NewBasic(log *zap.Logger) *Basic {
	if log == nil {
		log = zap.NewNop()
	}
	return &Basic{scorer: signal.NewScorer(signal.Simple), matcher: lexicon.Default(), log: log}
}

func (b *Basic) Name() string { return "basic" }

func (b *Basic) Filter(ctx context.Context, posts []lead.Post, keywords []string, c catalog.Category) ([]Candidate, error) {
	var out []Candidate
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a, err := analyze(b.scorer, p, keywords, c)
		if err != nil {
			b.log.Warn("skipping post", zap.String("post_id", p.ID), zap.Error(err))
			continue
		}
		if len(a.Matched) == 0 {
			continue
		}
		if b.matcher.Match(p.Text()).Count(lexicon.Indicators) >= basicMinIndicators {
			out = append(out, Candidate{Post: p, Analysis: a})
		}
	}
	return out, nil
}
