// Package finder answers lead searches: it validates the request, enforces
// the caller's quota, consults the result cache, fetches and filters posts,
// and records what happened.
package finder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/leadfinder/internal/cache"
	"github.com/matheuskafuri/leadfinder/internal/catalog"
	"github.com/matheuskafuri/leadfinder/internal/lead"
	"github.com/matheuskafuri/leadfinder/internal/ledger"
	"github.com/matheuskafuri/leadfinder/internal/pipeline"
	"github.com/matheuskafuri/leadfinder/internal/store"
)

const (
	MinCount = 1
	MaxCount = ledger.ResultsCap
)

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("invalid request")

// ErrQuotaExceeded matches the *ledger.QuotaError returned when a caller is
// out of results or post analyses.
var ErrQuotaExceeded = ledger.ErrQuotaExceeded

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Source fetches posts from a set of subreddits.
type Source interface {
	Fetch(ctx context.Context, subreddits []string, query string, limit int) ([]lead.Post, error)
}

// Recorder stores the audit record of each completed search.
type Recorder interface {
	RecordSearch(ctx context.Context, r store.SearchRecord) (string, error)
}

type Request struct {
	Problem  string
	Category catalog.Category
	CallerID string
	Count    int
	// Wide adds each category's backup subreddits.
	Wide bool
	// Refresh skips the cache lookup. The fresh result is still stored and
	// the search is charged as usual.
	Refresh bool
}

type Metrics struct {
	pipeline.Metrics
	PostsScraped int           `json:"posts_scraped"`
	Duration     time.Duration `json:"duration"`
}

type Response struct {
	Leads     []lead.Lead      `json:"leads"`
	Remaining ledger.Remaining `json:"remaining"`
	Metrics   Metrics          `json:"metrics"`
	AgeHours  float64          `json:"age_hours"`
	CacheHit  bool             `json:"cache_hit"`
}

type Finder struct {
	ledger   *ledger.Ledger
	cache    *cache.ResultCache
	source   Source
	pipeline *pipeline.Pipeline
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Finder)

func WithLogger(l *zap.Logger) Option {
	return func(f *Finder) { f.log = l }
}

// WithRecorder enables the audit log.
func WithRecorder(r Recorder) Option {
	return func(f *Finder) { f.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(f *Finder) { f.now = now }
}

func New(l *ledger.Ledger, c *cache.ResultCache, src Source, p *pipeline.Pipeline, opts ...Option) *Finder {
	f := &Finder{
		ledger:   l,
		cache:    c,
		source:   src,
		pipeline: p,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Validate checks a request before any quota or cache work.
func Validate(req Request) error {
	if req.Count < MinCount || req.Count > MaxCount {
		return &ValidationError{Field: "count", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinCount, MaxCount, req.Count)}
	}
	if strings.TrimSpace(req.Problem) == "" {
		return &ValidationError{Field: "problem", Reason: "must not be blank"}
	}
	if req.Category == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if !catalog.Valid(req.Category) {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", req.Category)}
	}
	return nil
}

// PostsPerSource spreads postsNeeded across n sources, at least one each.
func PostsPerSource(postsNeeded, n int) int {
	if n <= 0 {
		return postsNeeded
	}
	return max(1, postsNeeded/n)
}

// FindLeads runs one search. Cache hits are charged like fresh searches.
func (f *Finder) FindLeads(ctx context.Context, req Request) (*Response, error) {
	start := f.now()
	if err := Validate(req); err != nil {
		return nil, err
	}
	req.Problem = strings.TrimSpace(req.Problem)

	needed, err := f.ledger.CheckQuota(ctx, req.CallerID, req.Count)
	if err != nil {
		return nil, err
	}

	q := cache.Query{Problem: req.Problem, Category: req.Category, Caller: req.CallerID, Count: req.Count, Wide: req.Wide}
	resp := &Response{}

	if leads, age, ok := f.lookup(ctx, q, req.Refresh); ok {
		resp.Leads = leads
		resp.CacheHit = true
		resp.AgeHours = age.Hours()
		resp.Metrics.ResultsReturned = len(leads)
		resp.Metrics.FilterMethod = "cache"
		f.log.Debug("cache hit", zap.String("category", string(req.Category)), zap.Duration("age", age))
	} else {
		subs := catalog.Subreddits(req.Category, req.Wide)
		posts, err := f.source.Fetch(ctx, subs, req.Problem, PostsPerSource(needed, len(subs)))
		if err != nil {
			return nil, fmt.Errorf("fetching posts: %w", err)
		}

		leads, m := f.pipeline.Run(ctx, posts, req.Problem, req.Category, req.Count)
		resp.Leads = leads
		resp.Metrics.Metrics = m
		resp.Metrics.PostsScraped = len(posts)

		// No strategy admitted the posts; the next search retries.
		if m.FilterMethod == "" {
			f.log.Warn("not caching degraded result", zap.String("category", string(req.Category)))
		} else if err := f.cache.Store(ctx, q, leads); err != nil {
			f.log.Warn("cache store failed", zap.Error(err))
		}
	}

	rem, err := f.ledger.Commit(ctx, req.CallerID, req.Count, needed, resp.Metrics.TokensUsed, resp.Metrics.Cost)
	if err != nil {
		return nil, err
	}
	resp.Remaining = rem
	resp.Metrics.Duration = f.now().Sub(start)

	f.record(ctx, req, resp)
	return resp, nil
}

func (f *Finder) lookup(ctx context.Context, q cache.Query, refresh bool) ([]lead.Lead, time.Duration, bool) {
	if refresh {
		return nil, 0, false
	}
	return f.cache.Lookup(ctx, q)
}

func (f *Finder) record(ctx context.Context, req Request, resp *Response) {
	if f.recorder == nil {
		return
	}
	m := resp.Metrics
	_, err := f.recorder.RecordSearch(ctx, store.SearchRecord{
		Caller:        req.CallerID,
		Problem:       req.Problem,
		Category:      string(req.Category),
		Requested:     req.Count,
		Returned:      len(resp.Leads),
		PostsScraped:  m.PostsScraped,
		PostsAnalyzed: m.PostsAnalyzed,
		TokensUsed:    m.TokensUsed,
		Cost:          m.Cost,
		Model:         m.ModelUsed,
		FilterMethod:  m.FilterMethod,
		CacheHit:      resp.CacheHit,
		Duration:      m.Duration,
		CreatedAt:     f.now(),
	})
	if err != nil {
		f.log.Warn("recording search failed", zap.Error(err))
	}
}
