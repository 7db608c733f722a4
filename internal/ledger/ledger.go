// Package ledger enforces the per-caller quota on results delivered and
// posts analyzed.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Ratio is the number of posts analyzed per result requested.
	Ratio      = 15
	ResultsCap = 150
	PostsCap   = ResultsCap * Ratio

	// CostPerPost is the estimated spend per analyzed post, in dollars.
	CostPerPost = 0.002
)

// ErrQuotaExceeded matches any *QuotaError via errors.Is.
var ErrQuotaExceeded = errors.New("quota exceeded")

// PostsNeeded is the number of posts analyzed for a request of n results.
func PostsNeeded(n int) int {
	return n * Ratio
}

// EstimatedCost returns the estimated spend for n results.
func EstimatedCost(n int) float64 {
	return float64(PostsNeeded(n)) * CostPerPost
}

// Account is the persisted usage of one caller.
type Account struct {
	ID            string
	ResultsUsed   int
	PostsAnalyzed int
	TokensUsed    int
	Cost          float64
	UpdatedAt     time.Time
}

// Remaining is the quota left after a request.
type Remaining struct {
	Results int `json:"results"`
	Posts   int `json:"posts"`
}

func (a Account) remaining() Remaining {
	return Remaining{
		Results: max(0, ResultsCap-a.ResultsUsed),
		Posts:   max(0, PostsCap-a.PostsAnalyzed),
	}
}

// Store persists accounts. Account returns a zero-usage account for an
// unknown id.
type Store interface {
	Account(ctx context.Context, id string) (Account, error)
	SaveAccount(ctx context.Context, a Account) error
}

type Kind int

const (
	ResultsExceeded Kind = iota
	PostsExceeded
)

func (k Kind) String() string {
	if k == PostsExceeded {
		return "posts_exceeded"
	}
	return "results_exceeded"
}

// QuotaError reports a request that would push an account over a cap.
// Current, Requested and Remaining are in the unit of Kind (results or
// posts).
type QuotaError struct {
	Kind      Kind
	Limit     int
	Current   int
	Requested int
	Remaining int
}

func (e *QuotaError) Error() string {
	if e.Kind == PostsExceeded {
		return fmt.Sprintf("posts quota exceeded: %d of %d posts analyzed, request needs %d, %d remaining (max %d results)",
			e.Current, e.Limit, e.Requested, e.Remaining, e.Remaining/Ratio)
	}
	return fmt.Sprintf("results quota exceeded: %d of %d results used, requested %d, %d remaining",
		e.Current, e.Limit, e.Requested, e.Remaining)
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// check returns the posts needed for requested results, or a QuotaError.
func check(a Account, requested int) (int, error) {
	needed := PostsNeeded(requested)
	if a.ResultsUsed+requested > ResultsCap {
		return 0, &QuotaError{
			Kind:      ResultsExceeded,
			Limit:     ResultsCap,
			Current:   a.ResultsUsed,
			Requested: requested,
			Remaining: max(0, ResultsCap-a.ResultsUsed),
		}
	}
	if a.PostsAnalyzed+needed > PostsCap {
		return 0, &QuotaError{
			Kind:      PostsExceeded,
			Limit:     PostsCap,
			Current:   a.PostsAnalyzed,
			Requested: needed,
			Remaining: max(0, PostsCap-a.PostsAnalyzed),
		}
	}
	return needed, nil
}

// Ledger serializes reads and writes per account. Distinct accounts never
// contend.
type Ledger struct {
	store Store
	log   *zap.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*accountLock
}

// accountLock is dropped from Ledger.locks once no goroutine holds or waits
// on it.
type accountLock struct {
	sync.Mutex
	refs int
}

type Option func(*Ledger)

func WithLogger(l *zap.Logger) Option {
	return func(g *Ledger) { g.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(g *Ledger) { g.now = now }
}

func New(store Store, opts ...Option) *Ledger {
	g := &Ledger{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
		locks: make(map[string]*accountLock),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Ledger) lock(id string) func() {
	g.mu.Lock()
	l, ok := g.locks[id]
	if !ok {
		l = &accountLock{}
		g.locks[id] = l
	}
	l.refs++
	g.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, id)
		}
		g.mu.Unlock()
	}
}

// CheckQuota returns the posts needed for requested results. An empty caller
// is anonymous and always passes.
func (g *Ledger) CheckQuota(ctx context.Context, caller string, requested int) (int, error) {
	if caller == "" {
		return PostsNeeded(requested), nil
	}
	unlock := g.lock(caller)
	defer unlock()

	a, err := g.store.Account(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("loading account %s: %w", caller, err)
	}
	return check(a, requested)
}

// Commit charges the requested count and postsNeeded to the caller and
// returns what is left. The quota is re-checked under the account lock so
// two requests that both passed CheckQuota cannot overdraw it.
func (g *Ledger) Commit(ctx context.Context, caller string, requested, postsNeeded, tokens int, cost float64) (Remaining, error) {
	if caller == "" {
		return Remaining{Results: ResultsCap, Posts: PostsCap}, nil
	}
	unlock := g.lock(caller)
	defer unlock()

	a, err := g.store.Account(ctx, caller)
	if err != nil {
		return Remaining{}, fmt.Errorf("loading account %s: %w", caller, err)
	}
	if _, err := check(a, requested); err != nil {
		return a.remaining(), err
	}

	a.ID = caller
	a.ResultsUsed += requested
	a.PostsAnalyzed += postsNeeded
	a.TokensUsed += tokens
	a.Cost += cost
	a.UpdatedAt = g.now()
	if err := g.store.SaveAccount(ctx, a); err != nil {
		return Remaining{}, fmt.Errorf("saving account %s: %w", caller, err)
	}

	g.log.Debug("usage committed",
		zap.String("caller", caller),
		zap.Int("requested", requested),
		zap.Int("posts_needed", postsNeeded),
		zap.Int("results_used", a.ResultsUsed),
		zap.Int("posts_analyzed", a.PostsAnalyzed),
	)
	return a.remaining(), nil
}

// Summary is a caller's usage report.
type Summary struct {
	ResultsUsed       int     `json:"results_used"`
	ResultsRemaining  int     `json:"results_remaining"`
	ResultsLimit      int     `json:"results_limit"`
	ResultsPercentage float64 `json:"results_percentage"`

	PostsAnalyzed   int     `json:"posts_analyzed"`
	PostsRemaining  int     `json:"posts_remaining"`
	PostsLimit      int     `json:"posts_limit"`
	PostsPercentage float64 `json:"posts_percentage"`

	EstimatedCostUsed      float64 `json:"estimated_cost_used"`
	EstimatedCostRemaining float64 `json:"estimated_cost_remaining"`
	MaxEstimatedCost       float64 `json:"max_estimated_cost"`

	TokensUsed int     `json:"tokens_used"`
	ActualCost float64 `json:"actual_cost"`
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Summarize builds a usage report for an account.
func Summarize(a Account) Summary {
	r := a.remaining()
	return Summary{
		ResultsUsed:            a.ResultsUsed,
		ResultsRemaining:       r.Results,
		ResultsLimit:           ResultsCap,
		ResultsPercentage:      round1(float64(a.ResultsUsed) / ResultsCap * 100),
		PostsAnalyzed:          a.PostsAnalyzed,
		PostsRemaining:         r.Posts,
		PostsLimit:             PostsCap,
		PostsPercentage:        round1(float64(a.PostsAnalyzed) / PostsCap * 100),
		EstimatedCostUsed:      EstimatedCost(a.ResultsUsed),
		EstimatedCostRemaining: EstimatedCost(r.Results),
		MaxEstimatedCost:       EstimatedCost(ResultsCap),
		TokensUsed:             a.TokensUsed,
		ActualCost:             a.Cost,
	}
}

// Summary reports a caller's usage. Anonymous callers get an empty account.
func (g *Ledger) Summary(ctx context.Context, caller string) (Summary, error) {
	if caller == "" {
		return Summarize(Account{}), nil
	}
	unlock := g.lock(caller)
	defer unlock()

	a, err := g.store.Account(ctx, caller)
	if err != nil {
		return Summary{}, fmt.Errorf("loading account %s: %w", caller, err)
	}
	return Summarize(a), nil
}

// Reset zeroes a caller's usage.
func (g *Ledger) Reset(ctx context.Context, caller string) error {
	if caller == "" {
		return errors.New("cannot reset anonymous usage")
	}
	unlock := g.lock(caller)
	defer unlock()

	if err := g.store.SaveAccount(ctx, Account{ID: caller, UpdatedAt: g.now()}); err != nil {
		return fmt.Errorf("resetting account %s: %w", caller, err)
	}
	g.log.Info("usage reset", zap.String("caller", caller))
	return nil
}

// MemoryStore keeps accounts in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]Account)}
}

func (s *MemoryStore) Account(_ context.Context, id string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return Account{ID: id}, nil
	}
	return a, nil
}

func (s *MemoryStore) SaveAccount(_ context.Context, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return nil
}
