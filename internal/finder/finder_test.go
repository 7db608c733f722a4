package finder

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/leadfinder/internal/cache"
	"github.com/matheuskafuri/leadfinder/internal/catalog"
	"github.com/matheuskafuri/leadfinder/internal/lead"
	"github.com/matheuskafuri/leadfinder/internal/ledger"
	"github.com/matheuskafuri/leadfinder/internal/pipeline"
	"github.com/matheuskafuri/leadfinder/internal/store"
)

type fakeSource struct {
	mu         sync.Mutex
	posts      []lead.Post
	calls      int
	subreddits []string
	limit      int
}

func (f *fakeSource) Fetch(_ context.Context, subreddits []string, _ string, limit int) ([]lead.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.subreddits = subreddits
	f.limit = limit
	return f.posts, nil
}

type countingStore struct {
	*ledger.MemoryStore
	reads int
}

func (c *countingStore) Account(ctx context.Context, id string) (ledger.Account, error) {
	c.reads++
	return c.MemoryStore.Account(ctx, id)
}

type fakeRecorder struct {
	records []store.SearchRecord
}

func (f *fakeRecorder) RecordSearch(_ context.Context, r store.SearchRecord) (string, error) {
	f.records = append(f.records, r)
	return "id", nil
}

type brokenStrategy struct{}

func (brokenStrategy) Name() string { return "broken" }

func (brokenStrategy) Filter(context.Context, []lead.Post, []string, catalog.Category) ([]pipeline.Candidate, error) {
	return nil, errors.New("scorer unavailable")
}

type harness struct {
	finder   *Finder
	source   *fakeSource
	accounts *countingStore
	recorder *fakeRecorder
}

func newHarness(posts ...lead.Post) *harness {
	return newHarnessWith(pipeline.New(pipeline.DefaultConfig()), posts...)
}

func newHarnessWith(p *pipeline.Pipeline, posts ...lead.Post) *harness {
	h := &harness{
		source:   &fakeSource{posts: posts},
		accounts: &countingStore{MemoryStore: ledger.NewMemoryStore()},
		recorder: &fakeRecorder{},
	}
	h.finder = New(
		ledger.New(h.accounts),
		cache.New(nil),
		h.source,
		p,
		WithRecorder(h.recorder),
	)
	return h
}

func strugglingPosts() []lead.Post {
	return []lead.Post{
		{ID: "1", Title: "I'm struggling to get my first 10 customers, any advice?", Source: "r/SaaS"},
		{ID: "2", Title: "I hit $50k MRR, here's what worked", Source: "r/SaaS"},
		{ID: "3", Title: "Weekend hike photos", Source: "r/startups"},
	}
}

func validRequest() Request {
	return Request{Problem: "customer acquisition", Category: catalog.SaaSCompanies, CallerID: "alice", Count: 10}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"zero count", Request{Problem: "p", Category: catalog.Gyms, Count: 0}, "count"},
		{"too many", Request{Problem: "p", Category: catalog.Gyms, Count: 151}, "count"},
		{"blank problem", Request{Problem: "   ", Category: catalog.Gyms, Count: 5}, "problem"},
		{"missing category", Request{Problem: "p", Count: 5}, "category"},
		{"unknown category", Request{Problem: "p", Category: "Astrology", Count: 5}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.NoError(t, Validate(Request{Problem: "p", Category: catalog.Gyms, Count: 1}))
	assert.NoError(t, Validate(Request{Problem: "p", Category: catalog.Gyms, Count: 150}))
}

func TestCountOverLimitFailsBeforeQuotaAndFetch(t *testing.T) {
	h := newHarness(strugglingPosts()...)
	req := validRequest()
	req.Count = 200

	_, err := h.finder.FindLeads(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, h.accounts.reads)
	assert.Zero(t, h.source.calls)
	assert.Empty(t, h.recorder.records)
}

func TestQuotaExceededReportsRemaining(t *testing.T) {
	h := newHarness(strugglingPosts()...)
	require.NoError(t, h.accounts.SaveAccount(context.Background(), ledger.Account{ID: "alice", ResultsUsed: 145}))

	_, err := h.finder.FindLeads(context.Background(), validRequest())
	var qe *ledger.QuotaError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, ledger.ResultsExceeded, qe.Kind)
	assert.Equal(t, 5, qe.Remaining)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Zero(t, h.source.calls)
}

func TestFindLeadsFreshThenCached(t *testing.T) {
	h := newHarness(strugglingPosts()...)
	ctx := context.Background()

	resp, err := h.finder.FindLeads(ctx, validRequest())
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	require.Len(t, resp.Leads, 1)
	assert.Equal(t, 3, resp.Metrics.PostsScraped)
	assert.Equal(t, 3, resp.Metrics.PostsAnalyzed)
	assert.Equal(t, 1, resp.Metrics.ResultsReturned)
	assert.Equal(t, ledger.Remaining{Results: 140, Posts: 2100}, resp.Remaining)

	assert.Equal(t, catalog.Subreddits(catalog.SaaSCompanies, false), h.source.subreddits)
	assert.Equal(t, 50, h.source.limit)

	again, err := h.finder.FindLeads(ctx, validRequest())
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, resp.Leads, again.Leads)
	assert.Equal(t, 1, h.source.calls)
	assert.Equal(t, ledger.Remaining{Results: 130, Posts: 1950}, again.Remaining, "cache hits are charged")

	require.Len(t, h.recorder.records, 2)
	assert.False(t, h.recorder.records[0].CacheHit)
	assert.True(t, h.recorder.records[1].CacheHit)
	assert.Equal(t, "improved_weighted", h.recorder.records[0].FilterMethod)
	assert.Equal(t, "cache", h.recorder.records[1].FilterMethod)
	assert.Equal(t, 10, h.recorder.records[1].Requested)
	assert.Equal(t, 1, h.recorder.records[1].Returned)
}

func TestDifferentCountMissesCache(t *testing.T) {
	h := newHarness(strugglingPosts()...)
	ctx := context.Background()

	_, err := h.finder.FindLeads(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Count = 5
	resp, err := h.finder.FindLeads(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, 2, h.source.calls)
}

func TestWideMissesCache(t *testing.T) {
	h := newHarness(strugglingPosts()...)
	ctx := context.Background()

	_, err := h.finder.FindLeads(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Wide = true
	resp, err := h.finder.FindLeads(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, 2, h.source.calls)
	assert.Equal(t, catalog.Subreddits(catalog.SaaSCompanies, true), h.source.subreddits)

	again, err := h.finder.FindLeads(ctx, req)
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, 2, h.source.calls)
}

func TestRefreshSkipsLookupButStillCharges(t *testing.T) {
	h := newHarness(strugglingPosts()...)
	ctx := context.Background()

	_, err := h.finder.FindLeads(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Refresh = true
	resp, err := h.finder.FindLeads(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, 2, h.source.calls)
	assert.Equal(t, "improved_weighted", resp.Metrics.FilterMethod)
	assert.Equal(t, ledger.Remaining{Results: 130, Posts: 1950}, resp.Remaining)

	again, err := h.finder.FindLeads(ctx, validRequest())
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, 2, h.source.calls)
}

func TestDegradedRunIsNotCached(t *testing.T) {
	h := newHarnessWith(pipeline.New(pipeline.DefaultConfig(), pipeline.WithStrategies(brokenStrategy{})), strugglingPosts()...)
	ctx := context.Background()

	resp, err := h.finder.FindLeads(ctx, validRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Leads)
	assert.Empty(t, resp.Metrics.FilterMethod)

	again, err := h.finder.FindLeads(ctx, validRequest())
	require.NoError(t, err)
	assert.False(t, again.CacheHit)
	assert.Equal(t, 2, h.source.calls)
	assert.Equal(t, 130, again.Remaining.Results)
}

func TestAnonymousBypassesLedger(t *testing.T) {
	h := newHarness(strugglingPosts()...)
	req := validRequest()
	req.CallerID = ""

	resp, err := h.finder.FindLeads(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ledger.Remaining{Results: 150, Posts: 2250}, resp.Remaining)
	assert.Zero(t, h.accounts.reads)
}

func TestNoPostsIsNotAnError(t *testing.T) {
	h := newHarness()
	resp, err := h.finder.FindLeads(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Leads)
	assert.Equal(t, 140, resp.Remaining.Results)
}

func TestWideSearchUsesBackupSubreddits(t *testing.T) {
	h := newHarness(strugglingPosts()...)
	req := validRequest()
	req.Wide = true

	_, err := h.finder.FindLeads(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, catalog.Subreddits(catalog.SaaSCompanies, true), h.source.subreddits)
}

func TestPostsPerSource(t *testing.T) {
	assert.Equal(t, 50, PostsPerSource(150, 3))
	assert.Equal(t, 1, PostsPerSource(2, 5))
	assert.Equal(t, 15, PostsPerSource(15, 0))
}
