// Package cache memoizes filter results per query for a fixed freshness
// window.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/leadfinder/internal/catalog"
	"github.com/matheuskafuri/leadfinder/internal/lead"
)

// TTL is the freshness window. Older entries are evicted when looked up.
const TTL = 24 * time.Hour

const stripes = 64

// Query identifies a cached result.
type Query struct {
	Problem  string
	Category catalog.Category
	Caller   string
	Count    int
	Wide     bool
}

// Key is a SHA-256 digest of the query fields. Any differing field yields a
// different key.
func (q Query) Key() string {
	raw := strings.Join([]string{q.Problem, string(q.Category), q.Caller, strconv.Itoa(q.Count), strconv.FormatBool(q.Wide)}, "\x00")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Entry is a stored result.
type Entry struct {
	Leads    []lead.Lead `json:"leads"`
	StoredAt time.Time   `json:"stored_at"`
}

// BackendStats is what a backend knows about its entries.
type BackendStats struct {
	Entries int
	Oldest  time.Time
	Newest  time.Time
}

// Backend stores entries by key. Get reports false for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	Stats(ctx context.Context) (BackendStats, error)
}

// Stats summarizes the cache for reporting.
type Stats struct {
	Entries        int     `json:"entries"`
	OldestAgeHours float64 `json:"oldest_age_hours"`
	NewestAgeHours float64 `json:"newest_age_hours"`
	TTLHours       float64 `json:"ttl_hours"`
}

type ResultCache struct {
	backend Backend
	log     *zap.Logger
	now     func() time.Time
	locks   [stripes]sync.Mutex
}

type Option func(*ResultCache)

func WithLogger(l *zap.Logger) Option {
	return func(c *ResultCache) { c.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) { c.now = now }
}

// New wraps a backend. A nil backend means in-process memory.
func New(b Backend, opts ...Option) *ResultCache {
	if b == nil {
		b = NewMemoryBackend()
	}
	c := &ResultCache{backend: b, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *ResultCache) lock(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &c.locks[h.Sum32()%stripes]
}

// Lookup returns a copy of the cached leads and their age. Stale entries
// are deleted and reported as a miss. Backend errors are logged and also
// reported as a miss.
func (c *ResultCache) Lookup(ctx context.Context, q Query) ([]lead.Lead, time.Duration, bool) {
	key := q.Key()
	m := c.lock(key)
	m.Lock()
	defer m.Unlock()

	e, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil, 0, false
	}
	if !ok {
		return nil, 0, false
	}

	age := c.now().Sub(e.StoredAt)
	if age > TTL {
		if err := c.backend.Delete(ctx, key); err != nil {
			c.log.Warn("cache evict failed", zap.String("key", key), zap.Error(err))
		}
		c.log.Debug("cache entry expired", zap.String("key", key), zap.Duration("age", age))
		return nil, 0, false
	}
	return lead.CloneAll(e.Leads), age, true
}

// Store replaces the entry for q.
func (c *ResultCache) Store(ctx context.Context, q Query, leads []lead.Lead) error {
	key := q.Key()
	m := c.lock(key)
	m.Lock()
	defer m.Unlock()

	if leads == nil {
		leads = []lead.Lead{}
	}
	return c.backend.Set(ctx, key, Entry{Leads: lead.CloneAll(leads), StoredAt: c.now()})
}

// Prune removes every stale entry and returns how many were removed.
func (c *ResultCache) Prune(ctx context.Context) (int, error) {
	return c.backend.DeleteOlderThan(ctx, c.now().Add(-TTL))
}

func (c *ResultCache) Stats(ctx context.Context) (Stats, error) {
	bs, err := c.backend.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	s := Stats{Entries: bs.Entries, TTLHours: TTL.Hours()}
	if bs.Entries > 0 {
		now := c.now()
		s.OldestAgeHours = now.Sub(bs.Oldest).Hours()
		s.NewestAgeHours = now.Sub(bs.Newest).Hours()
	}
	return s, nil
}

// MemoryBackend keeps entries in a map.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryBackend) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if e.StoredAt.Before(cutoff) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryBackend) Stats(_ context.Context) (BackendStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return statsOf(func(yield func(time.Time)) {
		for _, e := range m.entries {
			yield(e.StoredAt)
		}
	}), nil
}

func statsOf(each func(yield func(time.Time))) BackendStats {
	var s BackendStats
	each(func(t time.Time) {
		if s.Entries == 0 || t.Before(s.Oldest) {
			s.Oldest = t
		}
		if s.Entries == 0 || t.After(s.Newest) {
			s.Newest = t
		}
		s.Entries++
	})
	return s
}
