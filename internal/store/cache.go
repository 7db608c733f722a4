package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matheuskafuri/leadfinder/internal/cache"
)

// CacheBackend is a cache.Backend over the cache_entries table.
type CacheBackend struct {
	db *DB
}

func (d *DB) CacheBackend() *CacheBackend {
	return &CacheBackend{db: d}
}

func (c *CacheBackend) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	var (
		payload  string
		storedAt int64
	)
	err := c.db.readDB.QueryRowContext(ctx,
		"SELECT payload, stored_at FROM cache_entries WHERE key = ?", key,
	).Scan(&payload, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("querying cache entry: %w", err)
	}

	var e cache.Entry
	if err := json.Unmarshal([]byte(payload), &e.Leads); err != nil {
		return cache.Entry{}, false, fmt.Errorf("decoding cache entry: %w", err)
	}
	e.StoredAt = time.Unix(0, storedAt)
	return e, true, nil
}

func (c *CacheBackend) Set(ctx context.Context, key string, e cache.Entry) error {
	payload, err := json.Marshal(e.Leads)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	_, err = c.db.writeDB.ExecContext(ctx, `
		INSERT INTO cache_entries (key, payload, stored_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			stored_at = excluded.stored_at
	`, key, string(payload), e.StoredAt.UnixNano())
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

func (c *CacheBackend) Delete(ctx context.Context, key string) error {
	if _, err := c.db.writeDB.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

func (c *CacheBackend) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := c.db.writeDB.ExecContext(ctx, "DELETE FROM cache_entries WHERE stored_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (c *CacheBackend) Stats(ctx context.Context) (cache.BackendStats, error) {
	var (
		s              cache.BackendStats
		oldest, newest sql.NullInt64
	)
	err := c.db.readDB.QueryRowContext(ctx,
		"SELECT COUNT(*), MIN(stored_at), MAX(stored_at) FROM cache_entries",
	).Scan(&s.Entries, &oldest, &newest)
	if err != nil {
		return cache.BackendStats{}, fmt.Errorf("querying cache stats: %w", err)
	}
	if oldest.Valid {
		s.Oldest = time.Unix(0, oldest.Int64)
	}
	if newest.Valid {
		s.Newest = time.Unix(0, newest.Int64)
	}
	return s, nil
}
