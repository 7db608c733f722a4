package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SearchRecord is one completed request, cached or not.
type SearchRecord struct {
	ID            string
	Caller        string
	Problem       string
	Category      string
	Requested     int
	Returned      int
	PostsScraped  int
	PostsAnalyzed int
	TokensUsed    int
	Cost          float64
	Model         string
	FilterMethod  string
	CacheHit      bool
	Duration      time.Duration
	CreatedAt     time.Time
}

// RecordSearch stores r with a fresh id and returns it.
func (d *DB) RecordSearch(ctx context.Context, r SearchRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := d.writeDB.ExecContext(ctx, `
		INSERT INTO search_metrics (
			id, caller, problem, category, requested, returned, posts_scraped, posts_analyzed,
			tokens_used, cost, model, filter_method, cache_hit, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Caller, r.Problem, r.Category, r.Requested, r.Returned, r.PostsScraped, r.PostsAnalyzed,
		r.TokensUsed, r.Cost, r.Model, r.FilterMethod, r.CacheHit, r.Duration.Milliseconds(), r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("recording search: %w", err)
	}
	return r.ID, nil
}

// RecentSearches returns up to limit records for caller, newest first.
func (d *DB) RecentSearches(ctx context.Context, caller string, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.readDB.QueryContext(ctx, `
		SELECT id, caller, problem, category, requested, returned, posts_scraped, posts_analyzed,
			tokens_used, cost, model, filter_method, cache_hit, duration_ms, created_at
		FROM search_metrics WHERE caller = ?
		ORDER BY created_at DESC LIMIT ?`, caller, limit)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var out []SearchRecord
	for rows.Next() {
		var (
			r          SearchRecord
			durationMS int64
			createdMS  int64
		)
		if err := rows.Scan(&r.ID, &r.Caller, &r.Problem, &r.Category, &r.Requested, &r.Returned,
			&r.PostsScraped, &r.PostsAnalyzed, &r.TokensUsed, &r.Cost, &r.Model, &r.FilterMethod,
			&r.CacheHit, &durationMS, &createdMS); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = time.UnixMilli(createdMS)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune deletes search records older than retention.
func (d *DB) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result, err := d.writeDB.ExecContext(ctx, "DELETE FROM search_metrics WHERE created_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("pruning searches: %w", err)
	}
	_ = d.setMeta(ctx, "last_prune", time.Now().Format(time.RFC3339))
	return result.RowsAffected()
}
