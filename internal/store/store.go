// Package store persists accounts, search records and cached results in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	d := &DB{writeDB: writeDB}
	if err := d.init(); err != nil {
		d.Close()
		return nil, err
	}

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	d.readDB = readDB
	return d, nil
}

func (d *DB) init() error {
	_, err := d.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id             TEXT PRIMARY KEY,
			results_used   INTEGER NOT NULL DEFAULT 0,
			posts_analyzed INTEGER NOT NULL DEFAULT 0,
			tokens_used    INTEGER NOT NULL DEFAULT 0,
			cost           REAL NOT NULL DEFAULT 0,
			updated_at     DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS search_metrics (
			id              TEXT PRIMARY KEY,
			caller          TEXT NOT NULL DEFAULT '',
			problem         TEXT NOT NULL,
			category        TEXT NOT NULL,
			requested       INTEGER NOT NULL,
			returned        INTEGER NOT NULL,
			posts_scraped   INTEGER NOT NULL DEFAULT 0,
			posts_analyzed  INTEGER NOT NULL DEFAULT 0,
			tokens_used     INTEGER NOT NULL DEFAULT 0,
			cost            REAL NOT NULL DEFAULT 0,
			model           TEXT NOT NULL DEFAULT '',
			filter_method   TEXT NOT NULL DEFAULT '',
			cache_hit       INTEGER NOT NULL DEFAULT 0,
			duration_ms     INTEGER NOT NULL DEFAULT 0,
			created_at      INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_search_metrics_caller ON search_metrics(caller, created_at DESC);

		CREATE TABLE IF NOT EXISTS cache_entries (
			key       TEXT PRIMARY KEY,
			payload   TEXT NOT NULL,
			stored_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	var errs []error
	if d.readDB != nil {
		errs = append(errs, d.readDB.Close())
	}
	if d.writeDB != nil {
		errs = append(errs, d.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Stats returns the number of recorded searches and the database file size.
func (d *DB) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := d.readDB.QueryRow("SELECT COUNT(*) FROM search_metrics").Scan(&count); err != nil {
		return 0, 0, err
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, nil
	}
	return count, info.Size(), nil
}

func (d *DB) getMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := d.readDB.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	return value, err
}

func (d *DB) setMeta(ctx context.Context, key, value string) error {
	_, err := d.writeDB.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// LastPrune reports when Prune last ran. The zero time means never.
func (d *DB) LastPrune(ctx context.Context) time.Time {
	v, err := d.getMeta(ctx, "last_prune")
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
