package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matheuskafuri/leadfinder/internal/ledger"
)

// Account implements ledger.Store. An unknown id yields a zero account.
func (d *DB) Account(ctx context.Context, id string) (ledger.Account, error) {
	a := ledger.Account{ID: id}
	err := d.readDB.QueryRowContext(ctx, `
		SELECT results_used, posts_analyzed, tokens_used, cost, updated_at
		FROM accounts WHERE id = ?`, id,
	).Scan(&a.ResultsUsed, &a.PostsAnalyzed, &a.TokensUsed, &a.Cost, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{ID: id}, nil
	}
	if err != nil {
		return ledger.Account{}, fmt.Errorf("querying account: %w", err)
	}
	return a, nil
}

func (d *DB) SaveAccount(ctx context.Context, a ledger.Account) error {
	_, err := d.writeDB.ExecContext(ctx, `
		INSERT INTO accounts (id, results_used, posts_analyzed, tokens_used, cost, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			results_used = excluded.results_used,
			posts_analyzed = excluded.posts_analyzed,
			tokens_used = excluded.tokens_used,
			cost = excluded.cost,
			updated_at = excluded.updated_at
	`, a.ID, a.ResultsUsed, a.PostsAnalyzed, a.TokensUsed, a.Cost, a.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving account %s: %w", a.ID, err)
	}
	return nil
}

// Accounts lists every account, most recently active first.
func (d *DB) Accounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := d.readDB.QueryContext(ctx, `
		SELECT id, results_used, posts_analyzed, tokens_used, cost, updated_at
		FROM accounts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []ledger.Account
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.ResultsUsed, &a.PostsAnalyzed, &a.TokensUsed, &a.Cost, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
