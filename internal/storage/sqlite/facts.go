package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/homevoice/internal/core"
)

// FactsRepo persists remembered facts and scene definitions.
type FactsRepo struct {
	db *sql.DB
}

func NewFactsRepo(db *sql.DB) *FactsRepo {
	return &FactsRepo{db: db}
}

func (r *FactsRepo) Remember(ctx context.Context, key, value string) error {
	query := `INSERT INTO facts (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	          ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to upsert fact: %w", err)
	}
	return nil
}

func (r *FactsRepo) Recall(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM facts WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query fact: %w", err)
	}
	return value, nil
}

func (r *FactsRepo) Forget(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM facts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete fact: %w", err)
	}
	return nil
}
