package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/homevoice/internal/core"
)

// CommandLogRepo records dispatched commands per user.
type CommandLogRepo struct {
	db *sql.DB
}

func NewCommandLogRepo(db *sql.DB) *CommandLogRepo {
	return &CommandLogRepo{db: db}
}

func (r *CommandLogRepo) Append(ctx context.Context, userID, command string) error {
	query := `INSERT INTO command_log (user_id, command) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, userID, command); err != nil {
		return fmt.Errorf("failed to insert command record: %w", err)
	}
	return nil
}

func (r *CommandLogRepo) Recent(ctx context.Context, userID string, limit int) ([]core.CommandRecord, error) {
	// Fetch the LAST 'limit' records by ordering DESC
	query := `SELECT user_id, command, at FROM command_log WHERE user_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query command log: %w", err)
	}
	defer rows.Close()

	var records []core.CommandRecord
	for rows.Next() {
		var rec core.CommandRecord
		if err := rows.Scan(&rec.UserID, &rec.Command, &rec.At); err != nil {
			return nil, fmt.Errorf("failed to scan command record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Back to chronological order for callers.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
