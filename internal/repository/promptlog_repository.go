package repository

import (
	"context"
	"fmt"

	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/models"
)

// PromptLogRepository stores the append-only audit trail of model
// invocations. Rows are never updated or deleted.
type PromptLogRepository struct {
	db database.PGXDB
}

// NewPromptLogRepository creates a new PromptLogRepository.
func NewPromptLogRepository(db database.PGXDB) *PromptLogRepository {
	return &PromptLogRepository{db: db}
}

// Insert appends one audit record.
func (r *PromptLogRepository) Insert(ctx context.Context, kind, promptText, responseText, model string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO prompt_logs (kind, prompt_text, response_text, model)
		VALUES ($1, $2, $3, $4)
	`, kind, promptText, responseText, model)
	if err != nil {
		return fmt.Errorf("failed to insert prompt log: %w", err)
	}
	return nil
}

// List retrieves audit records, newest first, optionally filtered by kind.
func (r *PromptLogRepository) List(ctx context.Context, limit, offset int, kind string) ([]models.PromptLog, error) {
	query := `
		SELECT id, kind, prompt_text, response_text, model, created_at
		FROM prompt_logs`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = $3`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	args = append(args, limit, offset)
	if kind != "" {
		args = append(args, kind)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompt logs: %w", err)
	}
	defer rows.Close()

	var logs []models.PromptLog
	for rows.Next() {
		var pl models.PromptLog
		if err := rows.Scan(&pl.ID, &pl.Kind, &pl.PromptText, &pl.ResponseText, &pl.Model, &pl.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prompt log: %w", err)
		}
		logs = append(logs, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompt logs: %w", err)
	}
	return logs, nil
}
