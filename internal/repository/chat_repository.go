package repository

import (
	"context"
	"fmt"

	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/models"
)

// ChatRepository stores the conversation history that feeds the chat prompt.
type ChatRepository struct {
	db database.PGXDB
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db database.PGXDB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Append stores one conversation turn.
func (r *ChatRepository) Append(ctx context.Context, role, content string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_messages (role, content) VALUES ($1, $2)
	`, role, content)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// Recent returns the last limit messages in chronological order.
func (r *ChatRepository) Recent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, role, content, created_at FROM chat_messages
		ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}

	// Rows come newest-first; reverse into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
