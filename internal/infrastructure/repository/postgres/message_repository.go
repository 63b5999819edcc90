package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(ctx context.Context, msg domain.ChatMessage) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_messages (session_id, role, content, created_at)
VALUES ($1,$2,$3,$4)
`, msg.SessionID, string(msg.Role), msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, role, content, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at ASC, id ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msg.Role = domain.MessageRole(role)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return out, nil
}
