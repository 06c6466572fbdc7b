package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/billax/billax/internal/model"
)

// ErrChatNotFound is returned when a chat lookup matches nothing.
var ErrChatNotFound = errors.New("chat not found")

// CreateChat stores one message/response exchange.
func (r *Repository) CreateChat(ctx context.Context, c *model.Chat) error {
	query := `
		INSERT INTO chats (id, user_id, message, response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Message,
		c.Response,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

// ListChatsByUser returns the user's conversation, oldest first, so the
// history can be replayed to the model in order.
func (r *Repository) ListChatsByUser(ctx context.Context, userID string) ([]*model.Chat, error) {
	query := `
		SELECT id, user_id, message, response, created_at, updated_at
		FROM chats
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []*model.Chat
	for rows.Next() {
		var c model.Chat
		if err := rows.Scan(&c.ID, &c.UserID, &c.Message, &c.Response, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, &c)
	}
	return chats, rows.Err()
}

// DeleteChat removes one exchange owned by the user.
func (r *Repository) DeleteChat(ctx context.Context, userID, chatID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chats WHERE user_id = $1 AND id = $2`, userID, chatID)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChatNotFound
	}
	return nil
}

// DeleteChatsByUser clears the user's whole conversation.
func (r *Repository) DeleteChatsByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chats WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chats: %w", err)
	}
	return tag.RowsAffected(), nil
}
