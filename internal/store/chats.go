package store

import (
	"context"

	"github.com/ixnv/anon-fl-api/internal/models"
)

const chatColumns = `id, order_id, messages_count, created_at, updated_at`

func (s *Store) GetChatByOrder(ctx context.Context, orderID string) (*models.OrderChat, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM order_chats WHERE order_id=$1`, orderID)
	chat, err := scanChat(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return chat, nil
}

// GetOrCreateChat returns the order's chat, creating it first if absent.
// The unique constraint on order_id makes creation idempotent when the first
// message races with chat creation from an accept.
func (s *Store) GetOrCreateChat(ctx context.Context, orderID, chatID string) (*models.OrderChat, error) {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO order_chats (id, order_id, messages_count, created_at, updated_at)
		VALUES ($1, $2, 0, now(), now())
		ON CONFLICT (order_id) DO NOTHING
	`, chatID, orderID)
	if err != nil {
		return nil, mapErr(err)
	}
	return s.GetChatByOrder(ctx, orderID)
}

// AppendMessage inserts the message and bumps the chat counter atomically.
func (s *Store) AppendMessage(ctx context.Context, msg *models.OrderChatMessage) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO order_chat_messages (
			id, chat_id, sender_id, message, is_read, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		msg.ID,
		msg.ChatID,
		msg.SenderID,
		msg.Message,
		msg.IsRead,
		msg.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}

	res, err := tx.Exec(ctx, `
		UPDATE order_chats
		SET messages_count = messages_count + 1, updated_at=now()
		WHERE id=$1
	`, msg.ChatID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return mapErr(tx.Commit(ctx))
}

// ListMessages returns the chat's messages newest first.
func (s *Store) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*models.OrderChatMessage, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, chat_id, sender_id, message, is_read, created_at
		FROM order_chat_messages
		WHERE chat_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, chatID, limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var msgs []*models.OrderChatMessage
	for rows.Next() {
		var msg models.OrderChatMessage
		err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.SenderID,
			&msg.Message,
			&msg.IsRead,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, mapErr(err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, mapErr(rows.Err())
}

// MarkAllRead flags every message in the chat as read, both directions.
func (s *Store) MarkAllRead(ctx context.Context, chatID string) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE order_chat_messages SET is_read=true WHERE chat_id=$1 AND is_read=false
	`, chatID)
	return mapErr(err)
}

func scanChat(row rowScanner) (*models.OrderChat, error) {
	var chat models.OrderChat
	err := row.Scan(
		&chat.ID,
		&chat.OrderID,
		&chat.MessagesCount,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}
