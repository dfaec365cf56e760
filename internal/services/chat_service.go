package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ChatStore interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	GetChatByOrder(ctx context.Context, orderID string) (*models.OrderChat, error)
	GetOrCreateChat(ctx context.Context, orderID, chatID string) (*models.OrderChat, error)
	AppendMessage(ctx context.Context, msg *models.OrderChatMessage) error
	ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*models.OrderChatMessage, error)
	MarkAllRead(ctx context.Context, chatID string) error
}

// ChatService owns the per-order message ledger: only the customer and the
// accepted contractor may touch it, messages append with a monotonic
// counter, and reads page newest first.
type ChatService struct {
	store    ChatStore
	notifier Notifier
	feed     *ChatFeed
	pageSize int
	log      zerolog.Logger
}

func NewChatService(store ChatStore, notifier Notifier, feed *ChatFeed, pageSize int, log zerolog.Logger) *ChatService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &ChatService{store: store, notifier: notifier, feed: feed, pageSize: pageSize, log: log}
}

// SentMessage is the created message with the order fields denormalized for
// the response and the notification payload.
type SentMessage struct {
	Message    models.OrderChatMessage
	OrderID    string
	OrderTitle string
}

// Authorize fails unless userID participates in the order.
func (s *ChatService) Authorize(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: not a chat participant", models.ErrPermissionDenied)
	}
	return order, nil
}

// Chat returns the order's chat row.
func (s *ChatService) Chat(ctx context.Context, orderID, requesterID string) (*models.OrderChat, error) {
	if _, err := s.Authorize(ctx, orderID, requesterID); err != nil {
		return nil, err
	}
	return s.store.GetChatByOrder(ctx, orderID)
}

// Send appends a message to the order's chat, creating the chat if the first
// message races with (or arrives before) the accept-time creation.
func (s *ChatService) Send(ctx context.Context, orderID, senderID, text string) (*SentMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", models.ErrNotAcceptable)
	}

	order, err := s.Authorize(ctx, orderID, senderID)
	if err != nil {
		return nil, err
	}

	chat, err := s.store.GetOrCreateChat(ctx, orderID, uuid.NewString())
	if err != nil {
		return nil, err
	}

	msg := &models.OrderChatMessage{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		SenderID:  senderID,
		Message:   text,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	recipients := make([]string, 0, 1)
	if order.CustomerID != senderID {
		recipients = append(recipients, order.CustomerID)
	}
	if order.ContractorID != nil && *order.ContractorID != senderID {
		recipients = append(recipients, *order.ContractorID)
	}
	s.notifier.Notify(ctx, recipients, order.ID, models.NotifyChatNewMessage, map[string]any{
		"order_id":    order.ID,
		"order_title": order.Title,
		"message_id":  msg.ID,
		"message":     msg.Message,
		"sender_id":   senderID,
	})
	s.feed.Publish(orderID, *msg)

	return &SentMessage{Message: *msg, OrderID: order.ID, OrderTitle: order.Title}, nil
}

// ListMessages returns one page of the chat, newest first. An order whose
// chat does not exist yet has an empty ledger, not an error.
func (s *ChatService) ListMessages(ctx context.Context, orderID, requesterID string, page int) ([]*models.OrderChatMessage, error) {
	if _, err := s.Authorize(ctx, orderID, requesterID); err != nil {
		return nil, err
	}

	chat, err := s.store.GetChatByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	return s.store.ListMessages(ctx, chat.ID, s.pageSize, (page-1)*s.pageSize)
}

// MarkAllRead flags every message in the chat read, regardless of sender.
// The call is not scoped to one side of the conversation.
func (s *ChatService) MarkAllRead(ctx context.Context, orderID, requesterID string) error {
	if _, err := s.Authorize(ctx, orderID, requesterID); err != nil {
		return err
	}
	chat, err := s.store.GetChatByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.store.MarkAllRead(ctx, chat.ID)
}
