// Package services holds the lifecycle core: order, application and chat
// state machines plus the account/catalog operations around them. Services
// accept narrow store interfaces so they run against both the Postgres store
// and the in-memory one used by tests.
package services

import (
	"context"

	"github.com/ixnv/anon-fl-api/internal/models"
)

// Notifier is the outbound gateway boundary. Implementations are fire and
// forget: they log failures and never return them, so a lost notification
// cannot roll back a committed transition.
type Notifier interface {
	Notify(ctx context.Context, userIDs []string, entityID string, key models.NotificationKey, payload any)
	MarkRead(ctx context.Context, userID string)
	Email(ctx context.Context, to, template string, data any)
}

// Profile is the public slice of a user embedded in responses.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
