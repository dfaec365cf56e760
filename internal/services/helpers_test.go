package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"
	"github.com/ixnv/anon-fl-api/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type notifyCall struct {
	UserIDs  []string
	EntityID string
	Key      models.NotificationKey
}

// fakeNotifier records outbound calls so tests can assert who was notified
// about what without a gateway in the loop.
type fakeNotifier struct {
	mu     sync.Mutex
	Calls  []notifyCall
	Reads  []string
	Emails []string
}

func (f *fakeNotifier) Notify(_ context.Context, userIDs []string, entityID string, key models.NotificationKey, _ any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, notifyCall{UserIDs: userIDs, EntityID: entityID, Key: key})
}

func (f *fakeNotifier) MarkRead(_ context.Context, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads = append(f.Reads, userID)
}

func (f *fakeNotifier) Email(_ context.Context, to, _ string, _ any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Emails = append(f.Emails, to)
}

func (f *fakeNotifier) calls() []notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifyCall(nil), f.Calls...)
}

func (f *fakeNotifier) lastCall(t *testing.T) notifyCall {
	t.Helper()
	calls := f.calls()
	require.NotEmpty(t, calls)
	return calls[len(calls)-1]
}

func seedUser(t *testing.T, m *store.Memory, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, m.CreateUser(context.Background(), user))
	return user
}

func seedCategory(t *testing.T, m *store.Memory, title string) *models.OrderCategory {
	t.Helper()
	now := time.Now().UTC()
	category := &models.OrderCategory{ID: uuid.NewString(), Title: title, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, m.CreateCategory(context.Background(), category))
	return category
}

func seedOrder(t *testing.T, m *store.Memory, customerID, categoryID string) *models.Order {
	t.Helper()
	now := time.Now().UTC()
	order := &models.Order{
		ID:          uuid.NewString(),
		CategoryID:  categoryID,
		Title:       "deploy the staging cluster",
		Description: "three nodes, ansible already in place",
		Price:       15000,
		CustomerID:  customerID,
		Status:      models.OrderNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, m.CreateOrder(context.Background(), order, nil))
	return order
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
