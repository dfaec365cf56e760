package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"
	"github.com/ixnv/anon-fl-api/internal/services"
	"github.com/ixnv/anon-fl-api/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, []string, string, models.NotificationKey, any) {}
func (noopNotifier) MarkRead(context.Context, string)                                      {}
func (noopNotifier) Email(context.Context, string, string, any)                            {}

type testAPI struct {
	store  *store.Memory
	server *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	m := store.NewMemory()
	log := zerolog.Nop()
	notifier := noopNotifier{}
	feed := services.NewChatFeed()

	handler := NewHandler(
		services.NewAccountService(m, notifier, "test-secret", log),
		services.NewOrderService(m, 20, log),
		services.NewApplicationService(m, notifier, log),
		services.NewChatService(m, notifier, feed, 20, log),
		services.NewCategoryService(m, log),
		services.NewTagService(m, log),
		feed,
		log,
	)
	srv := httptest.NewServer(NewServer(handler).Router)
	t.Cleanup(srv.Close)
	return &testAPI{store: m, server: srv}
}

// do sends a JSON request and decodes the JSON response into out when it is
// non-nil.
func (api *testAPI) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, api.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (api *testAPI) register(t *testing.T, username string) (string, string) {
	t.Helper()
	var resp struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	status := api.do(t, http.MethodPost, "/account/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cret",
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	return resp.ID, resp.Token
}

func (api *testAPI) seedAdminCategory(t *testing.T, title string) string {
	t.Helper()
	admin := &models.User{
		ID:           uuid.NewString(),
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: "x",
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, api.store.CreateUser(context.Background(), admin))
	require.NoError(t, api.store.CreateToken(context.Background(), &models.AuthToken{
		Key:       uuid.NewString(),
		UserID:    admin.ID,
		CreatedAt: time.Now().UTC(),
	}))
	token, err := api.store.GetTokenByUser(context.Background(), admin.ID)
	require.NoError(t, err)

	var resp struct {
		ID string `json:"id"`
	}
	status := api.do(t, http.MethodPost, "/orders/categories/", token.Key,
		map[string]any{"title": title}, &resp)
	require.Equal(t, http.StatusCreated, status)
	return resp.ID
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	status := api.do(t, http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized,
		api.do(t, http.MethodGet, "/orders/", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized,
		api.do(t, http.MethodGet, "/orders/", "bogus", nil, nil))
}

func TestRegisterLoginFlow(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "alice")

	var login struct {
		Token string `json:"token"`
		JWT   string `json:"jwt"`
	}
	status := api.do(t, http.MethodPost, "/account/login", "", map[string]string{
		"username": "alice",
		"password": "s3cret",
	}, &login)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, token, login.Token)
	assert.NotEmpty(t, login.JWT)

	status = api.do(t, http.MethodPost, "/account/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = api.do(t, http.MethodPost, "/account/register", "", map[string]string{
		"username": "alice",
		"email":    "alice2@example.com",
		"password": "pw",
	}, nil)
	assert.Equal(t, http.StatusNotAcceptable, status)
}

func TestCategoryWritesForbiddenForUsers(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "alice")

	status := api.do(t, http.MethodPost, "/orders/categories/", token,
		map[string]any{"title": "devops"}, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	categoryID := api.seedAdminCategory(t, "devops")
	_, customerToken := api.register(t, "customer")
	contractorID, contractorToken := api.register(t, "contractor")
	_, outsiderToken := api.register(t, "outsider")

	// customer publishes an order
	var order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	status := api.do(t, http.MethodPost, "/orders/", customerToken, map[string]any{
		"category_id": categoryID,
		"title":       "set up ci",
		"description": "github actions, staging deploy",
		"price":       30000,
	}, &order)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, string(models.OrderNew), order.Status)

	// contractor applies; a second apply is rejected
	var app struct {
		ID string `json:"id"`
	}
	status = api.do(t, http.MethodPost, "/orders/"+order.ID+"/applications/", contractorToken, nil, &app)
	require.Equal(t, http.StatusCreated, status)

	status = api.do(t, http.MethodPost, "/orders/"+order.ID+"/applications/", contractorToken, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// only the customer sees the application list
	status = api.do(t, http.MethodGet, "/orders/"+order.ID+"/applications/", contractorToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// customer accepts
	var accepted struct {
		Status string `json:"status"`
	}
	status = api.do(t, http.MethodPut, "/orders/"+order.ID+"/applications/"+app.ID+"/status",
		customerToken, map[string]string{"status": "accepted"}, &accepted)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(models.ApplicationAccepted), accepted.Status)

	// the order is now closed to new applications
	status = api.do(t, http.MethodPost, "/orders/"+order.ID+"/applications/", outsiderToken, nil, nil)
	assert.Equal(t, http.StatusConflict, status)

	// order detail shows the contractor to participants only
	var detail struct {
		Status     string `json:"status"`
		Contractor *struct {
			ID string `json:"id"`
		} `json:"contractor"`
	}
	status = api.do(t, http.MethodGet, "/orders/"+order.ID+"/", customerToken, nil, &detail)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(models.OrderInProcess), detail.Status)
	require.NotNil(t, detail.Contractor)
	assert.Equal(t, contractorID, detail.Contractor.ID)

	detail.Contractor = nil
	status = api.do(t, http.MethodGet, "/orders/"+order.ID+"/", outsiderToken, nil, &detail)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, detail.Contractor)
}

func TestChatOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	categoryID := api.seedAdminCategory(t, "devops")
	_, customerToken := api.register(t, "customer")
	_, contractorToken := api.register(t, "contractor")
	_, outsiderToken := api.register(t, "outsider")

	var order struct {
		ID string `json:"id"`
	}
	status := api.do(t, http.MethodPost, "/orders/", customerToken, map[string]any{
		"category_id": categoryID,
		"title":       "t",
		"description": "d",
		"price":       100,
	}, &order)
	require.Equal(t, http.StatusCreated, status)

	var app struct {
		ID string `json:"id"`
	}
	status = api.do(t, http.MethodPost, "/orders/"+order.ID+"/applications/", contractorToken, nil, &app)
	require.Equal(t, http.StatusCreated, status)
	status = api.do(t, http.MethodPut, "/orders/"+order.ID+"/applications/"+app.ID+"/status",
		customerToken, map[string]string{"status": "accepted"}, nil)
	require.Equal(t, http.StatusOK, status)

	// both sides exchange messages
	var sent struct {
		ID         string `json:"id"`
		OrderTitle string `json:"order_title"`
	}
	status = api.do(t, http.MethodPost, "/orders/"+order.ID+"/chat/messages/", contractorToken,
		map[string]string{"message": "starting tomorrow"}, &sent)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "t", sent.OrderTitle)

	status = api.do(t, http.MethodPost, "/orders/"+order.ID+"/chat/messages/", customerToken,
		map[string]string{"message": "great"}, nil)
	require.Equal(t, http.StatusCreated, status)

	// empty messages are rejected
	status = api.do(t, http.MethodPost, "/orders/"+order.ID+"/chat/messages/", customerToken,
		map[string]string{"message": "  "}, nil)
	assert.Equal(t, http.StatusNotAcceptable, status)

	// outsiders cannot read or write
	status = api.do(t, http.MethodGet, "/orders/"+order.ID+"/chat/messages/", outsiderToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status = api.do(t, http.MethodPost, "/orders/"+order.ID+"/chat/messages/", outsiderToken,
		map[string]string{"message": "hello"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// newest first
	var page struct {
		Results []struct {
			Message string `json:"message"`
			IsRead  bool   `json:"is_read"`
		} `json:"results"`
		Page int `json:"page"`
	}
	status = api.do(t, http.MethodGet, "/orders/"+order.ID+"/chat/messages/", customerToken, nil, &page)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "great", page.Results[0].Message)
	assert.Equal(t, "starting tomorrow", page.Results[1].Message)

	// mark read flips every message
	status = api.do(t, http.MethodPut, "/orders/"+order.ID+"/chat/read", customerToken, nil, nil)
	require.Equal(t, http.StatusOK, status)

	page.Results = nil
	status = api.do(t, http.MethodGet, "/orders/"+order.ID+"/chat/messages/", contractorToken, nil, &page)
	require.Equal(t, http.StatusOK, status)
	for _, msg := range page.Results {
		assert.True(t, msg.IsRead)
	}

	var chat struct {
		MessagesCount int64 `json:"messages_count"`
	}
	status = api.do(t, http.MethodGet, "/orders/"+order.ID+"/chat/", customerToken, nil, &chat)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), chat.MessagesCount)
}

func TestWithdrawOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	categoryID := api.seedAdminCategory(t, "devops")
	_, customerToken := api.register(t, "customer")
	_, contractorToken := api.register(t, "contractor")

	var order struct {
		ID string `json:"id"`
	}
	status := api.do(t, http.MethodPost, "/orders/", customerToken, map[string]any{
		"category_id": categoryID,
		"title":       "t",
		"description": "d",
		"price":       100,
	}, &order)
	require.Equal(t, http.StatusCreated, status)

	var app struct {
		ID string `json:"id"`
	}
	status = api.do(t, http.MethodPost, "/orders/"+order.ID+"/applications/", contractorToken, nil, &app)
	require.Equal(t, http.StatusCreated, status)

	var withdrawn struct {
		Status string `json:"status"`
	}
	status = api.do(t, http.MethodDelete, "/orders/"+order.ID+"/applications/", contractorToken, nil, &withdrawn)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(models.ApplicationWithdrawn), withdrawn.Status)

	// nothing left to withdraw
	status = api.do(t, http.MethodDelete, "/orders/"+order.ID+"/applications/", contractorToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGarbageIDsReadAsNotFound(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "alice")

	status := api.do(t, http.MethodGet, "/orders/not-a-uuid/", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = api.do(t, http.MethodGet, "/orders/categories/not-a-uuid/", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = api.do(t, http.MethodPut, "/orders/"+uuid.NewString()+"/applications/not-a-uuid/status",
		token, map[string]string{"status": "accepted"}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = api.do(t, http.MethodPost, "/orders/", token, map[string]any{
		"category_id": "not-a-uuid",
		"title":       "fix the build",
		"description": "ci is red",
		"price":       100,
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTagsOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "alice")

	var tag struct {
		ID  string `json:"id"`
		Tag string `json:"tag"`
	}
	status := api.do(t, http.MethodPost, "/tags/", token, map[string]string{"tag": "golang"}, &tag)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "golang", tag.Tag)

	var again struct {
		ID string `json:"id"`
	}
	status = api.do(t, http.MethodPost, "/tags/", token, map[string]string{"tag": "golang"}, &again)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, tag.ID, again.ID)

	var found struct {
		Results []struct {
			Tag string `json:"tag"`
		} `json:"results"`
	}
	status = api.do(t, http.MethodGet, "/tags/search?q=go", token, nil, &found)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, found.Results, 1)
	assert.Equal(t, "golang", found.Results[0].Tag)
}
