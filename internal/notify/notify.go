// Package notify is the client for the external notification/email delivery
// service. Every call is best effort: failures are logged and never surfaced
// to the operation that triggered them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"

	"github.com/rs/zerolog"
)

type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type notifyRequest struct {
	UserIDs  []string               `json:"user_ids"`
	EntityID string                 `json:"entity_id"`
	Key      models.NotificationKey `json:"key"`
	Data     any                    `json:"data"`
}

// Notify delivers a lifecycle event to the given users.
func (c *Client) Notify(ctx context.Context, userIDs []string, entityID string, key models.NotificationKey, payload any) {
	if len(userIDs) == 0 {
		return
	}
	err := c.post(ctx, "/notify", notifyRequest{
		UserIDs:  userIDs,
		EntityID: entityID,
		Key:      key,
		Data:     payload,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("key", string(key)).Str("entity_id", entityID).
			Msg("notification delivery failed")
	}
}

// MarkRead tells the gateway the user has seen their notifications.
func (c *Client) MarkRead(ctx context.Context, userID string) {
	err := c.post(ctx, "/mark_read", map[string]string{"user_id": userID})
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("mark read failed")
	}
}

// Email asks the gateway to deliver a templated email.
func (c *Client) Email(ctx context.Context, to, template string, data any) {
	err := c.post(ctx, "/email", map[string]any{
		"to":       to,
		"template": template,
		"data":     data,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("to", to).Str("template", template).
			Msg("email delivery failed")
	}
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return nil
}
