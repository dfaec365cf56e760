package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/ixnv/anon-fl-api/internal/models"
)

type contextKey string

const userKey contextKey = "user"

// auth resolves "Authorization: Token <key>" into the request user.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		key, ok := strings.CutPrefix(header, "Token ")
		if !ok || key == "" {
			// WebSocket clients cannot set headers from browsers; allow the
			// token as a query parameter on upgrade requests.
			key = r.URL.Query().Get("token")
		}
		if key == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := h.Accounts.Authenticate(r.Context(), key)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}
