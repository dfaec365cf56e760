package http

import (
	"net/http"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
	JWT      string `json:"jwt"`
}

type notificationSettingsRequest struct {
	Categories    []string `json:"categories"`
	NotifyOnEmail bool     `json:"notify_on_email"`
}

type notificationSettingsResponse struct {
	Categories    []string `json:"categories"`
	NotifyOnEmail bool     `json:"notify_on_email"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	account, err := h.Accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountResponse{
		ID:       account.User.ID,
		Username: account.User.Username,
		Email:    account.User.Email,
		Token:    account.Token,
		JWT:      account.JWT,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	account, err := h.Accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{
		ID:       account.User.ID,
		Username: account.User.Username,
		Email:    account.User.Email,
		Token:    account.Token,
		JWT:      account.JWT,
	})
}

func (h *Handler) GetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	settings, err := h.Accounts.NotificationSettings(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	categories := settings.Categories
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, notificationSettingsResponse{
		Categories:    categories,
		NotifyOnEmail: settings.NotifyOnEmail,
	})
}

func (h *Handler) UpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var req notificationSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user := userFrom(r)
	settings, err := h.Accounts.UpdateNotificationSettings(r.Context(), user.ID, req.Categories, req.NotifyOnEmail)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	categories := settings.Categories
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, notificationSettingsResponse{
		Categories:    categories,
		NotifyOnEmail: settings.NotifyOnEmail,
	})
}

func (h *Handler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	h.Accounts.MarkNotificationsRead(r.Context(), user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
