package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type sendMessageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	chat, err := h.Chats.Chat(r.Context(), chi.URLParam(r, "orderID"), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{ID: chat.ID, MessagesCount: chat.MessagesCount})
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	page := pageParam(r)
	msgs, err := h.Chats.ListMessages(r.Context(), chi.URLParam(r, "orderID"), user.ID, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	results := make([]messageResponse, 0, len(msgs))
	for _, msg := range msgs {
		results = append(results, toMessageResponse(msg))
	}
	writeJSON(w, http.StatusOK, pageResponse{Results: results, Page: page})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user := userFrom(r)
	sent, err := h.Chats.Send(r.Context(), chi.URLParam(r, "orderID"), user.ID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := toMessageResponse(&sent.Message)
	resp.OrderID = sent.OrderID
	resp.OrderTitle = sent.OrderTitle
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) MarkMessagesRead(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if err := h.Chats.MarkAllRead(r.Context(), chi.URLParam(r, "orderID"), user.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
