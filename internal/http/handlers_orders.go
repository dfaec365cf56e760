package http

import (
	"net/http"

	"github.com/ixnv/anon-fl-api/internal/services"

	"github.com/go-chi/chi/v5"
)

type createOrderRequest struct {
	CategoryID  string   `json:"category_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	TagIDs      []string `json:"tag_ids"`
}

type updateOrderRequest struct {
	CategoryID  string `json:"category_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

type createAttachmentRequest struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Hash     string `json:"hash"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user := userFrom(r)
	order, err := h.Orders.Create(r.Context(), user.ID, services.CreateOrderInput{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	detail, err := h.Orders.Get(r.Context(), order.ID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDetailResponse(detail))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	detail, err := h.Orders.Get(r.Context(), chi.URLParam(r, "orderID"), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user := userFrom(r)
	orderID := chi.URLParam(r, "orderID")
	_, err := h.Orders.Update(r.Context(), orderID, user.ID, services.UpdateOrderInput{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	detail, err := h.Orders.Get(r.Context(), orderID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if err := h.Orders.Delete(r.Context(), chi.URLParam(r, "orderID"), user.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	page := pageParam(r)
	summaries, err := h.Orders.List(r.Context(), user.ID, services.ListOrdersInput{
		CategoryID: r.URL.Query().Get("category"),
		TagID:      r.URL.Query().Get("tag_id"),
		Page:       page,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOrderPage(w, summaries, page)
}

func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	page := pageParam(r)
	summaries, err := h.Orders.ListByCustomer(r.Context(), user.ID, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOrderPage(w, summaries, page)
}

func (h *Handler) ListContractorOrders(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	page := pageParam(r)
	summaries, err := h.Orders.ListByContractor(r.Context(), user.ID, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOrderPage(w, summaries, page)
}

func (h *Handler) CreateAttachment(w http.ResponseWriter, r *http.Request) {
	var req createAttachmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user := userFrom(r)
	att, err := h.Orders.AddAttachment(r.Context(), chi.URLParam(r, "orderID"), user.ID,
		req.Filename, req.URL, req.Hash)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachmentResponse{
		ID:       att.ID,
		Filename: att.Filename,
		URL:      att.URL,
		Hash:     att.Hash,
	})
}

func writeOrderPage(w http.ResponseWriter, summaries []*services.OrderSummary, page int) {
	results := make([]orderResponse, 0, len(summaries))
	for _, summary := range summaries {
		results = append(results, toOrderResponse(summary))
	}
	writeJSON(w, http.StatusOK, pageResponse{Results: results, Page: page})
}
