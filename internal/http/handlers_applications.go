package http

import (
	"net/http"

	"github.com/ixnv/anon-fl-api/internal/models"

	"github.com/go-chi/chi/v5"
)

type setApplicationStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	app, err := h.Applications.Apply(r.Context(), chi.URLParam(r, "orderID"), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toApplicationResponse(app, nil))
}

func (h *Handler) WithdrawApplication(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	app, err := h.Applications.Withdraw(r.Context(), chi.URLParam(r, "orderID"), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationResponse(app, nil))
}

func (h *Handler) SetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req setApplicationStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user := userFrom(r)
	app, err := h.Applications.SetStatus(r.Context(),
		chi.URLParam(r, "orderID"),
		chi.URLParam(r, "applicationID"),
		models.ApplicationStatus(req.Status),
		user.ID,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationResponse(app, nil))
}

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	infos, err := h.Applications.List(r.Context(), chi.URLParam(r, "orderID"), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	results := make([]applicationResponse, 0, len(infos))
	for _, info := range infos {
		applicant := info.Applicant
		results = append(results, toApplicationResponse(info.Application, &applicant))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
