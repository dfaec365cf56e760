package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type categoryRequest struct {
	Title    string  `json:"title"`
	ParentID *string `json:"parent_id"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.Categories.Tree(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	results := make([]categoryTreeResponse, 0, len(nodes))
	for _, node := range nodes {
		resp := categoryTreeResponse{
			categoryResponse: *toCategoryResponse(node.Category),
			Subcategories:    []categoryResponse{},
		}
		for _, sub := range node.Subcategories {
			resp.Subcategories = append(resp.Subcategories, *toCategoryResponse(sub))
		}
		results = append(results, resp)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.Categories.Get(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	category, err := h.Categories.Create(r.Context(), userFrom(r), req.ParentID, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	category, err := h.Categories.Update(r.Context(), userFrom(r),
		chi.URLParam(r, "categoryID"), req.ParentID, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Categories.Delete(r.Context(), userFrom(r), chi.URLParam(r, "categoryID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user := userFrom(r)
	tag, created, err := h.Tags.GetOrCreate(r.Context(), user.ID, req.Tag)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, tagResponse{ID: tag.ID, Tag: tag.Tag})
}

func (h *Handler) SearchTags(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tags, err := h.Tags.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	results := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		results = append(results, tagResponse{ID: tag.ID, Tag: tag.Tag})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
