package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/storage"
)

// ListItems returns every item of a collection.
// GET /api/{collection}
func (h *Handler) ListItems(res *config.ResourceConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, h.collections.List(res))
	}
}

// CreateItem appends an item and returns it with its id.
// POST /api/{collection}
func (h *Handler) CreateItem(res *config.ResourceConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(w, r)
		if err != nil {
			writeDecodeError(w, err)
			return
		}

		item, err := h.collections.Create(res, storage.ItemOf(body))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeCreated(w, item)
	}
}

// UpdateItem merges the body into an existing item.
// PUT /api/{collection}/{id}
func (h *Handler) UpdateItem(res *config.ResourceConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		body, err := decodeBody(w, r)
		if err != nil {
			writeDecodeError(w, err)
			return
		}

		item, err := h.collections.Update(res, id, storage.ItemOf(body))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeOK(w, item)
	}
}

// DeleteItem removes an item.
// DELETE /api/{collection}/{id}
func (h *Handler) DeleteItem(res *config.ResourceConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.collections.Delete(res, chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}

		writeNoContent(w)
	}
}
