package api

import (
	"net/http"

	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/storage"
)

// GetDocument returns a singleton document.
// GET /api/{singleton}
func (h *Handler) GetDocument(res *config.ResourceConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, h.singletons.Get(res))
	}
}

// ReplaceDocument stores the body, an object or an array, as the whole
// document and echoes it.
// PUT /api/{singleton}
func (h *Handler) ReplaceDocument(res *config.ResourceConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(w, r)
		if err != nil {
			writeDecodeError(w, err)
			return
		}
		doc, ok := storage.SingletonOf(body)
		if !ok {
			WriteInvalidJSON(w)
			return
		}

		doc, err = h.singletons.Put(res, doc)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeOK(w, doc)
	}
}
