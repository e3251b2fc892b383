package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chuckhq/chuck-hq/src/frontend"
	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/log"
)

// NewRouter creates a new HTTP router with an endpoint set for every
// registered resource.
func NewRouter(cfg *config.Config, h *Handler) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(Recovery)
	r.Use(Logger)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		for _, res := range cfg.Collections() {
			r.Route("/"+res.Route, func(r chi.Router) {
				r.Get("/", h.ListItems(res))
				r.Post("/", h.CreateItem(res))
				r.Put("/{id}", h.UpdateItem(res))
				r.Delete("/{id}", h.DeleteItem(res))
			})
		}

		for _, res := range cfg.Singletons() {
			r.Get("/"+res.Route, h.GetDocument(res))
			r.Put("/"+res.Route, h.ReplaceDocument(res))
		}

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			WriteNotFound(w)
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		})
	})

	// Serve the built dashboard when a UI directory is configured
	if uiDir := cfg.GetAbsUIDir(); uiDir != "" {
		log.Infof("Serving UI from %s", uiDir)
		r.Handle("/*", frontend.NewSPAHandler(uiDir))
	}

	return r
}
