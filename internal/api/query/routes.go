package query

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the JSON API routes. askMiddlewares wrap only the
// question endpoint.
func RegisterRoutes(r chi.Router, h *Handler, askMiddlewares ...func(http.Handler) http.Handler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/corpora", h.ListCorpora)
		r.Get("/examples", h.ListExamples)
		r.With(askMiddlewares...).Post("/query", h.Ask)
		r.Get("/queries", h.ListRecentQueries)
		r.Get("/results/{result_id}/export", h.ExportResult)
	})
}
