package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the browser page routes. askMiddlewares wrap only
// the question submission.
func RegisterRoutes(r chi.Router, h *Handler, askMiddlewares ...func(http.Handler) http.Handler) {
	r.Get("/", h.Index)
	r.With(askMiddlewares...).Post("/ask", h.Ask)
	r.Post("/clear", h.Clear)
	r.Post("/example/{idx}", h.UseExample)
}
