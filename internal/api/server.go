package api

import (
	"net/http"
	"time"

	"github.com/fscqa/fsc-qa/internal/api/docs"
	"github.com/fscqa/fsc-qa/internal/api/middleware"
	queryapi "github.com/fscqa/fsc-qa/internal/api/query"
	webapi "github.com/fscqa/fsc-qa/internal/api/web"
	"github.com/fscqa/fsc-qa/internal/pkg/ratelimit"
	"github.com/fscqa/fsc-qa/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router.
// requestTimeout should exceed the provider timeout so slow answers are not cut off.
func SetupRouter(
	queryHandler *queryapi.Handler,
	webHandler *webapi.Handler,
	limiter *ratelimit.KeyedLimiter,
	requestTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RealIP)                  // Trust X-Forwarded-For from the proxy
	r.Use(chimiddleware.RequestID)               // Add request ID
	r.Use(middleware.Logger(logger))             // Log requests
	r.Use(chimiddleware.Recoverer)               // Recover from panics
	r.Use(middleware.CORS)                       // Handle CORS
	r.Use(chimiddleware.Timeout(requestTimeout)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Question submission is rate limited per client, reads are not.
	queryapi.RegisterRoutes(r, queryHandler, middleware.RateLimit(limiter))
	webapi.RegisterRoutes(r, webHandler, middleware.RateLimitWith(limiter, webHandler.RateLimited))

	return r
}
