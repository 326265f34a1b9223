package middleware

import (
	"net"
	"net/http"

	"github.com/fscqa/fsc-qa/internal/pkg/messages"
	"github.com/fscqa/fsc-qa/internal/pkg/ratelimit"
	"github.com/fscqa/fsc-qa/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RateLimit rejects clients that exceed their per-IP budget with a JSON 429.
func RateLimit(limiter *ratelimit.KeyedLimiter) func(next http.Handler) http.Handler {
	return RateLimitWith(limiter, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "60")
		response.Error(w, http.StatusTooManyRequests, "rate_limited", messages.RateLimited)
	})
}

// RateLimitWith hands rejected requests to rejected instead of next.
// It relies on chi's RealIP middleware having set RemoteAddr.
func RateLimitWith(limiter *ratelimit.KeyedLimiter, rejected http.HandlerFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				ctxzap.Warn(r.Context(), "rate limit exceeded", zap.String("client_ip", ip))
				rejected(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
