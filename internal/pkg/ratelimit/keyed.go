package ratelimit

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idleTTL is how long a caller's bucket is kept after its last request.
const idleTTL = 10 * time.Minute

// KeyedLimiter is a token bucket per caller (client IP, Telegram user).
// Idle buckets expire so the set of callers stays bounded.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewKeyedLimiter allows perMinute requests per key with the given burst.
func NewKeyedLimiter(perMinute, burst int) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &KeyedLimiter{
		limiters: cache.New(idleTTL, idleTTL),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

// Allow reports whether key may make a request now and consumes a token if so.
func (l *KeyedLimiter) Allow(key string) bool {
	return l.limiterFor(key).Allow()
}

func (l *KeyedLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		limiter := v.(*rate.Limiter)
		l.limiters.Set(key, limiter, cache.DefaultExpiration)
		return limiter
	}

	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Set(key, limiter, cache.DefaultExpiration)
	return limiter
}
