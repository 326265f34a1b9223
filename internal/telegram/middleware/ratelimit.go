package middleware

import (
	"strconv"
	"time"

	"github.com/fscqa/fsc-qa/internal/pkg/ratelimit"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	warningInterval = 30 * time.Second
	rateLimitText   = "⚠️ 請求過於頻繁，請稍候再試。"
)

// RateLimiterMiddleware drops updates from users over their token bucket.
// Users are warned at most once per warningInterval.
type RateLimiterMiddleware struct {
	limiter *ratelimit.KeyedLimiter
	warned  *cache.Cache
	logger  *zap.Logger
	api     Sender
}

// NewRateLimiterMiddleware creates a new rate limiter middleware
func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burstSize int,
	logger *zap.Logger,
	api Sender,
) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limiter: ratelimit.NewKeyedLimiter(requestsPerMinute, burstSize),
		warned:  cache.New(warningInterval, time.Minute),
		logger:  logger,
		api:     api,
	}
}

// Handle processes the update through rate limiting
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	userID, chatID, ok := updateIDs(update)
	if !ok {
		next(update)
		return
	}

	key := strconv.FormatInt(userID, 10)
	if rl.limiter.Allow(key) {
		next(update)
		return
	}

	rl.logger.Warn("rate limit exceeded",
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
	)

	// Add fails while a warning for this user is still fresh.
	if chatID == 0 || rl.warned.Add(key, struct{}{}, cache.DefaultExpiration) != nil {
		return
	}

	if _, err := rl.api.Send(tgbotapi.NewMessage(chatID, rateLimitText)); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}
