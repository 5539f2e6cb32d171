package middleware

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RateLimiterInterface определяет интерфейс для ограничителя запросов
type RateLimiterInterface interface {
	// Allow проверяет, можно ли обработать запрос пользователя
	Allow(userID int64) bool
	// Cleanup очищает устаревшие записи
	Cleanup()
}

// RateLimiter ограничивает число запросов пользователя в скользящем окне
type RateLimiter struct {
	requests map[int64][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

var _ RateLimiterInterface = (*RateLimiter)(nil)

// NewRateLimiter создает новый rate limiter; limit <= 0 отключает ограничение
func NewRateLimiter(limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		logger:   logger,
	}
}

// Allow проверяет, разрешен ли запрос
func (rl *RateLimiter) Allow(userID int64) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.recent(rl.requests[userID], now)

	if len(valid) >= rl.limit {
		rl.requests[userID] = valid
		rl.logger.Warn("Rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int("requests", len(valid)),
			zap.Int("limit", rl.limit))
		return false
	}

	rl.requests[userID] = append(valid, now)
	return true
}

// Cleanup очищает старые записи
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for userID, requests := range rl.requests {
		valid := rl.recent(requests, now)
		if len(valid) == 0 {
			delete(rl.requests, userID)
		} else {
			rl.requests[userID] = valid
		}
	}
}

// recent оставляет запросы, попавшие в окно
func (rl *RateLimiter) recent(requests []time.Time, now time.Time) []time.Time {
	windowStart := now.Add(-rl.window)
	var valid []time.Time
	for _, t := range requests {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	return valid
}

// RateLimitMiddleware отбрасывает обновления сверх лимита
func RateLimitMiddleware(limiter RateLimiterInterface, logger *zap.Logger) Func {
	return func(update tgbotapi.Update, next Handler) {
		user := update.SentFrom()
		if user == nil {
			next(update)
			return
		}
		if !limiter.Allow(user.ID) {
			logger.Info("Update dropped by rate limiter",
				zap.Int("update_id", update.UpdateID),
				zap.Int64("user_id", user.ID))
			return
		}
		next(update)
	}
}
