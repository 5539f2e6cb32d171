// Package middleware содержит middleware для обработки обновлений.
package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"typobot/internal/config"
)

// Handler обрабатывает одно обновление
type Handler func(update tgbotapi.Update)

// Func оборачивает следующий обработчик цепочки
type Func func(update tgbotapi.Update, next Handler)

// Middleware собирает цепочку: recovery, логирование, ограничение частоты
type Middleware struct {
	rateLimiter RateLimiterInterface
	logger      *zap.Logger
	config      *config.Config
}

// New создает новый middleware
func New(cfg *config.Config, logger *zap.Logger) *Middleware {
	return &Middleware{
		rateLimiter: NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, logger),
		logger:      logger,
		config:      cfg,
	}
}

// Chain применяет middlewares по порядку перед handler
func Chain(handler Handler, middlewares ...Func) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw, next := middlewares[i], handler
		handler = func(update tgbotapi.Update) {
			mw(update, next)
		}
	}
	return handler
}

// ProcessWithMiddleware применяет все middleware к обновлению
func (m *Middleware) ProcessWithMiddleware(update tgbotapi.Update, handler Handler) {
	Chain(handler,
		RecoveryMiddleware(m.logger),
		LoggingMiddleware(m.logger),
		RateLimitMiddleware(m.rateLimiter, m.logger),
	)(update)
}

// AdminOnly возвращает middleware для команд администратора
func (m *Middleware) AdminOnly(deny func(chatID int64)) Func {
	return AdminOnlyMiddleware(m.config.AdminUsername, deny, m.logger)
}

// Cleanup очищает устаревшие записи в middleware
func (m *Middleware) Cleanup() {
	m.rateLimiter.Cleanup()
}
