// Package app содержит сборку и жизненный цикл бота.
package app

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"typobot/internal/config"
	"typobot/internal/external/telegram"
	"typobot/internal/handlers"
	"typobot/internal/middleware"
	"typobot/internal/service"
)

// Router направляет обновления обработчикам
type Router struct {
	handlers   *handlers.Handlers
	middleware *middleware.Middleware
	logger     *zap.Logger
}

var _ telegram.Router = (*Router)(nil)

// NewRouter создает новый роутер
func NewRouter(services *service.Services, cfg *config.Config, mw *middleware.Middleware, botAPI telegram.BotAPI, logger *zap.Logger) *Router {
	return &Router{
		handlers:   handlers.RegisterRoutes(services, cfg, botAPI, logger.Named("handlers")),
		middleware: mw,
		logger:     logger,
	}
}

// HandleUpdate обрабатывает обновление от Telegram
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	r.middleware.ProcessWithMiddleware(update, func(update tgbotapi.Update) {
		switch {
		case update.Message != nil:
			r.handleMessage(ctx, update)
		case update.CallbackQuery != nil:
			r.handlers.CallbackQuery(ctx, update.CallbackQuery)
		}
	})
}

// handleMessage различает команды, файлы и обычный текст
func (r *Router) handleMessage(ctx context.Context, update tgbotapi.Update) {
	message := update.Message

	switch {
	case message.IsCommand():
		r.handleCommand(ctx, update)
	case message.Document != nil:
		r.handlers.Document(ctx, message)
	case message.Text != "":
		r.handlers.Text(ctx, message)
	}
}

func (r *Router) handleCommand(ctx context.Context, update tgbotapi.Update) {
	message := update.Message

	switch strings.ToLower(message.Command()) {
	case "start":
		r.handlers.Start(message)
	case "help":
		r.handlers.Help(ctx, message)
	case "scope":
		r.handlers.Scope(ctx, message)
	case "stats":
		r.handlers.Stats(ctx, message)
	case "cleanup":
		r.middleware.AdminOnly(r.handlers.Deny)(update, func(update tgbotapi.Update) {
			r.handlers.Cleanup(update.Message)
		})
	default:
		r.handlers.Unknown(message)
	}
}

// RegisterBotCommands регистрирует команды бота
func (r *Router) RegisterBotCommands() []tgbotapi.BotCommand {
	return r.handlers.RegisterBotCommands()
}
