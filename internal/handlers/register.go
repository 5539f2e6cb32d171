package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"typobot/internal/config"
	"typobot/internal/external/telegram"
	"typobot/internal/keyboard"
	"typobot/internal/service"
)

// RegisterRoutes создает обработчики вместе с менеджером клавиатур
func RegisterRoutes(services *service.Services, cfg *config.Config, botAPI telegram.BotAPI, logger *zap.Logger) *Handlers {
	keyboardManager := keyboard.NewKeyboardManager(services.Settings, botAPI, logger.Named("keyboard"))
	return New(services, cfg, keyboardManager, botAPI, logger)
}

// RegisterBotCommands возвращает меню команд бота
func (h *Handlers) RegisterBotCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Начать работу с ботом"},
		{Command: "help", Description: "Показать справку"},
		{Command: "scope", Description: "Выбрать область обработки макетов"},
		{Command: "stats", Description: "Статистика обработки в этом чате"},
	}
}
