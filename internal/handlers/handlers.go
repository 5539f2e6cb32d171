// Package handlers содержит обработчики сообщений и команд бота.
package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"typobot/internal/config"
	"typobot/internal/external/telegram"
	"typobot/internal/keyboard"
	"typobot/internal/notify"
	"typobot/internal/service"
)

// Handlers содержит все обработчики
type Handlers struct {
	services *service.Services
	config   *config.Config
	logger   *zap.Logger
	keyboard keyboard.ManagerInterface
	botAPI   telegram.BotAPI
}

// New создает новый экземпляр обработчиков
func New(services *service.Services, cfg *config.Config, keyboard keyboard.ManagerInterface, botAPI telegram.BotAPI, logger *zap.Logger) *Handlers {
	return &Handlers{
		services: services,
		config:   cfg,
		logger:   logger,
		keyboard: keyboard,
		botAPI:   botAPI,
	}
}

// isAdmin проверяет, является ли пользователь администратором
func (h *Handlers) isAdmin(user *tgbotapi.User) bool {
	if h.config.AdminUsername == "" || user == nil || user.UserName == "" {
		return false
	}
	return user.UserName == h.config.AdminUsername
}

// languageOf выбирает язык итоговых сообщений по настройкам клиента
func languageOf(message *tgbotapi.Message) language.Tag {
	if message.From == nil {
		return notify.Language("")
	}
	return notify.Language(message.From.LanguageCode)
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	if err := h.botAPI.SendMessage(chatID, text); err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handlers) sendMessageWithMarkup(chatID int64, text string, markup any) {
	if err := h.botAPI.SendMessageWithMarkup(chatID, text, markup); err != nil {
		h.logger.Error("Failed to send message with markup", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
