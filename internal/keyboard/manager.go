// Package keyboard реализует inline-клавиатуры Telegram-бота.
package keyboard

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"typobot/internal/external/telegram"
	"typobot/internal/scene"
	"typobot/internal/service"
)

// Префикс callback data для выбора области
const scopePrefix = "scope_"

// ManagerInterface определяет интерфейс менеджера клавиатур
type ManagerInterface interface {
	ScopeKeyboard(current scene.Scope) tgbotapi.InlineKeyboardMarkup
	HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error
}

// Manager строит клавиатуры и обрабатывает нажатия на них
type Manager struct {
	settings *service.SettingsService
	botAPI   telegram.BotAPI
	logger   *zap.Logger
}

var _ ManagerInterface = (*Manager)(nil)

// NewKeyboardManager создает новый менеджер клавиатур
func NewKeyboardManager(settings *service.SettingsService, botAPI telegram.BotAPI, logger *zap.Logger) *Manager {
	return &Manager{
		settings: settings,
		botAPI:   botAPI,
		logger:   logger,
	}
}

// ScopeLabel возвращает подпись области для кнопок и сообщений
func ScopeLabel(scope scene.Scope) string {
	switch scope {
	case scene.ScopeSelection:
		return "выделение"
	case scene.ScopePage:
		return "страница"
	case scene.ScopeFile:
		return "файл"
	}
	return scope.String()
}

// ScopeKeyboard возвращает клавиатуру выбора области; текущая отмечена галочкой
func (k *Manager) ScopeKeyboard(current scene.Scope) tgbotapi.InlineKeyboardMarkup {
	title := cases.Title(language.Russian)

	var buttons []tgbotapi.InlineKeyboardButton
	for _, scope := range scene.Scopes() {
		label := title.String(ScopeLabel(scope))
		if scope == current {
			label = "✓ " + label
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, scopePrefix+scope.String()))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
}

// HandleCallbackQuery обрабатывает нажатие на кнопку области
func (k *Manager) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	data := callback.Data
	if !strings.HasPrefix(data, scopePrefix) {
		k.logger.Warn("Unknown callback query", zap.String("data", data))
		return fmt.Errorf("unknown callback query: %s", data)
	}
	if callback.Message == nil {
		return fmt.Errorf("callback query without message: %s", data)
	}

	chatID := callback.Message.Chat.ID
	scope, err := scene.ParseScope(strings.TrimPrefix(data, scopePrefix))
	if err != nil {
		return err
	}

	if err := k.settings.SetScope(ctx, chatID, scope); err != nil {
		k.logger.Error("Failed to set scope", zap.Int64("chat_id", chatID), zap.Error(err))
		if answerErr := k.botAPI.AnswerCallbackQuery(callback.ID, "Не удалось сохранить область"); answerErr != nil {
			k.logger.Warn("Failed to answer callback query", zap.Error(answerErr))
		}
		return err
	}

	if err := k.botAPI.AnswerCallbackQuery(callback.ID, "Область: "+ScopeLabel(scope)); err != nil {
		k.logger.Warn("Failed to answer callback query", zap.Error(err))
	}

	return k.botAPI.EditMessageReplyMarkup(chatID, callback.Message.MessageID, k.ScopeKeyboard(scope))
}
