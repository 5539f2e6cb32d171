package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"typobot/internal/keyboard"
	"typobot/internal/scene"
	"typobot/internal/service"
)

// Сколько последних запусков показывать в /stats
const recentRunsLimit = 5

// Start обрабатывает команду /start
func (h *Handlers) Start(message *tgbotapi.Message) {
	text := "Привет! Я расставляю неразрывные пробелы в русском тексте.\n\n" +
		"Пришлите текст сообщением или макет файлом (.json, .yaml, .html, .txt), " +
		"и я верну его с неразрывными пробелами после предлогов, союзов, сокращений и перед единицами измерения.\n\n" +
		"Подробности: /help"
	h.sendMessage(message.Chat.ID, text)
}

// Help обрабатывает команду /help
func (h *Handlers) Help(ctx context.Context, message *tgbotapi.Message) {
	scope := h.services.Settings.Scope(ctx, message.Chat.ID)

	text := "Доступные команды:\n" +
		"\n/start - Начать работу с ботом\n" +
		"/help - Показать это сообщение\n" +
		"/scope - Выбрать область обработки макетов\n" +
		"/scope [выделение|страница|файл] - Задать область сразу\n" +
		"/stats - Статистика обработки в этом чате\n" +
		"\nТекст сообщения обрабатывается целиком.\n" +
		fmt.Sprintf("Макеты обрабатываются в области «%s». ", keyboard.ScopeLabel(scope)) +
		"Область можно указать в подписи к файлу, а для HTML вместо нее CSS-селектор выделения.\n" +
		fmt.Sprintf("Максимальный размер файла: %d КБ.", h.config.MaxDocumentSize>>10)

	if h.isAdmin(message.From) {
		text += "\n\nАдминистратор:\n/cleanup - Удалить устаревшую историю"
	}
	if h.config.AdminUsername != "" {
		text += fmt.Sprintf("\n\nПо вопросам: @%s", h.config.AdminUsername)
	}

	h.sendMessage(message.Chat.ID, text)
}

// Scope обрабатывает команду /scope
func (h *Handlers) Scope(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	arg := strings.TrimSpace(message.CommandArguments())

	if arg == "" {
		current := h.services.Settings.Scope(ctx, chatID)
		text := fmt.Sprintf("Текущая область: %s. Выберите другую:", keyboard.ScopeLabel(current))
		h.sendMessageWithMarkup(chatID, text, h.keyboard.ScopeKeyboard(current))
		return
	}

	scope, err := scene.ParseScope(arg)
	if err != nil {
		h.sendMessage(chatID, "Неизвестная область. Доступны: выделение, страница, файл.")
		return
	}

	if err := h.services.Settings.SetScope(ctx, chatID, scope); err != nil {
		h.logger.Error("Failed to set scope", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, "Не удалось сохранить область. Попробуйте позже.")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("Область обработки: %s.", keyboard.ScopeLabel(scope)))
}

// Stats показывает статистику чата
func (h *Handlers) Stats(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	stats, err := h.services.History.Stats(ctx, chatID)
	if errors.Is(err, service.ErrHistoryDisabled) {
		h.sendMessage(chatID, "История обработки отключена.")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, "Не удалось получить статистику. Попробуйте позже.")
		return
	}

	var b strings.Builder
	b.WriteString("📊 Статистика чата\n\n")
	fmt.Fprintf(&b, "Запусков: %d\n", stats.Runs)
	fmt.Fprintf(&b, "Текстовых узлов: %d\n", stats.Nodes)
	fmt.Fprintf(&b, "Изменено узлов: %d\n", stats.ChangedNodes)
	fmt.Fprintf(&b, "Вставлено неразрывных пробелов: %d\n", stats.NbspCount)
	fmt.Fprintf(&b, "Удалено лишних пробелов: %d\n", stats.CollapsedSpaces)
	fmt.Fprintf(&b, "Пропущено узлов: %d\n", stats.FailedNodes)
	fmt.Fprintf(&b, "Неудачных запусков: %d", stats.Failures)

	runs, err := h.services.History.Recent(ctx, chatID, recentRunsLimit)
	if err != nil {
		h.logger.Warn("Failed to get recent runs", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	if len(runs) > 0 {
		b.WriteString("\n\nПоследние запуски:")
		for _, run := range runs {
			fmt.Fprintf(&b, "\n• %s %s/%s: +%d",
				run.CreatedAt.UTC().Format("2006-01-02 15:04"), run.Source, run.Scope, run.NbspCount)
			if run.Error != "" {
				b.WriteString(" (ошибка)")
			}
		}
	}

	h.sendMessage(chatID, b.String())
}

// CallbackQuery передает нажатие кнопки менеджеру клавиатур
func (h *Handlers) CallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if err := h.keyboard.HandleCallbackQuery(ctx, query); err != nil {
		h.logger.Warn("Failed to handle callback query", zap.String("data", query.Data), zap.Error(err))
	}
}

// Unknown отвечает на неизвестную команду
func (h *Handlers) Unknown(message *tgbotapi.Message) {
	h.sendMessage(message.Chat.ID, "Неизвестная команда. Используйте /help для получения справки.")
}
