package handlers

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"typobot/internal/service"
)

// Cleanup запускает очистку истории вне расписания
func (h *Handlers) Cleanup(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if !h.services.History.Enabled() {
		h.sendMessage(chatID, "История обработки отключена.")
		return
	}

	if err := h.services.Scheduler.RunNow(service.JobHistoryCleanup); err != nil {
		h.logger.Warn("History cleanup is not scheduled", zap.Error(err))
		h.sendMessage(chatID, "Очистка истории не настроена: задайте HISTORY_RETENTION.")
		return
	}

	text := fmt.Sprintf("Удалены запуски старше %s.", h.config.HistoryRetention)
	if next, ok := h.nextRun(service.JobHistoryCleanup); ok {
		text += fmt.Sprintf("\nСледующая очистка по расписанию: %s UTC.", next.Format("2006-01-02 15:04"))
	}
	h.sendMessage(chatID, text)
}

// Deny отвечает пользователю, которому команда недоступна
func (h *Handlers) Deny(chatID int64) {
	h.sendMessage(chatID, "🔒 Эта команда доступна только администратору.")
}

// nextRun возвращает время следующего запуска задачи, если планировщик работает
func (h *Handlers) nextRun(job string) (time.Time, bool) {
	status := h.services.Scheduler.GetStatus()
	jobs, _ := status["jobs"].(map[string]time.Time)
	next, ok := jobs[job]
	if !ok || next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}
