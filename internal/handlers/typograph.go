package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"typobot/internal/external/telegram"
	"typobot/internal/model"
	"typobot/internal/notify"
	"typobot/internal/scene"
	"typobot/internal/service"
)

// Text обрабатывает обычное текстовое сообщение
func (h *Handlers) Text(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	text, report, err := h.services.Text.Typograph(ctx, message.Text)
	h.record(ctx, chatID, model.SourceText, report)

	summary := notify.Summarize(report, languageOf(message))
	if err != nil || !report.Changed() {
		h.sendMessage(chatID, summary.Message)
		return
	}

	h.sendMessage(chatID, text)
	h.sendMessage(chatID, summary.Message)
}

// Document обрабатывает присланный файл сцены и отправляет его обратно
func (h *Handlers) Document(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	doc := message.Document

	format, err := scene.FormatFromPath(doc.FileName)
	if err != nil {
		h.sendMessage(chatID, "Поддерживаются файлы .json, .yaml, .html и .txt.")
		return
	}

	maxSize := h.config.MaxDocumentSize
	if maxSize > 0 && int64(doc.FileSize) > maxSize {
		h.sendMessage(chatID, tooLargeMessage(maxSize))
		return
	}

	scope, selector, err := h.parseCaption(ctx, chatID, message.Caption, format)
	if err != nil {
		h.sendMessage(chatID, "Неизвестная область в подписи. Доступны: выделение, страница, файл.")
		return
	}

	data, err := h.botAPI.DownloadFile(ctx, doc.FileID, maxSize)
	if err != nil {
		if errors.Is(err, telegram.ErrFileTooLarge) {
			h.sendMessage(chatID, tooLargeMessage(maxSize))
			return
		}
		h.logger.Error("Failed to download document",
			zap.Int64("chat_id", chatID),
			zap.String("file_name", doc.FileName),
			zap.Error(err))
		h.sendMessage(chatID, "Не удалось скачать файл. Попробуйте позже.")
		return
	}

	file, err := scene.Decode(bytes.NewReader(data), format, selector)
	if err != nil {
		h.logger.Info("Failed to decode document",
			zap.Int64("chat_id", chatID),
			zap.String("file_name", doc.FileName),
			zap.Error(err))
		if errors.Is(err, scene.ErrInvalidSelector) {
			h.sendMessage(chatID, fmt.Sprintf("Некорректный CSS-селектор: %s", selector))
			return
		}
		h.sendMessage(chatID, "Не удалось разобрать файл. Проверьте его формат.")
		return
	}

	report, err := h.services.Processor.ProcessFile(ctx, file, scope)
	h.record(ctx, chatID, string(file.Format()), report)

	summary := notify.Summarize(report, languageOf(message))
	if err != nil || !report.Changed() {
		h.sendMessage(chatID, summary.Message)
		return
	}

	out, err := file.Encode()
	if err != nil {
		h.logger.Error("Failed to encode document", zap.String("file_name", doc.FileName), zap.Error(err))
		h.sendMessage(chatID, notify.Message(&service.Report{Err: err}, languageOf(message)))
		return
	}

	if err := h.botAPI.SendDocument(chatID, doc.FileName, out, summary.Message); err != nil {
		h.logger.Error("Failed to send document", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// parseCaption извлекает из подписи область и CSS-селектор.
// Подпись вида "[/scope] <область> [селектор]"; для HTML подпись без области
// целиком считается селектором выделения. Пустая подпись дает область чата.
func (h *Handlers) parseCaption(ctx context.Context, chatID int64, caption string, format scene.Format) (scene.Scope, string, error) {
	caption = strings.TrimSpace(caption)
	caption = strings.TrimSpace(strings.TrimPrefix(caption, "/scope"))
	if caption == "" {
		return h.services.Settings.Scope(ctx, chatID), "", nil
	}

	head := strings.Fields(caption)[0]
	if scope, err := scene.ParseScope(head); err == nil {
		return scope, strings.TrimSpace(strings.TrimPrefix(caption, head)), nil
	}

	if format == scene.FormatHTML {
		return scene.ScopeSelection, caption, nil
	}
	_, err := scene.ParseScope(head)
	return "", "", err
}

// record сохраняет запуск в историю; ошибка записи уже залогирована сервисом
func (h *Handlers) record(ctx context.Context, chatID int64, source string, report *service.Report) {
	_ = h.services.History.Record(ctx, chatID, source, report)
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("Файл слишком большой. Максимальный размер: %d КБ.", limit>>10)
}
