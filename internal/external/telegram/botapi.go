package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ErrFileTooLarge файл превышает допустимый размер
var ErrFileTooLarge = errors.New("file is too large")

// BotAPI определяет интерфейс для взаимодействия с Telegram API
type BotAPI interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithMarkup(chatID int64, text string, markup any) error
	SendDocument(chatID int64, name string, data []byte, caption string) error
	EditMessageReplyMarkup(chatID int64, messageID int, markup any) error
	AnswerCallbackQuery(callbackID, text string) error
	DownloadFile(ctx context.Context, fileID string, maxSize int64) ([]byte, error)
	SetBotCommands(commands []tgbotapi.BotCommand) error
}

// TelegramBotAPI оборачивает tgbotapi.BotAPI
type TelegramBotAPI struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

var _ BotAPI = (*TelegramBotAPI)(nil)

// NewTelegramBotAPI создает обертку над API
func NewTelegramBotAPI(api *tgbotapi.BotAPI, logger *zap.Logger) *TelegramBotAPI {
	return &TelegramBotAPI{
		api:    api,
		logger: logger,
	}
}

// SendMessage отправляет простое текстовое сообщение
func (t *TelegramBotAPI) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendMessageWithMarkup отправляет сообщение с клавиатурой
func (t *TelegramBotAPI) SendMessageWithMarkup(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Error("Failed to send message with markup", zap.Int64("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("failed to send message with markup: %w", err)
	}
	return nil
}

// SendDocument отправляет файл с подписью
func (t *TelegramBotAPI) SendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := t.api.Send(doc); err != nil {
		t.logger.Error("Failed to send document",
			zap.Int64("chat_id", chatID),
			zap.String("name", name),
			zap.Error(err))
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}

// EditMessageReplyMarkup меняет inline-клавиатуру сообщения
func (t *TelegramBotAPI) EditMessageReplyMarkup(chatID int64, messageID int, markup any) error {
	inlineMarkup, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return fmt.Errorf("markup must be of type tgbotapi.InlineKeyboardMarkup")
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, inlineMarkup)
	if _, err := t.api.Send(edit); err != nil {
		t.logger.Error("Failed to edit message reply markup",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to edit message reply markup: %w", err)
	}
	return nil
}

// AnswerCallbackQuery отвечает на callback query
func (t *TelegramBotAPI) AnswerCallbackQuery(callbackID, text string) error {
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

// DownloadFile скачивает файл по его идентификатору, читая не больше maxSize байт
func (t *TelegramBotAPI) DownloadFile(ctx context.Context, fileID string, maxSize int64) ([]byte, error) {
	url, err := t.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: unexpected status %d", resp.StatusCode)
	}

	return readLimited(resp.Body, maxSize)
}

// readLimited читает r целиком, если его размер не превышает limit
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}
	return data, nil
}

// SetBotCommands задает меню команд бота
func (t *TelegramBotAPI) SetBotCommands(commands []tgbotapi.BotCommand) error {
	if _, err := t.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		t.logger.Error("Failed to set bot commands", zap.Error(err))
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}
