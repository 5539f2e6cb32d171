package middleware

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// LoggingMiddleware логирует входящие сообщения и время их обработки
func LoggingMiddleware(logger *zap.Logger) Func {
	return func(update tgbotapi.Update, next Handler) {
		if update.Message == nil {
			next(update)
			return
		}

		started := time.Now()
		requestID := fmt.Sprintf("%d-%d", update.UpdateID, started.UnixNano())
		msg := update.Message

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("command", msg.Command()),
			zap.Int64("chat_id", msg.Chat.ID),
			zap.String("user", getUserIdentifier(msg.From)),
			zap.Int("update_id", update.UpdateID),
		}
		if msg.Document != nil {
			fields = append(fields,
				zap.String("document", msg.Document.FileName),
				zap.Int("document_size", msg.Document.FileSize))
		} else if !msg.IsCommand() {
			fields = append(fields, zap.Int("text_length", len([]rune(msg.Text))))
		}

		logger.Info("Processing message", fields...)

		next(update)

		logger.Info("Message processed",
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(started)))
	}
}

// getUserIdentifier возвращает идентификатор пользователя
func getUserIdentifier(user *tgbotapi.User) string {
	if user == nil {
		return "unknown"
	}

	if user.UserName != "" {
		return "@" + user.UserName
	}

	if user.FirstName != "" {
		if user.LastName != "" {
			return user.FirstName + " " + user.LastName
		}
		return user.FirstName
	}

	return fmt.Sprintf("user_%d", user.ID)
}
