package middleware

import (
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RecoveryMiddleware перехватывает панику обработчика, чтобы цикл обновлений продолжал работу
func RecoveryMiddleware(logger *zap.Logger) Func {
	return func(update tgbotapi.Update, next Handler) {
		defer func() {
			if panicErr := recover(); panicErr != nil {
				fields := []zap.Field{
					zap.Int("update_id", update.UpdateID),
					zap.Any("panic", panicErr),
					zap.String("stack", string(debug.Stack())),
				}
				if update.Message != nil {
					fields = append(fields,
						zap.String("command", update.Message.Command()),
						zap.Int64("chat_id", update.Message.Chat.ID),
						zap.String("user", getUserIdentifier(update.Message.From)))
				}
				logger.Error("Panic recovered in recovery middleware", fields...)
			}
		}()
		next(update)
	}
}
