package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// AdminOnlyMiddleware пропускает дальше только сообщения администратора.
// Остальным вызывается deny, если он задан.
func AdminOnlyMiddleware(adminUsername string, deny func(chatID int64), logger *zap.Logger) Func {
	return func(update tgbotapi.Update, next Handler) {
		if update.Message == nil {
			next(update)
			return
		}

		from := update.Message.From
		if adminUsername == "" || from == nil || from.UserName != adminUsername {
			logger.Warn("Unauthorized access attempt",
				zap.String("command", update.Message.Command()),
				zap.String("user", getUserIdentifier(from)),
				zap.Bool("admin_configured", adminUsername != ""))
			if deny != nil {
				deny(update.Message.Chat.ID)
			}
			return
		}

		next(update)
	}
}
