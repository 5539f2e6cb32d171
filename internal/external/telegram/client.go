// Package telegram содержит интеграцию с Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"typobot/internal/config"
)

// Router получает обновления от клиента
type Router interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
	RegisterBotCommands() []tgbotapi.BotCommand
}

// Client представляет клиент Telegram Bot API
type Client struct {
	bot    *tgbotapi.BotAPI
	botAPI *TelegramBotAPI
	logger *zap.Logger
	config *config.Config
}

// NewClient создает новый клиент Telegram
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false
	logger.Info("Telegram bot created", zap.String("username", bot.Self.UserName))

	return &Client{
		bot:    bot,
		botAPI: NewTelegramBotAPI(bot, logger),
		logger: logger,
		config: cfg,
	}, nil
}

// Start запускает long polling и передает обновления роутеру до отмены ctx
func (c *Client) Start(ctx context.Context, router Router) error {
	c.logger.Info("Bot started", zap.String("username", c.bot.Self.UserName))

	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		c.logger.Error("Failed to delete webhook", zap.Error(err))
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	if err := c.botAPI.SetBotCommands(router.RegisterBotCommands()); err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.config.PollTimeout
	u.AllowedUpdates = []string{"message", "callback_query"}

	c.logger.Info("Starting to fetch updates", zap.Int("poll_timeout", u.Timeout))
	updatesChan := c.bot.GetUpdatesChan(u)
	defer c.bot.StopReceivingUpdates()

	reconnectDelay := 10 * time.Second

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Update loop cancelled by context")
			return ctx.Err()
		case update, ok := <-updatesChan:
			if !ok {
				c.logger.Warn("Update channel closed, will try to reconnect after delay")
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(reconnectDelay):
					return fmt.Errorf("update channel closed, reconnecting")
				}
			}
			c.processUpdate(ctx, router, update)
		}
	}
}

// processUpdate отбрасывает обновления, которые боту нечем обработать
func (c *Client) processUpdate(ctx context.Context, router Router, update tgbotapi.Update) {
	c.logger.Debug("Processing update",
		zap.Int("update_id", update.UpdateID),
		zap.Int64("user_id", getUserID(update)),
		zap.String("command", extractCommand(update)),
		zap.String("update_type", getUpdateType(update)))

	switch getUpdateType(update) {
	case "command", "text", "document", "callback":
		router.HandleUpdate(ctx, update)
	}
}

// GetBotAPI возвращает BotAPI интерфейс
func (c *Client) GetBotAPI() BotAPI {
	return c.botAPI
}

// GetBotInfo возвращает информацию о боте
func (c *Client) GetBotInfo() *tgbotapi.User {
	return &c.bot.Self
}

// getUserID извлекает ID пользователя из обновления
func getUserID(update tgbotapi.Update) int64 {
	if user := update.SentFrom(); user != nil {
		return user.ID
	}
	return 0
}

// extractCommand извлекает команду из обновления
func extractCommand(update tgbotapi.Update) string {
	if update.Message != nil && update.Message.IsCommand() {
		return update.Message.Command()
	}
	return ""
}

// getUpdateType определяет тип обновления
func getUpdateType(update tgbotapi.Update) string {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		return "command"
	case update.Message != nil && update.Message.Document != nil:
		return "document"
	case update.Message != nil && update.Message.Text != "":
		return "text"
	case update.Message != nil:
		return "message"
	case update.CallbackQuery != nil:
		return "callback"
	}
	return "unknown"
}
