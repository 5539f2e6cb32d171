// Package main запускает Telegram-бота, расставляющего неразрывные пробелы.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"typobot/internal/app"
	"typobot/internal/config"
	"typobot/pkg/logger"
)

func main() {
	// Load подхватывает .env, поэтому логгер создается после него
	cfg, err := config.Load()

	log := logger.New()
	defer func() { _ = log.Sync() }()

	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := app.NewBotWithFactory(cfg, log)
	if err != nil {
		log.Fatal("Failed to create bot", zap.Error(err))
	}

	if err := bot.Start(ctx); err != nil {
		log.Error("Bot stopped with error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Bot stopped successfully")
}
