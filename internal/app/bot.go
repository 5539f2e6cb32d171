package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"typobot/internal/config"
	"typobot/internal/external/telegram"
	"typobot/internal/health"
	"typobot/internal/middleware"
	"typobot/internal/service"
	"typobot/internal/storage"
)

// Bot связывает Telegram клиент, сервисы и вспомогательные серверы
type Bot struct {
	config     *config.Config
	logger     *zap.Logger
	db         *storage.Database
	telegram   *telegram.Client
	health     *health.Server
	services   *service.Services
	middleware *middleware.Middleware
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	stopOnce   sync.Once
}

// NewBot создает новый экземпляр бота
func NewBot(cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Bot{
		config: cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// NewBotWithFactory создает бота со всеми зависимостями
func NewBotWithFactory(cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	return NewComponentFactory(cfg, logger).CreateBot()
}

// Start запускает бота и блокируется до отмены ctx или Stop
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-b.ctx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	if b.health != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			if err := b.health.Start(); err != nil {
				b.logger.Error("Health check server failed", zap.Error(err))
			}
		}()
	}

	if b.middleware != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					b.middleware.Cleanup()
				case <-ctx.Done():
					b.logger.Info("Middleware cleanup stopped by context")
					return
				}
			}
		}()
	}

	if err := b.services.Scheduler.Start(); err != nil {
		b.logger.Error("Failed to start scheduler", zap.Error(err))
	}

	router := NewRouter(b.services, b.config, b.middleware, b.telegram.GetBotAPI(), b.logger)
	b.logger.Info("Bot started successfully")

	maxRestartAttempts := 10
	restartAttempts := 0
	restartDelay := 10 * time.Second

	for {
		err := b.telegram.Start(ctx, router)
		if ctx.Err() != nil {
			b.logger.Info("Update loop stopped due to context cancellation")
			b.Stop()
			return nil
		}

		restartAttempts++
		b.logger.Error("Update loop error",
			zap.Error(err),
			zap.Int("restart_attempt", restartAttempts),
			zap.Int("max_attempts", maxRestartAttempts))

		if restartAttempts > maxRestartAttempts {
			b.Stop()
			return fmt.Errorf("max restart attempts reached: %w", err)
		}

		delay := min(time.Duration(restartAttempts)*restartDelay, 5*time.Minute)
		b.logger.Info("Waiting before restart", zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			b.Stop()
			return nil
		case <-time.After(delay):
		}
	}
}

// Stop останавливает бота; повторные вызовы ничего не делают
func (b *Bot) Stop() {
	b.stopOnce.Do(b.stop)
}

func (b *Bot) stop() {
	b.logger.Info("Stopping bot gracefully")

	if b.services != nil {
		b.services.Scheduler.Stop()
	}

	b.cancel()

	if b.health != nil {
		if err := b.health.Stop(); err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Error("Failed to stop health check server", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.wg.Wait()
	}()

	shutdownTimeout := 30 * time.Second
	select {
	case <-done:
		b.logger.Info("All goroutines stopped successfully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("Graceful shutdown timeout exceeded, forcing stop")
	}

	closeDatabase(b.db, b.logger)
	b.logger.Info("Bot stopped successfully")
}
