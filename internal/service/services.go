package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"typobot/internal/config"
	"typobot/internal/fonts"
	"typobot/internal/storage"
)

// Имя задачи очистки истории
const JobHistoryCleanup = "history_cleanup"

// Services содержит все сервисы приложения
type Services struct {
	Processor *Processor
	Text      *TextService
	History   *HistoryService
	Settings  *SettingsService
	Scheduler *Scheduler
}

// NewServices создает все сервисы. db может быть nil, тогда история отключена.
func NewServices(db *storage.Database, cfg *config.Config, logger *zap.Logger) (*Services, error) {
	var loader fonts.Loader
	if cfg.FontsDir != "" {
		dirLoader, err := fonts.NewDirLoader(cfg.FontsDir, logger.Named("fonts"))
		if err != nil {
			return nil, fmt.Errorf("failed to create fonts loader: %w", err)
		}
		loader = dirLoader
	}

	processor := NewProcessor(loader, ProcessorConfig{
		Workers:         cfg.ProcessorWorkers,
		FontLoadTimeout: cfg.FontLoadTimeout,
	}, logger.Named("processor"))

	services := &Services{
		Processor: processor,
		Text:      NewTextService(processor),
		Scheduler: NewScheduler(10*time.Minute, logger.Named("scheduler")),
	}

	if db != nil {
		services.History = NewHistoryService(db.GetRunRepository(), logger)
		services.Settings = NewSettingsService(db.GetChatSettingsRepository(), cfg.DefaultScope, logger)
	} else {
		services.History = NewHistoryService(nil, logger)
		services.Settings = NewSettingsService(nil, cfg.DefaultScope, logger)
	}

	if services.History.Enabled() && cfg.HistoryRetention > 0 {
		retention := cfg.HistoryRetention
		err := services.Scheduler.Add(JobHistoryCleanup, cfg.HistoryCleanupCron, func(ctx context.Context) error {
			_, err := services.History.Cleanup(ctx, retention)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	return services, nil
}
