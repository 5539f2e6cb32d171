package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"typobot/internal/config"
	"typobot/internal/external/telegram"
	"typobot/internal/health"
	"typobot/internal/middleware"
	"typobot/internal/service"
	"typobot/internal/storage"
)

// ComponentFactory создает компоненты приложения
type ComponentFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewComponentFactory создает новую фабрику компонентов
func NewComponentFactory(cfg *config.Config, logger *zap.Logger) *ComponentFactory {
	return &ComponentFactory{
		config: cfg,
		logger: logger,
	}
}

// CreateDatabase подключает базу истории и создает таблицы.
// Без DB_DSN история отключена и возвращается nil.
func (f *ComponentFactory) CreateDatabase() (*storage.Database, error) {
	if !f.config.HistoryEnabled() {
		f.logger.Info("DB_DSN is not set, processing history is disabled")
		return nil, nil
	}

	db, err := storage.NewDatabase(f.config.DatabaseURL, f.logger.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	f.logger.Info("Database ready", zap.String("driver", string(db.Driver())))
	return db, nil
}

// CreateTelegramClient создает Telegram клиент
func (f *ComponentFactory) CreateTelegramClient() (*telegram.Client, error) {
	client, err := telegram.NewClient(f.config, f.logger.Named("telegram"))
	if err != nil {
		return nil, err
	}
	f.logger.Info("Telegram client created successfully")
	return client, nil
}

// CreateServices создает все сервисы
func (f *ComponentFactory) CreateServices(db *storage.Database) (*service.Services, error) {
	services, err := service.NewServices(db, f.config, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create services: %w", err)
	}
	f.logger.Info("Services created successfully", zap.Bool("history", services.History.Enabled()))
	return services, nil
}

// CreateMiddleware создает middleware
func (f *ComponentFactory) CreateMiddleware() *middleware.Middleware {
	return middleware.New(f.config, f.logger.Named("middleware"))
}

// CreateHealthServer создает сервер health check
func (f *ComponentFactory) CreateHealthServer(db *storage.Database) (*health.Server, error) {
	if !f.config.HealthCheckEnabled {
		f.logger.Info("Health check server is disabled")
		return nil, nil
	}

	if f.config.HealthPort == "" {
		return nil, fmt.Errorf("health port is required when health check is enabled")
	}

	var pinger health.Pinger
	if db != nil {
		pinger = db
	}

	server := health.NewServer(f.config.HealthPort, f.logger.Named("health"), pinger)
	f.logger.Info("Health check server created", zap.String("port", f.config.HealthPort))
	return server, nil
}

// CreateAppDataDirectory создает директорию данных приложения
func (f *ComponentFactory) CreateAppDataDirectory() error {
	dataDir := f.config.GetAppDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		f.logger.Error("Failed to create app data directory", zap.String("dir", dataDir), zap.Error(err))
		return fmt.Errorf("failed to create app data directory: %w", err)
	}
	f.logger.Info("App data directory ready", zap.String("dir", dataDir))
	return nil
}

// CreateBot создает полный экземпляр бота со всеми зависимостями
func (f *ComponentFactory) CreateBot() (*Bot, error) {
	if err := f.CreateAppDataDirectory(); err != nil {
		return nil, err
	}

	db, err := f.CreateDatabase()
	if err != nil {
		return nil, err
	}

	services, err := f.CreateServices(db)
	if err != nil {
		closeDatabase(db, f.logger)
		return nil, err
	}

	tgClient, err := f.CreateTelegramClient()
	if err != nil {
		closeDatabase(db, f.logger)
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	healthServer, err := f.CreateHealthServer(db)
	if err != nil {
		closeDatabase(db, f.logger)
		return nil, fmt.Errorf("failed to create health server: %w", err)
	}

	bot, err := NewBot(f.config, f.logger)
	if err != nil {
		closeDatabase(db, f.logger)
		return nil, err
	}

	bot.db = db
	bot.telegram = tgClient
	bot.health = healthServer
	bot.services = services
	bot.middleware = f.CreateMiddleware()

	f.logger.Info("Bot created successfully with all dependencies")
	return bot, nil
}

func closeDatabase(db *storage.Database, logger *zap.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("Failed to close database connection", zap.Error(err))
	}
}
