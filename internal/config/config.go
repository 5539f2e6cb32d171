// Package config содержит загрузку и валидацию конфигурации.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"typobot/internal/scene"
)

// Config представляет конфигурацию приложения
type Config struct {
	// Database; пустой DSN отключает историю
	DatabaseURL string

	// Telegram
	BotToken        string
	AdminUsername   string
	PollTimeout     int
	MaxDocumentSize int64

	// Health
	HealthPort         string
	HealthCheckEnabled bool

	// Logging
	LogLevel string

	// App Data Directory
	AppDataDir string

	// Typograph
	DefaultScope     scene.Scope
	FontsDir         string
	FontLoadTimeout  time.Duration
	ProcessorWorkers int

	// Rate limit
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// History
	HistoryRetention   time.Duration
	HistoryCleanupCron string
}

// Read читает конфигурацию из переменных окружения без проверки
func Read() *Config {
	// Загружаем .env файл если он существует; его отсутствие не ошибка
	_ = godotenv.Load()

	scope, err := scene.ParseScope(getEnv("DEFAULT_SCOPE", string(scene.ScopePage)))
	if err != nil {
		scope = scene.Scope(getEnv("DEFAULT_SCOPE", ""))
	}

	return &Config{
		DatabaseURL:        getEnv("DB_DSN", ""),
		BotToken:           getEnv("BOT_TOKEN", ""),
		AdminUsername:      getEnv("ADMIN_USERNAME", ""),
		PollTimeout:        getEnvInt("TELEGRAM_POLL_TIMEOUT", 60),
		MaxDocumentSize:    int64(getEnvInt("MAX_DOCUMENT_SIZE", 5<<20)),
		HealthPort:         getEnv("HEALTH_PORT", "8080"),
		HealthCheckEnabled: getEnvBool("HEALTH_CHECK_ENABLED", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AppDataDir:         getEnv("APP_DATA_DIR", "./data"),
		DefaultScope:       scope,
		FontsDir:           getEnv("FONTS_DIR", ""),
		FontLoadTimeout:    getEnvDuration("FONT_LOAD_TIMEOUT", 5*time.Second),
		ProcessorWorkers:   getEnvInt("PROCESSOR_WORKERS", 1),
		RateLimitRequests:  getEnvInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		HistoryRetention:   getEnvDuration("HISTORY_RETENTION", 30*24*time.Hour),
		HistoryCleanupCron: getEnv("HISTORY_CLEANUP_CRON", "0 3 * * *"),
	}
}

// Load загружает конфигурацию бота и проверяет ее
func Load() (*Config, error) {
	config := Read()

	// Валидация обязательных полей
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// HistoryEnabled сообщает, настроена ли база истории
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

// GetAppDataDir возвращает директорию данных приложения
func (c *Config) GetAppDataDir() string {
	return c.AppDataDir
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	if c.HealthCheckEnabled {
		port, err := strconv.Atoi(c.HealthPort)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("HEALTH_PORT must be a valid port, got %q", c.HealthPort)
		}
	}

	if _, err := scene.ParseScope(string(c.DefaultScope)); err != nil {
		return fmt.Errorf("DEFAULT_SCOPE: %w", err)
	}

	if c.ProcessorWorkers < 1 {
		return fmt.Errorf("PROCESSOR_WORKERS must be positive")
	}

	if c.MaxDocumentSize <= 0 {
		return fmt.Errorf("MAX_DOCUMENT_SIZE must be positive")
	}

	if c.RateLimitRequests < 1 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	if c.HistoryEnabled() && c.HistoryRetention > 0 {
		if _, err := cron.ParseStandard(c.HistoryCleanupCron); err != nil {
			return fmt.Errorf("HISTORY_CLEANUP_CRON is invalid: %w", err)
		}
	}

	return nil
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как time.Duration
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
