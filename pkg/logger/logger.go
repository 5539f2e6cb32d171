// Package logger содержит настройку логгера.
package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options параметры логгера
type Options struct {
	// Level уровень: debug, info, warn, error, fatal
	Level string
	// FilePath файл с ротацией; пустой путь отключает запись в файл
	FilePath string
	// Output консольный вывод; nil означает stdout
	Output zapcore.WriteSyncer
}

// New создает логгер бота по переменным окружения LOG_LEVEL, LOG_PATH и APP_DATA_DIR
func New() *zap.Logger {
	return NewWithOptions(Options{
		Level:    os.Getenv("LOG_LEVEL"),
		FilePath: getLogPath(),
	})
}

// NewWithOptions создает JSON-логгер с консольным и, при необходимости, файловым выводом
func NewWithOptions(opts Options) *zap.Logger {
	level := ParseLevel(opts.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	output := opts.Output
	if output == nil {
		output = zapcore.AddSync(os.Stdout)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), output, level),
	}

	if opts.FilePath != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    100, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// ParseLevel переводит имя уровня в zapcore.Level; неизвестные имена дают info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// getLogPath возвращает путь к файлу логов
func getLogPath() string {
	if logPath := os.Getenv("LOG_PATH"); logPath != "" {
		return logPath
	}

	if dataDir := os.Getenv("APP_DATA_DIR"); dataDir != "" {
		if err := os.MkdirAll(dataDir, 0o755); err == nil {
			return filepath.Join(dataDir, "typobot.log")
		}
	}

	if err := os.MkdirAll("logs", 0o755); err == nil {
		return filepath.Join("logs", "typobot.log")
	}

	return "typobot.log"
}
