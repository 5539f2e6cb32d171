// Package storage содержит работу с базой данных.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"typobot/internal/model"
	"typobot/internal/storage/repository"
)

// Driver тип базы данных
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// DriverFromDSN определяет тип базы по DSN
func DriverFromDSN(dsn string) Driver {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Options параметры подключения
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultOptions параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		MaxRetries: 10,
		RetryDelay: 5 * time.Second,
	}
}

// Database представляет подключение к базе истории
type Database struct {
	db     *bun.DB
	driver Driver
	logger *zap.Logger
}

// NewDatabase подключается к PostgreSQL или SQLite в зависимости от DSN
func NewDatabase(dsn string, logger *zap.Logger) (*Database, error) {
	return NewDatabaseWithOptions(dsn, DefaultOptions(), logger)
}

// NewDatabaseWithOptions подключается с заданными параметрами повторов
func NewDatabaseWithOptions(dsn string, opts Options, logger *zap.Logger) (*Database, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	driver := DriverFromDSN(dsn)
	var (
		db  *bun.DB
		err error
	)
	switch driver {
	case DriverPostgres:
		db, err = connectPostgres(dsn, opts, logger)
	default:
		db, err = openSQLite(dsn, logger)
	}
	if err != nil {
		return nil, err
	}

	// Добавляем отладку в режиме разработки
	if logger.Core().Enabled(zap.DebugLevel) {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}

	return &Database{db: db, driver: driver, logger: logger}, nil
}

// connectPostgres создает подключение к PostgreSQL с retry логикой
func connectPostgres(dsn string, opts Options, logger *zap.Logger) (*bun.DB, error) {
	var lastErr error

	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		logger.Info("Attempting to connect to database",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", opts.MaxRetries))

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

		// Настраиваем пул соединений
		sqldb.SetMaxOpenConns(25)
		sqldb.SetMaxIdleConns(10)
		sqldb.SetConnMaxLifetime(5 * time.Minute)
		sqldb.SetConnMaxIdleTime(1 * time.Minute)

		db := bun.NewDB(sqldb, pgdialect.New())

		pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			logger.Info("Connected to PostgreSQL database with Bun ORM",
				zap.Int("attempt", attempt))
			return db, nil
		}

		logger.Warn("Failed to connect to database",
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection", zap.Error(err))
		}

		if attempt < opts.MaxRetries {
			logger.Info("Retrying connection", zap.Duration("delay", opts.RetryDelay))
			time.Sleep(opts.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", opts.MaxRetries, lastErr)
}

// openSQLite открывает файл SQLite; DSN может быть путем или file: URI
func openSQLite(dsn string, logger *zap.Logger) (*bun.DB, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite://")

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite допускает одного писателя
	sqldb.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := sqldb.ExecContext(ctx, pragma); err != nil {
			_ = sqldb.Close()
			return nil, fmt.Errorf("failed to configure sqlite: %w", err)
		}
	}

	logger.Info("Opened SQLite database with Bun ORM", zap.String("path", dsn))
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Migrate создает таблицы, если их еще нет
func (d *Database) Migrate(ctx context.Context) error {
	models := []any{
		(*model.ProcessingRun)(nil),
		(*model.ChatSettings)(nil),
	}
	for _, m := range models {
		if _, err := d.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	_, err := d.db.NewCreateIndex().
		Model((*model.ProcessingRun)(nil)).
		Index("processing_runs_chat_id_idx").
		Column("chat_id", "created_at").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	d.logger.Info("Database schema is up to date", zap.String("driver", string(d.driver)))
	return nil
}

// Ping проверяет соединение
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close закрывает соединение с базой данных
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB возвращает подключение к базе данных
func (d *Database) GetDB() *bun.DB {
	return d.db
}

// Driver возвращает тип базы
func (d *Database) Driver() Driver {
	return d.driver
}

// GetRunRepository возвращает репозиторий истории запусков
func (d *Database) GetRunRepository() model.ProcessingRunRepository {
	return repository.NewRunRepository(d.db, d.logger)
}

// GetChatSettingsRepository возвращает репозиторий настроек чатов
func (d *Database) GetChatSettingsRepository() model.ChatSettingsRepository {
	return repository.NewChatSettingsRepository(d.db, d.logger)
}
