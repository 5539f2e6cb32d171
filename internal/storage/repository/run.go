// Package repository содержит реализации репозиториев для работы с базой данных.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"typobot/internal/model"
)

// RunRepository реализует интерфейс model.ProcessingRunRepository
type RunRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewRunRepository создает новый репозиторий истории запусков
func NewRunRepository(db *bun.DB, logger *zap.Logger) model.ProcessingRunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// Create сохраняет запуск после валидации
func (r *RunRepository) Create(ctx context.Context, run *model.ProcessingRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid processing run: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.NewInsert().Model(run).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create processing run: %w", err)
	}

	r.logger.Debug("Processing run saved",
		zap.String("run_id", run.RunID),
		zap.Int64("chat_id", run.ChatID))
	return nil
}

// GetByRunID получает запуск по ULID; отсутствие записи не ошибка
func (r *RunRepository) GetByRunID(ctx context.Context, runID string) (*model.ProcessingRun, error) {
	var run model.ProcessingRun
	err := r.db.NewSelect().Model(&run).Where("run_id = ?", runID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get processing run: %w", err)
	}
	return &run, nil
}

// ListByChat возвращает последние запуски чата, новые первыми
func (r *RunRepository) ListByChat(ctx context.Context, chatID int64, limit int) ([]model.ProcessingRun, error) {
	var runs []model.ProcessingRun
	q := r.db.NewSelect().
		Model(&runs).
		Where("chat_id = ?", chatID).
		Order("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list processing runs: %w", err)
	}
	return runs, nil
}

// StatsByChat считает суммарную статистику чата
func (r *RunRepository) StatsByChat(ctx context.Context, chatID int64) (*model.RunStats, error) {
	var stats model.RunStats
	err := r.db.NewSelect().
		Model((*model.ProcessingRun)(nil)).
		ColumnExpr("COUNT(*) AS runs").
		ColumnExpr("CAST(COALESCE(SUM(nodes), 0) AS BIGINT) AS nodes").
		ColumnExpr("CAST(COALESCE(SUM(changed_nodes), 0) AS BIGINT) AS changed_nodes").
		ColumnExpr("CAST(COALESCE(SUM(collapsed_spaces), 0) AS BIGINT) AS collapsed_spaces").
		ColumnExpr("CAST(COALESCE(SUM(nbsp_count), 0) AS BIGINT) AS nbsp_count").
		ColumnExpr("CAST(COALESCE(SUM(failed_nodes), 0) AS BIGINT) AS failed_nodes").
		ColumnExpr("CAST(COALESCE(SUM(CASE WHEN error <> '' THEN 1 ELSE 0 END), 0) AS BIGINT) AS failures").
		Where("chat_id = ?", chatID).
		Scan(ctx, &stats)
	if err != nil {
		return nil, fmt.Errorf("failed to get processing stats: %w", err)
	}
	return &stats, nil
}

// DeleteOlderThan удаляет запуски, созданные раньше before
func (r *RunRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*model.ProcessingRun)(nil)).
		Where("created_at < ?", before.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old processing runs: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted processing runs: %w", err)
	}
	return deleted, nil
}
