package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"typobot/internal/model"
)

// ErrHistoryDisabled история не настроена
var ErrHistoryDisabled = errors.New("history is disabled")

// HistoryService сохраняет запуски и отдает статистику.
// Без репозитория запись молча пропускается.
type HistoryService struct {
	runs   model.ProcessingRunRepository
	logger *zap.Logger
}

// NewHistoryService создает сервис истории; runs может быть nil
func NewHistoryService(runs model.ProcessingRunRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		runs:   runs,
		logger: logger,
	}
}

// Enabled сообщает, подключена ли база истории
func (s *HistoryService) Enabled() bool {
	return s != nil && s.runs != nil
}

// Record сохраняет итог запуска
func (s *HistoryService) Record(ctx context.Context, chatID int64, source string, report *Report) error {
	if !s.Enabled() || report == nil {
		return nil
	}

	run := &model.ProcessingRun{
		RunID:           report.RunID,
		ChatID:          chatID,
		Source:          source,
		Scope:           report.Scope.String(),
		Nodes:           report.Nodes,
		ChangedNodes:    report.ChangedNodes,
		CollapsedSpaces: report.CollapsedSpaces,
		NbspCount:       report.NbspCount,
		FailedNodes:     len(report.Failures),
		DurationMs:      report.Duration.Milliseconds(),
	}
	if report.Err != nil {
		run.Error = report.Err.Error()
	}

	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.Error("Failed to record processing run",
			zap.String("run_id", report.RunID),
			zap.Error(err))
		return fmt.Errorf("failed to record processing run: %w", err)
	}
	return nil
}

// Stats возвращает суммарную статистику чата
func (s *HistoryService) Stats(ctx context.Context, chatID int64) (*model.RunStats, error) {
	if !s.Enabled() {
		return nil, ErrHistoryDisabled
	}
	return s.runs.StatsByChat(ctx, chatID)
}

// Recent возвращает последние запуски чата
func (s *HistoryService) Recent(ctx context.Context, chatID int64, limit int) ([]model.ProcessingRun, error) {
	if !s.Enabled() {
		return nil, ErrHistoryDisabled
	}
	return s.runs.ListByChat(ctx, chatID, limit)
}

// Cleanup удаляет запуски старше retention
func (s *HistoryService) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	if !s.Enabled() {
		return 0, ErrHistoryDisabled
	}
	if retention <= 0 {
		return 0, nil
	}

	deleted, err := s.runs.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}

	s.logger.Info("History cleanup completed",
		zap.Int64("deleted", deleted),
		zap.Duration("retention", retention))
	return deleted, nil
}
