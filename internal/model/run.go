// Package model содержит модели данных.
//
// Группа: ENTITIES - Основные сущности
// Содержит: ProcessingRun, RunStats, ProcessingRunRepository
package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Источники текста
const (
	SourceText = "text"
	SourceJSON = "json"
	SourceYAML = "yaml"
	SourceHTML = "html"
)

// Области обработки
const (
	ScopeSelection = "selection"
	ScopePage      = "page"
	ScopeFile      = "file"
)

// ProcessingRun представляет один запуск типографа
type ProcessingRun struct {
	bun.BaseModel `bun:"table:processing_runs"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	RunID           string    `bun:"run_id,unique,notnull" json:"run_id"`
	ChatID          int64     `bun:"chat_id,notnull" json:"chat_id"`
	Source          string    `bun:"source,notnull" json:"source"`
	Scope           string    `bun:"scope,notnull" json:"scope"`
	Nodes           int       `bun:"nodes,notnull" json:"nodes"`
	ChangedNodes    int       `bun:"changed_nodes,notnull" json:"changed_nodes"`
	CollapsedSpaces int       `bun:"collapsed_spaces,notnull" json:"collapsed_spaces"`
	NbspCount       int       `bun:"nbsp_count,notnull" json:"nbsp_count"`
	FailedNodes     int       `bun:"failed_nodes,notnull" json:"failed_nodes"`
	Error           string    `bun:"error" json:"error,omitempty"`
	DurationMs      int64     `bun:"duration_ms,notnull" json:"duration_ms"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Validate проверяет запуск перед сохранением
func (r *ProcessingRun) Validate() error {
	var errs ValidationErrors

	errs.add(ValidateRequired("run_id", r.RunID))
	errs.add(ValidateRunID("run_id", r.RunID))
	errs.add(ValidateEnum("source", r.Source, []string{SourceText, SourceJSON, SourceYAML, SourceHTML}))
	errs.add(ValidateEnum("scope", r.Scope, []string{ScopeSelection, ScopePage, ScopeFile}))
	errs.add(ValidateNonNegativeInt("nodes", r.Nodes))
	errs.add(ValidateNonNegativeInt("changed_nodes", r.ChangedNodes))
	errs.add(ValidateNonNegativeInt("collapsed_spaces", r.CollapsedSpaces))
	errs.add(ValidateNonNegativeInt("nbsp_count", r.NbspCount))
	errs.add(ValidateNonNegativeInt("failed_nodes", r.FailedNodes))

	if r.ChangedNodes+r.FailedNodes > r.Nodes {
		errs = append(errs, ValidationError{Field: "nodes", Message: "changed and failed nodes exceed total"})
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Succeeded сообщает, что запуск завершился без ошибки
func (r *ProcessingRun) Succeeded() bool {
	return r.Error == ""
}

// RunStats суммарная статистика запусков чата
type RunStats struct {
	Runs            int `bun:"runs" json:"runs"`
	Nodes           int `bun:"nodes" json:"nodes"`
	ChangedNodes    int `bun:"changed_nodes" json:"changed_nodes"`
	CollapsedSpaces int `bun:"collapsed_spaces" json:"collapsed_spaces"`
	NbspCount       int `bun:"nbsp_count" json:"nbsp_count"`
	FailedNodes     int `bun:"failed_nodes" json:"failed_nodes"`
	Failures        int `bun:"failures" json:"failures"`
}

// ProcessingRunRepository определяет интерфейс для работы с историей запусков
type ProcessingRunRepository interface {
	Create(ctx context.Context, run *ProcessingRun) error
	GetByRunID(ctx context.Context, runID string) (*ProcessingRun, error)
	ListByChat(ctx context.Context, chatID int64, limit int) ([]ProcessingRun, error)
	StatsByChat(ctx context.Context, chatID int64) (*RunStats, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
