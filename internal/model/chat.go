package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// ChatSettings настройки чата
type ChatSettings struct {
	bun.BaseModel `bun:"table:chat_settings"`

	ChatID    int64     `bun:"chat_id,pk" json:"chat_id"`
	Scope     string    `bun:"scope,notnull" json:"scope"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// Validate проверяет настройки
func (s *ChatSettings) Validate() error {
	return ValidateEnum("scope", s.Scope, []string{ScopeSelection, ScopePage, ScopeFile})
}

// ChatSettingsRepository определяет интерфейс для работы с настройками чатов
type ChatSettingsRepository interface {
	Get(ctx context.Context, chatID int64) (*ChatSettings, error)
	Save(ctx context.Context, settings *ChatSettings) error
}
