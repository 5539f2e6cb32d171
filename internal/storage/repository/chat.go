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

// ChatSettingsRepository реализует интерфейс model.ChatSettingsRepository
type ChatSettingsRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewChatSettingsRepository создает новый репозиторий настроек чатов
func NewChatSettingsRepository(db *bun.DB, logger *zap.Logger) model.ChatSettingsRepository {
	return &ChatSettingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get возвращает настройки чата; nil, если их нет
func (r *ChatSettingsRepository) Get(ctx context.Context, chatID int64) (*model.ChatSettings, error) {
	settings := new(model.ChatSettings)
	err := r.db.NewSelect().Model(settings).Where("chat_id = ?", chatID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat settings: %w", err)
	}
	return settings, nil
}

// Save создает или обновляет настройки чата
func (r *ChatSettingsRepository) Save(ctx context.Context, settings *model.ChatSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid chat settings: %w", err)
	}
	settings.UpdatedAt = time.Now().UTC()

	_, err := r.db.NewInsert().
		Model(settings).
		On("CONFLICT (chat_id) DO UPDATE").
		Set("scope = EXCLUDED.scope").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save chat settings: %w", err)
	}
	return nil
}
