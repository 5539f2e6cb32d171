package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"typobot/internal/model"
	"typobot/internal/scene"
)

// SettingsService хранит область обработки для каждого чата.
// С репозиторием настройки переживают перезапуск, без него живут в памяти.
type SettingsService struct {
	repo         model.ChatSettingsRepository
	defaultScope scene.Scope
	logger       *zap.Logger

	mu     sync.RWMutex
	scopes map[int64]scene.Scope
}

// NewSettingsService создает сервис настроек; repo может быть nil
func NewSettingsService(repo model.ChatSettingsRepository, defaultScope scene.Scope, logger *zap.Logger) *SettingsService {
	if defaultScope == "" {
		defaultScope = scene.ScopePage
	}
	return &SettingsService{
		repo:         repo,
		defaultScope: defaultScope,
		logger:       logger,
		scopes:       make(map[int64]scene.Scope),
	}
}

// Scope возвращает область чата или область по умолчанию
func (s *SettingsService) Scope(ctx context.Context, chatID int64) scene.Scope {
	s.mu.RLock()
	scope, ok := s.scopes[chatID]
	s.mu.RUnlock()
	if ok {
		return scope
	}

	if s.repo == nil {
		return s.defaultScope
	}

	settings, err := s.repo.Get(ctx, chatID)
	if err != nil {
		s.logger.Warn("Failed to load chat settings", zap.Int64("chat_id", chatID), zap.Error(err))
		return s.defaultScope
	}

	scope = s.defaultScope
	if settings != nil {
		if parsed, err := scene.ParseScope(settings.Scope); err == nil {
			scope = parsed
		}
	}

	s.mu.Lock()
	s.scopes[chatID] = scope
	s.mu.Unlock()
	return scope
}

// SetScope запоминает область чата
func (s *SettingsService) SetScope(ctx context.Context, chatID int64, scope scene.Scope) error {
	if _, err := scene.ParseScope(scope.String()); err != nil {
		return err
	}

	if s.repo != nil {
		err := s.repo.Save(ctx, &model.ChatSettings{ChatID: chatID, Scope: scope.String()})
		if err != nil {
			return fmt.Errorf("failed to save scope: %w", err)
		}
	}

	s.mu.Lock()
	s.scopes[chatID] = scope
	s.mu.Unlock()

	s.logger.Info("Chat scope updated", zap.Int64("chat_id", chatID), zap.String("scope", scope.String()))
	return nil
}

// DefaultScope возвращает область по умолчанию
func (s *SettingsService) DefaultScope() scene.Scope {
	return s.defaultScope
}
