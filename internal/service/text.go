package service

import (
	"context"

	"typobot/internal/scene"
	"typobot/internal/typograph"
)

// TextService обрабатывает отдельные строки, например сообщения чата
type TextService struct {
	processor *Processor
}

// NewTextService создает сервис поверх обработчика
func NewTextService(processor *Processor) *TextService {
	return &TextService{processor: processor}
}

// Typograph расставляет неразрывные пробелы в строке.
// Строка всегда одна область из одного узла, пустая возвращается без изменений.
func (s *TextService) Typograph(ctx context.Context, text string) (string, *Report, error) {
	file := scene.NewTextFile(text)
	report, err := s.processor.Process(ctx, file, scene.ScopeFile)
	return file.Text(), report, err
}

// Preview возвращает результат конвейера без записи и загрузки шрифтов
func (s *TextService) Preview(text string) typograph.Result {
	return s.processor.pipeline.Process(text)
}
