package service

import (
	"errors"
	"fmt"

	"typobot/internal/fonts"
)

// Ошибки обработки
var (
	// ErrNoInput в выбранной области нет текстовых узлов
	ErrNoInput = errors.New("no text nodes found in scope")
	// ErrResourceUnavailable узел нельзя изменить: шрифт не загрузился или запись не удалась
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrUnexpected непредвиденный сбой, включая панику
	ErrUnexpected = errors.New("unexpected failure")
)

// Op шаг обработки узла, на котором он не прошел
type Op string

const (
	OpLoadFont Op = "load_font"
	OpWrite    Op = "write"
	OpProcess  Op = "process"
)

// NodeError ошибка обработки одного текстового узла
type NodeError struct {
	NodeID string
	Font   fonts.FontName
	Op     Op
	Err    error
}

func (e *NodeError) Error() string {
	if e.Font.IsZero() {
		return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
	}
	return fmt.Sprintf("node %s (%s): %v", e.NodeID, e.Font, e.Err)
}

// Unwrap отдает исходную причину; отказ шрифта или записи
// дополнительно считается ErrResourceUnavailable
func (e *NodeError) Unwrap() []error {
	if e.Op == OpProcess {
		return []error{e.Err}
	}
	return []error{ErrResourceUnavailable, e.Err}
}
