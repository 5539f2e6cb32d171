// Package scene перечисляет текстовые узлы документа в заданной области.
package scene

import (
	"errors"
	"fmt"
	"strings"

	"typobot/internal/fonts"
)

// Ошибки пакета
var (
	ErrInvalidScope      = errors.New("invalid scope")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrInvalidSelector   = errors.New("invalid selector")
	ErrPageNotFound      = errors.New("page not found")
	ErrMalformedDocument = errors.New("malformed document")
)

// Scope область обработки
type Scope string

const (
	ScopeSelection Scope = "selection"
	ScopePage      Scope = "page"
	ScopeFile      Scope = "file"
)

// Scopes возвращает все области в порядке расширения
func Scopes() []Scope {
	return []Scope{ScopeSelection, ScopePage, ScopeFile}
}

var scopeAliases = map[string]Scope{
	"selection": ScopeSelection,
	"выделение": ScopeSelection,
	"page":      ScopePage,
	"страница":  ScopePage,
	"file":      ScopeFile,
	"файл":      ScopeFile,
}

// ParseScope разбирает имя области, включая русские синонимы
func ParseScope(s string) (Scope, error) {
	scope, ok := scopeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
	return scope, nil
}

func (s Scope) String() string {
	return string(s)
}

// TextNode текстовый узел, содержимое которого можно переписать
type TextNode interface {
	ID() string
	Characters() string
	SetCharacters(text string) error
	FontName() fonts.FontName
}

// Source перечисляет листовые текстовые узлы области в порядке документа.
// Пустое выделение дает пустой список без ошибки.
type Source interface {
	TextNodes(scope Scope) ([]TextNode, error)
}

// File источник, который можно сериализовать обратно после изменений
type File interface {
	Source
	Format() Format
	Encode() ([]byte, error)
}
