// Package fonts проверяет доступность шрифтов перед изменением текста.
package fonts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrFontUnavailable шрифт не удалось загрузить
var ErrFontUnavailable = errors.New("font unavailable")

// FontName ссылка на шрифт текстового узла
type FontName struct {
	Family string `json:"family" yaml:"family"`
	Style  string `json:"style" yaml:"style"`
}

// IsZero сообщает, что ссылка на шрифт отсутствует
func (f FontName) IsZero() bool {
	return f.Family == "" && f.Style == ""
}

func (f FontName) String() string {
	if f.Style == "" {
		return f.Family
	}
	return f.Family + " " + f.Style
}

// key нормализованное имя для сравнения без учета регистра и разделителей
func (f FontName) key() string {
	return normalize(f.Family + f.Style)
}

func normalize(s string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s))
}

// Loader делает шрифт пригодным для записи текста
type Loader interface {
	Load(ctx context.Context, font FontName) error
}

// LoaderFunc позволяет использовать функцию как Loader
type LoaderFunc func(ctx context.Context, font FontName) error

// Load вызывает f(ctx, font)
func (f LoaderFunc) Load(ctx context.Context, font FontName) error {
	return f(ctx, font)
}

// unavailable оборачивает ErrFontUnavailable с именем шрифта
func unavailable(font FontName, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrFontUnavailable, font, reason)
}

// Catalog набор шрифтов, заявленных документом
type Catalog struct {
	mu    sync.RWMutex
	fonts map[string]struct{}
}

var _ Loader = (*Catalog)(nil)

// NewCatalog создает каталог из списка шрифтов
func NewCatalog(fonts ...FontName) *Catalog {
	c := &Catalog{fonts: make(map[string]struct{}, len(fonts))}
	for _, f := range fonts {
		c.Add(f)
	}
	return c
}

// Add добавляет шрифт в каталог
func (c *Catalog) Add(font FontName) {
	if font.IsZero() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fonts[font.key()] = struct{}{}
}

// Len возвращает число шрифтов
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fonts)
}

// Load проверяет наличие шрифта в каталоге
func (c *Catalog) Load(ctx context.Context, font FontName) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if font.IsZero() {
		return nil
	}

	c.mu.RLock()
	_, ok := c.fonts[font.key()]
	c.mu.RUnlock()

	if !ok {
		return unavailable(font, "not declared")
	}
	return nil
}

// Chain пробует загрузчики по порядку, первый успешный побеждает
type Chain []Loader

var _ Loader = Chain(nil)

// Load загружает шрифт первым подходящим загрузчиком
func (ch Chain) Load(ctx context.Context, font FontName) error {
	if font.IsZero() {
		return nil
	}
	if len(ch) == 0 {
		return unavailable(font, "no loaders configured")
	}

	var errs []error
	for _, l := range ch {
		if l == nil {
			continue
		}
		err := l.Load(ctx, font)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrFontUnavailable, font, ctxErr)
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return unavailable(font, "no loaders configured")
	}
	return errors.Join(errs...)
}
