package fonts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font/sfnt"
)

// Поддерживаемые расширения файлов шрифтов
var fontExtensions = map[string]struct{}{
	".ttf": {},
	".otf": {},
	".ttc": {},
	".otc": {},
}

// DirLoader ищет шрифты в каталоге по имени файла "<Family>-<Style>.<ext>"
type DirLoader struct {
	dir    string
	logger *zap.Logger

	mu     sync.RWMutex
	index  map[string]string
	loaded map[string]struct{}
}

var _ Loader = (*DirLoader)(nil)

// NewDirLoader создает загрузчик и индексирует каталог
func NewDirLoader(dir string, logger *zap.Logger) (*DirLoader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &DirLoader{
		dir:    dir,
		logger: logger,
		loaded: make(map[string]struct{}),
	}
	if err := l.Refresh(); err != nil {
		return nil, err
	}
	return l, nil
}

// Refresh перечитывает содержимое каталога
func (l *DirLoader) Refresh() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("failed to read fonts directory: %w", err)
	}

	index := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if _, ok := fontExtensions[ext]; !ok {
			continue
		}
		index[normalize(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))] = filepath.Join(l.dir, e.Name())
	}

	l.mu.Lock()
	l.index = index
	l.loaded = make(map[string]struct{})
	l.mu.Unlock()

	l.logger.Debug("Fonts directory indexed",
		zap.String("dir", l.dir),
		zap.Int("fonts", len(index)))
	return nil
}

// Load находит файл шрифта и разбирает его таблицы.
// Успешные загрузки кэшируются.
func (l *DirLoader) Load(ctx context.Context, font FontName) error {
	if font.IsZero() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := font.key()

	l.mu.RLock()
	_, cached := l.loaded[key]
	path, found := l.index[key]
	l.mu.RUnlock()

	if cached {
		return nil
	}
	if !found {
		return unavailable(font, "not found in "+l.dir)
	}

	done := make(chan error, 1)
	go func() {
		done <- checkFontFile(path)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", ErrFontUnavailable, font, ctx.Err())
	case err := <-done:
		if err != nil {
			l.logger.Warn("Font file rejected",
				zap.String("font", font.String()),
				zap.String("path", path),
				zap.Error(err))
			return unavailable(font, err.Error())
		}
	}

	l.mu.Lock()
	l.loaded[key] = struct{}{}
	l.mu.Unlock()

	l.logger.Debug("Font loaded", zap.String("font", font.String()), zap.String("path", path))
	return nil
}

// checkFontFile разбирает файл как TrueType/OpenType или коллекцию
func checkFontFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c, err := sfnt.ParseCollection(data)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	if c.NumFonts() == 0 {
		return fmt.Errorf("parse font: empty collection")
	}
	for i := range c.NumFonts() {
		if _, err := c.Font(i); err != nil {
			return fmt.Errorf("parse font %d: %w", i, err)
		}
	}
	return nil
}
