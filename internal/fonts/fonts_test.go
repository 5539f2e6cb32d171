package fonts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
)

func writeFont(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

// corrupt возвращает данные с верной сигнатурой и мусором вместо таблиц
func corrupt(magic string) []byte {
	return append([]byte(magic), make([]byte, 64)...)
}

func TestCatalog_Load(t *testing.T) {
	c := NewCatalog(FontName{Family: "Inter", Style: "Regular"})
	ctx := context.Background()

	assert.NoError(t, c.Load(ctx, FontName{Family: "inter", Style: "regular"}))
	assert.NoError(t, c.Load(ctx, FontName{}))

	err := c.Load(ctx, FontName{Family: "Roboto", Style: "Bold"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFontUnavailable))
	assert.Contains(t, err.Error(), "Roboto Bold")
}

func TestCatalog_CanceledContext(t *testing.T) {
	c := NewCatalog(FontName{Family: "Inter", Style: "Regular"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Load(ctx, FontName{Family: "Inter", Style: "Regular"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "Inter-Regular.ttf", goregular.TTF)
	writeFont(t, dir, "PT Serif-Bold.otf", goregular.TTF)
	writeFont(t, dir, "Broken-Regular.ttf", []byte("nope"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	l, err := NewDirLoader(dir, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, l.Load(ctx, FontName{Family: "Inter", Style: "Regular"}))
	assert.NoError(t, l.Load(ctx, FontName{Family: "PT Serif", Style: "Bold"}))
	// повторная загрузка берется из кэша
	assert.NoError(t, l.Load(ctx, FontName{Family: "Inter", Style: "Regular"}))

	err = l.Load(ctx, FontName{Family: "Broken", Style: "Regular"})
	assert.ErrorIs(t, err, ErrFontUnavailable)

	err = l.Load(ctx, FontName{Family: "Missing", Style: "Regular"})
	assert.ErrorIs(t, err, ErrFontUnavailable)
}

func TestDirLoader_RejectsDamagedFiles(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
	}{
		{name: "truetype signature only", file: "Inter-Regular.ttf", data: corrupt("\x00\x01\x00\x00")},
		{name: "apple truetype signature only", file: "Inter-Regular.ttf", data: corrupt("true")},
		{name: "opentype signature only", file: "Inter-Regular.otf", data: corrupt("OTTO")},
		{name: "collection signature only", file: "Inter-Regular.ttc", data: corrupt("ttcf")},
		{name: "truncated", file: "Inter-Regular.ttf", data: goregular.TTF[:64]},
		{name: "empty", file: "Inter-Regular.ttf", data: []byte{}},
		{name: "woff renamed", file: "Inter-Regular.ttf", data: corrupt("wOF2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFont(t, dir, tt.file, tt.data)

			l, err := NewDirLoader(dir, zap.NewNop())
			require.NoError(t, err)

			err = l.Load(context.Background(), FontName{Family: "Inter", Style: "Regular"})
			assert.ErrorIs(t, err, ErrFontUnavailable)
		})
	}
}

func TestDirLoader_SkipsWebFonts(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "Inter-Regular.woff2", goregular.TTF)

	l, err := NewDirLoader(dir, nil)
	require.NoError(t, err)

	err = l.Load(context.Background(), FontName{Family: "Inter", Style: "Regular"})
	assert.ErrorIs(t, err, ErrFontUnavailable)
	assert.Contains(t, err.Error(), "not found")
}

func TestDirLoader_MissingDir(t *testing.T) {
	_, err := NewDirLoader(filepath.Join(t.TempDir(), "absent"), nil)
	assert.Error(t, err)
}

func TestDirLoader_Refresh(t *testing.T) {
	dir := t.TempDir()
	l, err := NewDirLoader(dir, nil)
	require.NoError(t, err)

	font := FontName{Family: "Inter", Style: "Medium"}
	assert.ErrorIs(t, l.Load(context.Background(), font), ErrFontUnavailable)

	writeFont(t, dir, "inter_medium.ttf", goregular.TTF)
	require.NoError(t, l.Refresh())
	assert.NoError(t, l.Load(context.Background(), font))
}

func TestChain_Load(t *testing.T) {
	ctx := context.Background()
	font := FontName{Family: "Inter", Style: "Regular"}

	chain := Chain{NewCatalog(), NewCatalog(font)}
	assert.NoError(t, chain.Load(ctx, font))

	err := Chain{NewCatalog(), NewCatalog()}.Load(ctx, font)
	assert.ErrorIs(t, err, ErrFontUnavailable)

	assert.ErrorIs(t, Chain{}.Load(ctx, font), ErrFontUnavailable)
	assert.ErrorIs(t, Chain{nil}.Load(ctx, font), ErrFontUnavailable)
	assert.NoError(t, Chain{}.Load(ctx, FontName{}))
}

func TestFontName_String(t *testing.T) {
	assert.Equal(t, "Inter Regular", FontName{Family: "Inter", Style: "Regular"}.String())
	assert.Equal(t, "Inter", FontName{Family: "Inter"}.String())
	assert.True(t, FontName{}.IsZero())
}
