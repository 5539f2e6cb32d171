package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"typobot/internal/fonts"
)

// Format формат файла сцены
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// ParseFormat разбирает имя формата
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html", "htm":
		return FormatHTML, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath определяет формат по расширению файла
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, filepath.Base(path))
	}
	return ParseFormat(ext)
}

// DocumentFile макет вместе с форматом, в котором он был прочитан
type DocumentFile struct {
	*Document
	format Format
}

var _ File = (*DocumentFile)(nil)

// Format возвращает исходный формат
func (f *DocumentFile) Format() Format { return f.format }

// Catalog возвращает каталог объявленных в макете шрифтов
func (f *DocumentFile) Catalog() *fonts.Catalog {
	return fonts.NewCatalog(f.Document.Fonts...)
}

// Encode сериализует макет в исходный формат
func (f *DocumentFile) Encode() ([]byte, error) {
	var buf bytes.Buffer

	switch f.format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f.Document); err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f.Document); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.format)
	}

	return buf.Bytes(), nil
}

// Decode читает файл сцены заданного формата.
// selector используется только для HTML.
func Decode(r io.Reader, format Format, selector string) (File, error) {
	switch format {
	case FormatJSON, FormatYAML:
		doc, err := decodeDocument(r, format)
		if err != nil {
			return nil, err
		}
		return &DocumentFile{Document: doc, format: format}, nil
	case FormatHTML:
		return NewHTMLDocument(r, selector)
	case FormatText:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read text: %w", err)
		}
		return NewTextFile(string(data)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Open открывает файл сцены; пустой format определяется по расширению
func Open(path string, format Format, selector string) (File, error) {
	if format == "" {
		var err error
		if format, err = FormatFromPath(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene: %w", err)
	}
	defer f.Close()

	return Decode(f, format, selector)
}

func decodeDocument(r io.Reader, format Format) (*Document, error) {
	doc := &Document{}

	var err error
	if format == FormatJSON {
		err = json.NewDecoder(r).Decode(doc)
	} else {
		err = yaml.NewDecoder(r).Decode(doc)
	}
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty %s document", ErrMalformedDocument, format)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrMalformedDocument)
	}
	return doc, nil
}

// TextFile простой текст как сцена из одного узла
type TextFile struct {
	text string
}

var _ File = (*TextFile)(nil)

// NewTextFile создает текстовую сцену
func NewTextFile(text string) *TextFile {
	return &TextFile{text: text}
}

// TextNodes возвращает единственный узел в любой области, даже для пустого текста
func (t *TextFile) TextNodes(scope Scope) ([]TextNode, error) {
	switch scope {
	case ScopeSelection, ScopePage, ScopeFile:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return []TextNode{(*plainTextNode)(t)}, nil
}

// Format возвращает FormatText
func (t *TextFile) Format() Format { return FormatText }

// Encode возвращает текст как есть
func (t *TextFile) Encode() ([]byte, error) { return []byte(t.text), nil }

// Text возвращает текущий текст
func (t *TextFile) Text() string { return t.text }

type plainTextNode TextFile

func (n *plainTextNode) ID() string                   { return "text" }
func (n *plainTextNode) Characters() string           { return n.text }
func (n *plainTextNode) FontName() fonts.FontName     { return fonts.FontName{} }
func (n *plainTextNode) SetCharacters(s string) error { n.text = s; return nil }
