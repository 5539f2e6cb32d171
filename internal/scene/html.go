package scene

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"typobot/internal/fonts"
)

// Элементы, текст которых не трогаем
var skippedElements = map[atom.Atom]struct{}{
	atom.Script:   {},
	atom.Style:    {},
	atom.Pre:      {},
	atom.Code:     {},
	atom.Textarea: {},
}

// HTMLDocument HTML-страница как источник текстовых узлов.
// Выделение задается CSS-селектором, страница это <body>, файл весь документ.
type HTMLDocument struct {
	doc      *goquery.Document
	selector string
}

var _ File = (*HTMLDocument)(nil)

// NewHTMLDocument разбирает HTML и проверяет селектор выделения
func NewHTMLDocument(r io.Reader, selector string) (*HTMLDocument, error) {
	selector = strings.TrimSpace(selector)
	if selector != "" {
		if _, err := cascadia.Compile(selector); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, selector, err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	return &HTMLDocument{doc: doc, selector: selector}, nil
}

// Format возвращает FormatHTML
func (h *HTMLDocument) Format() Format { return FormatHTML }

// TextNodes собирает непустые текстовые узлы области
func (h *HTMLDocument) TextNodes(scope Scope) ([]TextNode, error) {
	var roots *goquery.Selection

	switch scope {
	case ScopeSelection:
		if h.selector == "" {
			return []TextNode{}, nil
		}
		roots = h.doc.Find(h.selector)
	case ScopePage:
		roots = h.doc.Find("body")
	case ScopeFile:
		roots = h.doc.Selection
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	seen := make(map[*html.Node]struct{})
	nodes := []TextNode{}
	roots.Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			nodes = collectHTML(n, nodes, seen)
		}
	})

	for i, n := range nodes {
		n.(*htmlTextNode).index = i
	}
	return nodes, nil
}

func collectHTML(n *html.Node, acc []TextNode, seen map[*html.Node]struct{}) []TextNode {
	if _, ok := seen[n]; ok {
		return acc
	}
	seen[n] = struct{}{}

	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			acc = append(acc, &htmlTextNode{node: n})
		}
		return acc
	case html.ElementNode:
		if _, skip := skippedElements[n.DataAtom]; skip {
			return acc
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		acc = collectHTML(c, acc, seen)
	}
	return acc
}

// Encode сериализует документ обратно в HTML
func (h *HTMLDocument) Encode() ([]byte, error) {
	var buf bytes.Buffer
	for _, n := range h.doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return nil, fmt.Errorf("failed to render html: %w", err)
		}
	}
	return buf.Bytes(), nil
}

type htmlTextNode struct {
	node  *html.Node
	index int
}

func (t *htmlTextNode) ID() string {
	if p := t.node.Parent; p != nil && p.Type == html.ElementNode {
		return fmt.Sprintf("%s#text%d", p.Data, t.index)
	}
	return fmt.Sprintf("#text%d", t.index)
}

func (t *htmlTextNode) Characters() string { return t.node.Data }

func (t *htmlTextNode) SetCharacters(text string) error {
	t.node.Data = text
	return nil
}

// FontName у HTML-узлов ссылки на шрифт нет
func (t *htmlTextNode) FontName() fonts.FontName { return fonts.FontName{} }
