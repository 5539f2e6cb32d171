package scene

import (
	"fmt"

	"typobot/internal/fonts"
)

// Типы узлов макета
const (
	NodeTypePage  = "PAGE"
	NodeTypeText  = "TEXT"
	NodeTypeFrame = "FRAME"
	NodeTypeGroup = "GROUP"
)

// Node узел макета. Дочерние узлы есть у контейнеров, текст у TEXT.
type Node struct {
	ID         string          `json:"id" yaml:"id"`
	Name       string          `json:"name,omitempty" yaml:"name,omitempty"`
	Type       string          `json:"type" yaml:"type"`
	Characters string          `json:"characters,omitempty" yaml:"characters,omitempty"`
	FontName   *fonts.FontName `json:"fontName,omitempty" yaml:"fontName,omitempty"`
	Children   []*Node         `json:"children,omitempty" yaml:"children,omitempty"`
}

// Document макет: страницы, текущая страница, выделение и шрифты файла
type Document struct {
	Name        string           `json:"name,omitempty" yaml:"name,omitempty"`
	CurrentPage string           `json:"currentPage,omitempty" yaml:"currentPage,omitempty"`
	Selection   []string         `json:"selection,omitempty" yaml:"selection,omitempty"`
	Fonts       []fonts.FontName `json:"fonts,omitempty" yaml:"fonts,omitempty"`
	Pages       []*Node          `json:"pages" yaml:"pages"`
}

var _ Source = (*Document)(nil)

// Current возвращает текущую страницу; без явного указания это первая страница
func (d *Document) Current() (*Node, error) {
	for _, p := range d.Pages {
		if p == nil || p.Type != NodeTypePage {
			continue
		}
		if d.CurrentPage == "" || p.ID == d.CurrentPage {
			return p, nil
		}
	}
	if d.CurrentPage == "" {
		return nil, fmt.Errorf("%w: document has no pages", ErrPageNotFound)
	}
	return nil, fmt.Errorf("%w: %s", ErrPageNotFound, d.CurrentPage)
}

// TextNodes собирает текстовые узлы области
func (d *Document) TextNodes(scope Scope) ([]TextNode, error) {
	var roots []*Node

	switch scope {
	case ScopeSelection:
		if len(d.Selection) == 0 {
			return []TextNode{}, nil
		}
		page, err := d.Current()
		if err != nil {
			return nil, err
		}
		byID := make(map[string]*Node)
		indexNodes(page.Children, byID)
		for _, id := range d.Selection {
			if n, ok := byID[id]; ok {
				roots = append(roots, n)
			}
		}
	case ScopePage:
		page, err := d.Current()
		if err != nil {
			return nil, err
		}
		roots = page.Children
	case ScopeFile:
		for _, p := range d.Pages {
			if p != nil && p.Type == NodeTypePage {
				roots = append(roots, p.Children...)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	nodes := []TextNode{}
	seen := make(map[*Node]struct{})
	for _, n := range roots {
		nodes = collect(n, nodes, seen)
	}
	return nodes, nil
}

// collect обходит дерево и собирает узлы TEXT, каждый не более одного раза
func collect(n *Node, acc []TextNode, seen map[*Node]struct{}) []TextNode {
	if n == nil {
		return acc
	}
	if _, ok := seen[n]; ok {
		return acc
	}
	seen[n] = struct{}{}

	if n.Type == NodeTypeText {
		return append(acc, &docTextNode{node: n})
	}
	for _, child := range n.Children {
		acc = collect(child, acc, seen)
	}
	return acc
}

func indexNodes(nodes []*Node, byID map[string]*Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		byID[n.ID] = n
		indexNodes(n.Children, byID)
	}
}

// docTextNode адаптер узла макета к TextNode
type docTextNode struct {
	node *Node
}

func (t *docTextNode) ID() string         { return t.node.ID }
func (t *docTextNode) Characters() string { return t.node.Characters }

func (t *docTextNode) SetCharacters(text string) error {
	t.node.Characters = text
	return nil
}

func (t *docTextNode) FontName() fonts.FontName {
	if t.node.FontName == nil {
		return fonts.FontName{}
	}
	return *t.node.FontName
}
