package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"typobot/internal/fonts"
	"typobot/internal/scene"
	"typobot/internal/typograph"
)

// fakeNode текстовый узел, записывающий порядок операций
type fakeNode struct {
	id    string
	text  string
	font  fonts.FontName
	log   *eventLog
	panic bool
}

func (n *fakeNode) ID() string               { return n.id }
func (n *fakeNode) FontName() fonts.FontName { return n.font }

func (n *fakeNode) Characters() string {
	if n.panic {
		panic("broken node")
	}
	return n.text
}

func (n *fakeNode) SetCharacters(text string) error {
	n.log.add("write:" + n.id)
	n.text = text
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

type fakeSource struct {
	nodes []scene.TextNode
	err   error
}

func (s *fakeSource) TextNodes(scene.Scope) ([]scene.TextNode, error) {
	return s.nodes, s.err
}

// recordingLoader пишет в лог и отказывает в шрифтах из списка
type recordingLoader struct {
	log     *eventLog
	missing map[string]bool
}

func (l *recordingLoader) Load(_ context.Context, font fonts.FontName) error {
	l.log.add("load:" + font.Family)
	if l.missing[font.Family] {
		return fmt.Errorf("%w: %s", fonts.ErrFontUnavailable, font)
	}
	return nil
}

func TestProcessor_Process(t *testing.T) {
	log := &eventLog{}
	nodes := []*fakeNode{
		{id: "a", text: "Я был в доме", font: fonts.FontName{Family: "Inter"}, log: log},
		{id: "b", text: "Hello world", font: fonts.FontName{Family: "Inter"}, log: log},
		{id: "c", text: "г.  Москва", font: fonts.FontName{Family: "Inter"}, log: log},
	}
	src := &fakeSource{}
	for _, n := range nodes {
		src.nodes = append(src.nodes, n)
	}

	p := NewProcessor(&recordingLoader{log: log}, ProcessorConfig{}, zap.NewNop())
	report, err := p.Process(context.Background(), src, scene.ScopePage)
	require.NoError(t, err)

	assert.True(t, report.Success())
	assert.Len(t, report.RunID, 26)
	assert.Equal(t, scene.ScopePage, report.Scope)
	assert.Equal(t, 3, report.Nodes)
	assert.Equal(t, 2, report.ChangedNodes)
	assert.Equal(t, 1, report.CollapsedSpaces)
	assert.Equal(t, 3, report.NbspCount)
	assert.Empty(t, report.Failures)

	assert.Equal(t, "Я\u00a0был в\u00a0доме", nodes[0].text)
	assert.Equal(t, "Hello world", nodes[1].text)
	assert.Equal(t, "г..\u00a0Москва", nodes[2].text)

	// шрифт загружается до записи, неизмененные узлы не трогаются
	assert.Equal(t, []string{"load:Inter", "write:a", "load:Inter", "write:c"}, log.events)
}

func TestProcessor_FontFailureIsolated(t *testing.T) {
	log := &eventLog{}
	good := &fakeNode{id: "good", text: "в доме", font: fonts.FontName{Family: "Inter"}, log: log}
	bad := &fakeNode{id: "bad", text: "на столе", font: fonts.FontName{Family: "Missing", Style: "Bold"}, log: log}
	src := &fakeSource{nodes: []scene.TextNode{bad, good}}

	loader := &recordingLoader{log: log, missing: map[string]bool{"Missing": true}}
	p := NewProcessor(loader, ProcessorConfig{Workers: 2}, zap.NewNop())

	report, err := p.Process(context.Background(), src, scene.ScopeFile)
	require.NoError(t, err)

	assert.True(t, report.Success())
	assert.Equal(t, 1, report.ChangedNodes)
	assert.Equal(t, 1, report.NbspCount)
	require.Len(t, report.Failures, 1)

	failure := report.Failures[0]
	assert.Equal(t, "bad", failure.NodeID)
	assert.ErrorIs(t, failure, ErrResourceUnavailable)
	assert.ErrorIs(t, failure, fonts.ErrFontUnavailable)
	assert.Contains(t, failure.Error(), "Missing Bold")

	assert.Equal(t, "на столе", bad.text)
	assert.Equal(t, "в\u00a0доме", good.text)
}

func TestProcessor_NoInput(t *testing.T) {
	p := NewProcessor(nil, ProcessorConfig{}, zap.NewNop())

	report, err := p.Process(context.Background(), &fakeSource{}, scene.ScopeSelection)
	assert.ErrorIs(t, err, ErrNoInput)
	assert.True(t, report.NoInput)
	assert.False(t, report.Success())
}

func TestProcessor_SourceError(t *testing.T) {
	p := NewProcessor(nil, ProcessorConfig{}, zap.NewNop())

	report, err := p.Process(context.Background(), &fakeSource{err: scene.ErrPageNotFound}, scene.ScopePage)
	assert.ErrorIs(t, err, scene.ErrPageNotFound)
	assert.False(t, report.Success())
	assert.False(t, report.NoInput)
}

func TestProcessor_RecoversPanic(t *testing.T) {
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			log := &eventLog{}
			after := &fakeNode{id: "after", text: "на столе", log: log}
			src := &fakeSource{nodes: []scene.TextNode{
				&fakeNode{id: "ok", text: "в доме", log: log},
				&fakeNode{id: "boom", panic: true, log: log},
				after,
			}}
			p := NewProcessor(nil, ProcessorConfig{Workers: workers}, zap.NewNop())

			report, err := p.Process(context.Background(), src, scene.ScopePage)
			assert.ErrorIs(t, err, ErrUnexpected)
			assert.ErrorIs(t, report.Err, ErrUnexpected)
			assert.False(t, report.Success())

			// узлы после упавшего обработаны и учтены
			assert.Equal(t, "на\u00a0столе", after.text)
			assert.Equal(t, 2, report.ChangedNodes)
			assert.Equal(t, 2, report.NbspCount)

			require.Len(t, report.Failures, 1)
			assert.Equal(t, "boom", report.Failures[0].NodeID)
			assert.Equal(t, OpProcess, report.Failures[0].Op)
			assert.False(t, errors.Is(report.Failures[0], ErrResourceUnavailable))
		})
	}
}

func TestProcessor_WriteFailureTagged(t *testing.T) {
	src := &fakeSource{nodes: []scene.TextNode{&readOnlyNode{text: "в доме"}}}
	p := NewProcessor(nil, ProcessorConfig{}, zap.NewNop())

	report, err := p.Process(context.Background(), src, scene.ScopePage)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, OpWrite, report.Failures[0].Op)
	assert.ErrorIs(t, report.Failures[0], ErrResourceUnavailable)
	assert.Equal(t, 0, report.ChangedNodes)
}

// readOnlyNode узел, запись в который всегда отклоняется
type readOnlyNode struct {
	text string
}

func (n *readOnlyNode) ID() string                 { return "ro" }
func (n *readOnlyNode) Characters() string         { return n.text }
func (n *readOnlyNode) FontName() fonts.FontName   { return fonts.FontName{} }
func (n *readOnlyNode) SetCharacters(string) error { return errors.New("node is locked") }

func TestProcessor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{nodes: []scene.TextNode{&fakeNode{id: "a", text: "в доме", log: &eventLog{}}}}
	p := NewProcessor(nil, ProcessorConfig{}, zap.NewNop())

	_, err := p.Process(ctx, src, scene.ScopePage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_ManyWorkersKeepOrder(t *testing.T) {
	var nodes []scene.TextNode
	var fakes []*fakeNode
	var want []string
	for i := 0; i < 50; i++ {
		text := strings.Repeat("в доме ", i%3+1)
		n := &fakeNode{id: fmt.Sprintf("n%d", i), text: text, log: &eventLog{}}
		nodes = append(nodes, n)
		fakes = append(fakes, n)
		want = append(want, typograph.Process(text).Text)
	}

	p := NewProcessor(nil, ProcessorConfig{Workers: 8}, zap.NewNop())
	report, err := p.Process(context.Background(), &fakeSource{nodes: nodes}, scene.ScopeFile)
	require.NoError(t, err)
	assert.Equal(t, 50, report.ChangedNodes)

	for i, n := range fakes {
		assert.Equal(t, want[i], n.text, n.id)
	}
}

func TestProcessor_DocumentCatalog(t *testing.T) {
	f, err := scene.Decode(strings.NewReader(`{
		"fonts": [{"family": "Inter", "style": "Regular"}],
		"pages": [{"id": "0:1", "type": "PAGE", "children": [
			{"id": "1", "type": "TEXT", "characters": "в доме", "fontName": {"family": "Inter", "style": "Regular"}},
			{"id": "2", "type": "TEXT", "characters": "на столе", "fontName": {"family": "Roboto", "style": "Bold"}}
		]}]
	}`), scene.FormatJSON, "")
	require.NoError(t, err)
	doc := f.(*scene.DocumentFile)

	p := NewProcessor(nil, ProcessorConfig{}, zap.NewNop())
	report, err := p.ProcessFile(context.Background(), doc, scene.ScopePage)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ChangedNodes)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "2", report.Failures[0].NodeID)
	assert.True(t, errors.Is(report.Failures[0], fonts.ErrFontUnavailable))
}

func TestProcessor_ProcessFileWithoutDeclaredFonts(t *testing.T) {
	f, err := scene.Decode(strings.NewReader(`{
		"pages": [{"id": "0:1", "type": "PAGE", "children": [
			{"id": "1", "type": "TEXT", "characters": "на столе", "fontName": {"family": "Roboto", "style": "Bold"}}
		]}]
	}`), scene.FormatJSON, "")
	require.NoError(t, err)

	p := NewProcessor(nil, ProcessorConfig{}, zap.NewNop())
	report, err := p.ProcessFile(context.Background(), f, scene.ScopeFile)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChangedNodes)
	assert.Empty(t, report.Failures)
}

func TestProcessor_OverlappingSelection(t *testing.T) {
	f, err := scene.Decode(strings.NewReader(`{
		"selection": ["frame", "1"],
		"pages": [{"id": "0:1", "type": "PAGE", "children": [
			{"id": "frame", "type": "FRAME", "children": [
				{"id": "1", "type": "TEXT", "characters": "Я был в доме"}
			]}
		]}]
	}`), scene.FormatJSON, "")
	require.NoError(t, err)

	p := NewProcessor(nil, ProcessorConfig{}, zap.NewNop())
	report, err := p.ProcessFile(context.Background(), f, scene.ScopeSelection)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Nodes)
	assert.Equal(t, 1, report.ChangedNodes)
	assert.Equal(t, 2, report.NbspCount)
}

func TestTextService_Typograph(t *testing.T) {
	svc := NewTextService(NewProcessor(nil, ProcessorConfig{}, zap.NewNop()))

	text, report, err := svc.Typograph(context.Background(), "№ 5 и  т.д.")
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChangedNodes)
	assert.Equal(t, 1, report.CollapsedSpaces)
	assert.Equal(t, "№\u00a05\u00a0и\u00a0т.д.", text)
	assert.Equal(t, 3, report.NbspCount)

	text, report, err = svc.Typograph(context.Background(), "   ")
	require.NoError(t, err)
	assert.True(t, report.Success())
	assert.Equal(t, " ", text)
	assert.Equal(t, 2, report.CollapsedSpaces)

	text, report, err = svc.Typograph(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, report.Success())
	assert.False(t, report.Changed())
	assert.Empty(t, text)

	preview := svc.Preview("в доме")
	assert.Equal(t, 1, preview.NbspCount)
}
