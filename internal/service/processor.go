// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"typobot/internal/fonts"
	"typobot/internal/scene"
	"typobot/internal/typograph"
)

// Report итог одного запуска обработки
type Report struct {
	RunID           string
	Scope           scene.Scope
	Nodes           int
	ChangedNodes    int
	CollapsedSpaces int
	NbspCount       int
	Failures        []*NodeError
	NoInput         bool
	Err             error
	Duration        time.Duration
}

// Success сообщает, что запуск завершился без общей ошибки и нашел текст
func (r *Report) Success() bool {
	return r.Err == nil && !r.NoInput
}

// Changed сообщает, что хотя бы один узел был переписан
func (r *Report) Changed() bool {
	return r.ChangedNodes > 0
}

// ProcessorConfig параметры обработчика
type ProcessorConfig struct {
	Workers         int
	FontLoadTimeout time.Duration
}

// Processor применяет типограф к текстовым узлам сцены
type Processor struct {
	pipeline *typograph.Pipeline
	loader   fonts.Loader
	cfg      ProcessorConfig
	logger   *zap.Logger

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// anyFont считает доступным любой шрифт
var anyFont = fonts.LoaderFunc(func(context.Context, fonts.FontName) error { return nil })

// NewProcessor создает обработчик. loader может быть nil.
func NewProcessor(loader fonts.Loader, cfg ProcessorConfig, logger *zap.Logger) *Processor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		pipeline: typograph.NewPipeline(),
		loader:   loader,
		cfg:      cfg,
		logger:   logger,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// newRunID выдает монотонный ULID
func (p *Processor) newRunID() string {
	p.entropyMu.Lock()
	defer p.entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), p.entropy).String()
}

// nodeOutcome результат обработки одного узла
type nodeOutcome struct {
	result  typograph.Result
	written bool
	err     *NodeError
}

// Process перечисляет узлы области и переписывает те, где типограф что-то изменил.
// Шрифт узла загружается до записи; ошибка шрифта отмечает только этот узел.
func (p *Processor) Process(ctx context.Context, src scene.Source, scope scene.Scope) (*Report, error) {
	return p.ProcessWithLoader(ctx, src, scope, nil)
}

// ProcessWithLoader то же, что Process, но с дополнительным загрузчиком шрифтов,
// который пробуется раньше общего (например, шрифты, объявленные документом).
// Если загрузчиков нет совсем, доступен любой шрифт.
func (p *Processor) ProcessWithLoader(ctx context.Context, src scene.Source, scope scene.Scope, extra fonts.Loader) (*Report, error) {
	var loader fonts.Loader
	switch {
	case extra != nil && p.loader != nil:
		loader = fonts.Chain{extra, p.loader}
	case extra != nil:
		loader = extra
	case p.loader != nil:
		loader = p.loader
	default:
		loader = anyFont
	}
	return p.process(ctx, src, scope, loader)
}

// ProcessFile обрабатывает файл сцены. Если макет объявляет шрифты,
// его каталог пробуется раньше общего загрузчика.
func (p *Processor) ProcessFile(ctx context.Context, file scene.File, scope scene.Scope) (*Report, error) {
	var extra fonts.Loader
	if doc, ok := file.(*scene.DocumentFile); ok {
		if catalog := doc.Catalog(); catalog.Len() > 0 {
			extra = catalog
		}
	}
	return p.ProcessWithLoader(ctx, file, scope, extra)
}

func (p *Processor) process(ctx context.Context, src scene.Source, scope scene.Scope, loader fonts.Loader) (report *Report, err error) {
	started := time.Now()
	report = &Report{RunID: p.newRunID(), Scope: scope}
	logger := p.logger.With(zap.String("run_id", report.RunID), zap.String("scope", scope.String()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic during processing",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			report.Err = fmt.Errorf("%w: %v", ErrUnexpected, r)
			err = report.Err
		}
		report.Duration = time.Since(started)
	}()

	nodes, err := src.TextNodes(scope)
	if err != nil {
		report.Err = fmt.Errorf("failed to collect text nodes: %w", err)
		return report, report.Err
	}

	report.Nodes = len(nodes)
	if len(nodes) == 0 {
		logger.Info("No text nodes in scope")
		report.NoInput = true
		report.Err = ErrNoInput
		return report, ErrNoInput
	}

	outcomes, err := p.run(ctx, nodes, loader, logger)
	if err != nil {
		report.Err = err
		return report, err
	}

	var unexpected []error
	for _, o := range outcomes {
		if o.err != nil {
			report.Failures = append(report.Failures, o.err)
			if o.err.Op == OpProcess {
				unexpected = append(unexpected, o.err)
			}
			continue
		}
		if !o.written {
			continue
		}
		report.ChangedNodes++
		report.CollapsedSpaces += o.result.CollapsedSpaces
		report.NbspCount += o.result.NbspCount
	}

	logger.Info("Processing completed",
		zap.Int("nodes", report.Nodes),
		zap.Int("changed_nodes", report.ChangedNodes),
		zap.Int("collapsed_spaces", report.CollapsedSpaces),
		zap.Int("nbsp_count", report.NbspCount),
		zap.Int("failed_nodes", len(report.Failures)))

	if len(unexpected) > 0 {
		report.Err = errors.Join(unexpected...)
		return report, report.Err
	}
	return report, nil
}

// run раздает узлы воркерам; результаты сохраняют порядок узлов
func (p *Processor) run(ctx context.Context, nodes []scene.TextNode, loader fonts.Loader, logger *zap.Logger) ([]nodeOutcome, error) {
	outcomes := make([]nodeOutcome, len(nodes))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := min(p.cfg.Workers, len(nodes))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = p.safeProcessNode(ctx, nodes[i], loader, logger)
			}
		}()
	}

dispatch:
	for i := range nodes {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing interrupted: %w", err)
	}
	return outcomes, nil
}

// safeProcessNode превращает панику на узле в ошибку этого узла,
// воркер после нее продолжает брать задания
func (p *Processor) safeProcessNode(ctx context.Context, node scene.TextNode, loader fonts.Loader, logger *zap.Logger) (out nodeOutcome) {
	defer func() {
		if r := recover(); r != nil {
			id := nodeID(node)
			logger.Error("Recovered from panic in node",
				zap.String("node_id", id),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			out = nodeOutcome{err: &NodeError{NodeID: id, Op: OpProcess, Err: fmt.Errorf("%w: %v", ErrUnexpected, r)}}
		}
	}()
	return p.processNode(ctx, node, loader, logger)
}

func nodeID(node scene.TextNode) (id string) {
	defer func() {
		if recover() != nil {
			id = "unknown"
		}
	}()
	return node.ID()
}

// processNode обрабатывает узел: типограф, загрузка шрифта, запись
func (p *Processor) processNode(ctx context.Context, node scene.TextNode, loader fonts.Loader, logger *zap.Logger) nodeOutcome {
	result := p.pipeline.Process(node.Characters())
	if !result.Changed() {
		return nodeOutcome{result: result}
	}

	font := node.FontName()
	loadCtx := ctx
	if p.cfg.FontLoadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, p.cfg.FontLoadTimeout)
		defer cancel()
	}

	if err := loader.Load(loadCtx, font); err != nil {
		logger.Warn("Skipping node: font unavailable",
			zap.String("node_id", node.ID()),
			zap.String("font", font.String()),
			zap.Error(err))
		return nodeOutcome{result: result, err: &NodeError{NodeID: node.ID(), Font: font, Op: OpLoadFont, Err: err}}
	}

	if err := node.SetCharacters(result.Text); err != nil {
		logger.Warn("Skipping node: write failed",
			zap.String("node_id", node.ID()),
			zap.Error(err))
		return nodeOutcome{result: result, err: &NodeError{NodeID: node.ID(), Font: font, Op: OpWrite, Err: err}}
	}

	return nodeOutcome{result: result, written: true}
}
