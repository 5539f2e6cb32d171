// Package typograph расставляет неразрывные пробелы в русском тексте.
//
// Текст проходит через фиксированную последовательность этапов, каждый из
// которых видит результат предыдущего, включая уже вставленные неразрывные
// пробелы. Конвейер не хранит состояния и безопасен для параллельного
// использования.
package typograph

// StageCount число замен, выполненных одним этапом
type StageCount struct {
	Stage string
	Count int
}

// Result результат обработки одной строки
type Result struct {
	Text            string
	CollapsedSpaces int
	NbspCount       int
	// Stages сработавшие этапы в порядке применения
	Stages []StageCount
}

// Changed сообщает, изменил ли конвейер текст
func (r Result) Changed() bool {
	return r.CollapsedSpaces > 0 || r.NbspCount > 0
}

// Pipeline упорядоченный набор этапов
type Pipeline struct {
	stages []*Stage
}

var defaultPipeline = NewPipeline()

// NewPipeline создает конвейер со стандартным набором правил
func NewPipeline() *Pipeline {
	return &Pipeline{stages: buildStages()}
}

// Process обрабатывает текст стандартным конвейером
func Process(text string) Result {
	return defaultPipeline.Process(text)
}

// Process применяет все этапы по порядку
func (p *Pipeline) Process(text string) Result {
	res := Result{Text: text}

	for _, stage := range p.stages {
		var n int
		res.Text, n = stage.Apply(res.Text)
		if n == 0 {
			continue
		}

		switch stage.Counter {
		case CounterCollapse:
			res.CollapsedSpaces += n
		default:
			res.NbspCount += n
		}
		res.Stages = append(res.Stages, StageCount{Stage: stage.Name, Count: n})
	}

	return res
}

// StageNames возвращает имена этапов в порядке применения
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// stage возвращает этап по имени
func (p *Pipeline) stage(name string) *Stage {
	for _, s := range p.stages {
		if s.Name == name {
			return s
		}
	}
	return nil
}
