// Package notify формирует человекочитаемый итог обработки.
package notify

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"typobot/internal/service"
)

// Kind вид итога
type Kind string

const (
	KindInserted  Kind = "inserted"  // схлопнуты пробелы и добавлены неразрывные
	KindAdded     Kind = "added"     // только добавлены неразрывные
	KindCollapsed Kind = "collapsed" // только схлопнуты пробелы
	KindNothing   Kind = "nothing"
	KindNoInput   Kind = "no_input"
	KindFailed    Kind = "failed"
)

// Summary итог для вывода в интерфейсе
type Summary struct {
	Kind            Kind
	Message         string
	IsError         bool
	CollapsedSpaces int
	NbspCount       int
	SkippedNodes    int
}

var (
	supported = []language.Tag{language.English, language.Russian}
	matcher   = language.NewMatcher(supported)
)

// Language выбирает язык сообщений по тегу вроде "ru", "ru-RU" или "en-US".
// Неизвестные и пустые теги дают английский.
func Language(tag string) language.Tag {
	if tag == "" {
		return language.English
	}
	t, err := language.Parse(tag)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Summarize переводит отчет в итог на выбранном языке
func Summarize(report *service.Report, lang language.Tag) Summary {
	p := printer(lang)

	if report == nil {
		return Summary{Kind: KindFailed, Message: p.Sprintf(keyFailed), IsError: true}
	}

	s := Summary{
		CollapsedSpaces: report.CollapsedSpaces,
		NbspCount:       report.NbspCount,
		SkippedNodes:    len(report.Failures),
	}

	switch {
	case report.NoInput || errors.Is(report.Err, service.ErrNoInput):
		s.Kind = KindNoInput
		s.Message = p.Sprintf(keyNoInput)
		return s
	case report.Err != nil:
		s.Kind = KindFailed
		s.Message = p.Sprintf(keyFailed)
		s.IsError = true
		return s
	case report.CollapsedSpaces > 0 && report.NbspCount > 0:
		s.Kind = KindInserted
		s.Message = p.Sprintf(keyInserted, report.NbspCount)
	case report.NbspCount > 0:
		s.Kind = KindAdded
		s.Message = p.Sprintf(keyAdded, report.NbspCount)
	case report.CollapsedSpaces > 0:
		s.Kind = KindCollapsed
		s.Message = p.Sprintf(keyCollapsed)
	default:
		s.Kind = KindNothing
		s.Message = p.Sprintf(keyNothing)
	}

	var fontSkipped, writeSkipped int
	for _, f := range report.Failures {
		if f != nil && f.Op == service.OpWrite {
			writeSkipped++
		} else {
			fontSkipped++
		}
	}
	if fontSkipped > 0 {
		s.Message = fmt.Sprintf("%s %s", s.Message, p.Sprintf(keySkippedFont, fontSkipped))
	}
	if writeSkipped > 0 {
		s.Message = fmt.Sprintf("%s %s", s.Message, p.Sprintf(keySkippedWrite, writeSkipped))
	}
	return s
}

// Message возвращает только текст итога
func Message(report *service.Report, lang language.Tag) string {
	return Summarize(report, lang).Message
}
