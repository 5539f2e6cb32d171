package typograph

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Counter определяет, в какой счетчик попадают замены этапа
type Counter int

const (
	// CounterNBSP вставленные неразрывные пробелы
	CounterNBSP Counter = iota
	// CounterCollapse удаленные лишние пробелы
	CounterCollapse
)

// Имена этапов в порядке применения
const (
	StageCollapseSpaces = "collapse-spaces"
	StageIdiom          = "idiom"
	StageBeforeWords    = "before-words"
	StageAfterWords     = "after-words"
	StageNumberSign     = "number-sign"
	StageDigitLetter    = "digit-letter"
	StageAddress        = "address"
	StageShortWordAfter = "short-word-after"
	StageShortWordEnd   = "short-word-end"
	StageDashBefore     = "dash-before"
	StageDashAfter      = "dash-after"
	StageUnits          = "units"
)

// Фрагменты регулярных выражений
const (
	space       = `\x{0020}`
	spaceOrNBSP = `\x{0020}\x{00A0}`
	// openers пробелы, открывающие кавычки и скобки слева от слова
	openers = spaceOrNBSP + `«„"(\[`
	// whitespace пробельные символы, включая неразрывный и прочие пробелы Unicode
	whitespace = `\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`
	// lineBreaks разделители строк, которые (?m)^ не распознает
	lineBreaks = `\r\x{2028}\x{2029}`
	// lineChar любой символ, кроме конца строки
	lineChar = `[^\n\r\x{2028}\x{2029}]`
	cyrillic = `А-ЯЁа-яё`
)

// rewrite строит замену по найденным группам и возвращает число вставок
type rewrite func(m []string) (string, int)

type rule struct {
	re      *regexp.Regexp
	rewrite rewrite
}

// Stage один этап конвейера: одно или несколько правил, применяемых ко всей строке
type Stage struct {
	Name    string
	Counter Counter
	rules   []rule
}

// Apply применяет этап к тексту и возвращает результат и число замен
func (s *Stage) Apply(text string) (string, int) {
	total := 0
	for _, r := range s.rules {
		var n int
		text, n = r.apply(text)
		total += n
	}
	return text, total
}

func (r rule) apply(text string) (string, int) {
	matches := r.re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text) + len(matches)*len(NBSP))

	groups := make([]string, r.re.NumSubexp()+1)
	last, count := 0, 0
	for _, loc := range matches {
		for g := range groups {
			if loc[2*g] < 0 {
				groups[g] = ""
				continue
			}
			groups[g] = text[loc[2*g]:loc[2*g+1]]
		}
		repl, n := r.rewrite(groups)
		b.WriteString(text[last:loc[0]])
		b.WriteString(repl)
		last = loc[1]
		count += n
	}
	b.WriteString(text[last:])

	return b.String(), count
}

func newStage(name string, counter Counter, rules ...rule) *Stage {
	return &Stage{Name: name, Counter: counter, rules: rules}
}

func newRule(pattern string, fn rewrite) rule {
	return rule{re: regexp.MustCompile(pattern), rewrite: fn}
}

// glue соединяет группы через неразрывный пробел
func glue(first, second int) rewrite {
	return func(m []string) (string, int) {
		return m[first] + NBSP + m[second], 1
	}
}

// buildStages собирает этапы в фиксированном порядке
func buildStages() []*Stage {
	units := make([]rule, 0, len(Units))
	for _, u := range Units {
		units = append(units, newRule(`(?i)(\d)`+space+`+(`+regexp.QuoteMeta(u)+`)`, glue(1, 2)))
	}

	return []*Stage{
		newStage(StageCollapseSpaces, CounterCollapse,
			newRule(`[`+spaceOrNBSP+`]{2,}`, func(m []string) (string, int) {
				return " ", utf8.RuneCountInString(m[0]) - 1
			})),

		// слово и т.д. / и т.п. / и др.
		newStage(StageIdiom, CounterNBSP,
			newRule(`(`+lineChar+`)`+space+`+(и)`+space+`+(т\.д\.|т\.п\.|др\.)`, func(m []string) (string, int) {
				return m[1] + NBSP + m[2] + NBSP + m[3], 2
			})),

		newStage(StageBeforeWords, CounterNBSP,
			newRule(`(?i)`+space+`(`+alternation(beforeWords)+`)([^`+cyrillic+`])`, func(m []string) (string, int) {
				return NBSP + m[1] + m[2], 1
			})),

		newStage(StageAfterWords, CounterNBSP,
			newRule(`(?im)(^|[`+lineBreaks+openers+`])(`+alternation(afterWords)+`)`+space, func(m []string) (string, int) {
				return m[1] + m[2] + NBSP, 1
			})),

		// №123 без пробела
		newStage(StageNumberSign, CounterNBSP,
			newRule(`№([^`+whitespace+`])`, func(m []string) (string, int) {
				return "№" + NBSP + m[1], 1
			})),

		newStage(StageDigitLetter, CounterNBSP,
			newRule(`(?i)(\d)`+space+`+([a-zA-Zа-яёА-ЯЁ])`, glue(1, 2))),

		// Точка добавляется всегда, поэтому у сокращений с точкой она удваивается
		newStage(StageAddress, CounterNBSP,
			newRule(`(?m)(^|[`+lineBreaks+spaceOrNBSP+`])((?:(?:`+alternation(addressAbbrevs)+`)\.)|(?:`+alternation(addressWords)+`))`+space+`?(-?[А-ЯЁ\d])`,
				func(m []string) (string, int) {
					return m[1] + m[2] + "." + NBSP + m[3], 1
				})),

		newStage(StageShortWordAfter, CounterNBSP,
			newRule(`(?im)(^|[`+lineBreaks+openers+`])([`+cyrillic+`]{1,3})`+space, func(m []string) (string, int) {
				return m[1] + m[2] + NBSP, 1
			})),

		newStage(StageShortWordEnd, CounterNBSP,
			newRule(`(?im)`+space+`([`+cyrillic+`]{1,3}["»]?[)\]]?[.!?…]‥?)`, func(m []string) (string, int) {
				return NBSP + m[1], 1
			})),

		newStage(StageDashBefore, CounterNBSP,
			newRule(space+`([—–\-])`, func(m []string) (string, int) {
				return NBSP + m[1], 1
			})),

		// ^ здесь только начало текста
		newStage(StageDashAfter, CounterNBSP,
			newRule(`(^|[`+spaceOrNBSP+`])([—–])`+space, func(m []string) (string, int) {
				return m[1] + m[2] + NBSP, 1
			})),

		newStage(StageUnits, CounterNBSP, units...),
	}
}
