package typograph

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nb заменяет "~" на неразрывный пробел, чтобы ожидания читались
func nb(s string) string {
	return strings.ReplaceAll(s, "~", NBSP)
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		collapsed int
		nbsp      int
	}{
		{name: "empty", input: "", want: ""},
		{name: "latin only", input: "Hello world", want: "Hello world"},
		{name: "long words only", input: "Солнце светило ярко", want: "Солнце светило ярко"},
		{
			name:  "idiom join",
			input: "Я был в школе и т.д. сегодня",
			want:  nb("Я~был в~школе~и~т.д. сегодня"),
			nbsp:  4,
		},
		{name: "number sign without space", input: "№123", want: nb("№~123"), nbsp: 1},
		{name: "number sign with space", input: "№ 5", want: nb("№~5"), nbsp: 1},
		{
			name:      "city abbreviation after double space",
			input:     "г.  Москва",
			want:      nb("г..~Москва"),
			collapsed: 1,
			nbsp:      1,
		},
		{name: "house number", input: "дом 5", want: nb("дом.~5"), nbsp: 1},
		{name: "particle before comma", input: "Пришёл бы, если смог", want: nb("Пришёл~бы, если~смог"), nbsp: 2},
		{name: "preposition after opening quote", input: "Он сказал «в доме»", want: nb("Он~сказал «в~доме»"), nbsp: 2},
		{name: "em dash in sentence", input: "Москва — столица", want: nb("Москва~—~столица"), nbsp: 2},
		{name: "dialogue dash", input: "— Привет", want: nb("—~Привет"), nbsp: 1},
		{name: "hyphen gets leading space only", input: "1941 - 1945", want: nb("1941~- 1945"), nbsp: 1},
		{name: "short word before full stop", input: "Молодец ты.", want: nb("Молодец~ты."), nbsp: 1},
		{name: "short word before closing quote", input: "Сказал он».", want: nb("Сказал~он»."), nbsp: 1},
		{name: "short word before exclamation", input: "Нашёл его!", want: nb("Нашёл~его!"), nbsp: 1},
		{name: "year after preposition", input: "В 2024 году", want: nb("В~2024~году"), nbsp: 2},
		{name: "percent", input: "Скидка 50 %", want: nb("Скидка 50~%"), nbsp: 1},
		{name: "upper case preposition", input: "ЧЕРЕЗ поле", want: nb("ЧЕРЕЗ~поле"), nbsp: 1},
		{name: "preposition at line start", input: "текст\nв доме", want: nb("текст\nв~доме"), nbsp: 1},
		{name: "figure reference", input: "см. рис. 5", want: nb("см.~рис.~5"), nbsp: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Process(tt.input)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, tt.collapsed, got.CollapsedSpaces, "collapsed spaces")
			assert.Equal(t, tt.nbsp, got.NbspCount, "non-breaking spaces")
			assert.Equal(t, tt.collapsed > 0 || tt.nbsp > 0, got.Changed())
		})
	}
}

func TestProcess_LineBreaks(t *testing.T) {
	separators := []struct {
		name string
		sep  string
	}{
		{name: "line feed", sep: "\n"},
		{name: "carriage return", sep: "\r"},
		{name: "crlf", sep: "\r\n"},
		{name: "line separator", sep: "\u2028"},
		{name: "paragraph separator", sep: "\u2029"},
	}

	for _, s := range separators {
		t.Run(s.name, func(t *testing.T) {
			tests := []struct {
				input string
				want  string
			}{
				{input: "текст" + s.sep + "в доме", want: nb("текст" + s.sep + "в~доме")},
				{input: "текст" + s.sep + "Из окна", want: nb("текст" + s.sep + "Из~окна")},
				{input: "Адрес:" + s.sep + "ул. Ленина", want: nb("Адрес:" + s.sep + "ул..~Ленина")},
				{input: "Адрес:" + s.sep + "дом 5", want: nb("Адрес:" + s.sep + "дом.~5")},
			}

			for _, tt := range tests {
				got := Process(tt.input)
				assert.Equal(t, tt.want, got.Text, "%q", tt.input)
				assert.Equal(t, 1, got.NbspCount, "%q", tt.input)
			}
		})
	}

	// тире в начале второй строки не считается началом текста
	got := Process("первая\u2028— вторая")
	assert.Equal(t, "первая\u2028— вторая", got.Text)
}

func TestProcess_Units(t *testing.T) {
	for _, unit := range Units {
		t.Run(unit, func(t *testing.T) {
			got := Process("5 " + unit)
			assert.Equal(t, "5"+NBSP+unit, got.Text)
			assert.Equal(t, 1, got.NbspCount)
			assert.Zero(t, got.CollapsedSpaces)
		})
	}
}

func TestProcess_CollapseRuns(t *testing.T) {
	for k := 2; k <= 6; k++ {
		run := strings.Repeat(" ", k)
		got := Process("x" + run + "y")
		assert.Equal(t, "x y", got.Text)
		assert.Equal(t, k-1, got.CollapsedSpaces)
		assert.Zero(t, got.NbspCount)
	}

	// неразрывные пробелы тоже схлопываются в обычный
	got := Process("x" + NBSP + " " + NBSP + "y")
	assert.Equal(t, "x y", got.Text)
	assert.Equal(t, 2, got.CollapsedSpaces)
}

func TestProcess_IdiomStageCount(t *testing.T) {
	got := Process("Я был в школе и т.п. вчера")
	require.NotEmpty(t, got.Stages)
	assert.Contains(t, got.Stages, StageCount{Stage: StageIdiom, Count: 2})
	assert.Contains(t, got.Text, nb("школе~и~т.п."))
}

// Сокращения с точкой получают вторую точку. Поведение сохранено намеренно.
func TestProcess_AddressDoubledPeriod(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"обл. Москва", nb("обл..~Москва")},
		{"ул. Ленина", nb("ул..~Ленина")},
		{"литер А", nb("литер.~А")},
	}

	for _, tt := range tests {
		got := Process(tt.input)
		assert.Equal(t, tt.want, got.Text, tt.input)
		assert.Equal(t, 1, got.NbspCount, tt.input)
	}
}

func TestProcess_SecondPass(t *testing.T) {
	first := Process("Я был в школе и т.д. сегодня")

	// короткое слово оказалось рядом с уже вставленным пробелом
	second := Process(first.Text)
	assert.Equal(t, nb("Я~был~в~школе~и~т.д. сегодня"), second.Text)
	assert.Equal(t, 1, second.NbspCount)

	third := Process(second.Text)
	assert.Equal(t, second.Text, third.Text)
	assert.False(t, third.Changed())
}

func TestProcess_StableWithoutRegularSpaces(t *testing.T) {
	inputs := []string{"Москва — столица", "Молодец ты.", "№123", "— Привет"}

	for _, in := range inputs {
		once := Process(in)
		twice := Process(once.Text)
		assert.Equal(t, once.Text, twice.Text, in)
		assert.Zero(t, twice.NbspCount, in)
	}
}

func TestProcess_Concurrent(t *testing.T) {
	input := "Я был в школе и т.д. сегодня, в 2024 году"
	want := Process(input)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Process(input))
		}()
	}
	wg.Wait()
}

func TestPipeline_StageOrder(t *testing.T) {
	want := []string{
		StageCollapseSpaces, StageIdiom, StageBeforeWords, StageAfterWords,
		StageNumberSign, StageDigitLetter, StageAddress, StageShortWordAfter,
		StageShortWordEnd, StageDashBefore, StageDashAfter, StageUnits,
	}
	assert.Equal(t, want, NewPipeline().StageNames())
}

func TestStage_BeforeWordsNeedsTrailingChar(t *testing.T) {
	s := NewPipeline().stage(StageBeforeWords)
	require.NotNil(t, s)

	out, n := s.Apply("Пришёл бы")
	assert.Equal(t, "Пришёл бы", out)
	assert.Zero(t, n)

	out, n = s.Apply("Знал ли он?")
	assert.Equal(t, nb("Знал~ли он?"), out)
	assert.Equal(t, 1, n)

	// частица в начале длинного слова не приклеивается
	out, n = s.Apply("Он лишь")
	assert.Equal(t, "Он лишь", out)
	assert.Zero(t, n)
}

func TestStage_AfterWordsSkipsConsumedBoundary(t *testing.T) {
	s := NewPipeline().stage(StageAfterWords)
	require.NotNil(t, s)

	// пробел перед "на" уже поглощен предыдущим совпадением
	out, n := s.Apply("в на стол")
	assert.Equal(t, nb("в~на стол"), out)
	assert.Equal(t, 1, n)
}

func TestStage_NumberSignRespectsExistingSpace(t *testing.T) {
	s := NewPipeline().stage(StageNumberSign)
	require.NotNil(t, s)

	out, n := s.Apply(nb("№~7"))
	assert.Equal(t, nb("№~7"), out)
	assert.Zero(t, n)
}

func TestWordLists(t *testing.T) {
	assert.Equal(t, []string{"б", "бы", "ж", "же", "ли", "ль"}, BeforeWords())
	assert.Contains(t, AfterWords(), "из-под")
	assert.Contains(t, AfterWords(), "стр.")

	// копия не меняет исходный словарь
	words := AfterWords()
	words[0] = "x"
	assert.Equal(t, "а", AfterWords()[0])
}
