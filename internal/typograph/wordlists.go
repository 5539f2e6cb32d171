package typograph

import "strings"

// NBSP неразрывный пробел
const NBSP = "\u00A0"

// Словари для неразрывных пробелов. Порядок важен: альтернативы в регулярных
// выражениях перебираются слева направо.
var (
	// beforeWords требуют неразрывного пробела перед собой
	beforeWords = []string{"б", "бы", "ж", "же", "ли", "ль"}

	// afterWords требуют неразрывного пробела после себя
	afterWords = []string{
		"а", "б", "без", "безо", "будто", "бы", "в", "во", "ведь", "вне", "вот", "всё",
		"где", "да", "даже", "для", "до", "если", "есть", "ещё", "же", "за", "и", "из",
		"изо", "из-за", "из-под", "или", "иль", "к", "ко", "как", "ли", "ли", "либо",
		"между", "на", "над", "надо", "не", "ни", "но", "о", "об", "обо", "около", "оно",
		"от", "ото", "перед", "по", "по-за", "по-над", "под", "подо", "после", "при",
		"про", "ради", "с", "со", "сквозь", "так", "также", "там", "тем", "то", "тогда",
		"того", "тоже", "у", "хоть", "хотя", "чего", "через", "что", "чтобы", "это",
		"этот", "этого", "№", "§", "АО", "ОАО", "ЗАО", "ООО", "ПАО",
		"стр.", "гл.", "рис.", "илл.", "ст.", "п.", "c.",
	}

	// Units единицы измерения, валюты и типографские единицы
	Units = []string{
		"кг", "г", "м", "см", "мм", "км", "л", "мл", "т", "ц", "руб", "коп",
		"₽", "$", "€", "°", "%", "px", "pt", "em", "rem",
	}

	// addressAbbrevs сокращения адресов, записываемые с точкой
	addressAbbrevs = []string{
		"г", "обл", "кр", "ст", "пос", "с", "д", "ул", "пер", "пр", "пр-т", "просп",
		"пл", "бул", "б-р", "наб", "ш", "туп", "оф", "кв", "комн?", "под", "мкр", "уч",
		"вл", "влад", "стр", "корп?", "эт", "пгт",
	}

	// addressWords адресные слова без точки
	addressWords = []string{"дом", "литера?"}
)

// BeforeWords возвращает копию словаря частиц
func BeforeWords() []string { return append([]string(nil), beforeWords...) }

// AfterWords возвращает копию словаря предлогов и союзов
func AfterWords() []string { return append([]string(nil), afterWords...) }

// alternation собирает слова в альтернативу регулярного выражения.
// Точки экранируются, остальные символы словарей не являются метасимволами,
// кроме квантификатора "?" в addressAbbrevs.
func alternation(words []string) string {
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = strings.ReplaceAll(w, ".", `\.`)
	}
	return strings.Join(escaped, "|")
}
