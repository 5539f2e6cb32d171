package notify

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Ключи сообщений каталога
const (
	keyInserted     = "inserted"
	keyAdded        = "added"
	keyCollapsed    = "collapsed"
	keyNothing      = "nothing"
	keyNoInput      = "no_input"
	keyFailed       = "failed"
	keySkippedFont  = "skipped_font"
	keySkippedWrite = "skipped_write"
)

// messages каталог итоговых сообщений; формы множественного числа по CLDR
var messages = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	en := language.English
	must(b.Set(en, keyInserted, plural.Selectf(1, "%d",
		plural.One, "Double spaces were removed and %d non-breaking space was inserted",
		plural.Other, "Double spaces were removed and %d non-breaking spaces were inserted")))
	must(b.Set(en, keyAdded, plural.Selectf(1, "%d",
		plural.One, "%d non-breaking space was added",
		plural.Other, "%d non-breaking spaces were added")))
	must(b.SetString(en, keyCollapsed, "Double spaces were removed. No need for non-breaking spaces"))
	must(b.SetString(en, keyNothing, "No spaces need replacement"))
	must(b.SetString(en, keyNoInput, "No text nodes found in the selected scope"))
	must(b.SetString(en, keyFailed, "Couldn't replace spaces. Try again later"))
	must(b.Set(en, keySkippedFont, plural.Selectf(1, "%d",
		plural.One, "(%d node skipped: font unavailable)",
		plural.Other, "(%d nodes skipped: font unavailable)")))
	must(b.Set(en, keySkippedWrite, plural.Selectf(1, "%d",
		plural.One, "(%d node skipped: text could not be written)",
		plural.Other, "(%d nodes skipped: text could not be written)")))

	ru := language.Russian
	must(b.Set(ru, keyInserted, plural.Selectf(1, "%d",
		plural.One, "Двойные пробелы удалены, вставлен %d неразрывный пробел",
		plural.Few, "Двойные пробелы удалены, вставлено %d неразрывных пробела",
		plural.Other, "Двойные пробелы удалены, вставлено %d неразрывных пробелов")))
	must(b.Set(ru, keyAdded, plural.Selectf(1, "%d",
		plural.One, "Добавлен %d неразрывный пробел",
		plural.Few, "Добавлено %d неразрывных пробела",
		plural.Other, "Добавлено %d неразрывных пробелов")))
	must(b.SetString(ru, keyCollapsed, "Двойные пробелы удалены. Неразрывные пробелы не понадобились"))
	must(b.SetString(ru, keyNothing, "Пробелы не нуждаются в замене"))
	must(b.SetString(ru, keyNoInput, "В выбранной области нет текстовых узлов"))
	must(b.SetString(ru, keyFailed, "Не удалось заменить пробелы. Попробуйте позже"))
	must(b.Set(ru, keySkippedFont, plural.Selectf(1, "%d",
		plural.One, "(пропущен %d узел: шрифт недоступен)",
		plural.Few, "(пропущено %d узла: шрифт недоступен)",
		plural.Other, "(пропущено %d узлов: шрифт недоступен)")))
	must(b.Set(ru, keySkippedWrite, plural.Selectf(1, "%d",
		plural.One, "(пропущен %d узел: не удалось записать текст)",
		plural.Few, "(пропущено %d узла: не удалось записать текст)",
		plural.Other, "(пропущено %d узлов: не удалось записать текст)")))

	return b
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func printer(lang language.Tag) *message.Printer {
	return message.NewPrinter(lang, message.Catalog(messages))
}
