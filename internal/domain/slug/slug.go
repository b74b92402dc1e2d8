// Пакет slug — генерация URL-идентификаторов публикаций
// из заголовков на русском и казахском языках.
package slug

import (
	"regexp"
	"strings"
)

// DefaultMaxLen — максимальная длина автоматически сгенерированного slug.
const DefaultMaxLen = 60

// translit — таблица транслитерации кириллицы (строчные буквы).
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	// казахские буквы
	'ә': "a", 'ғ': "g", 'қ': "k", 'ң': "n", 'ө': "o", 'ұ': "u", 'ү': "u",
	'һ': "h", 'і': "i",
}

var (
	reNotAllowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reDashes     = regexp.MustCompile(`-+`)
)

// Transliterate превращает произвольный текст в slug:
// кириллица → латиница, нижний регистр, только [a-z0-9-],
// пробелы → дефис, повторные дефисы схлопываются, крайние удаляются.
func Transliterate(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if s, ok := translit[r]; ok {
			b.WriteString(s)
			continue
		}
		b.WriteRune(r)
	}

	s := reNotAllowed.ReplaceAllString(b.String(), "")
	s = reSpaces.ReplaceAllString(s, "-")
	s = reDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FromTitle генерирует slug из заголовка и обрезает его до maxLen символов.
// Дефис на месте обреза удаляется: slug с дефисом на конце не проходит IsValid.
func FromTitle(title string, maxLen int) string {
	s := Transliterate(title)
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.Trim(s, "-")
}

var reValid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsValid проверяет, что строка — корректный slug.
func IsValid(s string) bool {
	return reValid.MatchString(s)
}
