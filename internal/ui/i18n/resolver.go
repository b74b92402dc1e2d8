// resolver.go — определение языка по пути и Accept-Language.
package i18n

import "strings"

// exemptPrefixes — служебные пути, которые резолвер не трогает.
var exemptPrefixes = []string{
	"/api",
	"/static",
	"/assets",
	"/favicon",
	"/health",
	"/metrics",
}

// Action — решение резолвера.
type Action int

const (
	// PassThrough — запрос обрабатывается без изменений.
	PassThrough Action = iota
	// Redirect — нужно перенаправить на Target.
	Redirect
)

// Resolution — результат Resolve.
type Resolution struct {
	Action Action
	// Locale — язык запроса (для PassThrough на служебных путях пуст).
	Locale string
	// Target — путь перенаправления (только для Redirect).
	Target string
}

// IsExempt сообщает, относится ли путь к служебным (API, статика, файлы).
func IsExempt(path string) bool {
	for _, p := range exemptPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return strings.Contains(path, ".")
}

// Resolve решает, что делать с запросом к path.
// Служебные пути и пути с языковым префиксом пропускаются; остальные
// перенаправляются на /<locale><path>, где locale — первый поддерживаемый
// код (в порядке Locales), встречающийся в acceptLanguage как подстрока.
func Resolve(path, acceptLanguage string) Resolution {
	if IsExempt(path) {
		return Resolution{Action: PassThrough}
	}

	if lang, ok := prefixLocale(path); ok {
		return Resolution{Action: PassThrough, Locale: lang}
	}

	lang := pickLocale(acceptLanguage)
	return Resolution{
		Action: Redirect,
		Locale: lang,
		Target: "/" + lang + path,
	}
}

// LocaleFromPath возвращает язык пути с префиксом, иначе DefaultLocale.
func LocaleFromPath(path string) string {
	if lang, ok := prefixLocale(path); ok {
		return lang
	}
	return DefaultLocale
}

// SwitchPath заменяет языковой префикс пути на to.
// Путь без префикса получает префикс to.
func SwitchPath(path, to string) string {
	if lang, ok := prefixLocale(path); ok {
		return "/" + to + strings.TrimPrefix(path, "/"+lang)
	}
	if path == "" || path == "/" {
		return "/" + to
	}
	return "/" + to + path
}

// prefixLocale проверяет, что первый сегмент пути — поддерживаемый язык.
func prefixLocale(path string) (string, bool) {
	for _, l := range Locales {
		if path == "/"+l || strings.HasPrefix(path, "/"+l+"/") {
			return l, true
		}
	}
	return "", false
}

// pickLocale выбирает язык из заголовка Accept-Language.
// Веса q и порядок в заголовке не учитываются.
func pickLocale(acceptLanguage string) string {
	for _, l := range Locales {
		if strings.Contains(acceptLanguage, l) {
			return l
		}
	}
	return DefaultLocale
}
