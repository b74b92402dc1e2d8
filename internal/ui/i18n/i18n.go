// Пакет i18n — переводы сайта на русский, казахский и английский.
// Язык запроса задаётся первым сегментом пути (см. resolver.go) и
// передаётся дальше через контекст; T и Tf переводят ключ каталога
// на язык из контекста.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/text/language"
)

// DefaultLocale — язык сайта без префикса и запасной каталог переводов.
const DefaultLocale = "ru"

// Locales — языки сайта. Порядок значим: по нему резолвер ищет код
// в Accept-Language.
var Locales = []string{"ru", "kk", "en"}

var tags = map[string]language.Tag{
	"ru": language.Russian,
	"kk": language.Kazakh,
	"en": language.English,
}

type langKey struct{}

// IsSupported сообщает, есть ли у сайта версия на языке lang.
func IsSupported(lang string) bool {
	return slices.Contains(Locales, lang)
}

// Tag возвращает language.Tag для кода языка; неизвестный код — тег DefaultLocale.
func Tag(lang string) language.Tag {
	if t, ok := tags[lang]; ok {
		return t
	}
	return tags[DefaultLocale]
}

// catalog — плоский каталог: ключ → перевод.
type catalog map[string]string

// Bundle — каталоги всех языков.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]catalog
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bundle{
		catalogs: make(map[string]catalog),
		logger:   logger.With(slog.String("component", "i18n")),
	}
}

// LoadMessages заменяет каталог языка lang содержимым JSON-объекта
// {"ключ": "перевод"}.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("i18n: каталог %s: %w", lang, err)
	}

	b.mu.Lock()
	b.catalogs[lang] = c
	b.mu.Unlock()

	b.logger.Debug("каталог загружен", slog.String("lang", lang), slog.Int("keys", len(c)))
	return nil
}

// Translate переводит key на язык lang. Ключа нет в каталоге языка —
// берётся русский перевод, нет и его — возвращается сам ключ.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, l := range [...]string{lang, DefaultLocale} {
		if msg, ok := b.catalogs[l][key]; ok {
			return msg
		}
	}
	return key
}

// Translatef переводит key и подставляет args в перевод как в fmt.Sprintf.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	msg := b.Translate(lang, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Missing возвращает отсортированные ключи русского каталога,
// которых нет в каталоге lang.
func (b *Bundle) Missing(lang string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var missing []string
	target := b.catalogs[lang]
	for key := range b.catalogs[DefaultLocale] {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

var global atomic.Pointer[Bundle]

// Init создаёт общий Bundle процесса; повторный вызов возвращает уже созданный.
func Init(logger *slog.Logger) *Bundle {
	global.CompareAndSwap(nil, NewBundle(logger))
	return global.Load()
}

// GetBundle возвращает общий Bundle или nil до вызова Init.
func GetBundle() *Bundle {
	return global.Load()
}

// WithLang сохраняет язык запроса в контексте.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext возвращает язык запроса или DefaultLocale.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLocale
}

// T переводит key на язык из контекста. До Init возвращает key.
func T(ctx context.Context, key string) string {
	b := global.Load()
	if b == nil {
		return key
	}
	return b.Translate(LangFromContext(ctx), key)
}

// Tf — T с подстановкой аргументов.
func Tf(ctx context.Context, key string, args ...any) string {
	b := global.Load()
	if b == nil {
		if len(args) == 0 {
			return key
		}
		return fmt.Sprintf(key, args...)
	}
	return b.Translatef(LangFromContext(ctx), key, args...)
}
