package i18n

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBundle_Translate(t *testing.T) {
	b := NewBundle(testLogger())
	if err := b.LoadMessages("ru", []byte(`{"nav.home":"Главная","nav.only_ru":"Только ru"}`)); err != nil {
		t.Fatalf("LoadMessages(ru): %v", err)
	}
	if err := b.LoadMessages("kk", []byte(`{"nav.home":"Басты бет"}`)); err != nil {
		t.Fatalf("LoadMessages(kk): %v", err)
	}

	tests := []struct {
		name, lang, key, want string
	}{
		{"ключ есть", "kk", "nav.home", "Басты бет"},
		{"fallback на ru", "kk", "nav.only_ru", "Только ru"},
		{"неизвестный язык", "de", "nav.home", "Главная"},
		{"нет ключа", "kk", "nav.missing", "nav.missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Translate(tt.lang, tt.key); got != tt.want {
				t.Errorf("Translate(%q, %q) = %q, хотели %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}

func TestBundle_LoadMessages_Invalid(t *testing.T) {
	b := NewBundle(testLogger())
	if err := b.LoadMessages("ru", []byte(`{not json`)); err == nil {
		t.Error("ожидалась ошибка парсинга")
	}
}

func TestBundle_Translatef(t *testing.T) {
	b := NewBundle(testLogger())
	if err := b.LoadMessages("en", []byte(`{"pager":"Page %d of %d"}`)); err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if got := b.Translatef("en", "pager", 2, 5); got != "Page 2 of 5" {
		t.Errorf("Translatef = %q", got)
	}
}

// Все встроенные каталоги должны содержать одинаковый набор ключей.
func TestEmbeddedCatalogs_SameKeys(t *testing.T) {
	b := NewBundle(testLogger())
	if err := LoadFromEmbedFS(b, testLogger()); err != nil {
		t.Fatalf("LoadFromEmbedFS: %v", err)
	}

	ru := b.catalogs["ru"]
	if len(ru) == 0 {
		t.Fatal("каталог ru пуст")
	}
	for _, lang := range Locales {
		catalog := b.catalogs[lang]
		for key := range ru {
			if _, ok := catalog[key]; !ok {
				t.Errorf("в каталоге %s нет ключа %q", lang, key)
			}
		}
		for key := range catalog {
			if _, ok := ru[key]; !ok {
				t.Errorf("ключ %q из %s отсутствует в ru", key, lang)
			}
		}
	}
}

func TestBundle_Missing(t *testing.T) {
	b := NewBundle(testLogger())
	_ = b.LoadMessages("ru", []byte(`{"a":"А","b":"Б","c":"В"}`))
	_ = b.LoadMessages("kk", []byte(`{"b":"Б"}`))

	if got, want := b.Missing("kk"), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Missing(kk) = %v, хотели %v", got, want)
	}
	if got := b.Missing("ru"); len(got) != 0 {
		t.Errorf("Missing(ru) = %v, хотели пусто", got)
	}
}

func TestLoadFS(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	fsys := fstest.MapFS{
		"locales/ru.json": {Data: []byte(`{"nav.home":"Главная","nav.login":"Вход"}`)},
		"locales/kk.json": {Data: []byte(`{"nav.home":"Басты бет","nav.login":"Кіру"}`)},
		"locales/en.json": {Data: []byte(`{"nav.home":"Home"}`)},
	}
	b := NewBundle(testLogger())
	if err := loadFS(b, fsys, logger); err != nil {
		t.Fatalf("loadFS: %v", err)
	}
	if got := b.Translate("en", "nav.login"); got != "Вход" {
		t.Errorf("Translate(en, nav.login) = %q, хотели русский перевод", got)
	}
	if !strings.Contains(logs.String(), "lang=en") || strings.Contains(logs.String(), "lang=kk") {
		t.Errorf("предупреждения о пропусках: %s", logs.String())
	}

	delete(fsys, "locales/kk.json")
	if err := loadFS(NewBundle(testLogger()), fsys, logger); err == nil {
		t.Error("ожидалась ошибка для отсутствующего каталога")
	}
}

func TestLangFromContext_Default(t *testing.T) {
	if got := LangFromContext(context.Background()); got != DefaultLocale {
		t.Errorf("LangFromContext() = %q, хотели %q", got, DefaultLocale)
	}
	ctx := WithLang(context.Background(), "kk")
	if got := LangFromContext(ctx); got != "kk" {
		t.Errorf("LangFromContext() = %q, хотели kk", got)
	}
}

func TestTag(t *testing.T) {
	if got := Tag("kk").String(); got != "kk" {
		t.Errorf("Tag(kk) = %q", got)
	}
	if got := Tag("xx").String(); got != "ru" {
		t.Errorf("Tag(xx) = %q, хотели ru", got)
	}
}
