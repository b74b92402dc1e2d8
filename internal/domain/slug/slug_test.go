package slug

import (
	"strings"
	"testing"
)

func TestTransliterate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"русский заголовок", "Новости коллегии", "novosti-kollegii"},
		{"регистр", "ПРИВЕТ Мир", "privet-mir"},
		{"составные буквы", "Щука и ёж", "shchuka-i-yozh"},
		{"мягкий и твёрдый знак", "Объявление о съезде", "obyavlenie-o-sezde"},
		{"казахские буквы", "Қазақ әдебиеті", "kazak-adebieti"},
		{"знаки препинания", "Итоги 2025 года: что изменилось?", "itogi-2025-goda-chto-izmenilos"},
		{"латиница без изменений", "Legal aid", "legal-aid"},
		{"крайние и повторные дефисы", "  -- Приём -- граждан --  ", "priyom-grazhdan"},
		{"пустая строка", "", ""},
		{"только символы", "!!! ???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transliterate(tt.input); got != tt.want {
				t.Errorf("Transliterate(%q) = %q, хотели %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromTitle_MaxLen(t *testing.T) {
	title := strings.Repeat("Адвокатская палата ", 10)
	got := FromTitle(title, DefaultMaxLen)
	if len(got) > DefaultMaxLen {
		t.Errorf("длина slug = %d, максимум %d", len(got), DefaultMaxLen)
	}
	if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
		t.Errorf("slug %q начинается или заканчивается дефисом", got)
	}
	if !IsValid(got) {
		t.Errorf("IsValid(%q) = false", got)
	}
}

func TestFromTitle_CutAtDash(t *testing.T) {
	tests := []struct {
		title  string
		maxLen int
		want   string
	}{
		{"Приём граждан", 6, "priyom"},
		{"Приём граждан", 7, "priyom"},
		{"Приём граждан", 0, "priyom-grazhdan"},
	}
	for _, tt := range tests {
		if got := FromTitle(tt.title, tt.maxLen); got != tt.want {
			t.Errorf("FromTitle(%q, %d) = %q, хотели %q", tt.title, tt.maxLen, got, tt.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"news", "news-2025", "a-b-c"}
	invalid := []string{"", "-news", "news-", "News", "новости", "a--b", "a b"}

	for _, s := range valid {
		if !IsValid(s) {
			t.Errorf("IsValid(%q) = false", s)
		}
	}
	for _, s := range invalid {
		if IsValid(s) {
			t.Errorf("IsValid(%q) = true", s)
		}
	}
}
