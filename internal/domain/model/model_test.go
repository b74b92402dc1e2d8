package model

import (
	"encoding/json"
	"testing"
)

func TestCoordinate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Coordinate
		wantErr bool
	}{
		{"число", `{"latitude": 43.85}`, coord(43.85), false},
		{"строка", `{"latitude": "43.85"}`, coord(43.85), false},
		{"null", `{"latitude": null}`, nil, false},
		{"пустая строка", `{"latitude": ""}`, nil, false},
		{"мусор", `{"latitude": "north"}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Organization
			err := json.Unmarshal([]byte(tt.input), &o)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ожидалась ошибка")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			switch {
			case tt.want == nil && o.Latitude != nil && *o.Latitude != 0:
				t.Errorf("Latitude = %v, хотели пусто", *o.Latitude)
			case tt.want != nil && (o.Latitude == nil || *o.Latitude != *tt.want):
				t.Errorf("Latitude = %v, хотели %v", o.Latitude, *tt.want)
			}
		})
	}
}

func TestOrganization_NameFallback(t *testing.T) {
	o := Organization{Translations: map[string]OrganizationTranslation{
		"ru": {Name: "Филиал Конаев", Address: "ул. Степная 8А"},
		"kk": {Name: "Қонаев филиалы"},
		"en": {Name: ""},
	}}

	if got := o.Name("kk"); got != "Қонаев филиалы" {
		t.Errorf("Name(kk) = %q", got)
	}
	if got := o.Name("en"); got != "Филиал Конаев" {
		t.Errorf("Name(en) = %q, хотели fallback на ru", got)
	}
	if got := o.Address("en"); got != "ул. Степная 8А" {
		t.Errorf("Address(en) = %q, хотели fallback на ru", got)
	}
}

func TestMember_FullName(t *testing.T) {
	m := Member{FirstName: "Айгерим", LastName: "Нурланова", MiddleName: " "}
	if got := m.FullName(); got != "Нурланова Айгерим" {
		t.Errorf("FullName() = %q", got)
	}
}

func TestArticle_PageTitle(t *testing.T) {
	a := Article{ArticleSummary: ArticleSummary{Title: "Новости"}}
	if a.PageTitle() != "Новости" {
		t.Errorf("PageTitle() = %q, хотели title", a.PageTitle())
	}
	a.MetaTitle = "Новости коллегии"
	if a.PageTitle() != "Новости коллегии" {
		t.Errorf("PageTitle() = %q, хотели meta_title", a.PageTitle())
	}
}

func coord(f float64) *Coordinate {
	c := Coordinate(f)
	return &c
}
