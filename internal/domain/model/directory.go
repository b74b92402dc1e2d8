package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Organization — филиал или адвокатская контора.
// Оба справочника во внешнем API имеют одинаковую форму.
type Organization struct {
	ID           string                             `json:"id,omitempty"`
	Phone        string                             `json:"phone"`
	Email        string                             `json:"email"`
	Latitude     *Coordinate                        `json:"latitude,omitempty"`
	Longitude    *Coordinate                        `json:"longitude,omitempty"`
	Translations map[string]OrganizationTranslation `json:"translations"`
}

// OrganizationTranslation — переводимые поля организации.
type OrganizationTranslation struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// Name возвращает название на языке lang с fallback на ru.
func (o *Organization) Name(lang string) string {
	return o.tr(lang).Name
}

// Address возвращает адрес на языке lang с fallback на ru.
func (o *Organization) Address(lang string) string {
	return o.tr(lang).Address
}

// HasLocation сообщает, заданы ли обе координаты.
func (o *Organization) HasLocation() bool {
	return o.Latitude != nil && o.Longitude != nil
}

func (o *Organization) tr(lang string) OrganizationTranslation {
	if t, ok := o.Translations[lang]; ok && t.Name != "" {
		return t
	}
	return o.Translations["ru"]
}

// Coordinate — широта или долгота. Внешний API отдаёт её
// то числом, то строкой; принимаются оба варианта.
type Coordinate float64

// UnmarshalJSON принимает число, строку с числом или null.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*c = Coordinate(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = Coordinate(f)
	return nil
}

// String форматирует координату для атрибутов разметки.
func (c Coordinate) String() string {
	return strconv.FormatFloat(float64(c), 'f', -1, 64)
}

// OrganizationKind — вид справочника.
type OrganizationKind string

const (
	KindBranch    OrganizationKind = "branches"
	KindLawOffice OrganizationKind = "law_offices"
)

// PayloadKey — ключ тела запроса при создании/изменении.
func (k OrganizationKind) PayloadKey() string {
	if k == KindLawOffice {
		return "office"
	}
	return "branch"
}
