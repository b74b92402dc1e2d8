// Пакет model — доменные модели сайта.
// Данные не хранятся локально: все модели приходят из внешнего API
// и сериализуются в его JSON-формате.
package model

import "strings"

// Member — аутентифицированный участник (пользователь внешнего API).
// Опциональные поля внешний API может вернуть как null или не вернуть вовсе.
type Member struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	Verified        bool     `json:"verified"`
	FirstName       string   `json:"first_name,omitempty"`
	LastName        string   `json:"last_name,omitempty"`
	MiddleName      string   `json:"middle_name,omitempty"`
	IIN             string   `json:"iin,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	LicenseNumber   string   `json:"license_number,omitempty"`
	LicenseIssuedAt *string  `json:"license_issued_at,omitempty"`
	JoinedAt        *string  `json:"joined_at,omitempty"`
	BranchID        *string  `json:"branch_id,omitempty"`
	LawOfficeID     *string  `json:"law_office_id,omitempty"`
	Address         string   `json:"address,omitempty"`
	Roles           []string `json:"roles"`

	// Вложенные объекты публичного реестра адвокатов.
	Branch    *NamedRef `json:"branch,omitempty"`
	LawOffice *NamedRef `json:"law_office,omitempty"`
}

// FullName возвращает «Фамилия Имя Отчество» без пустых частей.
func (m *Member) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.LastName, m.FirstName, m.MiddleName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// HasRole проверяет наличие роли у участника.
func (m *Member) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NamedRef — ссылка на филиал или контору с переводами названия.
type NamedRef struct {
	ID           string                      `json:"id,omitempty"`
	Translations map[string]NameTranslation `json:"translations,omitempty"`
}

// NameTranslation — перевод названия.
type NameTranslation struct {
	Name string `json:"name"`
}

// Name возвращает название на языке lang с fallback на ru.
func (n *NamedRef) Name(lang string) string {
	if n == nil {
		return ""
	}
	if t, ok := n.Translations[lang]; ok && t.Name != "" {
		return t.Name
	}
	return n.Translations["ru"].Name
}

// MemberInput — тело создания/изменения пользователя.
// Пустые даты и ссылки отправляются как null.
type MemberInput struct {
	Email           string   `json:"email"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	MiddleName      string   `json:"middle_name"`
	IIN             string   `json:"iin"`
	Phone           string   `json:"phone"`
	LicenseNumber   string   `json:"license_number"`
	LicenseIssuedAt *string  `json:"license_issued_at"`
	JoinedAt        *string  `json:"joined_at"`
	BranchID        *string  `json:"branch_id"`
	LawOfficeID     *string  `json:"law_office_id"`
	Address         *string  `json:"address"`
	Roles           []string `json:"roles,omitempty"`
	Password        string   `json:"password,omitempty"`
}

// PageMeta — метаданные пагинации списков внешнего API.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
}

// MemberPage — страница списка пользователей.
type MemberPage struct {
	Users []Member `json:"users"`
	Meta  PageMeta `json:"meta"`
}

// MemberFilter — параметры выборки списка пользователей.
type MemberFilter struct {
	Page        int
	Query       string
	Role        string
	BranchID    string
	LawOfficeID string
}
