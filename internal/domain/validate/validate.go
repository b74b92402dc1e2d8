// Пакет validate — проверка форм до отправки во внешний API.
// Каждая функция возвращает упорядоченный список ошибок полей;
// ошибка — ключ каталога переводов, а не готовый текст.
package validate

import (
	"regexp"
	"strings"
)

// FieldError — ошибка одного поля формы.
type FieldError struct {
	Field string
	Key   string
}

// Errors — ошибки формы в порядке проверки.
type Errors []FieldError

// Add добавляет ошибку поля.
func (e *Errors) Add(field, key string) {
	*e = append(*e, FieldError{Field: field, Key: key})
}

// Empty сообщает, что ошибок нет.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// First возвращает ключ первой ошибки или пустую строку.
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Key
}

// For возвращает ключ первой ошибки поля или пустую строку.
func (e Errors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Key
		}
	}
	return ""
}

var (
	reIIN         = regexp.MustCompile(`^\d{12}$`)
	rePhone       = regexp.MustCompile(`^[+\d\-\s()]{10,}$`)
	reCategoryKey = regexp.MustCompile(`^[a-z_]+$`)
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// emailLooksValid — упрощённая проверка: есть «@» и «.».
func emailLooksValid(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}

// phoneLooksValid — не короче 10 символов из цифр, пробелов, «+-()».
func phoneLooksValid(s string) bool {
	return rePhone.MatchString(s)
}
