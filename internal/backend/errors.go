package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel-ошибки для классификации отказов внешнего API.
// Сопоставляются с *APIError через errors.Is.
var (
	ErrUnauthorized = errors.New("внешний API: доступ запрещён")
	ErrNotFound     = errors.New("внешний API: не найдено")
	ErrConflict     = errors.New("внешний API: конфликт")
	ErrValidation   = errors.New("внешний API: некорректные данные")
)

// APIError — внешний API ответил статусом вне 2xx.
// Ошибки транспорта (соединение, таймаут) этим типом не являются:
// по этому признаку отличается явный отказ от недоступности API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("внешний API вернул статус %d: %s", e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("внешний API вернул статус %d", e.StatusCode)
}

// Is сопоставляет статус с sentinel-ошибками.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// Message извлекает поле "error" (строку) из JSON-тела ответа, если оно есть.
func (e *APIError) Message() string {
	var body struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	if s, ok := body.Error.(string); ok {
		return s
	}
	return ""
}

// AsAPIError возвращает *APIError из цепочки ошибок.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRejection сообщает, что внешний API явно отказал (ответ вне 2xx),
// а не оказался недоступен.
func IsRejection(err error) bool {
	_, ok := AsAPIError(err)
	return ok
}
