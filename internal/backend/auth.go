package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nirudef/aoka-web/internal/domain/model"
)

// Credentials — учётные данные для входа.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResult — успешный ответ на вход.
type SignInResult struct {
	// Token — непрозрачный токен сессии. Не разбирается.
	Token string `json:"token"`
	// User — данные пользователя в том виде, в каком их вернул API.
	User json.RawMessage `json:"user"`
}

// SignIn создаёт сессию во внешнем API.
// При отказе возвращает *APIError с телом ответа для прозрачной передачи клиенту.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*SignInResult, error) {
	var result SignInResult
	err := c.doJSON(ctx, request{
		op:     "sign_in",
		method: http.MethodPost,
		path:   "/sign_in",
		body:   creds,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("sign_in: ответ без токена")
	}
	return &result, nil
}

// SignOut завершает текущую сессию во внешнем API.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.doJSON(ctx, request{
		op:     "sign_out",
		method: http.MethodDelete,
		path:   "/sessions/current",
		token:  token,
	}, nil)
}

// Me возвращает участника, которому принадлежит токен.
// API может вернуть объект как есть или обёрнутым в {"user": {...}}.
func (c *Client) Me(ctx context.Context, token string) (*model.Member, error) {
	var raw json.RawMessage
	err := c.doJSON(ctx, request{
		op:     "me",
		method: http.MethodGet,
		path:   "/api/v1/me",
		token:  token,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return decodeMember(raw)
}

// decodeMember разбирает участника в плоском или обёрнутом виде.
func decodeMember(raw json.RawMessage) (*model.Member, error) {
	var wrapped struct {
		User *model.Member `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("декодирование участника: %w", err)
	}
	if wrapped.User != nil {
		return normalizeMember(wrapped.User), nil
	}

	var m model.Member
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("декодирование участника: %w", err)
	}
	return normalizeMember(&m), nil
}

// normalizeMember приводит пустые ссылки и роли к единому виду.
func normalizeMember(m *model.Member) *model.Member {
	if m.Roles == nil {
		m.Roles = []string{}
	}
	m.LicenseIssuedAt = nonEmpty(m.LicenseIssuedAt)
	m.JoinedAt = nonEmpty(m.JoinedAt)
	m.BranchID = nonEmpty(m.BranchID)
	m.LawOfficeID = nonEmpty(m.LawOfficeID)
	return m
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
