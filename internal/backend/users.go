package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nirudef/aoka-web/internal/domain/model"
)

// ListUsers возвращает страницу пользователей (операция администратора).
func (c *Client) ListUsers(ctx context.Context, token, lang string, f model.MemberFilter) (*model.MemberPage, error) {
	q := filterQuery(lang, f)

	var page model.MemberPage
	err := c.doJSON(ctx, request{
		op:     "list_users",
		method: http.MethodGet,
		path:   "/api/v1/users",
		token:  token,
		query:  q,
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListLawyers возвращает страницу публичного реестра адвокатов.
func (c *Client) ListLawyers(ctx context.Context, lang string, f model.MemberFilter) (*model.MemberPage, error) {
	q := filterQuery(lang, f)

	var page model.MemberPage
	err := c.doJSON(ctx, request{
		op:     "list_lawyers",
		method: http.MethodGet,
		path:   "/api/v1/public/lawyers",
		query:  q,
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser возвращает пользователя по ID.
func (c *Client) GetUser(ctx context.Context, token, id string) (*model.Member, error) {
	var raw json.RawMessage
	err := c.doJSON(ctx, request{
		op:     "get_user",
		method: http.MethodGet,
		path:   "/api/v1/users/" + url.PathEscape(id),
		token:  token,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return decodeMember(raw)
}

// CreateUser создаёт пользователя.
func (c *Client) CreateUser(ctx context.Context, token string, in model.MemberInput) error {
	return c.doJSON(ctx, request{
		op:     "create_user",
		method: http.MethodPost,
		path:   "/api/v1/users",
		token:  token,
		body:   in,
	}, nil)
}

// UpdateUser изменяет пользователя.
func (c *Client) UpdateUser(ctx context.Context, token, id string, in model.MemberInput) error {
	return c.doJSON(ctx, request{
		op:     "update_user",
		method: http.MethodPut,
		path:   "/api/v1/users/" + url.PathEscape(id),
		token:  token,
		body:   in,
	}, nil)
}

// DeleteUser удаляет пользователя.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, request{
		op:     "delete_user",
		method: http.MethodDelete,
		path:   "/api/v1/users/" + url.PathEscape(id),
		token:  token,
	}, nil)
}

func filterQuery(lang string, f model.MemberFilter) url.Values {
	q := langQuery(lang)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Query != "" {
		q.Set("query", f.Query)
	}
	if f.Role != "" {
		q.Set("role", f.Role)
	}
	if f.BranchID != "" {
		q.Set("branch_id", f.BranchID)
	}
	if f.LawOfficeID != "" {
		q.Set("law_office_id", f.LawOfficeID)
	}
	return q
}
