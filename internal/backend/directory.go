package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nirudef/aoka-web/internal/domain/model"
)

// ListOrganizations возвращает все филиалы или конторы.
func (c *Client) ListOrganizations(ctx context.Context, kind model.OrganizationKind, lang string) ([]model.Organization, error) {
	var items []model.Organization
	err := c.doJSON(ctx, request{
		op:     "list_" + string(kind),
		method: http.MethodGet,
		path:   "/api/v1/" + string(kind),
		query:  langQuery(lang),
	}, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetOrganization ищет филиал или контору по ID в общем списке.
// Отдельного запроса одной записи справочника у API нет.
func (c *Client) GetOrganization(ctx context.Context, kind model.OrganizationKind, lang, id string) (*model.Organization, error) {
	items, err := c.ListOrganizations(ctx, kind, lang)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, &APIError{StatusCode: http.StatusNotFound}
}

// CreateOrganization создаёт филиал или контору.
func (c *Client) CreateOrganization(ctx context.Context, kind model.OrganizationKind, token string, in model.Organization) error {
	return c.doJSON(ctx, request{
		op:     "create_" + string(kind),
		method: http.MethodPost,
		path:   "/api/v1/" + string(kind),
		token:  token,
		body:   map[string]any{kind.PayloadKey(): in},
	}, nil)
}

// UpdateOrganization изменяет филиал или контору.
func (c *Client) UpdateOrganization(ctx context.Context, kind model.OrganizationKind, token, id string, in model.Organization) error {
	return c.doJSON(ctx, request{
		op:     "update_" + string(kind),
		method: http.MethodPut,
		path:   "/api/v1/" + string(kind) + "/" + url.PathEscape(id),
		token:  token,
		body:   map[string]any{kind.PayloadKey(): in},
	}, nil)
}

// DeleteOrganization удаляет филиал или контору.
func (c *Client) DeleteOrganization(ctx context.Context, kind model.OrganizationKind, token, id string) error {
	return c.doJSON(ctx, request{
		op:     "delete_" + string(kind),
		method: http.MethodDelete,
		path:   "/api/v1/" + string(kind) + "/" + url.PathEscape(id),
		token:  token,
	}, nil)
}
