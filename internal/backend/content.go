package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nirudef/aoka-web/internal/domain/model"
)

// --- Публичные публикации ---

// ListPublishedArticles возвращает опубликованные статьи на языке lang.
func (c *Client) ListPublishedArticles(ctx context.Context, lang string) ([]model.ArticleSummary, error) {
	q := langQuery(lang)
	q.Set("status", model.ArticlePublished)

	var resp struct {
		Articles []model.ArticleSummary `json:"articles"`
	}
	err := c.doJSON(ctx, request{
		op:     "list_public_articles",
		method: http.MethodGet,
		path:   "/api/v1/public/articles",
		query:  q,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Articles, nil
}

// GetPublishedArticle возвращает опубликованную статью по slug.
func (c *Client) GetPublishedArticle(ctx context.Context, lang, slug string) (*model.Article, error) {
	var a model.Article
	err := c.doJSON(ctx, request{
		op:     "get_public_article",
		method: http.MethodGet,
		path:   "/api/v1/public/articles/" + url.PathEscape(slug),
		query:  langQuery(lang),
	}, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// --- Управление публикациями ---

// ListArticles возвращает все статьи (любого статуса).
func (c *Client) ListArticles(ctx context.Context, token, lang string) ([]model.ArticleSummary, error) {
	var resp struct {
		Articles []model.ArticleSummary `json:"articles"`
	}
	err := c.doJSON(ctx, request{
		op:     "list_articles",
		method: http.MethodGet,
		path:   "/api/v1/articles",
		token:  token,
		query:  langQuery(lang),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Articles, nil
}

// GetArticleForEdit возвращает статью с переводами на все языки.
func (c *Client) GetArticleForEdit(ctx context.Context, token, lang, slug string) (*model.ArticleEdit, error) {
	q := langQuery(lang)
	q.Set("edit", "1")

	var a model.ArticleEdit
	err := c.doJSON(ctx, request{
		op:     "get_article",
		method: http.MethodGet,
		path:   "/api/v1/articles/" + url.PathEscape(slug),
		token:  token,
		query:  q,
	}, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateArticle создаёт статью.
func (c *Client) CreateArticle(ctx context.Context, token string, in model.ArticleInput) error {
	return c.doJSON(ctx, request{
		op:     "create_article",
		method: http.MethodPost,
		path:   "/api/v1/articles",
		token:  token,
		body:   map[string]any{"article": in},
	}, nil)
}

// UpdateArticle изменяет статью, найденную по прежнему slug.
func (c *Client) UpdateArticle(ctx context.Context, token, slug string, in model.ArticleInput) error {
	return c.doJSON(ctx, request{
		op:     "update_article",
		method: http.MethodPut,
		path:   "/api/v1/articles/" + url.PathEscape(slug),
		token:  token,
		body:   map[string]any{"article": in},
	}, nil)
}

// DeleteArticle удаляет статью.
func (c *Client) DeleteArticle(ctx context.Context, token, slug string) error {
	return c.doJSON(ctx, request{
		op:     "delete_article",
		method: http.MethodDelete,
		path:   "/api/v1/articles/" + url.PathEscape(slug),
		token:  token,
	}, nil)
}

// --- Категории ---

// ListCategories возвращает категории на языке lang.
func (c *Client) ListCategories(ctx context.Context, lang string) ([]model.Category, error) {
	var resp struct {
		Categories []model.Category `json:"categories"`
	}
	err := c.doJSON(ctx, request{
		op:     "list_categories",
		method: http.MethodGet,
		path:   "/api/v1/categories",
		query:  langQuery(lang),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// GetCategory возвращает категорию с переводами.
func (c *Client) GetCategory(ctx context.Context, token, lang, id string) (*model.Category, error) {
	var cat model.Category
	err := c.doJSON(ctx, request{
		op:     "get_category",
		method: http.MethodGet,
		path:   "/api/v1/categories/" + url.PathEscape(id),
		token:  token,
		query:  langQuery(lang),
	}, &cat)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory создаёт категорию.
func (c *Client) CreateCategory(ctx context.Context, token string, in model.CategoryInput) error {
	return c.doJSON(ctx, request{
		op:     "create_category",
		method: http.MethodPost,
		path:   "/api/v1/categories",
		token:  token,
		body:   map[string]any{"category": in},
	}, nil)
}

// UpdateCategory изменяет категорию.
func (c *Client) UpdateCategory(ctx context.Context, token, id string, in model.CategoryInput) error {
	return c.doJSON(ctx, request{
		op:     "update_category",
		method: http.MethodPut,
		path:   "/api/v1/categories/" + url.PathEscape(id),
		token:  token,
		body:   map[string]any{"category": in},
	}, nil)
}

// DeleteCategory удаляет категорию.
func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, request{
		op:     "delete_category",
		method: http.MethodDelete,
		path:   "/api/v1/categories/" + url.PathEscape(id),
		token:  token,
	}, nil)
}

// --- Обратная связь ---

// SendContactMessage передаёт сообщение формы обратной связи.
func (c *Client) SendContactMessage(ctx context.Context, msg model.ContactMessage) error {
	return c.doJSON(ctx, request{
		op:     "contact_message",
		method: http.MethodPost,
		path:   "/api/v1/contact_messages",
		body:   map[string]any{"contact_message": msg},
	}, nil)
}
