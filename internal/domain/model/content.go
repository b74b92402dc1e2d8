package model

// Статусы публикаций.
const (
	ArticleDraft     = "draft"
	ArticlePublished = "published"
	ArticleArchived  = "archived"
)

// ArticleStatuses — допустимые статусы в порядке отображения.
var ArticleStatuses = []string{ArticleDraft, ArticlePublished, ArticleArchived}

// CategoryRef — категория в составе публикации.
type CategoryRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ArticleSummary — публикация в списке (уже локализованная внешним API).
type ArticleSummary struct {
	ID          string       `json:"id"`
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	Lead        string       `json:"lead"`
	PublishedAt string       `json:"published_at"`
	Status      string       `json:"status,omitempty"`
	Category    *CategoryRef `json:"category"`
}

// Article — публикация для чтения на публичном сайте.
type Article struct {
	ArticleSummary
	Body            string `json:"body"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

// PageTitle — заголовок страницы: meta_title, если задан.
func (a *Article) PageTitle() string {
	if a.MetaTitle != "" {
		return a.MetaTitle
	}
	return a.Title
}

// ArticleTranslation — переводимые поля публикации.
type ArticleTranslation struct {
	Locale          string `json:"locale,omitempty"`
	Title           string `json:"title"`
	Lead            string `json:"lead"`
	Body            string `json:"body"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

// ArticleEdit — публикация в режиме редактирования: переводы по языкам.
type ArticleEdit struct {
	ID           string                        `json:"id,omitempty"`
	Slug         string                        `json:"slug"`
	Status       string                        `json:"status"`
	PublishedAt  string                        `json:"published_at"`
	CategoryID   *string                       `json:"category_id"`
	Translations map[string]ArticleTranslation `json:"translations"`
}

// ArticleInput — тело создания/изменения публикации.
type ArticleInput struct {
	Slug         string               `json:"slug"`
	Status       string               `json:"status"`
	PublishedAt  string               `json:"published_at"`
	CategoryID   *string              `json:"category_id"`
	Translations []ArticleTranslation `json:"translations"`
}

// Category — категория публикаций.
type Category struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	// Заполняется только при запросе одной категории.
	Translations map[string]NameTranslation `json:"translations,omitempty"`
}

// CategoryTranslation — перевод названия категории в теле запроса.
type CategoryTranslation struct {
	Locale string `json:"locale"`
	Name   string `json:"name"`
}

// CategoryInput — тело создания/изменения категории.
type CategoryInput struct {
	Key          string                `json:"key"`
	Position     int                   `json:"position"`
	Translations []CategoryTranslation `json:"translations"`
}

// ContactMessage — сообщение из формы обратной связи.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Lang    string `json:"lang"`
}
