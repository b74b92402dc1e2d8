// articles.go — раздел «Публикации» (администратор).
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/slug"
	"github.com/nirudef/aoka-web/internal/domain/validate"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
	uimiddleware "github.com/nirudef/aoka-web/internal/ui/middleware"
	"github.com/nirudef/aoka-web/internal/ui/pages"
)

// ArticlesAPI — операции внешнего API над публикациями.
type ArticlesAPI interface {
	ListArticles(ctx context.Context, token, lang string) ([]model.ArticleSummary, error)
	GetArticleForEdit(ctx context.Context, token, lang, slug string) (*model.ArticleEdit, error)
	CreateArticle(ctx context.Context, token string, in model.ArticleInput) error
	UpdateArticle(ctx context.Context, token, slug string, in model.ArticleInput) error
	DeleteArticle(ctx context.Context, token, slug string) error
	ListCategories(ctx context.Context, lang string) ([]model.Category, error)
}

// ArticlesHandler — раздел публикаций кабинета.
type ArticlesHandler struct {
	base
	api ArticlesAPI
	now func() time.Time
}

// NewArticlesHandler создаёт обработчик раздела публикаций.
func NewArticlesHandler(api ArticlesAPI, sessions *auth.SessionManager, members SessionInvalidator, logger *slog.Logger) *ArticlesHandler {
	return &ArticlesHandler{
		base: newBase(sessions, members, logger, "ui.articles"),
		api:  api,
		now:  time.Now,
	}
}

// articleForm — форма публикации вместе с переводами.
type articleForm struct {
	validate.ArticleForm
	Translations map[string]model.ArticleTranslation
}

// HandleList обрабатывает GET /{lang}/cabinet/articles.
func (h *ArticlesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	v := h.cabinetView(w, r, "cabinetArticles.title")
	data := &pages.CabinetArticlesData{NewHref: articlesPath(v.Lang) + "/new"}

	list, err := h.api.ListArticles(r.Context(), uimiddleware.TokenFromContext(r.Context()), v.Lang)
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "list_articles", err)
		v.ErrorKey = failureKey(err, "")
	}

	for i := range list {
		a := &list[i]
		data.Rows = append(data.Rows, pages.CabinetArticleRow{
			RowActions:  rowActions(articlesPath(v.Lang), a.Slug),
			Title:       a.Title,
			Slug:        a.Slug,
			StatusKey:   "status." + a.Status,
			PublishedAt: a.PublishedAt,
		})
	}
	h.render(w, r, http.StatusOK, pages.CabinetArticles(v, data))
}

// HandleNew обрабатывает GET /{lang}/cabinet/articles/new.
func (h *ArticlesHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	v := h.cabinetView(w, r, "breadcrumbs.new.articles")
	form := articleForm{ArticleForm: validate.ArticleForm{
		Status:      model.ArticleDraft,
		PublishedAt: h.now().Format(time.DateOnly),
	}}
	h.renderForm(w, r, http.StatusOK, v, form, "")
}

// HandleCreate обрабатывает POST /{lang}/cabinet/articles.
func (h *ArticlesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// HandleEdit обрабатывает GET /{lang}/cabinet/articles/{slug}/edit.
func (h *ArticlesHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	current, ok := slugParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	a, err := h.api.GetArticleForEdit(r.Context(), uimiddleware.TokenFromContext(r.Context()), lang(r), current)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}

	v := h.cabinetView(w, r, "breadcrumbs.edit.articles")
	h.renderForm(w, r, http.StatusOK, v, articleFormFromEdit(a), current)
}

// HandleUpdate обрабатывает POST /{lang}/cabinet/articles/{slug}.
func (h *ArticlesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	current, ok := slugParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	h.save(w, r, current)
}

// HandleDelete обрабатывает POST /{lang}/cabinet/articles/{slug}/delete.
func (h *ArticlesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	target := articlesPath(lang(r))
	current, ok := slugParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	if err := h.api.DeleteArticle(r.Context(), uimiddleware.TokenFromContext(r.Context()), current); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "delete_article", err)
		h.redirectFlash(w, r, target, auth.Flash{Kind: auth.FlashError, Key: failureKey(err, "")})
		return
	}

	h.logger.Info("Публикация удалена", slog.String("slug", current))
	h.redirectFlash(w, r, target, auth.Flash{Kind: auth.FlashSuccess, Key: "cabinetArticles.deleted"})
}

// save создаёт (current == "") или обновляет публикацию.
// Пустой slug генерируется из русского заголовка.
func (h *ArticlesHandler) save(w http.ResponseWriter, r *http.Request, current string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	titleKey := "breadcrumbs.new.articles"
	if current != "" {
		titleKey = "breadcrumbs.edit.articles"
	}
	v := h.cabinetView(w, r, titleKey)

	form := articleFormFromRequest(r)
	if form.Slug == "" {
		form.Slug = slug.FromTitle(form.Titles[i18n.DefaultLocale], slug.DefaultMaxLen)
	}

	errs := validate.Article(form.ArticleForm, model.ArticleStatuses)
	if form.Slug != "" && !slug.IsValid(form.Slug) {
		errs.Add("slug", "validation.slugInvalid")
	}
	if !errs.Empty() {
		v.Errors = errs
		h.renderForm(w, r, http.StatusUnprocessableEntity, v, form, current)
		return
	}

	in := articleInput(form)
	token := uimiddleware.TokenFromContext(r.Context())
	var err error
	flashKey := "cabinetArticles.created"
	if current == "" {
		err = h.api.CreateArticle(r.Context(), token, in)
	} else {
		err = h.api.UpdateArticle(r.Context(), token, current, in)
		flashKey = "cabinetArticles.updated"
	}
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "save_article", err)
		v.ErrorKey = failureKey(err, "errors.duplicateSlug")
		h.renderForm(w, r, http.StatusOK, v, form, current)
		return
	}

	h.logger.Info("Публикация сохранена", slog.String("slug", in.Slug))
	h.redirectFlash(w, r, articlesPath(v.Lang), auth.Flash{Kind: auth.FlashSuccess, Key: flashKey})
}

func (h *ArticlesHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, v pages.View, form articleForm, current string) {
	categories, err := h.api.ListCategories(r.Context(), v.Lang)
	if err != nil {
		h.logFailure(r, "list_categories", err)
	}

	data := &pages.ArticleFormData{
		Action:      articlesPath(v.Lang),
		Slug:        form.Slug,
		PublishedAt: form.PublishedAt,
		IsNew:       current == "",
	}
	if current != "" {
		data.Action += "/" + current
	}
	for _, s := range model.ArticleStatuses {
		data.Statuses = append(data.Statuses, pages.Option{Value: s, LabelKey: "status." + s, Selected: s == form.Status})
	}
	for _, c := range categories {
		data.Categories = append(data.Categories, pages.Option{Value: c.ID, Label: c.Name, Selected: c.ID == form.CategoryID})
	}
	for _, l := range i18n.Locales {
		t := form.Translations[l]
		data.Translations = append(data.Translations, pages.ArticleTranslationFields{
			Lang:            l,
			Title:           t.Title,
			Lead:            t.Lead,
			Body:            t.Body,
			MetaTitle:       t.MetaTitle,
			MetaDescription: t.MetaDescription,
		})
	}
	h.render(w, r, status, pages.ArticleForm(v, data))
}

func articlesPath(lang string) string {
	return "/" + lang + "/cabinet/articles"
}

// slugParam возвращает {slug} из пути, если он допустим.
func slugParam(r *http.Request) (string, bool) {
	s := chi.URLParam(r, "slug")
	return s, slug.IsValid(s)
}

func articleFormFromRequest(r *http.Request) articleForm {
	f := articleForm{
		ArticleForm: validate.ArticleForm{
			Slug:        formValue(r, "slug"),
			Status:      formValue(r, "status"),
			PublishedAt: formValue(r, "published_at"),
			CategoryID:  formValue(r, "category_id"),
			Titles:      make(map[string]string, len(i18n.Locales)),
		},
		Translations: make(map[string]model.ArticleTranslation, len(i18n.Locales)),
	}
	for _, l := range i18n.Locales {
		t := model.ArticleTranslation{
			Locale:          l,
			Title:           formValue(r, "title_"+l),
			Lead:            formValue(r, "lead_"+l),
			Body:            r.PostFormValue("body_" + l),
			MetaTitle:       formValue(r, "meta_title_"+l),
			MetaDescription: formValue(r, "meta_description_"+l),
		}
		f.Titles[l] = t.Title
		f.Translations[l] = t
	}
	return f
}

func articleFormFromEdit(a *model.ArticleEdit) articleForm {
	f := articleForm{
		ArticleForm: validate.ArticleForm{
			Slug:        a.Slug,
			Status:      a.Status,
			PublishedAt: a.PublishedAt,
			CategoryID:  deref(a.CategoryID),
			Titles:      make(map[string]string, len(a.Translations)),
		},
		Translations: a.Translations,
	}
	// Дата может прийти с временем: форме нужна только дата.
	if len(f.PublishedAt) > len(time.DateOnly) {
		f.PublishedAt = f.PublishedAt[:len(time.DateOnly)]
	}
	for l, t := range a.Translations {
		f.Titles[l] = t.Title
	}
	return f
}

// articleInput переводит форму в тело запроса. Языки без заголовка
// не отправляются.
func articleInput(f articleForm) model.ArticleInput {
	in := model.ArticleInput{
		Slug:        f.Slug,
		Status:      f.Status,
		PublishedAt: f.PublishedAt,
		CategoryID:  optionalString(f.CategoryID),
	}
	for _, l := range i18n.Locales {
		t := f.Translations[l]
		if t.Title == "" {
			continue
		}
		t.Locale = l
		in.Translations = append(in.Translations, t)
	}
	return in
}
