// categories.go — раздел «Категории публикаций» (администратор).
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/validate"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
	uimiddleware "github.com/nirudef/aoka-web/internal/ui/middleware"
	"github.com/nirudef/aoka-web/internal/ui/pages"
)

// CategoriesAPI — операции внешнего API над категориями.
type CategoriesAPI interface {
	ListCategories(ctx context.Context, lang string) ([]model.Category, error)
	GetCategory(ctx context.Context, token, lang, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, token string, in model.CategoryInput) error
	UpdateCategory(ctx context.Context, token, id string, in model.CategoryInput) error
	DeleteCategory(ctx context.Context, token, id string) error
}

// CategoriesHandler — раздел категорий.
type CategoriesHandler struct {
	base
	api CategoriesAPI
}

// NewCategoriesHandler создаёт обработчик раздела категорий.
func NewCategoriesHandler(api CategoriesAPI, sessions *auth.SessionManager, members SessionInvalidator, logger *slog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		base: newBase(sessions, members, logger, "ui.categories"),
		api:  api,
	}
}

// HandleList обрабатывает GET /{lang}/cabinet/categories.
// Категории упорядочены по позиции, затем по ключу.
func (h *CategoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	v := h.cabinetView(w, r, "categories.title")
	data := &pages.CategoriesData{NewHref: categoriesPath(v.Lang) + "/new"}

	list, err := h.api.ListCategories(r.Context(), v.Lang)
	if err != nil {
		h.logFailure(r, "list_categories", err)
		v.ErrorKey = failureKey(err, "")
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].Key < list[j].Key
	})
	for _, c := range list {
		data.Rows = append(data.Rows, pages.CategoryRow{
			RowActions: rowActions(categoriesPath(v.Lang), c.ID),
			Key:        c.Key,
			Name:       c.Name,
			Position:   c.Position,
		})
	}
	h.render(w, r, http.StatusOK, pages.Categories(v, data))
}

// HandleNew обрабатывает GET /{lang}/cabinet/categories/new.
func (h *CategoriesHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	v := h.cabinetView(w, r, "breadcrumbs.new.categories")
	h.renderForm(w, r, http.StatusOK, v, validate.CategoryForm{Position: "0"}, "")
}

// HandleCreate обрабатывает POST /{lang}/cabinet/categories.
func (h *CategoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// HandleEdit обрабатывает GET /{lang}/cabinet/categories/{id}/edit.
func (h *CategoriesHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	c, err := h.api.GetCategory(r.Context(), uimiddleware.TokenFromContext(r.Context()), lang(r), id)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}

	form := validate.CategoryForm{
		Key:      c.Key,
		Position: strconv.Itoa(c.Position),
		Names:    make(map[string]string, len(i18n.Locales)),
	}
	for l, t := range c.Translations {
		form.Names[l] = t.Name
	}
	// Без переводов в ответе известно только название на текущем языке.
	if len(c.Translations) == 0 {
		form.Names[lang(r)] = c.Name
	}

	v := h.cabinetView(w, r, "breadcrumbs.edit.categories")
	h.renderForm(w, r, http.StatusOK, v, form, id)
}

// HandleUpdate обрабатывает POST /{lang}/cabinet/categories/{id}.
func (h *CategoriesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	h.save(w, r, id)
}

// HandleDelete обрабатывает POST /{lang}/cabinet/categories/{id}/delete.
func (h *CategoriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	target := categoriesPath(lang(r))
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	if err := h.api.DeleteCategory(r.Context(), uimiddleware.TokenFromContext(r.Context()), id); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "delete_category", err)
		h.redirectFlash(w, r, target, auth.Flash{Kind: auth.FlashError, Key: failureKey(err, "")})
		return
	}

	h.logger.Info("Категория удалена", slog.String("id", id))
	h.redirectFlash(w, r, target, auth.Flash{Kind: auth.FlashSuccess, Key: "categories.deleted"})
}

func (h *CategoriesHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	titleKey := "breadcrumbs.new.categories"
	if id != "" {
		titleKey = "breadcrumbs.edit.categories"
	}
	v := h.cabinetView(w, r, titleKey)

	form := validate.CategoryForm{
		Key:      formValue(r, "key"),
		Position: formValue(r, "position"),
		Names:    make(map[string]string, len(i18n.Locales)),
	}
	for _, l := range i18n.Locales {
		form.Names[l] = formValue(r, "name_"+l)
	}

	if errs := validate.Category(form); !errs.Empty() {
		v.Errors = errs
		h.renderForm(w, r, http.StatusUnprocessableEntity, v, form, id)
		return
	}

	in := model.CategoryInput{Key: form.Key}
	in.Position, _ = strconv.Atoi(form.Position)
	for _, l := range i18n.Locales {
		if form.Names[l] != "" {
			in.Translations = append(in.Translations, model.CategoryTranslation{Locale: l, Name: form.Names[l]})
		}
	}

	token := uimiddleware.TokenFromContext(r.Context())
	var err error
	flashKey := "categories.created"
	if id == "" {
		err = h.api.CreateCategory(r.Context(), token, in)
	} else {
		err = h.api.UpdateCategory(r.Context(), token, id, in)
		flashKey = "categories.updated"
	}
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "save_category", err)
		v.ErrorKey = failureKey(err, "errors.duplicateKey")
		h.renderForm(w, r, http.StatusOK, v, form, id)
		return
	}

	h.logger.Info("Категория сохранена", slog.String("key", in.Key))
	h.redirectFlash(w, r, categoriesPath(v.Lang), auth.Flash{Kind: auth.FlashSuccess, Key: flashKey})
}

func (h *CategoriesHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, v pages.View, form validate.CategoryForm, id string) {
	data := &pages.CategoryFormData{
		Action:   categoriesPath(v.Lang),
		Key:      form.Key,
		Position: form.Position,
		Names:    form.Names,
		IsNew:    id == "",
	}
	if id != "" {
		data.Action += "/" + id
	}
	h.render(w, r, status, pages.CategoryForm(v, data))
}

func categoriesPath(lang string) string {
	return "/" + lang + "/cabinet/categories"
}
