// public.go — публичные страницы: главная, о коллегии, центр, реестр
// адвокатов, публикации, контакты с формой обратной связи.
package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/validate"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/pages"
)

// homeArticles — сколько последних публикаций показывать на главной.
const homeArticles = 3

// PublicAPI — операции внешнего API для публичных страниц.
type PublicAPI interface {
	ListPublishedArticles(ctx context.Context, lang string) ([]model.ArticleSummary, error)
	GetPublishedArticle(ctx context.Context, lang, slug string) (*model.Article, error)
	ListCategories(ctx context.Context, lang string) ([]model.Category, error)
	ListOrganizations(ctx context.Context, kind model.OrganizationKind, lang string) ([]model.Organization, error)
	ListLawyers(ctx context.Context, lang string, f model.MemberFilter) (*model.MemberPage, error)
	SendContactMessage(ctx context.Context, msg model.ContactMessage) error
}

// PublicHandler — обработчик публичных страниц.
type PublicHandler struct {
	base
	api PublicAPI
}

// NewPublicHandler создаёт обработчик публичных страниц.
func NewPublicHandler(api PublicAPI, sessions *auth.SessionManager, members SessionInvalidator, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		base: newBase(sessions, members, logger, "ui.public"),
		api:  api,
	}
}

// HandleHome обрабатывает GET /{lang}.
func (h *PublicHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	v := h.view(w, r, "")
	v.Description = v.T("site.description")

	data := &pages.HomeData{}
	if list, err := h.api.ListPublishedArticles(r.Context(), v.Lang); err == nil {
		if len(list) > homeArticles {
			list = list[:homeArticles]
		}
		data.Articles = articleCards(v.Lang, list)
	}

	h.render(w, r, http.StatusOK, pages.Home(v, data))
}

// HandleCollegium обрабатывает GET /{lang}/collegium.
func (h *PublicHandler) HandleCollegium(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pages.Collegium(h.view(w, r, "collegium.title")))
}

// HandleCenter обрабатывает GET /{lang}/center.
func (h *PublicHandler) HandleCenter(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pages.Center(h.view(w, r, "center.title")))
}

// HandleNotFound отправляет страницу 404 для неизвестных путей.
func (h *PublicHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r)
}

// HandleLawyers обрабатывает GET /{lang}/lawyers — реестр адвокатов
// с поиском, фильтрами по филиалу и конторе и пагинацией.
// Реестр и списки для фильтров загружаются параллельно.
func (h *PublicHandler) HandleLawyers(w http.ResponseWriter, r *http.Request) {
	v := h.view(w, r, "lawyers.title")
	filter := memberFilter(r)
	filter.Role = ""

	var (
		lawyers           *model.MemberPage
		lawyersErr        error
		branches, offices []model.Organization
	)

	var g errgroup.Group
	g.Go(func() error {
		lawyers, lawyersErr = h.api.ListLawyers(r.Context(), v.Lang, filter)
		return nil
	})
	g.Go(func() error {
		branches, _ = h.api.ListOrganizations(r.Context(), model.KindBranch, v.Lang)
		return nil
	})
	g.Go(func() error {
		offices, _ = h.api.ListOrganizations(r.Context(), model.KindLawOffice, v.Lang)
		return nil
	})
	_ = g.Wait()

	data := &pages.LawyersData{
		Query:    filter.Query,
		Branches: orgOptions(branches, v.Lang, filter.BranchID),
		Offices:  orgOptions(offices, v.Lang, filter.LawOfficeID),
		Pager:    pagerFor(r, filter.Page, 1),
	}

	if lawyersErr != nil {
		h.logFailure(r, "list_lawyers", lawyersErr)
		data.Unavailable = true
	} else {
		data.Total = lawyers.Meta.TotalCount
		data.Pager = pagerFor(r, filter.Page, lawyers.Meta.TotalPages)
		for i := range lawyers.Users {
			m := &lawyers.Users[i]
			data.Rows = append(data.Rows, pages.LawyerRow{
				Name:   m.FullName(),
				Branch: m.Branch.Name(v.Lang),
				Office: m.LawOffice.Name(v.Lang),
			})
		}
	}

	h.render(w, r, http.StatusOK, pages.Lawyers(v, data))
}

// HandleArticles обрабатывает GET /{lang}/articles.
// Фильтр ?category=<key> применяется к загруженному списку.
func (h *PublicHandler) HandleArticles(w http.ResponseWriter, r *http.Request) {
	v := h.view(w, r, "articles.title")
	category := queryString(r, "category")

	var (
		list       []model.ArticleSummary
		listErr    error
		categories []model.Category
	)

	var g errgroup.Group
	g.Go(func() error {
		list, listErr = h.api.ListPublishedArticles(r.Context(), v.Lang)
		return nil
	})
	g.Go(func() error {
		categories, _ = h.api.ListCategories(r.Context(), v.Lang)
		return nil
	})
	_ = g.Wait()

	data := &pages.ArticlesData{Unavailable: listErr != nil}
	for _, c := range categories {
		data.Categories = append(data.Categories, pages.Option{
			Value:    c.Key,
			Label:    c.Name,
			Selected: c.Key == category,
		})
	}

	if category != "" {
		filtered := list[:0:0]
		for _, a := range list {
			if a.Category != nil && a.Category.Key == category {
				filtered = append(filtered, a)
			}
		}
		list = filtered
	}
	data.Articles = articleCards(v.Lang, list)

	h.render(w, r, http.StatusOK, pages.Articles(v, data))
}

// HandleArticle обрабатывает GET /{lang}/articles/{slug}.
func (h *PublicHandler) HandleArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, err := h.api.GetPublishedArticle(r.Context(), lang(r), slug)
	if err != nil {
		if backend.IsRejection(err) {
			h.notFound(w, r)
			return
		}
		h.unavailable(w, r)
		return
	}

	v := h.view(w, r, "")
	v.Title = article.PageTitle()
	v.Description = article.MetaDescription

	data := &pages.ArticleData{
		Heading:     article.Title,
		Lead:        article.Lead,
		PublishedAt: article.PublishedAt,
		Body:        template.HTML(article.Body), //nolint:gosec // HTML из редактора администратора
	}
	if article.Category != nil {
		data.CategoryName = article.Category.Name
	}

	h.render(w, r, http.StatusOK, pages.Article(v, data))
}

// HandleContacts обрабатывает GET /{lang}/contacts.
func (h *PublicHandler) HandleContacts(w http.ResponseWriter, r *http.Request) {
	v := h.view(w, r, "contacts.title")
	h.renderContacts(w, r, http.StatusOK, v, &pages.ContactsData{})
}

// HandleContactSubmit обрабатывает POST /{lang}/contacts — форма обратной связи.
func (h *PublicHandler) HandleContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	form := validate.ContactForm{
		Name:    formValue(r, "name"),
		Email:   formValue(r, "email"),
		Message: formValue(r, "message"),
	}
	data := &pages.ContactsData{Name: form.Name, Email: form.Email, Message: form.Message}

	v := h.view(w, r, "contacts.title")
	if errs := validate.Contact(form); !errs.Empty() {
		v.Errors = errs
		h.renderContacts(w, r, http.StatusUnprocessableEntity, v, data)
		return
	}

	err := h.api.SendContactMessage(r.Context(), model.ContactMessage{
		Name:    form.Name,
		Email:   form.Email,
		Message: form.Message,
		Lang:    v.Lang,
	})
	if err != nil {
		h.logFailure(r, "send_contact_message", err)
		v.ErrorKey = failureKey(err, "")
		h.renderContacts(w, r, http.StatusOK, v, data)
		return
	}

	h.redirectFlash(w, r, "/"+v.Lang+"/contacts", auth.Flash{Kind: auth.FlashSuccess, Key: "contacts.sent"})
}

// renderContacts дополняет данные страницы списком филиалов.
func (h *PublicHandler) renderContacts(w http.ResponseWriter, r *http.Request, status int, v pages.View, data *pages.ContactsData) {
	branches, err := h.api.ListOrganizations(r.Context(), model.KindBranch, v.Lang)
	if err != nil {
		h.logFailure(r, "list_branches", err)
	}
	for i := range branches {
		b := &branches[i]
		row := pages.ContactRow{
			Name:        b.Name(v.Lang),
			Address:     b.Address(v.Lang),
			Phone:       b.Phone,
			Email:       b.Email,
			HasLocation: b.HasLocation(),
		}
		if row.HasLocation {
			row.Latitude = b.Latitude.String()
			row.Longitude = b.Longitude.String()
		}
		data.Offices = append(data.Offices, row)
	}

	h.render(w, r, status, pages.Contacts(v, data))
}

// articleCards преобразует публикации в карточки списка.
func articleCards(lang string, list []model.ArticleSummary) []pages.ArticleCard {
	cards := make([]pages.ArticleCard, 0, len(list))
	for _, a := range list {
		card := pages.ArticleCard{
			Href:        "/" + lang + "/articles/" + a.Slug,
			Title:       a.Title,
			Lead:        a.Lead,
			PublishedAt: a.PublishedAt,
		}
		if a.Category != nil {
			card.CategoryName = a.Category.Name
		}
		cards = append(cards, card)
	}
	return cards
}

// orgOptions строит элементы списка филиалов или контор.
func orgOptions(orgs []model.Organization, lang, selected string) []pages.Option {
	opts := make([]pages.Option, 0, len(orgs))
	for i := range orgs {
		o := &orgs[i]
		opts = append(opts, pages.Option{
			Value:    o.ID,
			Label:    o.Name(lang),
			Selected: o.ID != "" && o.ID == selected,
		})
	}
	return opts
}
