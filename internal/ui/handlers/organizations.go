// organizations.go — разделы «Филиалы» и «Юридические конторы».
// Оба раздела обслуживает один обработчик, различающийся видом организации.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/rbac"
	"github.com/nirudef/aoka-web/internal/domain/validate"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
	uimiddleware "github.com/nirudef/aoka-web/internal/ui/middleware"
	"github.com/nirudef/aoka-web/internal/ui/pages"
)

// organizationsPageSize — строк на странице списка.
const organizationsPageSize = 20

// OrganizationsAPI — операции внешнего API над филиалами и конторами.
type OrganizationsAPI interface {
	ListOrganizations(ctx context.Context, kind model.OrganizationKind, lang string) ([]model.Organization, error)
	GetOrganization(ctx context.Context, kind model.OrganizationKind, lang, id string) (*model.Organization, error)
	CreateOrganization(ctx context.Context, kind model.OrganizationKind, token string, in model.Organization) error
	UpdateOrganization(ctx context.Context, kind model.OrganizationKind, token, id string, in model.Organization) error
	DeleteOrganization(ctx context.Context, kind model.OrganizationKind, token, id string) error
}

// OrganizationsHandler — раздел филиалов или контор.
type OrganizationsHandler struct {
	base
	api     OrganizationsAPI
	kind    model.OrganizationKind
	section rbac.Section
}

// NewOrganizationsHandler создаёт обработчик раздела для вида kind.
func NewOrganizationsHandler(api OrganizationsAPI, kind model.OrganizationKind, sessions *auth.SessionManager, members SessionInvalidator, logger *slog.Logger) *OrganizationsHandler {
	section := rbac.SectionBranches
	if kind == model.KindLawOffice {
		section = rbac.SectionOffices
	}
	return &OrganizationsHandler{
		base:    newBase(sessions, members, logger.With(slog.String("kind", string(kind))), "ui.organizations"),
		api:     api,
		kind:    kind,
		section: section,
	}
}

// HandleList обрабатывает GET /{lang}/cabinet/{branches|offices}.
// Поиск и постраничная разбивка выполняются на стороне сайта.
func (h *OrganizationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	v := h.cabinetView(w, r, "sections."+string(h.section))
	query := queryString(r, "query")
	page := queryPage(r)

	data := &pages.OrganizationsData{
		Query:   query,
		NewHref: h.listPath(v.Lang) + "/new",
		Pager:   pagerFor(r, 1, 1),
	}

	list, err := h.api.ListOrganizations(r.Context(), h.kind, v.Lang)
	if err != nil {
		h.logFailure(r, "list_organizations", err)
		v.ErrorKey = failureKey(err, "")
		h.render(w, r, http.StatusOK, pages.Organizations(v, data))
		return
	}

	list = filterOrganizations(list, query, v.Lang)
	data.Total = len(list)

	totalPages := (len(list) + organizationsPageSize - 1) / organizationsPageSize
	// пустой список — одна пустая страница; ограничение до умножения
	page = min(page, max(totalPages, 1))
	data.Pager = pagerFor(r, page, totalPages)

	start := (page - 1) * organizationsPageSize
	end := min(start+organizationsPageSize, len(list))
	for i := start; i < end; i++ {
		o := &list[i]
		data.Rows = append(data.Rows, pages.OrganizationRow{
			RowActions: rowActions(h.listPath(v.Lang), o.ID),
			Name:       o.Name(v.Lang),
			Address:    o.Address(v.Lang),
			Phone:      o.Phone,
			Email:      o.Email,
		})
	}
	h.render(w, r, http.StatusOK, pages.Organizations(v, data))
}

// HandleNew обрабатывает GET .../new.
func (h *OrganizationsHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	v := h.cabinetView(w, r, "breadcrumbs.new."+string(h.section))
	h.renderForm(w, r, http.StatusOK, v, validate.OrganizationForm{}, "")
}

// HandleCreate обрабатывает POST /{lang}/cabinet/{branches|offices}.
func (h *OrganizationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// HandleEdit обрабатывает GET .../{id}/edit.
func (h *OrganizationsHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	o, err := h.api.GetOrganization(r.Context(), h.kind, lang(r), id)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}

	v := h.cabinetView(w, r, "breadcrumbs.edit."+string(h.section))
	h.renderForm(w, r, http.StatusOK, v, organizationForm(o), id)
}

// HandleUpdate обрабатывает POST .../{id}.
func (h *OrganizationsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	h.save(w, r, id)
}

// HandleDelete обрабатывает POST .../{id}/delete.
func (h *OrganizationsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	target := h.listPath(lang(r))
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	if err := h.api.DeleteOrganization(r.Context(), h.kind, uimiddleware.TokenFromContext(r.Context()), id); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "delete_organization", err)
		h.redirectFlash(w, r, target, auth.Flash{Kind: auth.FlashError, Key: failureKey(err, "")})
		return
	}

	h.logger.Info("Организация удалена", slog.String("id", id))
	h.redirectFlash(w, r, target, auth.Flash{Kind: auth.FlashSuccess, Key: "organizations.deleted"})
}

// save создаёт (id == "") или обновляет организацию из формы.
func (h *OrganizationsHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	titleKey := "breadcrumbs.new." + string(h.section)
	if id != "" {
		titleKey = "breadcrumbs.edit." + string(h.section)
	}
	v := h.cabinetView(w, r, titleKey)

	form := organizationFormFromRequest(r)
	errs := validate.Organization(form, i18n.Locales)
	in, coordErrs := organizationInput(form)
	errs = append(errs, coordErrs...)
	if !errs.Empty() {
		v.Errors = errs
		h.renderForm(w, r, http.StatusUnprocessableEntity, v, form, id)
		return
	}

	token := uimiddleware.TokenFromContext(r.Context())
	var err error
	flashKey := "organizations.created"
	if id == "" {
		err = h.api.CreateOrganization(r.Context(), h.kind, token, in)
	} else {
		err = h.api.UpdateOrganization(r.Context(), h.kind, token, id, in)
		flashKey = "organizations.updated"
	}
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "save_organization", err)
		v.ErrorKey = failureKey(err, "")
		h.renderForm(w, r, http.StatusOK, v, form, id)
		return
	}

	h.logger.Info("Организация сохранена", slog.String("id", id), slog.String("name", form.Names[i18n.DefaultLocale]))
	h.redirectFlash(w, r, h.listPath(v.Lang), auth.Flash{Kind: auth.FlashSuccess, Key: flashKey})
}

func (h *OrganizationsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, v pages.View, form validate.OrganizationForm, id string) {
	data := &pages.OrganizationFormData{
		Names:        form.Names,
		Addresses:    form.Addresses,
		Descriptions: form.Descriptions,
		Phone:        form.Phone,
		Email:        form.Email,
		Latitude:     form.Latitude,
		Longitude:    form.Longitude,
		IsNew:        id == "",
		Action:       h.listPath(v.Lang),
	}
	if id != "" {
		data.Action += "/" + id
	}
	h.render(w, r, status, pages.OrganizationForm(v, data))
}

func (h *OrganizationsHandler) listPath(lang string) string {
	return "/" + lang + "/cabinet/" + string(h.section)
}

// filterOrganizations оставляет организации, в названии, адресе, телефоне
// или email которых встречается query (без учёта регистра).
func filterOrganizations(list []model.Organization, query, lang string) []model.Organization {
	query = strings.ToLower(query)
	if query == "" {
		return list
	}
	result := make([]model.Organization, 0, len(list))
	for i := range list {
		o := &list[i]
		for _, field := range []string{o.Name(lang), o.Address(lang), o.Phone, o.Email} {
			if strings.Contains(strings.ToLower(field), query) {
				result = append(result, *o)
				break
			}
		}
	}
	return result
}

func organizationFormFromRequest(r *http.Request) validate.OrganizationForm {
	f := validate.OrganizationForm{
		Names:        make(map[string]string, len(i18n.Locales)),
		Addresses:    make(map[string]string, len(i18n.Locales)),
		Descriptions: make(map[string]string, len(i18n.Locales)),
		Phone:        formValue(r, "phone"),
		Email:        formValue(r, "email"),
		Latitude:     formValue(r, "latitude"),
		Longitude:    formValue(r, "longitude"),
	}
	for _, l := range i18n.Locales {
		f.Names[l] = formValue(r, "name_"+l)
		f.Addresses[l] = formValue(r, "address_"+l)
		f.Descriptions[l] = formValue(r, "description_"+l)
	}
	return f
}

func organizationForm(o *model.Organization) validate.OrganizationForm {
	f := validate.OrganizationForm{
		Names:        make(map[string]string, len(i18n.Locales)),
		Addresses:    make(map[string]string, len(i18n.Locales)),
		Descriptions: make(map[string]string, len(i18n.Locales)),
		Phone:        o.Phone,
		Email:        o.Email,
	}
	if o.Latitude != nil {
		f.Latitude = o.Latitude.String()
	}
	if o.Longitude != nil {
		f.Longitude = o.Longitude.String()
	}
	for _, l := range i18n.Locales {
		t := o.Translations[l]
		f.Names[l], f.Addresses[l], f.Descriptions[l] = t.Name, t.Address, t.Description
	}
	return f
}

// organizationInput переводит форму в запись внешнего API.
// Координаты необязательны, но если заданы, должны быть числами.
func organizationInput(f validate.OrganizationForm) (model.Organization, validate.Errors) {
	var errs validate.Errors
	o := model.Organization{
		Phone:        f.Phone,
		Email:        f.Email,
		Translations: make(map[string]model.OrganizationTranslation, len(f.Names)),
	}
	for _, l := range i18n.Locales {
		o.Translations[l] = model.OrganizationTranslation{
			Name:        f.Names[l],
			Address:     f.Addresses[l],
			Description: f.Descriptions[l],
		}
	}

	parse := func(field, s string) *model.Coordinate {
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			errs.Add(field, "validation.coordinateInvalid")
			return nil
		}
		c := model.Coordinate(v)
		return &c
	}
	o.Latitude = parse("latitude", f.Latitude)
	o.Longitude = parse("longitude", f.Longitude)

	return o, errs
}
