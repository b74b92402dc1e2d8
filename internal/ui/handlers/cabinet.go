// cabinet.go — обзор кабинета и редактирование своего профиля.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/rbac"
	"github.com/nirudef/aoka-web/internal/domain/validate"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	uimiddleware "github.com/nirudef/aoka-web/internal/ui/middleware"
	"github.com/nirudef/aoka-web/internal/ui/pages"
)

// DirectoryLister — списки филиалов и контор.
type DirectoryLister interface {
	ListOrganizations(ctx context.Context, kind model.OrganizationKind, lang string) ([]model.Organization, error)
}

// ProfileAPI — операции внешнего API для своего профиля.
type ProfileAPI interface {
	DirectoryLister
	UpdateUser(ctx context.Context, token, id string, in model.MemberInput) error
}

// CabinetHandler — обзор кабинета и свой профиль.
type CabinetHandler struct {
	base
	api ProfileAPI
}

// NewCabinetHandler создаёт обработчик кабинета.
func NewCabinetHandler(api ProfileAPI, sessions *auth.SessionManager, members SessionInvalidator, logger *slog.Logger) *CabinetHandler {
	return &CabinetHandler{
		base: newBase(sessions, members, logger, "ui.cabinet"),
		api:  api,
	}
}

// HandleDashboard обрабатывает GET /{lang}/cabinet.
func (h *CabinetHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	m := uimiddleware.MemberFromContext(r.Context())
	v := h.cabinetView(w, r, "dashboard.title")

	data := &pages.DashboardData{
		ID:       m.ID,
		Email:    m.Email,
		Name:     m.FullName(),
		Phone:    m.Phone,
		Verified: m.Verified,
		Roles:    roleKeys(m.Roles),
	}
	h.render(w, r, http.StatusOK, pages.Dashboard(v, data))
}

// HandleProfile обрабатывает GET /{lang}/cabinet/profile.
func (h *CabinetHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	m := uimiddleware.MemberFromContext(r.Context())
	v := h.cabinetView(w, r, "profile.title")
	h.renderProfile(w, r, http.StatusOK, v, memberForm(m), m.HasRole(rbac.RoleLawyer))
}

// HandleProfileUpdate обрабатывает POST /{lang}/cabinet/profile.
// Роли участник себе не меняет: они не отправляются во внешний API.
func (h *CabinetHandler) HandleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	m := uimiddleware.MemberFromContext(r.Context())
	token := uimiddleware.TokenFromContext(r.Context())
	isLawyer := m.HasRole(rbac.RoleLawyer)

	form := userFormFromRequest(r)
	form.Roles = nil
	form.Password = ""

	v := h.cabinetView(w, r, "profile.title")
	if errs := validate.User(form, isLawyer); !errs.Empty() {
		v.Errors = errs
		h.renderProfile(w, r, http.StatusUnprocessableEntity, v, form, isLawyer)
		return
	}

	if err := h.api.UpdateUser(r.Context(), token, m.ID, memberInput(form)); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "update_profile", err)
		v.ErrorKey = failureKey(err, "errors.duplicateEmail")
		h.renderProfile(w, r, http.StatusOK, v, form, isLawyer)
		return
	}

	h.members.Invalidate(token)
	h.logger.Info("Профиль обновлён", slog.String("user_id", m.ID))
	h.redirectFlash(w, r, "/"+v.Lang+"/cabinet/profile", auth.Flash{Kind: auth.FlashSuccess, Key: "profile.updated"})
}

func (h *CabinetHandler) renderProfile(w http.ResponseWriter, r *http.Request, status int, v pages.View, form validate.UserForm, isLawyer bool) {
	branches, offices := loadDirectory(r.Context(), h.api, v.Lang)
	data := userFormData(form, branches, offices, v.Lang)
	data.Action = "/" + v.Lang + "/cabinet/profile"
	data.IsLawyer = isLawyer
	h.render(w, r, status, pages.Profile(v, data))
}

// loadDirectory загружает филиалы и конторы параллельно.
// Ошибки не прерывают страницу: список остаётся пустым.
func loadDirectory(ctx context.Context, api DirectoryLister, lang string) (branches, offices []model.Organization) {
	var g errgroup.Group
	g.Go(func() error {
		branches, _ = api.ListOrganizations(ctx, model.KindBranch, lang)
		return nil
	})
	g.Go(func() error {
		offices, _ = api.ListOrganizations(ctx, model.KindLawOffice, lang)
		return nil
	})
	_ = g.Wait()
	return branches, offices
}

// roleKeys возвращает ключи каталога для ролей.
func roleKeys(roles []string) []string {
	keys := make([]string, 0, len(roles))
	for _, role := range roles {
		keys = append(keys, "roles."+role)
	}
	return keys
}
