// users.go — управление пользователями (администратор).
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/rbac"
	"github.com/nirudef/aoka-web/internal/domain/validate"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	uimiddleware "github.com/nirudef/aoka-web/internal/ui/middleware"
	"github.com/nirudef/aoka-web/internal/ui/pages"
)

// UsersAPI — операции внешнего API над пользователями.
type UsersAPI interface {
	DirectoryLister
	ListUsers(ctx context.Context, token, lang string, f model.MemberFilter) (*model.MemberPage, error)
	GetUser(ctx context.Context, token, id string) (*model.Member, error)
	CreateUser(ctx context.Context, token string, in model.MemberInput) error
	UpdateUser(ctx context.Context, token, id string, in model.MemberInput) error
	DeleteUser(ctx context.Context, token, id string) error
}

// UsersHandler — раздел «Пользователи».
type UsersHandler struct {
	base
	api UsersAPI
}

// NewUsersHandler создаёт обработчик раздела пользователей.
func NewUsersHandler(api UsersAPI, sessions *auth.SessionManager, members SessionInvalidator, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{
		base: newBase(sessions, members, logger, "ui.users"),
		api:  api,
	}
}

// HandleList обрабатывает GET /{lang}/cabinet/users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	v := h.cabinetView(w, r, "users.title")
	filter := memberFilter(r)
	filter.BranchID, filter.LawOfficeID = "", ""
	if !rbac.IsValidRole(filter.Role) {
		filter.Role = ""
	}

	data := &pages.UsersData{
		Query:   filter.Query,
		Roles:   roleOptions([]string{filter.Role}),
		NewHref: usersPath(v.Lang) + "/new",
		Pager:   pagerFor(r, filter.Page, 1),
	}

	page, err := h.api.ListUsers(r.Context(), uimiddleware.TokenFromContext(r.Context()), v.Lang, filter)
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "list_users", err)
		v.ErrorKey = failureKey(err, "")
		h.render(w, r, http.StatusOK, pages.Users(v, data))
		return
	}

	data.Total = page.Meta.TotalCount
	data.Pager = pagerFor(r, filter.Page, page.Meta.TotalPages)
	for i := range page.Users {
		u := &page.Users[i]
		name := u.FullName()
		if name == "" {
			name = u.Email
		}
		data.Rows = append(data.Rows, pages.UserRow{
			RowActions: rowActions(usersPath(v.Lang), u.ID),
			Name:       name,
			Email:      u.Email,
			Roles:      roleKeys(u.Roles),
		})
	}
	h.render(w, r, http.StatusOK, pages.Users(v, data))
}

// HandleNew обрабатывает GET /{lang}/cabinet/users/new.
func (h *UsersHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	v := h.cabinetView(w, r, "users.newTitle")
	form := validate.UserForm{Roles: []string{rbac.RoleGuest}}
	h.renderForm(w, r, http.StatusOK, v, form, "")
}

// HandleCreate обрабатывает POST /{lang}/cabinet/users.
// Пустой пароль заменяется сгенерированным; он показывается один раз.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	v := h.cabinetView(w, r, "users.newTitle")
	form := userFormFromRequest(r)

	if errs := validate.User(form, rbac.HasRole(form.Roles, rbac.RoleLawyer)); !errs.Empty() {
		v.Errors = errs
		h.renderForm(w, r, http.StatusUnprocessableEntity, v, form, "")
		return
	}

	flash := auth.Flash{Kind: auth.FlashSuccess, Key: "users.created"}
	if form.Password == "" {
		password, err := generatePassword()
		if err != nil {
			h.logger.Error("Ошибка генерации пароля", slog.String("error", err.Error()))
			v.ErrorKey = "errors.saveFailed"
			h.renderForm(w, r, http.StatusInternalServerError, v, form, "")
			return
		}
		form.Password = password
		flash.Key, flash.Extra = "users.createdWithPassword", password
	}

	in := memberInput(form)
	if err := h.api.CreateUser(r.Context(), uimiddleware.TokenFromContext(r.Context()), in); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "create_user", err)
		v.ErrorKey = failureKey(err, "errors.duplicateEmail")
		form.Password = ""
		h.renderForm(w, r, http.StatusOK, v, form, "")
		return
	}

	h.logger.Info("Пользователь создан", slog.String("email", in.Email))
	h.redirectFlash(w, r, usersPath(v.Lang), flash)
}

// HandleEdit обрабатывает GET /{lang}/cabinet/users/{id}/edit.
func (h *UsersHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	u, err := h.api.GetUser(r.Context(), uimiddleware.TokenFromContext(r.Context()), id)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}

	v := h.cabinetView(w, r, "users.editTitle")
	h.renderForm(w, r, http.StatusOK, v, memberForm(u), id)
}

// HandleUpdate обрабатывает POST /{lang}/cabinet/users/{id}.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	v := h.cabinetView(w, r, "users.editTitle")
	form := userFormFromRequest(r)
	form.Password = ""

	if errs := validate.User(form, rbac.HasRole(form.Roles, rbac.RoleLawyer)); !errs.Empty() {
		v.Errors = errs
		h.renderForm(w, r, http.StatusUnprocessableEntity, v, form, id)
		return
	}

	token := uimiddleware.TokenFromContext(r.Context())
	if err := h.api.UpdateUser(r.Context(), token, id, memberInput(form)); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "update_user", err)
		v.ErrorKey = failureKey(err, "errors.duplicateEmail")
		h.renderForm(w, r, http.StatusOK, v, form, id)
		return
	}

	// Свои роли администратор мог изменить: кэш участника устарел.
	if m := uimiddleware.MemberFromContext(r.Context()); m != nil && m.ID == id {
		h.members.Invalidate(token)
	}

	h.logger.Info("Пользователь обновлён", slog.String("user_id", id))
	h.redirectFlash(w, r, usersPath(v.Lang), auth.Flash{Kind: auth.FlashSuccess, Key: "users.updated"})
}

// HandleDelete обрабатывает POST /{lang}/cabinet/users/{id}/delete.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	target := usersPath(lang(r))
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	if m := uimiddleware.MemberFromContext(r.Context()); m != nil && m.ID == id {
		h.redirectFlash(w, r, target, auth.Flash{Kind: auth.FlashError, Key: "users.cannotDeleteSelf"})
		return
	}

	if err := h.api.DeleteUser(r.Context(), uimiddleware.TokenFromContext(r.Context()), id); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "delete_user", err)
		h.redirectFlash(w, r, target, auth.Flash{Kind: auth.FlashError, Key: failureKey(err, "")})
		return
	}

	h.logger.Info("Пользователь удалён", slog.String("user_id", id))
	h.redirectFlash(w, r, target, auth.Flash{Kind: auth.FlashSuccess, Key: "users.deleted"})
}

// renderForm показывает форму пользователя; id пустой для нового.
func (h *UsersHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, v pages.View, form validate.UserForm, id string) {
	branches, offices := loadDirectory(r.Context(), h.api, v.Lang)
	data := userFormData(form, branches, offices, v.Lang)
	data.Roles = roleOptions(form.Roles)
	data.IsLawyer = rbac.HasRole(form.Roles, rbac.RoleLawyer)
	if id == "" {
		data.Action = usersPath(v.Lang)
		data.IsNew = true
	} else {
		data.Action = usersPath(v.Lang) + "/" + id
	}
	h.render(w, r, status, pages.UserForm(v, data))
}

func usersPath(lang string) string {
	return "/" + lang + "/cabinet/users"
}

// rowActions — ссылки редактирования и удаления строки списка.
func rowActions(listPath, id string) pages.RowActions {
	return pages.RowActions{
		EditHref:     listPath + "/" + id + "/edit",
		DeleteAction: listPath + "/" + id + "/delete",
	}
}

// userFormFromRequest читает форму пользователя. Неизвестные роли
// отбрасываются.
func userFormFromRequest(r *http.Request) validate.UserForm {
	var roles []string
	for _, role := range r.PostForm["roles"] {
		if rbac.IsValidRole(role) && !rbac.HasRole(roles, role) {
			roles = append(roles, role)
		}
	}

	return validate.UserForm{
		FirstName:       formValue(r, "first_name"),
		LastName:        formValue(r, "last_name"),
		MiddleName:      formValue(r, "middle_name"),
		Email:           formValue(r, "email"),
		IIN:             formValue(r, "iin"),
		Phone:           formValue(r, "phone"),
		LicenseNumber:   formValue(r, "license_number"),
		LicenseIssuedAt: formValue(r, "license_issued_at"),
		JoinedAt:        formValue(r, "joined_at"),
		BranchID:        formValue(r, "branch_id"),
		LawOfficeID:     formValue(r, "law_office_id"),
		Address:         formValue(r, "address"),
		Roles:           roles,
		Password:        r.PostFormValue("password"),
	}
}

// memberForm заполняет форму данными участника.
func memberForm(m *model.Member) validate.UserForm {
	return validate.UserForm{
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		MiddleName:      m.MiddleName,
		Email:           m.Email,
		IIN:             m.IIN,
		Phone:           m.Phone,
		LicenseNumber:   m.LicenseNumber,
		LicenseIssuedAt: deref(m.LicenseIssuedAt),
		JoinedAt:        deref(m.JoinedAt),
		BranchID:        deref(m.BranchID),
		LawOfficeID:     deref(m.LawOfficeID),
		Address:         m.Address,
		Roles:           m.Roles,
	}
}

// memberInput переводит форму в тело запроса внешнего API.
// Пустые необязательные поля отправляются как null.
func memberInput(f validate.UserForm) model.MemberInput {
	return model.MemberInput{
		Email:           f.Email,
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		MiddleName:      f.MiddleName,
		IIN:             f.IIN,
		Phone:           f.Phone,
		LicenseNumber:   f.LicenseNumber,
		LicenseIssuedAt: optionalString(f.LicenseIssuedAt),
		JoinedAt:        optionalString(f.JoinedAt),
		BranchID:        optionalString(f.BranchID),
		LawOfficeID:     optionalString(f.LawOfficeID),
		Address:         optionalString(f.Address),
		Roles:           f.Roles,
		Password:        f.Password,
	}
}

func userFormData(f validate.UserForm, branches, offices []model.Organization, lang string) *pages.UserFormData {
	return &pages.UserFormData{
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		MiddleName:      f.MiddleName,
		Email:           f.Email,
		IIN:             f.IIN,
		Phone:           f.Phone,
		LicenseNumber:   f.LicenseNumber,
		LicenseIssuedAt: f.LicenseIssuedAt,
		JoinedAt:        f.JoinedAt,
		Address:         f.Address,
		Branches:        orgOptions(branches, lang, f.BranchID),
		Offices:         orgOptions(offices, lang, f.LawOfficeID),
	}
}

// roleOptions — все роли с отметкой выбранных.
func roleOptions(selected []string) []pages.Option {
	opts := make([]pages.Option, 0, len(rbac.AllRoles))
	for _, role := range rbac.AllRoles {
		opts = append(opts, pages.Option{Value: role, LabelKey: "roles." + role, Selected: rbac.HasRole(selected, role)})
	}
	return opts
}
