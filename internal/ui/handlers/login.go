// login.go — HTML-форма входа.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/domain/validate"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/pages"
)

// Authenticator — создание сессии во внешнем API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.SignInResult, error)
}

// LoginHandler — обработчик страницы входа.
type LoginHandler struct {
	base
	auth Authenticator
}

// NewLoginHandler создаёт обработчик страницы входа.
func NewLoginHandler(authn Authenticator, sessions *auth.SessionManager, members SessionInvalidator, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		base: newBase(sessions, members, logger, "ui.login"),
		auth: authn,
	}
}

// HandleLoginPage обрабатывает GET /{lang}/login.
// Вошедший участник сразу попадает в кабинет.
func (h *LoginHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	v := h.view(w, r, "login.title")
	if v.Member != nil {
		http.Redirect(w, r, "/"+v.Lang+"/cabinet/profile", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, pages.Login(v, &pages.LoginData{}))
}

// HandleLogin обрабатывает POST /{lang}/login.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	email := formValue(r, "email")
	password := r.PostFormValue("password")
	v := h.view(w, r, "login.title")
	data := &pages.LoginData{Email: email}

	if errs := validate.Login(email, password); !errs.Empty() {
		v.Errors = errs
		h.render(w, r, http.StatusUnprocessableEntity, pages.Login(v, data))
		return
	}

	res, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		status := http.StatusUnauthorized
		v.ErrorKey = "errors.invalidCredentials"
		if !backend.IsRejection(err) {
			status = http.StatusServiceUnavailable
			v.ErrorKey = "errors.network"
		}
		h.render(w, r, status, pages.Login(v, data))
		return
	}

	if err := h.sessions.SetSessionCookie(w, res.Token); err != nil {
		h.logger.Error("Ошибка установки cookie сессии", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/"+v.Lang+"/cabinet/profile", http.StatusFound)
}

// HandleTooManyAttempts отвечает на POST /{lang}/login при исчерпании попыток:
// форма показывается снова с сообщением и статусом 429.
func (h *LoginHandler) HandleTooManyAttempts(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	v := h.view(w, r, "login.title")
	v.ErrorKey = "errors.tooManyAttempts"
	h.render(w, r, http.StatusTooManyRequests, pages.Login(v, &pages.LoginData{Email: formValue(r, "email")}))
}
