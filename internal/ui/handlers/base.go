// Пакет handlers — HTTP-обработчики страниц сайта.
// base.go — общие части: сборка View, рендер, одноразовые сообщения,
// разбор ошибок внешнего API.
package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
	uimiddleware "github.com/nirudef/aoka-web/internal/ui/middleware"
	"github.com/nirudef/aoka-web/internal/ui/nav"
	"github.com/nirudef/aoka-web/internal/ui/pages"
)

// SessionInvalidator — сброс кэша участника по токену.
type SessionInvalidator interface {
	Invalidate(token string)
}

// base — зависимости, общие для всех обработчиков страниц.
type base struct {
	sessions *auth.SessionManager
	members  SessionInvalidator
	logger   *slog.Logger
}

func newBase(sessions *auth.SessionManager, members SessionInvalidator, logger *slog.Logger, component string) base {
	return base{
		sessions: sessions,
		members:  members,
		logger:   logger.With(slog.String("component", component)),
	}
}

// view собирает View публичной страницы.
func (b *base) view(w http.ResponseWriter, r *http.Request, titleKey string) pages.View {
	return pages.View{
		Lang:     i18n.LangFromContext(r.Context()),
		Path:     r.URL.Path,
		TitleKey: titleKey,
		Member:   uimiddleware.MemberFromContext(r.Context()),
		Flash:    b.sessions.PopFlash(w, r),
	}
}

// cabinetView собирает View страницы кабинета: меню по ролям и крошки.
func (b *base) cabinetView(w http.ResponseWriter, r *http.Request, titleKey string) pages.View {
	v := b.view(w, r, titleKey)
	var roles []string
	if v.Member != nil {
		roles = v.Member.Roles
	}
	menu := nav.Sidebar(v.Lang, roles, v.Path)
	v.Menu = &menu
	v.Crumbs = nav.Breadcrumbs(v.Path)
	return v
}

// render собирает страницу в буфер и отправляет её с указанным статусом.
func (b *base) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		b.logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// notFound отправляет страницу 404.
func (b *base) notFound(w http.ResponseWriter, r *http.Request) {
	v := b.view(w, r, "errors.notFoundTitle")
	b.render(w, r, http.StatusNotFound, pages.Error(v, &pages.ErrorData{MessageKey: "errors.notFound"}))
}

// unavailable отправляет страницу 503 «внешний API недоступен».
func (b *base) unavailable(w http.ResponseWriter, r *http.Request) {
	v := b.view(w, r, "errors.unavailableTitle")
	b.render(w, r, http.StatusServiceUnavailable, pages.Error(v, &pages.ErrorData{MessageKey: "errors.network"}))
}

// loadFailed отвечает на ошибку загрузки записи для формы:
// 401 — выход, прочие отказы — 404, недоступность — 503.
func (b *base) loadFailed(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case b.sessionExpired(w, r, err):
	case backend.IsRejection(err):
		b.notFound(w, r)
	default:
		b.unavailable(w, r)
	}
}

// redirectFlash сохраняет одноразовое сообщение и выполняет redirect (303).
func (b *base) redirectFlash(w http.ResponseWriter, r *http.Request, target string, f auth.Flash) {
	if err := b.sessions.SetFlash(w, f); err != nil {
		b.logger.Warn("Не удалось сохранить сообщение", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// sessionExpired обрабатывает отказ 401 на запросе с токеном участника:
// сбрасывает кэш и cookie, ведёт на страницу входа. Возвращает true,
// если ответ уже отправлен.
func (b *base) sessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	apiErr, ok := backend.AsAPIError(err)
	if !ok || apiErr.StatusCode != http.StatusUnauthorized {
		return false
	}

	if token := uimiddleware.TokenFromContext(r.Context()); token != "" {
		b.members.Invalidate(token)
	}
	b.sessions.ClearSessionCookie(w)
	http.Redirect(w, r, "/"+i18n.LangFromContext(r.Context())+"/login", http.StatusFound)
	return true
}

// failureKey переводит ошибку внешнего API в ключ сообщения.
// conflictKey — сообщение для 409 (например, занятый email).
func failureKey(err error, conflictKey string) string {
	if !backend.IsRejection(err) {
		return "errors.network"
	}
	switch {
	case errors.Is(err, backend.ErrConflict) && conflictKey != "":
		return conflictKey
	case errors.Is(err, backend.ErrNotFound):
		return "errors.notFound"
	case errors.Is(err, backend.ErrUnauthorized):
		return "errors.unauthorized"
	default:
		return "errors.saveFailed"
	}
}

// logFailure логирует ошибку операции с внешним API.
// Отказы API — WARN, недоступность уже залогирована клиентом.
func (b *base) logFailure(r *http.Request, op string, err error) {
	if backend.IsRejection(err) {
		b.logger.Warn("Внешний API отклонил операцию",
			slog.String("operation", op),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// pagerFor строит ссылки постраничной навигации, сохраняя параметры запроса.
func pagerFor(r *http.Request, page, totalPages int) pages.Pager {
	if totalPages < 1 {
		totalPages = 1
	}
	p := pages.Pager{Page: page, TotalPages: totalPages}

	link := func(n int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(n))
		return r.URL.Path + "?" + q.Encode()
	}
	if page > 1 {
		p.PrevHref = link(page - 1)
	}
	if page < totalPages {
		p.NextHref = link(page + 1)
	}
	return p
}

// lang возвращает язык запроса.
func lang(r *http.Request) string {
	return i18n.LangFromContext(r.Context())
}

// formValue возвращает значение поля формы без пробелов по краям.
func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}

// optionalString возвращает nil для пустой строки.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref возвращает значение указателя или пустую строку.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
