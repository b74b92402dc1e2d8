// member.go — загрузка текущего участника и доступ к кабинету.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/service"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
)

// MemberLoader — загрузка участника по токену (с кэшем).
type MemberLoader interface {
	Current(ctx context.Context, token string) (*model.Member, error)
}

// CurrentMember загружает участника по токену из контекста.
// Отвергнутый токен удаляет cookie; недоступность API оставляет запрос
// анонимным с пометкой, которую учитывает RequireMember.
func CurrentMember(loader MemberLoader, sessions *auth.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "current_member"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromContext(r.Context())
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			m, err := loader.Current(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithMember(r.Context(), m))
			case errors.Is(err, service.ErrNoSession):
				sessions.ClearSessionCookie(w)
				r = r.WithContext(WithToken(r.Context(), ""))
			default:
				logger.Warn("Не удалось загрузить участника",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				r = r.WithContext(context.WithValue(r.Context(), contextKeyMemberUnavailable, true))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireMember пропускает только запросы с загруженным участником.
// Без сессии — redirect на /<lang>/login; при недоступном API — 503.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if MemberFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		if memberUnavailable(r.Context()) {
			http.Error(w, i18n.T(r.Context(), "errors.network"), http.StatusServiceUnavailable)
			return
		}

		http.Redirect(w, r, "/"+i18n.LangFromContext(r.Context())+"/login", http.StatusFound)
	})
}
