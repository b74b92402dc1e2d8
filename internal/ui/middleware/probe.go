// probe.go — проверка сессии перед защищёнными страницами.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
)

// Исходы проверки для лейбла result.
const (
	probeExempt      = "exempt"
	probeAnonymous   = "anonymous"
	probeUnprotected = "unprotected"
	probeValid       = "valid"
	probeRejected    = "rejected"
	probeUnavailable = "unavailable"
)

var sessionProbeTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "aoka_session_probe_total",
		Help: "Результаты проверки сессии по исходу.",
	},
	[]string{"result"},
)

// probeExemptPrefixes — служебные пути, которые проба не трогает.
// Список ведётся отдельно от резолвера языка.
var probeExemptPrefixes = []string{
	"/api",
	"/static",
	"/assets",
	"/health",
	"/metrics",
	"/favicon",
}

// protectedMarkers — подстроки пути, требующие проверки токена.
var protectedMarkers = []string{"/cabinet", "/profile"}

// SessionVerifier — проверка токена во внешнем API без кэша.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) error
	Invalidate(token string)
}

// SessionProbe — middleware проверки сессии.
type SessionProbe struct {
	sessions *auth.SessionManager
	verifier SessionVerifier
	logger   *slog.Logger
}

// NewSessionProbe создаёт middleware проверки сессии.
func NewSessionProbe(sessions *auth.SessionManager, verifier SessionVerifier, logger *slog.Logger) *SessionProbe {
	return &SessionProbe{
		sessions: sessions,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "session_probe")),
	}
}

// Middleware читает токен из cookie и кладёт его в контекст.
// На защищённых путях токен проверяется одним запросом к внешнему API:
// явный отказ удаляет cookie и ведёт на страницу входа, недоступность
// API пропускает запрос дальше.
func (p *SessionProbe) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if isProbeExempt(path) {
				sessionProbeTotal.WithLabelValues(probeExempt).Inc()
				next.ServeHTTP(w, r)
				return
			}

			session, err := p.sessions.GetSessionFromRequest(r)
			if err != nil {
				p.logger.Debug("Повреждённый cookie сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				p.sessions.ClearSessionCookie(w)
				session = nil
			}
			if session == nil {
				sessionProbeTotal.WithLabelValues(probeAnonymous).Inc()
				next.ServeHTTP(w, r)
				return
			}

			token := session.Token
			r = r.WithContext(WithToken(r.Context(), token))

			if !isProtected(path) {
				sessionProbeTotal.WithLabelValues(probeUnprotected).Inc()
				next.ServeHTTP(w, r)
				return
			}

			err = p.verifier.Verify(r.Context(), token)
			switch {
			case err == nil:
				sessionProbeTotal.WithLabelValues(probeValid).Inc()
			case backend.IsRejection(err):
				sessionProbeTotal.WithLabelValues(probeRejected).Inc()
				p.logger.Info("Сессия отвергнута внешним API, выход",
					slog.String("path", path),
				)
				p.verifier.Invalidate(token)
				p.sessions.ClearSessionCookie(w)
				http.Redirect(w, r, "/"+i18n.LocaleFromPath(path)+"/login", http.StatusFound)
				return
			default:
				sessionProbeTotal.WithLabelValues(probeUnavailable).Inc()
				p.logger.Warn("Не удалось проверить сессию, внешний API недоступен",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isProbeExempt(path string) bool {
	for _, prefix := range probeExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isProtected(path string) bool {
	for _, marker := range protectedMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}
