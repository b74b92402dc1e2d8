// Пакет handlers — локальные JSON endpoints сайта: вход, выход,
// текущий участник и health probes.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/nirudef/aoka-web/internal/api/errors"
	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/service"
	"github.com/nirudef/aoka-web/internal/ui/auth"
)

// maxLoginBody — предельный размер тела запроса входа.
const maxLoginBody = 64 << 10

// AuthService — жизненный цикл сессии участника.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*backend.SignInResult, error)
	Current(ctx context.Context, token string) (*model.Member, error)
	Logout(ctx context.Context, token string)
}

// AuthHandler — обработчики /api/auth/*.
type AuthHandler struct {
	svc      AuthService
	sessions *auth.SessionManager
	appURL   string
	logger   *slog.Logger
}

// NewAuthHandler создаёт обработчик. appURL — цель редиректа после выхода.
func NewAuthHandler(svc AuthService, sessions *auth.SessionManager, appURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		sessions: sessions,
		appURL:   appURL,
		logger:   logger.With(slog.String("component", "api.auth")),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK   bool            `json:"ok"`
	User json.RawMessage `json:"user"`
}

type meResponse struct {
	User *model.Member `json:"user"`
}

// Login обрабатывает POST /api/auth/login.
// Отказ внешнего API передаётся клиенту с исходным статусом и телом.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		apierrors.ValidationError(w, "invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		apierrors.ValidationError(w, "email and password are required")
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apiErr, ok := backend.AsAPIError(err); ok {
			body := apiErr.Body
			if len(body) == 0 {
				body = []byte(`{"error":"` + http.StatusText(apiErr.StatusCode) + `"}`)
			}
			apierrors.WriteRaw(w, apiErr.StatusCode, body)
			return
		}
		h.logger.Warn("Внешний API недоступен при входе", slog.String("error", err.Error()))
		apierrors.BackendUnavailable(w, "backend unavailable")
		return
	}

	if err := h.sessions.SetSessionCookie(w, res.Token); err != nil {
		h.logger.Error("Ошибка установки cookie сессии", slog.String("error", err.Error()))
		apierrors.InternalError(w, "session cookie failed")
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, loginResponse{OK: true, User: res.User})
}

// Logout обрабатывает POST /api/auth/logout.
// Локальный выход выполняется, даже если внешний API недоступен.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if data, err := h.sessions.GetSessionFromRequest(r); err == nil && data != nil {
		h.svc.Logout(r.Context(), data.Token)
	}
	h.sessions.ClearSessionCookie(w)
	http.Redirect(w, r, h.appURL, http.StatusFound)
}

// Me обрабатывает GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	data, err := h.sessions.GetSessionFromRequest(r)
	if err != nil || data == nil {
		apierrors.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	m, err := h.svc.Current(r.Context(), data.Token)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) || backend.IsRejection(err) {
			apierrors.WriteJSON(w, http.StatusUnauthorized, meResponse{})
			return
		}
		h.logger.Warn("Внешний API недоступен", slog.String("error", err.Error()))
		apierrors.BackendUnavailable(w, "backend unavailable")
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, meResponse{User: m})
}
