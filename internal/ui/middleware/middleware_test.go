package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/rbac"
	"github.com/nirudef/aoka-web/internal/service"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeVerifier — подставная проверка токена.
type fakeVerifier struct {
	err         error
	calls       int
	invalidated []string
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) error {
	f.calls++
	return f.err
}

func (f *fakeVerifier) Invalidate(token string) {
	f.invalidated = append(f.invalidated, token)
}

func newSessions(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("probe-test-key", false, 0)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

// sessionCookie возвращает валидный cookie сессии с токеном.
func sessionCookie(t *testing.T, sm *auth.SessionManager, token string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := sm.SetSessionCookie(rec, token); err != nil {
		t.Fatalf("SetSessionCookie: %v", err)
	}
	return rec.Result().Cookies()[0]
}

func clearedCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestSessionProbe(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		cookie       string // "valid", "garbage" или ""
		verifyErr    error
		wantStatus   int
		wantLocation string
		wantCalls    int
		wantCleared  bool
		wantToken    string
	}{
		{
			name: "служебный путь не проверяется", path: "/api/auth/me", cookie: "garbage",
			wantStatus: http.StatusOK,
		},
		{
			name: "статика не проверяется", path: "/static/site.css", cookie: "valid",
			wantStatus: http.StatusOK,
		},
		{
			name: "без cookie", path: "/ru/cabinet",
			wantStatus: http.StatusOK,
		},
		{
			name: "повреждённый cookie удаляется", path: "/ru/cabinet", cookie: "garbage",
			wantStatus: http.StatusOK, wantCleared: true,
		},
		{
			name: "открытая страница без проверки", path: "/ru/lawyers", cookie: "valid",
			wantStatus: http.StatusOK, wantToken: "tok",
		},
		{
			name: "кабинет, токен принят", path: "/kk/cabinet/users", cookie: "valid",
			wantStatus: http.StatusOK, wantCalls: 1, wantToken: "tok",
		},
		{
			name: "кабинет, токен отвергнут", path: "/kk/cabinet/users", cookie: "valid",
			verifyErr:  &backend.APIError{StatusCode: http.StatusUnauthorized},
			wantStatus: http.StatusFound, wantLocation: "/kk/login", wantCalls: 1, wantCleared: true,
		},
		{
			name: "любой не-2xx считается отказом", path: "/en/cabinet/profile", cookie: "valid",
			verifyErr:  &backend.APIError{StatusCode: http.StatusInternalServerError},
			wantStatus: http.StatusFound, wantLocation: "/en/login", wantCalls: 1, wantCleared: true,
		},
		{
			name: "API недоступен, запрос продолжается", path: "/ru/cabinet", cookie: "valid",
			verifyErr:  errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusOK, wantCalls: 1, wantToken: "tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newSessions(t)
			verifier := &fakeVerifier{err: tt.verifyErr}
			probe := NewSessionProbe(sm, verifier, testLogger())

			var gotToken string
			h := probe.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotToken = TokenFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			switch tt.cookie {
			case "valid":
				req.AddCookie(sessionCookie(t, sm, "tok"))
			case "garbage":
				req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("статус = %d, хотели %d", rec.Code, tt.wantStatus)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, хотели %q", loc, tt.wantLocation)
			}
			if verifier.calls != tt.wantCalls {
				t.Errorf("вызовов Verify = %d, хотели %d", verifier.calls, tt.wantCalls)
			}
			if got := clearedCookie(rec); got != tt.wantCleared {
				t.Errorf("cookie удалён = %v, хотели %v", got, tt.wantCleared)
			}
			if gotToken != tt.wantToken {
				t.Errorf("токен в контексте = %q, хотели %q", gotToken, tt.wantToken)
			}
			if tt.wantLocation != "" && (len(verifier.invalidated) != 1 || verifier.invalidated[0] != "tok") {
				t.Errorf("кэш не сброшен: %v", verifier.invalidated)
			}
		})
	}
}

// fakeLoader — подставная загрузка участника.
type fakeLoader struct {
	member *model.Member
	err    error
}

func (f *fakeLoader) Current(_ context.Context, _ string) (*model.Member, error) {
	return f.member, f.err
}

func TestCurrentMember(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		loader      *fakeLoader
		wantMember  bool
		wantCleared bool
		wantStatus  int
	}{
		{"без токена", "", &fakeLoader{}, false, false, http.StatusFound},
		{"участник загружен", "tok", &fakeLoader{member: &model.Member{ID: "u1"}}, true, false, http.StatusOK},
		{"сессия отвергнута", "tok", &fakeLoader{err: service.ErrNoSession}, false, true, http.StatusFound},
		{"API недоступен", "tok", &fakeLoader{err: errors.New("timeout")}, false, false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newSessions(t)

			var got *model.Member
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = MemberFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			h := CurrentMember(tt.loader, sm, testLogger())(RequireMember(inner))

			req := httptest.NewRequest(http.MethodGet, "/ru/cabinet", nil)
			ctx := i18n.WithLang(req.Context(), "ru")
			if tt.token != "" {
				ctx = WithToken(ctx, tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req.WithContext(ctx))

			if (got != nil) != tt.wantMember {
				t.Errorf("участник в контексте = %v, хотели %v", got != nil, tt.wantMember)
			}
			if c := clearedCookie(rec); c != tt.wantCleared {
				t.Errorf("cookie удалён = %v, хотели %v", c, tt.wantCleared)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("статус = %d, хотели %d", rec.Code, tt.wantStatus)
			}
			if rec.Code == http.StatusFound && rec.Header().Get("Location") != "/ru/login" {
				t.Errorf("Location = %q", rec.Header().Get("Location"))
			}
		})
	}
}

func TestRequireSection(t *testing.T) {
	tests := []struct {
		name         string
		section      rbac.Section
		member       *model.Member
		wantStatus   int
		wantLocation string
	}{
		{"администратор видит пользователей", rbac.SectionUsers, &model.Member{Roles: []string{"admin"}}, http.StatusOK, ""},
		{"адвокат не видит пользователей", rbac.SectionUsers, &model.Member{Roles: []string{"lawyer"}}, http.StatusFound, "/kk/cabinet/profile"},
		{"адвокат видит конторы", rbac.SectionOffices, &model.Member{Roles: []string{"lawyer"}}, http.StatusOK, ""},
		{"бухгалтер видит отчёты", rbac.SectionReports, &model.Member{Roles: []string{"guest", "accountant"}}, http.StatusOK, ""},
		{"без ролей только профиль", rbac.SectionBranches, &model.Member{}, http.StatusFound, "/kk/cabinet/profile"},
		{"без участника на вход", rbac.SectionProfile, nil, http.StatusFound, "/kk/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireSection(tt.section)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/kk/cabinet/x", nil)
			ctx := i18n.WithLang(req.Context(), "kk")
			if tt.member != nil {
				ctx = WithMember(ctx, tt.member)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req.WithContext(ctx))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, хотели %d", rec.Code, tt.wantStatus)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, хотели %q", loc, tt.wantLocation)
			}
		})
	}
}
