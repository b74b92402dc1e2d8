package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/service"
	"github.com/nirudef/aoka-web/internal/ui/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeAuth — подставной сервис сессий.
type fakeAuth struct {
	loginErr   error
	currentErr error
	member     *model.Member
	loggedOut  []string
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*backend.SignInResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &backend.SignInResult{
		Token: "tok-" + email,
		User:  json.RawMessage(`{"id":"u1","email":"` + email + `"}`),
	}, nil
}

func (f *fakeAuth) Current(_ context.Context, _ string) (*model.Member, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.member, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) {
	f.loggedOut = append(f.loggedOut, token)
}

func newAuthHandler(t *testing.T, svc *fakeAuth) (*AuthHandler, *auth.SessionManager) {
	t.Helper()
	sm, err := auth.NewSessionManager("api-test-key", false, 0)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return NewAuthHandler(svc, sm, "https://aoka.kz", testLogger()), sm
}

func sessionCookie(t *testing.T, sm *auth.SessionManager, token string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := sm.SetSessionCookie(rec, token); err != nil {
		t.Fatalf("SetSessionCookie: %v", err)
	}
	return rec.Result().Cookies()[0]
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginErr   error
		wantStatus int
		wantBody   string
		wantCookie bool
	}{
		{
			name:       "успешный вход",
			body:       `{"email":"a@aoka.kz","password":"secret"}`,
			wantStatus: http.StatusOK,
			wantBody:   `"ok":true`,
			wantCookie: true,
		},
		{
			name:       "отказ API передаётся как есть",
			body:       `{"email":"a@aoka.kz","password":"bad"}`,
			loginErr:   &backend.APIError{StatusCode: http.StatusUnauthorized, Body: []byte(`{"error":"Invalid email or password"}`)},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid email or password"}`,
		},
		{
			name:       "отказ без тела",
			body:       `{"email":"a@aoka.kz","password":"bad"}`,
			loginErr:   &backend.APIError{StatusCode: http.StatusForbidden},
			wantStatus: http.StatusForbidden,
			wantBody:   `"error":"Forbidden"`,
		},
		{
			name:       "API недоступен",
			body:       `{"email":"a@aoka.kz","password":"x"}`,
			loginErr:   fmt.Errorf("sign_in: %w", errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
			wantBody:   "BACKEND_UNAVAILABLE",
		},
		{
			name:       "некорректный JSON",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "VALIDATION_ERROR",
		},
		{
			name:       "пустой пароль",
			body:       `{"email":"a@aoka.kz","password":""}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sm := newAuthHandler(t, &fakeAuth{loginErr: tt.loginErr})
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("статус = %d, хотели %d; тело %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("тело %s не содержит %s", rec.Body.String(), tt.wantBody)
			}

			cookies := rec.Result().Cookies()
			if !tt.wantCookie {
				if len(cookies) != 0 {
					t.Errorf("cookie установлен при ошибке: %v", cookies)
				}
				return
			}
			if len(cookies) != 1 || cookies[0].Name != auth.SessionCookieName {
				t.Fatalf("cookies = %v", cookies)
			}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookies[0])
			data, err := sm.GetSessionFromRequest(req)
			if err != nil || data.Token != "tok-a@aoka.kz" {
				t.Errorf("сессия = %+v, %v", data, err)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	svc := &fakeAuth{}
	h, sm := newAuthHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(sessionCookie(t, sm, "t1"))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "https://aoka.kz" {
		t.Errorf("ответ = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "t1" {
		t.Errorf("Logout вызван с %v", svc.loggedOut)
	}
	c := rec.Result().Cookies()
	if len(c) != 1 || c[0].MaxAge >= 0 {
		t.Errorf("cookie не удалён: %v", c)
	}
}

func TestLogout_NoSession(t *testing.T) {
	svc := &fakeAuth{}
	h, _ := newAuthHandler(t, svc)
	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	if rec.Code != http.StatusFound {
		t.Errorf("статус = %d", rec.Code)
	}
	if len(svc.loggedOut) != 0 {
		t.Errorf("Logout без сессии вызван: %v", svc.loggedOut)
	}
}

func TestMe(t *testing.T) {
	member := &model.Member{ID: "u1", Email: "a@aoka.kz", Roles: []string{"lawyer"}}

	tests := []struct {
		name       string
		withCookie bool
		err        error
		wantStatus int
		wantBody   string
	}{
		{"без cookie", false, nil, http.StatusUnauthorized, `{"error":"Not authenticated"}`},
		{"участник найден", true, nil, http.StatusOK, `"email":"a@aoka.kz"`},
		{"токен отвергнут", true, service.ErrNoSession, http.StatusUnauthorized, `{"user":null}`},
		{"ошибка 500", true, &backend.APIError{StatusCode: http.StatusInternalServerError}, http.StatusUnauthorized, `{"user":null}`},
		{"API недоступен", true, errors.New("timeout"), http.StatusBadGateway, "BACKEND_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sm := newAuthHandler(t, &fakeAuth{member: member, currentErr: tt.err})
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.withCookie {
				req.AddCookie(sessionCookie(t, sm, "t1"))
			}
			rec := httptest.NewRecorder()
			h.Me(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("статус = %d, хотели %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("тело %s не содержит %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

type fakeDeps map[string]bool

func (f fakeDeps) Health() map[string]bool { return f }

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ответ не JSON: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "aoka-web" {
		t.Errorf("ответ = %+v", resp)
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		deps       DependencyHealth
		wantStatus int
		wantState  string
	}{
		{"мониторинг отключён", nil, http.StatusOK, "ok"},
		{"API доступен", fakeDeps{"backend-api": true}, http.StatusOK, "ok"},
		{"API недоступен", fakeDeps{"backend-api": false}, http.StatusServiceUnavailable, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.deps).HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("статус = %d, хотели %d", rec.Code, tt.wantStatus)
			}
			var resp healthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("ответ не JSON: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("status = %q, хотели %q", resp.Status, tt.wantState)
			}
			if _, ok := resp.Checks["backend-api"]; !ok {
				t.Errorf("нет проверки backend-api: %+v", resp.Checks)
			}
		})
	}
}
