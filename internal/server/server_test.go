package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/config"
	"github.com/nirudef/aoka-web/internal/service"
	"github.com/nirudef/aoka-web/internal/ui/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockBackend — внешний API: токен "lawyer-token" принадлежит адвокату,
// любой другой токен отвергается.
func mockBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/sign_in" && r.Method == http.MethodPost:
			io.WriteString(w, `{"token":"lawyer-token","user":{"id":"u1"}}`)
		case r.URL.Path == "/api/v1/me":
			if r.Header.Get("Authorization") != "Token lawyer-token" {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"error":"expired"}`)
				return
			}
			io.WriteString(w, `{"id":"00000000-0000-0000-0000-00000000a002","email":"l@aoka.kz","roles":["lawyer"]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testSite struct {
	handler  http.Handler
	sessions *auth.SessionManager
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	api := mockBackend(t)
	logger := testLogger()

	client := backend.New(api.URL, "Token", api.Client(), logger)
	members := service.NewMemberService(client, service.NewMemberCache(100, time.Minute), logger)
	sessions, err := auth.NewSessionManager("server-test-key", false, 0)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	cfg := &config.Config{
		AppURL:             "http://localhost:3000",
		LoginRatePerMinute: 10,
		LoginRateBurst:     5,
		ShutdownTimeout:    time.Second,
	}
	return &testSite{
		handler:  NewRouter(cfg, logger, Deps{Backend: client, Members: members, Sessions: sessions}),
		sessions: sessions,
	}
}

func (s *testSite) cookie(t *testing.T, token string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := s.sessions.SetSessionCookie(rec, token); err != nil {
		t.Fatalf("SetSessionCookie: %v", err)
	}
	return rec.Result().Cookies()[0]
}

func TestRouter(t *testing.T) {
	site := newTestSite(t)

	tests := []struct {
		name         string
		method       string
		path         string
		token        string
		header       map[string]string
		wantStatus   int
		wantLocation string
	}{
		{name: "корень ведёт на язык браузера", method: http.MethodGet, path: "/", header: map[string]string{"Accept-Language": "kk-KZ,kk;q=0.9"}, wantStatus: http.StatusFound, wantLocation: "/kk/"},
		{name: "путь без префикса", method: http.MethodGet, path: "/lawyers?page=2", wantStatus: http.StatusFound, wantLocation: "/ru/lawyers?page=2"},
		{name: "liveness", method: http.MethodGet, path: "/health/live", wantStatus: http.StatusOK},
		{name: "readiness без мониторинга", method: http.MethodGet, path: "/health/ready", wantStatus: http.StatusOK},
		{name: "метрики", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "стили", method: http.MethodGet, path: "/static/css/site.css", wantStatus: http.StatusOK},
		{name: "статическая страница", method: http.MethodGet, path: "/en/collegium", wantStatus: http.StatusOK},
		{name: "страница входа", method: http.MethodGet, path: "/ru/login", wantStatus: http.StatusOK},
		{name: "неизвестная страница", method: http.MethodGet, path: "/ru/no-such-page", wantStatus: http.StatusNotFound},
		{name: "кабинет без сессии", method: http.MethodGet, path: "/kk/cabinet/users", wantStatus: http.StatusFound, wantLocation: "/kk/login"},
		{name: "отвергнутая сессия", method: http.MethodGet, path: "/ru/cabinet", token: "stale-token", wantStatus: http.StatusFound, wantLocation: "/ru/login"},
		{name: "дашборд адвоката", method: http.MethodGet, path: "/ru/cabinet", token: "lawyer-token", wantStatus: http.StatusOK},
		{name: "адвокат без доступа к пользователям", method: http.MethodGet, path: "/ru/cabinet/users", token: "lawyer-token", wantStatus: http.StatusFound, wantLocation: "/ru/cabinet/profile"},
		{name: "профиль адвоката", method: http.MethodGet, path: "/en/cabinet/profile", token: "lawyer-token", wantStatus: http.StatusOK},
		{name: "me без cookie", method: http.MethodGet, path: "/api/auth/me", wantStatus: http.StatusUnauthorized},
		{name: "me с сессией", method: http.MethodGet, path: "/api/auth/me", token: "lawyer-token", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if tt.token != "" {
				req.AddCookie(site.cookie(t, tt.token))
			}
			rec := httptest.NewRecorder()
			site.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("%s %s: статус = %d, хотели %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && rec.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, хотели %q", rec.Header().Get("Location"), tt.wantLocation)
			}
		})
	}
}

func TestRouter_LoginSetsCookie(t *testing.T) {
	site := newTestSite(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"l@aoka.kz","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	site.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, тело %s", rec.Code, rec.Body.String())
	}
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			session = c
		}
	}
	if session == nil || !session.HttpOnly {
		t.Fatalf("cookie сессии не установлен: %v", rec.Result().Cookies())
	}
}

func TestRouter_LoginRateLimited(t *testing.T) {
	site := newTestSite(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/ru/login", strings.NewReader("email=l%40aoka.kz&password=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "10.0.0.7:5000"
		last = httptest.NewRecorder()
		site.handler.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("статус шестой попытки = %d, хотели 429", last.Code)
	}
	if ct := last.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, хотели страницу входа", ct)
	}
	body := last.Body.String()
	if !strings.Contains(body, "errors.tooManyAttempts") || !strings.Contains(body, `value="l@aoka.kz"`) {
		t.Errorf("форма входа без сообщения о лимите: %s", body)
	}
}

// Подмена X-Forwarded-For без доверенного прокси не даёт новых попыток.
func TestRouter_LoginRateLimited_ForwardedForIgnored(t *testing.T) {
	site := newTestSite(t)

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"l@aoka.kz","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.RemoteAddr = "203.0.113.7:4000"
		rec := httptest.NewRecorder()
		site.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusTooManyRequests {
			allowed++
		}
	}
	if allowed != 5 {
		t.Errorf("пропущено попыток = %d, хотели 5 (burst)", allowed)
	}
}

func TestRouter_LogoutClearsSession(t *testing.T) {
	site := newTestSite(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(site.cookie(t, "lawyer-token"))
	rec := httptest.NewRecorder()
	site.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "http://localhost:3000" {
		t.Errorf("ответ = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
