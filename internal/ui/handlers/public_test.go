package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/nirudef/aoka-web/internal/backend"
)

func TestHandleHome_LatestArticles(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET /api/v1/public/articles", http.StatusOK, `{"articles":[
		{"slug":"one","title":"Первая"},{"slug":"two","title":"Вторая"},
		{"slug":"three","title":"Третья"},{"slug":"four","title":"Четвёртая"}]}`)

	h := NewPublicHandler(env.client, env.sessions, env.members, testLogger())
	rec := env.serve(http.MethodGet, "/{lang}", "/kk", h.HandleHome, nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`href="/kk/articles/one"`, "Третья"} {
		if !strings.Contains(body, want) {
			t.Errorf("нет %q на главной", want)
		}
	}
	if strings.Contains(body, "Четвёртая") {
		t.Error("на главной больше трёх публикаций")
	}

	calls := env.api.callsTo("GET /api/v1/public/articles")
	if len(calls) != 1 || calls[0].Query.Get("lang") != "kk" {
		t.Errorf("запросы к API: %+v", calls)
	}
}

func TestHandleArticle(t *testing.T) {
	t.Run("опубликованная статья", func(t *testing.T) {
		env := newTestEnv(t)
		env.api.on("GET /api/v1/public/articles/reform-2024", http.StatusOK,
			`{"slug":"reform-2024","title":"Реформа","meta_title":"Реформа адвокатуры","body":"<p>Текст <b>статьи</b></p>"}`)

		h := NewPublicHandler(env.client, env.sessions, env.members, testLogger())
		rec := env.serve(http.MethodGet, "/{lang}/articles/{slug}", "/ru/articles/reform-2024", h.HandleArticle, nil, nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "<p>Текст <b>статьи</b></p>") {
			t.Error("тело статьи не выведено как HTML")
		}
		if !strings.Contains(body, "<title>Реформа адвокатуры") {
			t.Error("meta_title не попал в <title>")
		}
	})

	t.Run("отказ API даёт 404", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewPublicHandler(env.client, env.sessions, env.members, testLogger())
		rec := env.serve(http.MethodGet, "/{lang}/articles/{slug}", "/ru/articles/missing", h.HandleArticle, nil, nil)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, хотели 404", rec.Code)
		}
	})

	t.Run("недоступный API даёт 503", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewPublicHandler(unreachableClient(t), env.sessions, env.members, testLogger())
		rec := env.serve(http.MethodGet, "/{lang}/articles/{slug}", "/ru/articles/any", h.HandleArticle, nil, nil)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, хотели 503", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "errors.network") {
			t.Error("нет сообщения о недоступности")
		}
	})
}

func TestHandleArticles_CategoryFilter(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET /api/v1/public/articles", http.StatusOK, `{"articles":[
		{"slug":"a","title":"Новость","category":{"key":"news","name":"Новости"}},
		{"slug":"b","title":"Разъяснение","category":{"key":"law","name":"Право"}},
		{"slug":"c","title":"Без категории","category":null}]}`)
	env.api.on("GET /api/v1/categories", http.StatusOK, `{"categories":[{"id":"1","key":"news","name":"Новости"},{"id":"2","key":"law","name":"Право"}]}`)

	h := NewPublicHandler(env.client, env.sessions, env.members, testLogger())
	rec := env.serve(http.MethodGet, "/{lang}/articles", "/ru/articles?category=law", h.HandleArticles, nil, nil)

	body := rec.Body.String()
	if !strings.Contains(body, "Разъяснение") {
		t.Error("нет статьи выбранной категории")
	}
	if strings.Contains(body, "Без категории") || strings.Contains(body, `href="/ru/articles/a"`) {
		t.Error("фильтр по категории не применён")
	}
	if !strings.Contains(body, `href="/ru/articles?category=law" class="active"`) {
		t.Error("выбранная категория не отмечена")
	}
}

func TestHandleLawyers(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET /api/v1/public/lawyers", http.StatusOK, `{"users":[
		{"id":"u1","first_name":"Айгерим","last_name":"Нурланова","roles":["lawyer"],
		 "branch":{"translations":{"ru":{"name":"Филиал Конаев"}}}}],
		"meta":{"current_page":2,"total_pages":3,"total_count":41}}`)
	env.api.on("GET /api/v1/branches", http.StatusOK, `[{"id":"b1","translations":{"ru":{"name":"Филиал Конаев"}}}]`)
	env.api.on("GET /api/v1/law_offices", http.StatusOK, `[]`)

	h := NewPublicHandler(env.client, env.sessions, env.members, testLogger())
	rec := env.serve(http.MethodGet, "/{lang}/lawyers", "/ru/lawyers?page=2&branch_id=b1&role=admin", h.HandleLawyers, nil, nil)

	body := rec.Body.String()
	for _, want := range []string{"Нурланова Айгерим", `value="b1" selected`, "2 / 3"} {
		if !strings.Contains(body, want) {
			t.Errorf("нет %q в реестре", want)
		}
	}

	calls := env.api.callsTo("GET /api/v1/public/lawyers")
	if len(calls) != 1 {
		t.Fatalf("запросов реестра = %d", len(calls))
	}
	q := calls[0].Query
	if q.Get("page") != "2" || q.Get("branch_id") != "b1" || q.Get("role") != "" {
		t.Errorf("параметры реестра: %v", q)
	}
}

func TestHandleContactSubmit(t *testing.T) {
	t.Run("ошибки полей", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewPublicHandler(env.client, env.sessions, env.members, testLogger())
		form := url.Values{"name": {""}, "email": {"bad"}, "message": {"Вопрос"}}
		rec := env.serve(http.MethodPost, "/{lang}/contacts", "/ru/contacts", h.HandleContactSubmit, form, nil)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, хотели 422", rec.Code)
		}
		if len(env.api.callsTo("POST /api/v1/contact_messages")) != 0 {
			t.Error("невалидная форма отправлена в API")
		}
		if !strings.Contains(rec.Body.String(), "validation.emailInvalid") {
			t.Error("нет ошибки поля email")
		}
	})

	t.Run("отправлено", func(t *testing.T) {
		env := newTestEnv(t)
		env.api.on("POST /api/v1/contact_messages", http.StatusCreated, `{}`)
		h := NewPublicHandler(env.client, env.sessions, env.members, testLogger())
		form := url.Values{"name": {"Асель"}, "email": {"asel@mail.kz"}, "message": {"Нужна консультация"}}
		rec := env.serve(http.MethodPost, "/{lang}/contacts", "/en/contacts", h.HandleContactSubmit, form, nil)

		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/en/contacts" {
			t.Fatalf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
		}
		if f := env.flashFrom(rec); f == nil || f.Key != "contacts.sent" {
			t.Errorf("flash = %+v", f)
		}
		calls := env.api.callsTo("POST /api/v1/contact_messages")
		if len(calls) != 1 {
			t.Fatalf("запросов = %d", len(calls))
		}
		if calls[0].Body["lang"] != "en" {
			t.Errorf("тело запроса: %v", calls[0].Body)
		}
	})
}

// fakeAuthenticator — подставной вход.
type fakeAuthenticator struct {
	err error
}

func (f *fakeAuthenticator) Login(_ context.Context, _, _ string) (*backend.SignInResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &backend.SignInResult{Token: "fresh-token"}, nil
}

func TestHandleLogin(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		err        error
		wantStatus int
		wantText   string
		wantCookie bool
	}{
		{"пустой пароль", "", nil, http.StatusUnprocessableEntity, "validation.passwordRequired", false},
		{"неверные данные", "wrong", &backend.APIError{StatusCode: http.StatusUnauthorized}, http.StatusUnauthorized, "errors.invalidCredentials", false},
		{"API недоступен", "secret", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, "errors.network", false},
		{"успешный вход", "secret", nil, http.StatusFound, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := NewLoginHandler(&fakeAuthenticator{err: tt.err}, env.sessions, env.members, testLogger())
			form := url.Values{"email": {"lawyer@aoka.kz"}, "password": {tt.password}}
			rec := env.serve(http.MethodPost, "/{lang}/login", "/kk/login", h.HandleLogin, form, nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, хотели %d", rec.Code, tt.wantStatus)
			}
			if tt.wantText != "" && !strings.Contains(rec.Body.String(), tt.wantText) {
				t.Errorf("нет %q в ответе", tt.wantText)
			}

			var cookieSet bool
			for _, c := range rec.Result().Cookies() {
				if c.Name == "authToken" && c.Value != "" {
					cookieSet = true
				}
			}
			if cookieSet != tt.wantCookie {
				t.Errorf("cookie сессии установлен: %v, хотели %v", cookieSet, tt.wantCookie)
			}
			if tt.wantCookie && rec.Header().Get("Location") != "/kk/cabinet/profile" {
				t.Errorf("Location = %q", rec.Header().Get("Location"))
			}
		})
	}
}

func TestHandleLoginPage_AlreadySignedIn(t *testing.T) {
	env := newTestEnv(t)
	h := NewLoginHandler(&fakeAuthenticator{}, env.sessions, env.members, testLogger())
	rec := env.serve(http.MethodGet, "/{lang}/login", "/ru/login", h.HandleLoginPage, nil, lawyer())

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/ru/cabinet/profile" {
		t.Errorf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHandleTooManyAttempts(t *testing.T) {
	env := newTestEnv(t)
	h := NewLoginHandler(&fakeAuthenticator{}, env.sessions, env.members, testLogger())
	form := url.Values{"email": {"lawyer@aoka.kz"}, "password": {"x"}}
	rec := env.serve(http.MethodPost, "/{lang}/login", "/en/login", h.HandleTooManyAttempts, form, nil)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, хотели 429", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "errors.tooManyAttempts") || !strings.Contains(body, `value="lawyer@aoka.kz"`) {
		t.Error("форма входа без сообщения о лимите")
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "authToken" {
			t.Error("cookie сессии не должен устанавливаться")
		}
	}
}
