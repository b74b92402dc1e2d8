// middleware.go — HTTP middleware языкового префикса.
package i18n

import (
	"net/http"
)

// LocaleRedirect создаёт middleware, применяющий Resolve к каждому запросу.
// Запросы без языкового префикса получают 302 на путь с префиксом
// (query string сохраняется); для путей с префиксом язык кладётся в контекст.
func LocaleRedirect() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := Resolve(r.URL.Path, r.Header.Get("Accept-Language"))

			switch res.Action {
			case Redirect:
				target := res.Target
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusFound)
				return
			default:
				if res.Locale != "" {
					r = r.WithContext(WithLang(r.Context(), res.Locale))
				}
				next.ServeHTTP(w, r)
			}
		})
	}
}
