// gate.go — проверка доступа к разделу кабинета.
package middleware

import (
	"net/http"

	"github.com/nirudef/aoka-web/internal/domain/rbac"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
)

// RequireSection пропускает участника, роли которого дают раздел section.
// Решение принимается по участнику, загруженному в этом запросе, а не по
// видимости пункта меню. Без доступа — redirect на свой профиль.
func RequireSection(section rbac.Section) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := MemberFromContext(r.Context())
			if m == nil {
				http.Redirect(w, r, "/"+i18n.LangFromContext(r.Context())+"/login", http.StatusFound)
				return
			}
			if !rbac.MayRender(section, m.Roles) {
				http.Redirect(w, r, "/"+i18n.LangFromContext(r.Context())+"/cabinet/profile", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
