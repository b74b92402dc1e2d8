// query.go — разбор параметров списков (page, query, role, фильтры)
// и идентификаторов в пути.
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/nirudef/aoka-web/internal/domain/model"
)

// queryPage возвращает номер страницы из ?page (не меньше 1).
func queryPage(r *http.Request) int {
	page := 1
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil || page < 1 {
		return 1
	}
	return page
}

// queryString возвращает строковый параметр без пробелов по краям.
func queryString(r *http.Request, name string) string {
	var s string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// memberFilter собирает фильтр списка участников из запроса.
func memberFilter(r *http.Request) model.MemberFilter {
	return model.MemberFilter{
		Page:        queryPage(r),
		Query:       queryString(r, "query"),
		Role:        queryString(r, "role"),
		BranchID:    queryString(r, "branch_id"),
		LawOfficeID: queryString(r, "law_office_id"),
	}
}

// idParam возвращает {id} из пути, если это UUID.
func idParam(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
