// reports.go — сводка по составу коллегии (администратор, бухгалтер).
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/rbac"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	uimiddleware "github.com/nirudef/aoka-web/internal/ui/middleware"
	"github.com/nirudef/aoka-web/internal/ui/pages"
)

// UserCounter — список пользователей с общим числом в meta.
type UserCounter interface {
	ListUsers(ctx context.Context, token, lang string, f model.MemberFilter) (*model.MemberPage, error)
}

// ReportsHandler — раздел «Отчёты».
type ReportsHandler struct {
	base
	api UserCounter
}

// NewReportsHandler создаёт обработчик отчётов.
func NewReportsHandler(api UserCounter, sessions *auth.SessionManager, members SessionInvalidator, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{
		base: newBase(sessions, members, logger, "ui.reports"),
		api:  api,
	}
}

// HandleReports обрабатывает GET /{lang}/cabinet/reports.
// Общее число и число по каждой роли запрашиваются параллельно;
// неполученные счётчики показываются как 0 с предупреждением.
func (h *ReportsHandler) HandleReports(w http.ResponseWriter, r *http.Request) {
	v := h.cabinetView(w, r, "reports.title")
	token := uimiddleware.TokenFromContext(r.Context())

	counts := make([]int, len(rbac.AllRoles)+1)
	errs := make([]error, len(counts))

	var g errgroup.Group
	for i := range counts {
		filter := model.MemberFilter{Page: 1}
		if i > 0 {
			filter.Role = rbac.AllRoles[i-1]
		}
		g.Go(func() error {
			page, err := h.api.ListUsers(r.Context(), token, v.Lang, filter)
			if err != nil {
				errs[i] = err
				return nil
			}
			counts[i] = page.Meta.TotalCount
			return nil
		})
	}
	_ = g.Wait()

	data := &pages.ReportsData{Total: counts[0]}
	for i, role := range rbac.AllRoles {
		data.ByRole = append(data.ByRole, pages.RoleCount{RoleKey: "roles." + role, Count: counts[i+1]})
	}
	for _, err := range errs {
		if err == nil {
			continue
		}
		if h.sessionExpired(w, r, err) {
			return
		}
		h.logFailure(r, "count_users", err)
		data.Unavailable = true
	}

	h.render(w, r, http.StatusOK, pages.Reports(v, data))
}
