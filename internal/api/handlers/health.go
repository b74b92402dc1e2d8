// health.go — health endpoints сайта.
// /health/live — процесс жив
// /health/ready — внешний API доступен (по данным dephealth)
package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/nirudef/aoka-web/internal/api/errors"
	"github.com/nirudef/aoka-web/internal/config"
)

const serviceName = "aoka-web"

// DependencyHealth — текущее состояние зависимостей: имя → ok.
type DependencyHealth interface {
	Health() map[string]bool
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	deps DependencyHealth
	now  func() time.Time
}

// NewHealthHandler создаёт обработчик. deps может быть nil,
// если мониторинг зависимостей выключен: тогда readiness всегда ok.
func NewHealthHandler(deps DependencyHealth) *HealthHandler {
	return &HealthHandler{deps: deps, now: time.Now}
}

type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string                       `json:"status"`
	Timestamp string                       `json:"timestamp"`
	Version   string                       `json:"version"`
	Service   string                       `json:"service"`
	Checks    map[string]healthCheckResult `json:"checks,omitempty"`
}

// HealthLive — liveness probe, всегда 200.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	apierrors.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady — readiness probe. 503, если хотя бы одна зависимость не ok.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
		Checks:    map[string]healthCheckResult{},
	}

	if h.deps == nil {
		resp.Checks["backend-api"] = healthCheckResult{Status: "ok", Message: "мониторинг отключён"}
	} else {
		for name, ok := range h.deps.Health() {
			if ok {
				resp.Checks[name] = healthCheckResult{Status: "ok"}
				continue
			}
			resp.Checks[name] = healthCheckResult{Status: "fail", Message: "зависимость недоступна"}
			resp.Status = "fail"
		}
	}

	status := http.StatusOK
	if resp.Status == "fail" {
		status = http.StatusServiceUnavailable
	}
	apierrors.WriteJSON(w, status, resp)
}
