// metrics.go — Prometheus HTTP метрики сайта.
// Регистрирует метрики: aoka_http_requests_total, aoka_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aoka_http_requests_total",
			Help: "Общее количество HTTP-запросов к сайту",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aoka_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к сайту в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			path := metricsPath(r.URL.Path, wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// unmatchedPath — лейбл path для ответов 404: произвольные адреса
// не должны порождать новые временные ряды.
const unmatchedPath = "unmatched"

func metricsPath(path string, status int) string {
	if status == http.StatusNotFound {
		return unmatchedPath
	}
	return normalizePath(path)
}

// slugParents — сегменты, за которыми в пути следует slug статьи.
var slugParents = map[string]bool{"articles": true}

// keywordSegments — служебные сегменты, которые не считаются slug.
var keywordSegments = map[string]bool{"new": true, "edit": true, "delete": true}

// normalizePath сводит переменные сегменты пути к шаблонам, чтобы
// число значений лейбла path оставалось ограниченным:
//
//	/ru/cabinet/users/a1b2c3d4-.../edit → /ru/cabinet/users/{id}/edit
//	/kk/articles/novyi-zakon            → /kk/articles/{slug}
//
// Статика сводится к /static/*.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/static/") {
		return "/static/*"
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		switch {
		case seg == "":
		case isUUID(seg):
			segments[i] = "{id}"
		case i > 0 && slugParents[segments[i-1]] && !keywordSegments[seg]:
			segments[i] = "{slug}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
