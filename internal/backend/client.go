// Пакет backend — HTTP-клиент к внешнему API коллегии.
// Все бизнес-данные и учётные записи живут во внешнем API; клиент
// пересылает непрозрачный токен сессии в заголовке Authorization
// со схемой из конфигурации (по умолчанию "Token").
// Повторных попыток нет: каждая операция — ровно один запрос.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// maxErrorBody — сколько байт тела ошибки сохраняется в APIError.
const maxErrorBody = 64 << 10

var backendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "aoka_backend_requests_total",
		Help: "Количество запросов к внешнему API по операции и исходу.",
	},
	[]string{"operation", "outcome"},
)

// Client — HTTP-клиент к внешнему API.
type Client struct {
	baseURL    string // Базовый URL (без trailing slash)
	authScheme string // Схема заголовка Authorization

	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент к внешнему API.
// httpClient может содержать свой транспорт (трассировка, TLS);
// nil — клиент с таймаутом 10s.
func New(baseURL, authScheme string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if authScheme == "" {
		authScheme = "Token"
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authScheme: authScheme,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "backend_client")),
	}
}

// BaseURL возвращает базовый URL внешнего API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request описывает один запрос к внешнему API.
type request struct {
	op     string // имя операции для метрик и логов
	method string
	path   string
	token  string // пустой — без Authorization
	query  url.Values
	body   any
}

// do выполняет запрос и возвращает ответ со статусом 2xx.
// Для статусов вне 2xx тело читается и возвращается *APIError.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	var bodyReader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("сериализация тела запроса: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", c.authScheme+" "+r.token)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		backendRequestsTotal.WithLabelValues(r.op, "transport_error").Inc()
		c.logger.Warn("Внешний API недоступен",
			slog.String("operation", r.op),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", r.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		backendRequestsTotal.WithLabelValues(r.op, "rejected").Inc()
		c.logger.Debug("Внешний API отказал",
			slog.String("operation", r.op),
			slog.Int("status", resp.StatusCode),
		)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	backendRequestsTotal.WithLabelValues(r.op, "ok").Inc()
	return resp, nil
}

// doJSON выполняет запрос и декодирует JSON-ответ в target (nil — тело игнорируется).
func (c *Client) doJSON(ctx context.Context, r request, target any) error {
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}

// decodeResponse декодирует тело успешного ответа и закрывает его.
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("декодирование ответа внешнего API: %w", err)
	}
	return nil
}

// langQuery — query string с параметром lang.
func langQuery(lang string) url.Values {
	q := url.Values{}
	if lang != "" {
		q.Set("lang", lang)
	}
	return q
}
