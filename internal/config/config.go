// Пакет config — загрузка и валидация конфигурации сайта АОКА
// из переменных окружения.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации сайта.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Публичный базовый URL сайта (цель редиректа после выхода)
	AppURL string

	// --- Внешний API ---

	// Базовый URL внешнего API (без завершающего слэша)
	APIURL string
	// Схема заголовка Authorization при пересылке токена
	APIAuthScheme string
	// Таймаут одного запроса к внешнему API
	APITimeout time.Duration

	// --- Сессия ---

	// Ключ шифрования cookie сессии
	SessionSecret string
	// Время жизни cookie с токеном
	SessionMaxAge time.Duration
	// Флаг Secure для cookie
	CookieSecure bool

	// --- Кэш участника ---

	// Время жизни записи кэша
	MemberCacheTTL time.Duration
	// Максимальное количество записей
	MemberCacheSize int

	// --- Ограничение попыток входа ---

	LoginRatePerMinute int
	LoginRateBurst     int
	// Прокси, от которых принимается X-Forwarded-For (IP или CIDR).
	// Пусто — клиентом считается RemoteAddr.
	TrustedProxies []netip.Prefix

	// --- Мониторинг зависимостей ---

	DephealthEnabled       bool
	DephealthGroup         string
	DephealthCheckInterval time.Duration
	DephealthHealthPath    string

	// --- Трассировка ---

	// OTLP/gRPC endpoint; пустая строка отключает трассировку
	OTelEndpoint string
	OTelInsecure bool

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// LoadDotEnv подгружает переменные из .env, если файл существует.
// Уже заданные переменные окружения не перезаписываются.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return nil
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// AOKA_PORT — порт HTTP-сервера (по умолчанию 3000)
	cfg.Port, err = getEnvInt("AOKA_PORT", 3000)
	if err != nil {
		return nil, fmt.Errorf("AOKA_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("AOKA_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("AOKA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("AOKA_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("AOKA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("AOKA_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.AppURL = strings.TrimRight(getEnvDefault("AOKA_APP_URL", "http://localhost:3000"), "/")
	if err := validateURL(cfg.AppURL); err != nil {
		return nil, fmt.Errorf("AOKA_APP_URL: %w", err)
	}

	// --- Внешний API ---

	// AOKA_API_URL — обязательный
	cfg.APIURL, err = getEnvRequired("AOKA_API_URL")
	if err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if err := validateURL(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("AOKA_API_URL: %w", err)
	}

	cfg.APIAuthScheme = getEnvDefault("AOKA_API_AUTH_SCHEME", "Token")

	cfg.APITimeout, err = getEnvDuration("AOKA_API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AOKA_API_TIMEOUT: %w", err)
	}

	// --- Сессия ---

	// AOKA_SESSION_SECRET — если пустой, ключ генерируется при старте
	// (сессии не переживут рестарт)
	cfg.SessionSecret = getEnvDefault("AOKA_SESSION_SECRET", "")

	// AOKA_SESSION_MAX_AGE — 30 дней по умолчанию
	cfg.SessionMaxAge, err = getEnvDuration("AOKA_SESSION_MAX_AGE", 30*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("AOKA_SESSION_MAX_AGE: %w", err)
	}
	if cfg.SessionMaxAge < time.Minute {
		return nil, fmt.Errorf("AOKA_SESSION_MAX_AGE: значение %s меньше минимального 1m", cfg.SessionMaxAge)
	}

	cfg.CookieSecure, err = getEnvBool("AOKA_COOKIE_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("AOKA_COOKIE_SECURE: %w", err)
	}

	// --- Кэш участника ---

	cfg.MemberCacheTTL, err = getEnvDuration("AOKA_MEMBER_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("AOKA_MEMBER_CACHE_TTL: %w", err)
	}
	if cfg.MemberCacheTTL <= 0 {
		return nil, fmt.Errorf("AOKA_MEMBER_CACHE_TTL: значение должно быть положительным")
	}

	cfg.MemberCacheSize, err = getEnvInt("AOKA_MEMBER_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("AOKA_MEMBER_CACHE_SIZE: %w", err)
	}
	if cfg.MemberCacheSize < 1 {
		return nil, fmt.Errorf("AOKA_MEMBER_CACHE_SIZE: значение %d должно быть >= 1", cfg.MemberCacheSize)
	}

	// --- Ограничение попыток входа ---

	cfg.LoginRatePerMinute, err = getEnvInt("AOKA_LOGIN_RATE_PER_MINUTE", 10)
	if err != nil {
		return nil, fmt.Errorf("AOKA_LOGIN_RATE_PER_MINUTE: %w", err)
	}
	cfg.LoginRateBurst, err = getEnvInt("AOKA_LOGIN_RATE_BURST", 5)
	if err != nil {
		return nil, fmt.Errorf("AOKA_LOGIN_RATE_BURST: %w", err)
	}
	if cfg.LoginRatePerMinute < 1 || cfg.LoginRateBurst < 1 {
		return nil, fmt.Errorf("AOKA_LOGIN_RATE_*: значения должны быть >= 1")
	}
	cfg.TrustedProxies, err = parseTrustedProxies(getEnvDefault("AOKA_TRUSTED_PROXIES", ""))
	if err != nil {
		return nil, fmt.Errorf("AOKA_TRUSTED_PROXIES: %w", err)
	}

	// --- Мониторинг зависимостей ---

	cfg.DephealthEnabled, err = getEnvBool("AOKA_DEPHEALTH_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("AOKA_DEPHEALTH_ENABLED: %w", err)
	}
	cfg.DephealthGroup = getEnvDefault("AOKA_DEPHEALTH_GROUP", "aoka")
	cfg.DephealthCheckInterval, err = getEnvDuration("AOKA_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AOKA_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthHealthPath = getEnvDefault("AOKA_DEPHEALTH_HEALTH_PATH", "/up")
	if !strings.HasPrefix(cfg.DephealthHealthPath, "/") {
		return nil, fmt.Errorf("AOKA_DEPHEALTH_HEALTH_PATH: путь должен начинаться с /")
	}

	// --- Трассировка ---

	cfg.OTelEndpoint = getEnvDefault("AOKA_OTEL_ENDPOINT", "")
	cfg.OTelInsecure, err = getEnvBool("AOKA_OTEL_INSECURE", false)
	if err != nil {
		return nil, fmt.Errorf("AOKA_OTEL_INSECURE: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("AOKA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AOKA_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное логическое значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseTrustedProxies разбирает список через запятую: адреса и CIDR-подсети.
func parseTrustedProxies(val string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("некорректная подсеть: %q", item)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("некорректный адрес: %q", item)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// validateURL проверяет, что строка — абсолютный http(s) URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("некорректный URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ожидается абсолютный http(s) URL, получено %q", raw)
	}
	return nil
}
