// Точка входа сайта АОКА.
// Загружает конфигурацию, каталоги переводов, настраивает трассировку,
// клиент внешнего API, кэш участника и мониторинг зависимостей,
// запускает HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/config"
	"github.com/nirudef/aoka-web/internal/server"
	"github.com/nirudef/aoka-web/internal/service"
	"github.com/nirudef/aoka-web/internal/telemetry"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
)

func main() {
	// 1. Переменные из .env (если файл есть) и конфигурация
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("Ошибка загрузки .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Сайт АОКА запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("api_url", cfg.APIURL),
	)

	ctx := context.Background()

	// 3. Каталоги переводов
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Трассировка (no-op без AOKA_OTEL_ENDPOINT)
	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, cfg.OTelInsecure, "aoka-web", config.Version, logger)
	if err != nil {
		logger.Error("Ошибка настройки трассировки", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Клиент внешнего API
	httpClient := &http.Client{
		Timeout:   cfg.APITimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	api := backend.New(cfg.APIURL, cfg.APIAuthScheme, httpClient, logger)

	// 6. Сессии и кэш участника
	if cfg.SessionSecret == "" {
		logger.Warn("AOKA_SESSION_SECRET не задан: ключ сгенерирован, сессии не переживут рестарт")
	}
	sessions, err := auth.NewSessionManager(cfg.SessionSecret, cfg.CookieSecure, cfg.SessionMaxAge)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cache := service.NewMemberCache(cfg.MemberCacheSize, cfg.MemberCacheTTL)
	members := service.NewMemberService(api, cache, logger)

	// 7. topologymetrics — мониторинг внешнего API
	deps := server.Deps{Backend: api, Members: members, Sessions: sessions}
	var dephealthSvc *service.DephealthService
	if cfg.DephealthEnabled {
		dephealthSvc, err = service.NewDephealthService(
			"aoka-web",
			cfg.DephealthGroup,
			cfg.APIURL,
			cfg.DephealthHealthPath,
			cfg.DephealthCheckInterval,
			logger,
		)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
			dephealthSvc = nil
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
			dephealthSvc = nil
		} else {
			deps.Health = dephealthSvc
		}
	}

	// 8. HTTP-сервер
	srv := server.New(cfg, logger, deps)
	runErr := srv.Run()

	// 9. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("Ошибка остановки трассировки", slog.String("error", err.Error()))
	}
	cancel()

	if runErr != nil {
		logger.Error("Ошибка сервера", slog.String("error", runErr.Error()))
		os.Exit(1)
	}
	logger.Info("Сайт АОКА остановлен")
}
