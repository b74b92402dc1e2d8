// Пакет server — HTTP-сервер сайта с graceful shutdown.
// Без TLS: TLS termination выполняет reverse proxy.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihandlers "github.com/nirudef/aoka-web/internal/api/handlers"
	apimw "github.com/nirudef/aoka-web/internal/api/middleware"
	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/config"
	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/rbac"
	"github.com/nirudef/aoka-web/internal/service"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/handlers"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
	uimw "github.com/nirudef/aoka-web/internal/ui/middleware"
	"github.com/nirudef/aoka-web/internal/ui/static"
)

// Deps — собранные в main зависимости маршрутов.
type Deps struct {
	Backend  *backend.Client
	Members  *service.MemberService
	Sessions *auth.SessionManager
	// Health — состояние зависимостей для /health/ready; nil, если мониторинг выключен.
	Health apihandlers.DependencyHealth
}

// Server — HTTP-сервер сайта.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      otelhttp.NewHandler(NewRouter(cfg, logger, deps), "aoka-web"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger.With(slog.String("component", "server")),
		cfg:        cfg,
	}
}

// NewRouter собирает маршрутизатор сайта.
// Порядок middleware: метрики → лог запроса → языковой префикс →
// проверка сессии → загрузка участника; доступ к разделам кабинета
// проверяется на уровне маршрутов.
func NewRouter(cfg *config.Config, logger *slog.Logger, deps Deps) http.Handler {
	api := deps.Backend
	sessions := deps.Sessions
	members := deps.Members

	limiter := apimw.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst, cfg.TrustedProxies)

	health := apihandlers.NewHealthHandler(deps.Health)
	authAPI := apihandlers.NewAuthHandler(members, sessions, cfg.AppURL, logger)

	public := handlers.NewPublicHandler(api, sessions, members, logger)
	login := handlers.NewLoginHandler(members, sessions, members, logger)
	cabinet := handlers.NewCabinetHandler(api, sessions, members, logger)
	users := handlers.NewUsersHandler(api, sessions, members, logger)
	branches := handlers.NewOrganizationsHandler(api, model.KindBranch, sessions, members, logger)
	offices := handlers.NewOrganizationsHandler(api, model.KindLawOffice, sessions, members, logger)
	articles := handlers.NewArticlesHandler(api, sessions, members, logger)
	categories := handlers.NewCategoriesHandler(api, sessions, members, logger)
	reports := handlers.NewReportsHandler(api, sessions, members, logger)

	r := chi.NewRouter()
	r.Use(apimw.MetricsMiddleware())
	r.Use(apimw.RequestLogger(logger))
	r.Use(i18n.LocaleRedirect())
	r.Use(uimw.NewSessionProbe(sessions, members, logger).Middleware())
	r.Use(uimw.CurrentMember(members, sessions, logger))

	r.NotFound(public.HandleNotFound)

	// --- Служебные endpoints ---

	r.Get("/health/live", health.HealthLive)
	r.Get("/health/ready", health.HealthReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	// --- JSON API сессии ---

	r.Route("/api/auth", func(r chi.Router) {
		r.With(limiter.Middleware).Post("/login", authAPI.Login)
		r.Post("/logout", authAPI.Logout)
		r.Get("/me", authAPI.Me)
	})

	// --- Страницы сайта ---

	r.Route("/{lang}", func(r chi.Router) {
		r.Get("/", public.HandleHome)
		r.Get("/collegium", public.HandleCollegium)
		r.Get("/center", public.HandleCenter)
		r.Get("/lawyers", public.HandleLawyers)
		r.Get("/articles", public.HandleArticles)
		r.Get("/articles/{slug}", public.HandleArticle)
		r.Get("/contacts", public.HandleContacts)
		r.Post("/contacts", public.HandleContactSubmit)

		r.Get("/login", login.HandleLoginPage)
		r.With(limiter.Limit(http.HandlerFunc(login.HandleTooManyAttempts))).Post("/login", login.HandleLogin)

		r.Route("/cabinet", func(r chi.Router) {
			r.Use(uimw.RequireMember)

			r.Get("/", cabinet.HandleDashboard)

			r.Group(func(r chi.Router) {
				r.Use(uimw.RequireSection(rbac.SectionProfile))
				r.Get("/profile", cabinet.HandleProfile)
				r.Post("/profile", cabinet.HandleProfileUpdate)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(uimw.RequireSection(rbac.SectionUsers))
				r.Get("/", users.HandleList)
				r.Post("/", users.HandleCreate)
				r.Get("/new", users.HandleNew)
				r.Get("/{id}/edit", users.HandleEdit)
				r.Post("/{id}", users.HandleUpdate)
				r.Post("/{id}/delete", users.HandleDelete)
			})

			r.Route("/branches", organizationRoutes(rbac.SectionBranches, branches))
			r.Route("/offices", organizationRoutes(rbac.SectionOffices, offices))

			r.Route("/articles", func(r chi.Router) {
				r.Use(uimw.RequireSection(rbac.SectionArticles))
				r.Get("/", articles.HandleList)
				r.Post("/", articles.HandleCreate)
				r.Get("/new", articles.HandleNew)
				r.Get("/{slug}", articles.HandleEdit)
				r.Get("/{slug}/edit", articles.HandleEdit)
				r.Post("/{slug}", articles.HandleUpdate)
				r.Post("/{slug}/delete", articles.HandleDelete)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Use(uimw.RequireSection(rbac.SectionCategories))
				r.Get("/", categories.HandleList)
				r.Post("/", categories.HandleCreate)
				r.Get("/new", categories.HandleNew)
				r.Get("/{id}/edit", categories.HandleEdit)
				r.Post("/{id}", categories.HandleUpdate)
				r.Post("/{id}/delete", categories.HandleDelete)
			})

			r.With(uimw.RequireSection(rbac.SectionReports)).Get("/reports", reports.HandleReports)
		})
	})

	return r
}

// organizationRoutes — одинаковые маршруты филиалов и юридических контор.
func organizationRoutes(section rbac.Section, h *handlers.OrganizationsHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(uimw.RequireSection(section))
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/new", h.HandleNew)
		r.Get("/{id}/edit", h.HandleEdit)
		r.Post("/{id}", h.HandleUpdate)
		r.Post("/{id}/delete", h.HandleDelete)
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен", slog.String("addr", s.httpServer.Addr))

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
