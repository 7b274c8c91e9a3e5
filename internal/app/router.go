package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/logistica-platform/api/internal/audit"
	"github.com/logistica-platform/api/internal/config"
	"github.com/logistica-platform/api/internal/handlers"
	"github.com/logistica-platform/api/internal/importer"
	"github.com/logistica-platform/api/internal/middleware"
	"github.com/logistica-platform/api/internal/store"
)

// NewRouter wires the HTTP surface: auth, the six entity collections and
// the import pipeline endpoints.
func NewRouter(cfg config.Config, s store.Store, authService handlers.AuthService, sessions middleware.SessionStore, logger *slog.Logger) http.Handler {
	recorder := audit.NewRecorder(s)
	runner := importer.NewRunner(s, recorder, importer.NewRegistry(), logger, cfg.ImportMaxRows)
	h := handlers.NewServer(cfg, s, runner, authService, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.Env))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Logging(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.LimitBodyBytesWithOverrides(cfg.APIMaxBodyBytes, []middleware.BodyLimitOverride{
		{PathPrefix: "/imports", MaxBytes: cfg.ImportMaxFileBytes + 1<<20},
	}))

	api := chi.NewRouter()

	authMW := middleware.AuthMiddleware{Sessions: sessions, CookieName: cfg.SessionCookieName}
	loginLimiter := middleware.NewLoginRateLimiter(10, time.Minute)
	importLimiter := middleware.NewIPRateLimiterWithMaxEntries(30, time.Minute, cfg.RateLimitMaxIPs)

	api.Group(func(public chi.Router) {
		public.With(loginLimiter.Middleware).Post("/auth/login", h.PostAuthLogin)
		public.Get("/health", h.GetHealth)
	})

	api.Group(func(protected chi.Router) {
		protected.Use(authMW.RequireAuth)
		protected.Get("/auth/me", h.GetAuthMe)
		protected.Get("/auth/csrf", h.GetAuthCsrf)
		protected.With(middleware.EnforceCSRF(cfg.CSRFEnforce)).Post("/auth/logout", h.PostAuthLogout)

		protected.Get("/{entity}", h.GetRecords)
		protected.With(middleware.EnforceCSRF(cfg.CSRFEnforce)).Post("/{entity}", h.PostRecord)

		protected.Get("/imports/{entity}/template", h.GetImportTemplate)
		protected.Get("/imports/{entity}/last", h.GetLastImport)
		protected.With(
			middleware.RequireRole("admin"),
			middleware.EnforceCSRF(cfg.CSRFEnforce),
			importLimiter.Middleware("Too many import requests"),
		).Post("/imports/{entity}", h.PostImport)
	})

	r.Mount("/api", api)
	return r
}
