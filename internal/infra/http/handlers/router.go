package handlers

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/session"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Leads       *LeadHandler
	Assignments *AssignmentHandler
	Users       *UserHandler
	Health      *HealthHandler

	Sessions session.Store
	Codec    *session.Codec
	Logger   *zap.Logger

	AllowedOrigins []string
	Sentry         bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	if cfg.Sentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Session(cfg.Sessions, cfg.Codec, cfg.Logger))

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/login", cfg.Auth.Login)
	r.Post("/logout", cfg.Auth.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)

		r.Get("/me", cfg.Auth.Me)
		r.Get("/leads", cfg.Leads.List)
		r.Get("/leads/{id}", cfg.Leads.Get)
		r.Get("/leads/{id}/notes", cfg.Leads.ListNotes)
		r.Post("/leads/{id}/notes", cfg.Leads.AddNote)
		r.Post("/leads/{id}/closed", cfg.Leads.Close)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Post("/leads", cfg.Leads.Upload)
		r.Post("/leads/assign", cfg.Assignments.AssignOne)
		r.Post("/leads/assign/bulk", cfg.Assignments.AssignBulk)
		r.Get("/users", cfg.Users.List)
		r.Post("/users", cfg.Users.Create)
		r.Post("/register", cfg.Users.Register)
	})

	return r
}
