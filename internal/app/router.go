package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/camino-saas/camino/internal/auth"
	"github.com/camino-saas/camino/internal/invoices"
	"github.com/camino-saas/camino/internal/notes"
	"github.com/camino-saas/camino/internal/observability"
	"github.com/camino-saas/camino/internal/quotes"
	"github.com/camino-saas/camino/internal/tenants"
	"github.com/camino-saas/camino/internal/users"
	"github.com/camino-saas/camino/jobs"
)

// RouterParams aggregates everything the HTTP router mounts.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	AuthMW auth.Middleware

	Auth     *auth.Handler
	Tenants  *tenants.Handler
	Users    *users.Handler
	Notes    *notes.Handler
	Invoices *invoices.Handler
	Quotes   *quotes.Handler
	Jobs     *jobs.Handler
}

// NewRouter builds the HTTP router with the full middleware stack and all
// API routes mounted.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	r.Use(MiddlewareStack(MiddlewareConfig{
		Logger:  p.Logger,
		Config:  p.Config,
		Metrics: p.Metrics,
	})...)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", p.Auth.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(p.AuthMW.Authenticate)

			r.Route("/tenant", p.Tenants.MountRoutes)
			r.Route("/delivery-notes", func(r chi.Router) {
				p.Notes.MountRoutes(r, p.AuthMW.RequireAdmin)
			})

			r.Group(func(r chi.Router) {
				r.Use(p.AuthMW.RequireAdmin)
				r.Route("/workers", p.Users.MountRoutes)
				r.Route("/invoices", p.Invoices.MountRoutes)
				r.Route("/quotes", p.Quotes.MountRoutes)
			})
		})
	})

	if p.Jobs != nil {
		r.Route("/jobs", p.Jobs.MountRoutes)
	}

	return r
}
