package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	customerhandler "fides/internal/customer/handler"
	loanhandler "fides/internal/loan/handler"
	"fides/internal/platform/health"
	"fides/internal/platform/metrics"
	"fides/internal/platform/middleware"
	"fides/internal/token"
)

// RouterConfig carries the wired handlers and cross-cutting dependencies the
// router mounts. Handlers stay thin; authorization lives here in the route
// groups, outside the domain services.
type RouterConfig struct {
	Customers *customerhandler.Handler
	Loans     *loanhandler.Handler
	Health    *health.Handler
	Tokens    middleware.TokenValidator
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewRouter wires all endpoints with the middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Route("/api/v1", func(api chi.Router) {
		// Public: registration and login.
		cfg.Customers.RegisterPublic(api)

		// Customer routes: own applications only.
		api.Group(func(g chi.Router) {
			g.Use(middleware.RequireAuth(cfg.Tokens, cfg.Logger))
			g.Use(middleware.RequireRole(token.RoleCustomer, cfg.Logger))
			cfg.Loans.RegisterCustomer(g)
		})

		// Admin routes: review queue and fraud tooling.
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireAuth(cfg.Tokens, cfg.Logger))
			admin.Use(middleware.RequireRole(token.RoleAdmin, cfg.Logger))
			cfg.Loans.RegisterAdmin(admin)
			cfg.Customers.RegisterAdmin(admin)
		})
	})

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
