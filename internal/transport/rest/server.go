package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/guildqueue/internal/transport/middleware"
)

// Routes are the handlers mounted on the HTTP server. Nil fields leave
// their routes unmounted.
type Routes struct {
	Health  *HealthHandler
	Admin   *AdminHandler
	Metrics http.Handler

	// Webhook receives Telegram updates at WebhookPath.
	Webhook     http.Handler
	WebhookPath string
}

// Guards are the per-route middlewares.
type Guards struct {
	Admin   middleware.Middleware
	Webhook middleware.Middleware
}

// NewHandler builds the root HTTP handler. Every request passes through
// request id, panic recovery and access logging; admin and webhook routes
// are additionally wrapped with their guards.
func NewHandler(logger *slog.Logger, routes Routes, guards Guards) http.Handler {
	mux := http.NewServeMux()

	if routes.Health != nil {
		mux.HandleFunc("GET /live", routes.Health.Live)
		mux.HandleFunc("GET /ready", routes.Health.Ready)
		mux.HandleFunc("GET /health", routes.Health.Health)
	}
	if routes.Metrics != nil {
		mux.Handle("GET /metrics", routes.Metrics)
	}

	if routes.Admin != nil {
		admin := guard(guards.Admin)
		mux.Handle("GET /admin/queues", admin(http.HandlerFunc(routes.Admin.Queues)))
		mux.Handle("GET /admin/audit", admin(http.HandlerFunc(routes.Admin.Audit)))
		mux.Handle("POST /admin/scope/reload", admin(http.HandlerFunc(routes.Admin.ReloadScope)))
	}

	if routes.Webhook != nil && routes.WebhookPath != "" {
		mux.Handle("POST "+routes.WebhookPath, guard(guards.Webhook)(routes.Webhook))
	}

	return middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger, "/live", "/ready", "/metrics"),
	)(mux)
}

func guard(m middleware.Middleware) middleware.Middleware {
	if m == nil {
		return middleware.Chain()
	}
	return m
}
