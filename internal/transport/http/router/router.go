// Package router assembles one chi router per service binary. All routers
// share the same middleware chain and expose /healthz and /metrics
// unauthenticated.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/bluecart/commerce/internal/platform/config"
	"github.com/bluecart/commerce/internal/platform/metrics"
	"github.com/bluecart/commerce/internal/transport/http/handlers"
	"github.com/bluecart/commerce/internal/transport/http/middleware"
)

func base(cfg *config.Config, lg zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(lg))

	r.Get("/healthz", handlers.Health(cfg.ServiceName))
	r.Handle("/metrics", metrics.Handler())
	return r
}

func Orders(cfg *config.Config, lg zerolog.Logger, h *handlers.OrderHandler) http.Handler {
	r := base(cfg, lg)
	auth := middleware.Auth(cfg.JWTSecret, cfg.JWTIssuer)

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(auth)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/cancel", h.Cancel)
	})
	return r
}

func Payments(cfg *config.Config, lg zerolog.Logger, h *handlers.PaymentHandler) http.Handler {
	r := base(cfg, lg)
	auth := middleware.Auth(cfg.JWTSecret, cfg.JWTIssuer)

	r.Route("/api/payments", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.ListByOrder)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/refund", h.Refund)
	})
	return r
}

func Products(cfg *config.Config, lg zerolog.Logger, h *handlers.ProductHandler) http.Handler {
	r := base(cfg, lg)
	auth := middleware.Auth(cfg.JWTSecret, cfg.JWTIssuer)

	r.Route("/api/products", func(r chi.Router) {
		// Catalog reads are public; writes require auth.
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
	return r
}
