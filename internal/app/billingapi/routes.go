// Package billingapi собирает HTTP API биллинга.
package billingapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/trip-billing/internal/config"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/customer/autorenew"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/customer/customercreate"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/event/checkout"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/health"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/plan/plancreate"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/plan/planlist"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/plan/planremove"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/renewal/renew"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/report"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/trip-billing/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/trip-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trip-billing/internal/lib/metrics"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
)

// Deps зависимости маршрутов.
type Deps struct {
	Billing  *billing.Service
	Tokens   middlewarectx.TokenParser
	Webhooks paymentprovider.WebhookParser
	DB       health.Pinger
	Metrics  *metrics.Collector
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, deps Deps) {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(deps.Metrics),
	)

	r.Get("/health", health.New(logger, deps.DB).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Уведомления провайдера не ограничиваются: отказ приводит к повторной доставке
		r.Post("/webhooks/stripe", paymentwebhook.New(logger, deps.Webhooks, deps.Billing).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

			// Открытые конечные точки
			r.Get("/plans", planlist.New(logger, deps.Billing).ServeHTTP)

			// Регистрация на мероприятие доступна и гостям
			r.With(middlewarectx.OptionalJWTMiddleware(deps.Tokens, logger)).
				Post("/events/{id}/checkout", checkout.New(logger, deps.Billing).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(deps.Tokens, logger))
				r.Post("/customers", customercreate.New(logger, deps.Billing).ServeHTTP)
				r.Post("/customers/auto-renew", autorenew.New(logger, deps.Billing).ServeHTTP)
				r.Post("/subscriptions", create.New(logger, deps.Billing).ServeHTTP)
				r.Delete("/subscriptions/{id}", cancel.New(logger, deps.Billing).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.AdminOnly(logger))
					reports := report.New(logger, deps.Billing)
					r.Post("/plans", plancreate.New(logger, deps.Billing).ServeHTTP)
					r.Delete("/plans/{id}", planremove.New(logger, deps.Billing).ServeHTTP)
					r.Post("/renewals", renew.New(logger, deps.Billing).ServeHTTP)
					r.Get("/reports/plans", reports.Plans)
					r.Get("/reports/charges", reports.Charges)
				})
			})
		})
	})

	r.Handle("/metrics", deps.Metrics.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
