package billingapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trip-billing/internal/config"
	"github.com/magabrotheeeer/trip-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider/providertest"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newRouter(t *testing.T, parser *providertest.MockWebhookParser) (http.Handler, *jwt.MakerImpl) {
	t.Helper()
	return newRouterWithLimit(t, parser, config.HTTPServer{RateLimit: 100, RateBurst: 100})
}

func newRouterWithLimit(t *testing.T, parser *providertest.MockWebhookParser, cfg config.HTTPServer) (http.Handler, *jwt.MakerImpl) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	maker := jwt.NewJWTMaker("secret", time.Hour)
	r := chi.NewRouter()
	RegisterRoutes(r, logger, cfg, Deps{
		Billing:  billing.New(nil, nil, nil, nil, "usd", logger),
		Tokens:   maker,
		Webhooks: parser,
		DB:       pingerFunc(func(context.Context) error { return nil }),
	})
	return r, maker
}

func TestRoutes_AccessControl(t *testing.T) {
	router, maker := newRouter(t, new(providertest.MockWebhookParser))
	member, err := maker.GenerateToken("user-1", "ann@example.com", "")
	require.NoError(t, err)

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		{name: "plan create without token", method: http.MethodPost, path: "/api/v1/plans", expectedStatus: http.StatusUnauthorized},
		{name: "plan create by member", method: http.MethodPost, path: "/api/v1/plans", token: member, expectedStatus: http.StatusForbidden},
		{name: "reports by member", method: http.MethodGet, path: "/api/v1/reports/charges", token: member, expectedStatus: http.StatusForbidden},
		{name: "renewal without token", method: http.MethodPost, path: "/api/v1/renewals", expectedStatus: http.StatusUnauthorized},
		{name: "customer without token", method: http.MethodPost, path: "/api/v1/customers", expectedStatus: http.StatusUnauthorized},
		{name: "checkout with broken token", method: http.MethodPost, path: "/api/v1/events/1/checkout", token: "broken", expectedStatus: http.StatusUnauthorized},
		{name: "health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRoutes_WebhookRejectsBadSignature(t *testing.T) {
	parser := new(providertest.MockWebhookParser)
	parser.On("ParseWebhook", mock.Anything, "forged").Return(nil, errors.New("signature mismatch"))
	router, _ := newRouter(t, parser)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "forged")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	parser.AssertExpectations(t)
}

func TestRoutes_MetricsCountRequests(t *testing.T) {
	router, _ := newRouter(t, new(providertest.MockWebhookParser))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `trip_billing_http_requests_total{method="GET",path="/health",status_code="200"} 1`)
}

func TestRoutes_WebhookBypassesRateLimit(t *testing.T) {
	parser := new(providertest.MockWebhookParser)
	parser.On("ParseWebhook", mock.Anything, "sig").Return(&paymentprovider.Event{
		ID: "evt_1", Type: paymentprovider.EventIgnored, RawType: "customer.created",
	}, nil)
	router, _ := newRouterWithLimit(t, parser, config.HTTPServer{RateLimit: 0.001, RateBurst: 1})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/plans", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/plans", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
		req.Header.Set("Stripe-Signature", "sig")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	}
	parser.AssertExpectations(t)
}
