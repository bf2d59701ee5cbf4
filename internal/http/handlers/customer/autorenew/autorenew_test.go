package autorenew

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/trip-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trip-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ToggleAutoRenew(ctx context.Context, userID string) (*models.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func TestAutoRenewHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "автопродление выключено",
			setupMock: func(m *MockService) {
				m.On("ToggleAutoRenew", mock.Anything, "user-1").Return(&models.Customer{ID: 9, AutoRenew: false}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"auto_renew":false`,
		},
		{
			name: "нет подписки",
			setupMock: func(m *MockService) {
				m.On("ToggleAutoRenew", mock.Anything, "user-1").
					Return(nil, fmt.Errorf("billing.ToggleAutoRenew: %w", billing.ErrNoSubscription))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   billing.ErrNoSubscription.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			claims := &jwt.Claims{}
			claims.Subject = "user-1"

			req := httptest.NewRequest(http.MethodPost, "/customers/auto-renew", nil)
			req = req.WithContext(middlewarectx.WithClaims(req.Context(), claims))
			w := httptest.NewRecorder()

			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
