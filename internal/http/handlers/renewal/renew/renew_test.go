package renew

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Renew(ctx context.Context, customerID int64, at time.Time) (*models.Customer, error) {
	args := m.Called(ctx, customerID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func TestRenewHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	at := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "продление от текущего момента",
			body: `{"customer_id":9}`,
			setupMock: func(m *MockService) {
				m.On("Renew", mock.Anything, int64(9), now).
					Return(&models.Customer{ID: 9, EndDate: now.AddDate(1, 0, 0), IsActive: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"end_date":"2026-06-15T12:00:00Z"`,
		},
		{
			name: "продление на указанную дату",
			body: `{"customer_id":9,"at":"2025-07-01T00:00:00Z"}`,
			setupMock: func(m *MockService) {
				m.On("Renew", mock.Anything, int64(9), at).Return(&models.Customer{ID: 9}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "нет клиента в запросе",
			body:           `{}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field CustomerID is a required field`,
		},
		{
			name: "клиент не найден",
			body: `{"customer_id":404}`,
			setupMock: func(m *MockService) {
				m.On("Renew", mock.Anything, int64(404), now).
					Return(nil, fmt.Errorf("billing.Renew: %w", repository.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)
			handler.now = func() time.Time { return now }
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/renewals", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
