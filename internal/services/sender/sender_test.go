package sender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/trip-billing/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect(ctx context.Context) (smtp.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	return m.Called().Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// expectDelivery настраивает успешную отправку письма to и проверяет, что тело содержит want.
func expectDelivery(tr *MockTransport, to string, want ...string) {
	client := new(MockSMTPClient)
	writer := new(MockSMTPWriter)

	tr.On("GetSMTPUser").Return("billing@example.com")
	tr.On("Connect", mock.Anything).Return(client, nil).Once()
	client.On("Mail", "billing@example.com").Return(nil).Once()
	client.On("Rcpt", to).Return(nil).Once()
	client.On("Data").Return(writer, nil).Once()
	writer.On("Write", mock.MatchedBy(func(p []byte) bool {
		for _, w := range want {
			if !strings.Contains(string(p), w) {
				return false
			}
		}
		return true
	})).Return(100, nil).Once()
	writer.On("Close").Return(nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()
}

func TestSenderService_SendReceipt(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success",
			body: []byte(`{"email":"guest@example.com","charge_id":"ch_1","description":"Annual gala","amount":5000,"currency":"usd"}`),
			setupMocks: func(tr *MockTransport) {
				expectDelivery(tr, "guest@example.com", "Amount: 50.00 USD", "Reference: ch_1", "Annual gala")
			},
		},
		{
			name:       "no email is skipped",
			body:       []byte(`{"charge_id":"ch_1","amount":5000}`),
			setupMocks: func(_ *MockTransport) {},
		},
		{
			name:          "invalid JSON",
			body:          []byte(`invalid json`),
			setupMocks:    func(_ *MockTransport) {},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
		},
		{
			name: "SMTP connection error",
			body: []byte(`{"email":"guest@example.com","charge_id":"ch_1","amount":5000,"currency":"usd"}`),
			setupMocks: func(tr *MockTransport) {
				tr.On("GetSMTPUser").Return("billing@example.com")
				tr.On("Connect", mock.Anything).Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(newNoopLogger(), transport)
			tt.setupMocks(transport)

			err := service.SendReceipt(context.Background(), tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				assert.NoError(t, err)
			}
			transport.AssertExpectations(t)
		})
	}
}

func TestSenderService_SendRenewal(t *testing.T) {
	transport := new(MockTransport)
	expectDelivery(transport, "ann@example.com", "Hello, Ann Lee!", "through January 1, 2026")
	service := NewSenderService(newNoopLogger(), transport)

	err := service.SendRenewal(context.Background(),
		[]byte(`{"email":"ann@example.com","name":"Ann Lee","start_date":"2025-01-01T00:00:00Z","end_date":"2026-01-01T00:00:00Z"}`))

	assert.NoError(t, err)
	transport.AssertExpectations(t)
}

func TestSenderService_SendRenewalReminder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		transport := new(MockTransport)
		expectDelivery(transport, "ann@example.com", "expires on March 5, 2025", "auto-renew is turned off")
		service := NewSenderService(newNoopLogger(), transport)

		err := service.SendRenewalReminder(context.Background(),
			[]byte(`{"customer_id":1,"email":"ann@example.com","name":"Ann","end_date":"2025-03-05T00:00:00Z"}`))

		assert.NoError(t, err)
		transport.AssertExpectations(t)
	})

	t.Run("rcpt rejected", func(t *testing.T) {
		transport := new(MockTransport)
		client := new(MockSMTPClient)
		transport.On("GetSMTPUser").Return("billing@example.com")
		transport.On("Connect", mock.Anything).Return(client, nil).Once()
		client.On("Mail", "billing@example.com").Return(nil).Once()
		client.On("Rcpt", "ann@example.com").Return(errors.New("550 mailbox unavailable")).Once()
		client.On("Close").Return(nil).Once()
		service := NewSenderService(newNoopLogger(), transport)

		err := service.SendRenewalReminder(context.Background(),
			[]byte(`{"customer_id":1,"email":"ann@example.com","name":"Ann","end_date":"2025-03-05T00:00:00Z"}`))

		assert.ErrorContains(t, err, "mailbox unavailable")
		client.AssertExpectations(t)
	})
}
