// Package providertest содержит мок платёжного провайдера для тестов.
package providertest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

// MockProvider реализует paymentprovider.Provider на testify/mock.
type MockProvider struct {
	mock.Mock
}

var _ paymentprovider.Provider = (*MockProvider)(nil)

func (m *MockProvider) RetrievePlan(ctx context.Context, id string) (*paymentprovider.RemotePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemotePlan), args.Error(1)
}

func (m *MockProvider) CreatePlan(ctx context.Context, params paymentprovider.PlanParams) (*paymentprovider.RemotePlan, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemotePlan), args.Error(1)
}

func (m *MockProvider) UpdatePlan(ctx context.Context, id string, params paymentprovider.PlanParams) (*paymentprovider.RemotePlan, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemotePlan), args.Error(1)
}

func (m *MockProvider) DeletePlan(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProvider) RetrieveCustomer(ctx context.Context, id string) (*paymentprovider.RemoteCustomer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteCustomer), args.Error(1)
}

func (m *MockProvider) CreateCustomer(ctx context.Context, params paymentprovider.CustomerParams) (*paymentprovider.RemoteCustomer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteCustomer), args.Error(1)
}

func (m *MockProvider) UpdateCustomer(ctx context.Context, id string, params paymentprovider.CustomerParams) (*paymentprovider.RemoteCustomer, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteCustomer), args.Error(1)
}

func (m *MockProvider) DeleteCustomer(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProvider) RetrieveSubscription(ctx context.Context, id string) (*paymentprovider.RemoteSubscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteSubscription), args.Error(1)
}

func (m *MockProvider) CreateSubscription(ctx context.Context, params paymentprovider.SubscriptionParams) (*paymentprovider.RemoteSubscription, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteSubscription), args.Error(1)
}

func (m *MockProvider) UpdateSubscription(ctx context.Context, id string, params paymentprovider.SubscriptionParams) (*paymentprovider.RemoteSubscription, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteSubscription), args.Error(1)
}

func (m *MockProvider) CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*paymentprovider.RemoteSubscription, error) {
	args := m.Called(ctx, id, atPeriodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteSubscription), args.Error(1)
}

func (m *MockProvider) RetrieveInvoice(ctx context.Context, id string) (*paymentprovider.RemoteInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteInvoice), args.Error(1)
}

func (m *MockProvider) CreateInvoice(ctx context.Context, params paymentprovider.InvoiceParams) (*paymentprovider.RemoteInvoice, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteInvoice), args.Error(1)
}

func (m *MockProvider) UpdateInvoice(ctx context.Context, id string, params paymentprovider.InvoiceParams) (*paymentprovider.RemoteInvoice, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteInvoice), args.Error(1)
}

func (m *MockProvider) DeleteInvoice(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProvider) RetrieveCharge(ctx context.Context, id string) (*paymentprovider.RemoteCharge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteCharge), args.Error(1)
}

func (m *MockProvider) CreateCharge(ctx context.Context, params paymentprovider.ChargeParams) (*paymentprovider.RemoteCharge, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteCharge), args.Error(1)
}

func (m *MockProvider) UpdateCharge(ctx context.Context, id string, params paymentprovider.ChargeParams) (*paymentprovider.RemoteCharge, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteCharge), args.Error(1)
}

// MockWebhookParser реализует paymentprovider.WebhookParser.
type MockWebhookParser struct {
	mock.Mock
}

func (m *MockWebhookParser) ParseWebhook(payload []byte, signature string) (*paymentprovider.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Event), args.Error(1)
}
