// Package paymentprovider описывает внешний платёжный провайдер как явный
// интерфейс с типизированными методами для каждого вида ресурса
// (план, клиент, подписка, счёт, платёж). Конкретные реализации живут
// в подпакетах, бизнес-логика зависит только от этого пакета.
package paymentprovider

import "context"

// Plans операции над планами провайдера.
type Plans interface {
	RetrievePlan(ctx context.Context, id string) (*RemotePlan, error)
	CreatePlan(ctx context.Context, params PlanParams) (*RemotePlan, error)
	UpdatePlan(ctx context.Context, id string, params PlanParams) (*RemotePlan, error)
	DeletePlan(ctx context.Context, id string) error
}

// Customers операции над клиентами провайдера.
type Customers interface {
	RetrieveCustomer(ctx context.Context, id string) (*RemoteCustomer, error)
	CreateCustomer(ctx context.Context, params CustomerParams) (*RemoteCustomer, error)
	UpdateCustomer(ctx context.Context, id string, params CustomerParams) (*RemoteCustomer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// Subscriptions операции над подписками провайдера.
type Subscriptions interface {
	RetrieveSubscription(ctx context.Context, id string) (*RemoteSubscription, error)
	CreateSubscription(ctx context.Context, params SubscriptionParams) (*RemoteSubscription, error)
	UpdateSubscription(ctx context.Context, id string, params SubscriptionParams) (*RemoteSubscription, error)
	// CancelSubscription отменяет подписку сразу либо в конце текущего периода.
	CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*RemoteSubscription, error)
}

// Invoices операции над счетами провайдера.
type Invoices interface {
	RetrieveInvoice(ctx context.Context, id string) (*RemoteInvoice, error)
	CreateInvoice(ctx context.Context, params InvoiceParams) (*RemoteInvoice, error)
	UpdateInvoice(ctx context.Context, id string, params InvoiceParams) (*RemoteInvoice, error)
	DeleteInvoice(ctx context.Context, id string) error
}

// Charges операции над разовыми платежами провайдера.
type Charges interface {
	RetrieveCharge(ctx context.Context, id string) (*RemoteCharge, error)
	CreateCharge(ctx context.Context, params ChargeParams) (*RemoteCharge, error)
	UpdateCharge(ctx context.Context, id string, params ChargeParams) (*RemoteCharge, error)
}

// Provider полный набор операций платёжного провайдера.
type Provider interface {
	Plans
	Customers
	Subscriptions
	Invoices
	Charges
}

// WebhookParser проверяет подпись входящего уведомления провайдера и разбирает его.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
