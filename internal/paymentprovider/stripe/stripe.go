// Package stripe реализует paymentprovider.Provider поверх stripe-go.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/charge"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/invoice"
	"github.com/stripe/stripe-go/v82/plan"
	"github.com/stripe/stripe-go/v82/subscription"

	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

// Client адаптер к API Stripe.
type Client struct {
	webhookSecret string
	log           *slog.Logger
}

// New настраивает ключ API и возвращает клиент.
func New(secretKey, webhookSecret string, log *slog.Logger) *Client {
	stripe.Key = secretKey
	return &Client{
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// RetrievePlan получает план по id.
func (c *Client) RetrievePlan(ctx context.Context, id string) (*paymentprovider.RemotePlan, error) {
	const op = "stripe.RetrievePlan"
	params := &stripe.PlanParams{}
	params.Context = ctx
	p, err := plan.Get(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemotePlan(p), nil
}

// CreatePlan создаёт план вместе с продуктом.
func (c *Client) CreatePlan(ctx context.Context, in paymentprovider.PlanParams) (*paymentprovider.RemotePlan, error) {
	const op = "stripe.CreatePlan"
	params := &stripe.PlanParams{
		Amount:        stripe.Int64(in.Amount),
		Currency:      stripe.String(in.Currency),
		Interval:      stripe.String(in.Interval),
		IntervalCount: stripe.Int64(in.IntervalCount),
		Nickname:      stripe.String(in.Name),
		Product: &stripe.PlanProductParams{
			Name: stripe.String(in.Name),
		},
	}
	if in.ID != "" {
		params.ID = stripe.String(in.ID)
	}
	if in.StatementDescriptor != "" {
		params.Product.StatementDescriptor = stripe.String(in.StatementDescriptor)
	}
	if in.TrialPeriodDays > 0 {
		params.TrialPeriodDays = stripe.Int64(in.TrialPeriodDays)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	p, err := plan.New(params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemotePlan(p), nil
}

// UpdatePlan обновляет поля плана, которые Stripe разрешает менять:
// название, метаданные и пробный период. Сумма и интервал неизменяемы.
func (c *Client) UpdatePlan(ctx context.Context, id string, in paymentprovider.PlanParams) (*paymentprovider.RemotePlan, error) {
	const op = "stripe.UpdatePlan"
	params := &stripe.PlanParams{}
	if in.Name != "" {
		params.Nickname = stripe.String(in.Name)
	}
	if in.TrialPeriodDays > 0 {
		params.TrialPeriodDays = stripe.Int64(in.TrialPeriodDays)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	p, err := plan.Update(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemotePlan(p), nil
}

// DeletePlan удаляет план.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	const op = "stripe.DeletePlan"
	params := &stripe.PlanParams{}
	params.Context = ctx
	if _, err := plan.Del(id, params); err != nil {
		return c.wrap(op, err)
	}
	return nil
}

// RetrieveCustomer получает клиента по id.
func (c *Client) RetrieveCustomer(ctx context.Context, id string) (*paymentprovider.RemoteCustomer, error) {
	const op = "stripe.RetrieveCustomer"
	params := &stripe.CustomerParams{}
	params.Context = ctx
	cus, err := customer.Get(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	if cus.Deleted {
		return nil, fmt.Errorf("%s: %w", op, paymentprovider.ErrNotFound)
	}
	return toRemoteCustomer(cus), nil
}

// CreateCustomer создаёт клиента.
func (c *Client) CreateCustomer(ctx context.Context, in paymentprovider.CustomerParams) (*paymentprovider.RemoteCustomer, error) {
	const op = "stripe.CreateCustomer"
	params := customerParams(in)
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	cus, err := customer.New(params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteCustomer(cus), nil
}

// UpdateCustomer обновляет клиента.
func (c *Client) UpdateCustomer(ctx context.Context, id string, in paymentprovider.CustomerParams) (*paymentprovider.RemoteCustomer, error) {
	const op = "stripe.UpdateCustomer"
	params := customerParams(in)
	params.Context = ctx

	cus, err := customer.Update(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteCustomer(cus), nil
}

// DeleteCustomer удаляет клиента.
func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	const op = "stripe.DeleteCustomer"
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if _, err := customer.Del(id, params); err != nil {
		return c.wrap(op, err)
	}
	return nil
}

// RetrieveSubscription получает подписку по id.
func (c *Client) RetrieveSubscription(ctx context.Context, id string) (*paymentprovider.RemoteSubscription, error) {
	const op = "stripe.RetrieveSubscription"
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := subscription.Get(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteSubscription(sub), nil
}

// CreateSubscription подписывает клиента на план.
func (c *Client) CreateSubscription(ctx context.Context, in paymentprovider.SubscriptionParams) (*paymentprovider.RemoteSubscription, error) {
	const op = "stripe.CreateSubscription"
	params := subscriptionParams(in)
	params.Customer = stripe.String(in.Customer)
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	sub, err := subscription.New(params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteSubscription(sub), nil
}

// UpdateSubscription обновляет подписку. Смена плана или количества
// применяется к первой позиции подписки.
func (c *Client) UpdateSubscription(ctx context.Context, id string, in paymentprovider.SubscriptionParams) (*paymentprovider.RemoteSubscription, error) {
	const op = "stripe.UpdateSubscription"
	params := subscriptionParams(in)
	params.Context = ctx

	if len(params.Items) > 0 {
		current, err := subscription.Get(id, &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}})
		if err != nil {
			return nil, c.wrap(op, err)
		}
		if current.Items != nil && len(current.Items.Data) > 0 {
			params.Items[0].ID = stripe.String(current.Items.Data[0].ID)
		}
	}

	sub, err := subscription.Update(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteSubscription(sub), nil
}

// CancelSubscription отменяет подписку сразу или помечает её
// к отмене в конце текущего периода.
func (c *Client) CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*paymentprovider.RemoteSubscription, error) {
	const op = "stripe.CancelSubscription"
	var (
		sub *stripe.Subscription
		err error
	)
	if atPeriodEnd {
		params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(true)}
		params.Context = ctx
		sub, err = subscription.Update(id, params)
	} else {
		params := &stripe.SubscriptionCancelParams{}
		params.Context = ctx
		sub, err = subscription.Cancel(id, params)
	}
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteSubscription(sub), nil
}

// RetrieveInvoice получает счёт по id.
func (c *Client) RetrieveInvoice(ctx context.Context, id string) (*paymentprovider.RemoteInvoice, error) {
	const op = "stripe.RetrieveInvoice"
	params := &stripe.InvoiceParams{}
	params.Context = ctx
	inv, err := invoice.Get(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteInvoice(inv), nil
}

// CreateInvoice создаёт черновик счёта.
func (c *Client) CreateInvoice(ctx context.Context, in paymentprovider.InvoiceParams) (*paymentprovider.RemoteInvoice, error) {
	const op = "stripe.CreateInvoice"
	params := invoiceParams(in)
	params.Customer = stripe.String(in.Customer)
	if in.Subscription != "" {
		params.Subscription = stripe.String(in.Subscription)
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	inv, err := invoice.New(params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteInvoice(inv), nil
}

// UpdateInvoice обновляет счёт.
func (c *Client) UpdateInvoice(ctx context.Context, id string, in paymentprovider.InvoiceParams) (*paymentprovider.RemoteInvoice, error) {
	const op = "stripe.UpdateInvoice"
	params := invoiceParams(in)
	params.Context = ctx

	inv, err := invoice.Update(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteInvoice(inv), nil
}

// DeleteInvoice удаляет черновик счёта.
func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	const op = "stripe.DeleteInvoice"
	params := &stripe.InvoiceParams{}
	params.Context = ctx
	if _, err := invoice.Del(id, params); err != nil {
		return c.wrap(op, err)
	}
	return nil
}

// RetrieveCharge получает платёж по id.
func (c *Client) RetrieveCharge(ctx context.Context, id string) (*paymentprovider.RemoteCharge, error) {
	const op = "stripe.RetrieveCharge"
	params := &stripe.ChargeParams{}
	params.Context = ctx
	ch, err := charge.Get(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteCharge(ch), nil
}

// CreateCharge проводит разовый платёж.
func (c *Client) CreateCharge(ctx context.Context, in paymentprovider.ChargeParams) (*paymentprovider.RemoteCharge, error) {
	const op = "stripe.CreateCharge"
	params, err := newChargeParams(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	ch, err := charge.New(params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteCharge(ch), nil
}

// UpdateCharge обновляет описание, метаданные, email квитанции и доставку платежа.
func (c *Client) UpdateCharge(ctx context.Context, id string, in paymentprovider.ChargeParams) (*paymentprovider.RemoteCharge, error) {
	const op = "stripe.UpdateCharge"
	params := chargeParams(in)
	params.Context = ctx

	ch, err := charge.Update(id, params)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return toRemoteCharge(ch), nil
}

func (c *Client) wrap(op string, err error) error {
	mapped := mapError(err)
	if !errors.Is(mapped, paymentprovider.ErrNotFound) {
		c.log.Warn("stripe request failed", slog.String("op", op), sl.Err(mapped))
	}
	return fmt.Errorf("%s: %w", op, mapped)
}

// mapError переводит ошибки stripe-go в ошибки paymentprovider.
func mapError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return &paymentprovider.RequestError{Message: err.Error(), Err: err}
	}
	switch {
	case stripeErr.Code == stripe.ErrorCodeResourceMissing,
		stripeErr.HTTPStatusCode == http.StatusNotFound:
		return paymentprovider.ErrNotFound
	case stripeErr.Type == stripe.ErrorTypeCard:
		return &paymentprovider.CardError{
			Code:        string(stripeErr.Code),
			DeclineCode: string(stripeErr.DeclineCode),
			Message:     stripeErr.Msg,
		}
	default:
		return &paymentprovider.RequestError{
			StatusCode: stripeErr.HTTPStatusCode,
			Code:       string(stripeErr.Code),
			Message:    stripeErr.Msg,
			Err:        err,
		}
	}
}
