package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/trip-billing/internal/lib/epoch"
	"github.com/magabrotheeeer/trip-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

// CreateChargeRequest разовый платёж. Нужен источник средств или клиент.
type CreateChargeRequest struct {
	CustomerID          *int64
	Amount              int64
	Currency            string
	Source              string
	Description         string
	ReceiptEmail        string
	StatementDescriptor string
	Metadata            map[string]string
	Shipping            *paymentprovider.Shipping
}

// CreateCharge проводит платёж у провайдера и сохраняет его, только если
// провайдер его подтвердил. Отказ по карте возвращается как
// *paymentprovider.CardError без изменения локальных данных.
func (s *Service) CreateCharge(ctx context.Context, req CreateChargeRequest) (*models.Charge, error) {
	const op = "billing.CreateCharge"
	if req.Amount <= 0 {
		return nil, validationError("charge amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	var customerExternalID string
	if req.CustomerID != nil {
		customer, err := s.repo.GetCustomer(ctx, *req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("%s: customer: %w", op, err)
		}
		customerExternalID = customer.ExternalID
	}

	remote, err := s.reconciler.GetOrCreateCharge(ctx, "", paymentprovider.ChargeParams{
		Amount:              req.Amount,
		Currency:            currency,
		Customer:            customerExternalID,
		Source:              req.Source,
		Description:         req.Description,
		ReceiptEmail:        req.ReceiptEmail,
		StatementDescriptor: req.StatementDescriptor,
		Metadata:            req.Metadata,
		Shipping:            req.Shipping,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	charge := &models.Charge{
		CustomerID:     req.CustomerID,
		ExternalID:     remote.ID,
		Amount:         remote.Amount,
		AmountRefunded: remote.AmountRefunded,
		Currency:       remote.Currency,
		Description:    req.Description,
		ReceiptEmail:   req.ReceiptEmail,
		Paid:           remote.Paid,
		Disputed:       remote.Disputed,
		Refunded:       remote.Refunded,
		Captured:       remote.Captured,
		ChargeCreated:  epoch.Time(remote.Created),
	}
	id, err := s.repo.CreateCharge(ctx, *charge)
	if err != nil {
		s.log.Error("charge confirmed by provider but not saved", slog.String("external_id", remote.ID))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	charge.ID = id
	s.log.Info("charge created", slog.Int64("id", id), slog.Int64("amount", charge.Amount))

	if charge.ReceiptEmail != "" {
		s.notify(ctx, rabbitmq.RoutingReceipt, models.Receipt{
			Email:       charge.ReceiptEmail,
			ChargeID:    charge.ExternalID,
			Description: charge.Description,
			Amount:      charge.Amount,
			Currency:    charge.Currency,
		})
	}
	return charge, nil
}

// CreateInvoiceRequest счёт клиенту, опционально по подписке.
type CreateInvoiceRequest struct {
	CustomerID          int64
	SubscriptionID      *int64
	ApplicationFee      int64
	Description         string
	StatementDescriptor string
	Metadata            map[string]string
}

// CreateInvoice выставляет счёт у провайдера и сохраняет его локально.
func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*models.Invoice, error) {
	const op = "billing.CreateInvoice"
	if req.CustomerID == 0 {
		return nil, validationError("customer is required")
	}
	customer, err := s.repo.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%s: customer: %w", op, err)
	}

	params := paymentprovider.InvoiceParams{
		Customer:            customer.ExternalID,
		ApplicationFee:      req.ApplicationFee,
		Description:         req.Description,
		StatementDescriptor: req.StatementDescriptor,
		Metadata:            req.Metadata,
	}
	if req.SubscriptionID != nil {
		sub, err := s.repo.GetSubscription(ctx, *req.SubscriptionID)
		if err != nil {
			return nil, fmt.Errorf("%s: subscription: %w", op, err)
		}
		if sub.CustomerID != customer.ID {
			return nil, validationError("subscription belongs to another customer")
		}
		params.Subscription = sub.ExternalID
	}

	remote, err := s.reconciler.GetOrCreateInvoice(ctx, "", params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	inv := &models.Invoice{
		CustomerID:          customer.ID,
		SubscriptionID:      req.SubscriptionID,
		ExternalID:          remote.ID,
		Status:              remote.Status,
		AmountDue:           remote.AmountDue,
		Subtotal:            remote.Subtotal,
		Total:               remote.Total,
		Currency:            remote.Currency,
		Description:         remote.Description,
		StatementDescriptor: remote.StatementDescriptor,
		ReceiptNumber:       remote.ReceiptNumber,
		Attempted:           remote.Attempted,
		AttemptCount:        remote.AttemptCount,
		Paid:                remote.Paid,
		PeriodStart:         epoch.Time(remote.PeriodStart),
		PeriodEnd:           epoch.Time(remote.PeriodEnd),
	}
	if inv.Currency == "" {
		inv.Currency = s.currency
	}
	id, err := s.repo.CreateInvoice(ctx, *inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	inv.ID = id
	return inv, nil
}

// DeleteInvoice удаляет счёт у провайдера и локально. Возвращает false,
// если у провайдера счёта уже не было.
func (s *Service) DeleteInvoice(ctx context.Context, id int64) (bool, error) {
	const op = "billing.DeleteInvoice"
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	removed, err := s.reconciler.DeleteInvoice(ctx, inv.ExternalID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return removed, nil
}
