package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/trip-billing/internal/lib/epoch"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

// CreateSubscriptionRequest подписка клиента на план.
type CreateSubscriptionRequest struct {
	CustomerID      int64             `json:"customer_id" validate:"required"`
	PlanID          int64             `json:"plan_id" validate:"required"`
	Quantity        int64             `json:"quantity"`
	TrialEnd        *time.Time        `json:"trial_end"`
	TrialPeriodDays int64             `json:"trial_period_days"`
	Source          string            `json:"source"`
	Metadata        map[string]string `json:"metadata"`
}

// applyRemoteSubscription переносит в sub значения провайдера.
// Нулевые метки провайдера становятся nil.
func applyRemoteSubscription(sub *models.Subscription, remote *paymentprovider.RemoteSubscription) {
	sub.ExternalID = remote.ID
	sub.Status = models.SubscriptionStatus(remote.Status)
	if remote.Quantity > 0 {
		sub.Quantity = remote.Quantity
	}
	sub.Start = epoch.Time(remote.Start)
	sub.CurrentPeriodStart = epoch.Time(remote.CurrentPeriodStart)
	sub.CurrentPeriodEnd = epoch.Time(remote.CurrentPeriodEnd)
	sub.TrialStart = epoch.Time(remote.TrialStart)
	sub.TrialEnd = epoch.Time(remote.TrialEnd)
	sub.EndedAt = epoch.Time(remote.EndedAt)
	sub.CanceledAt = epoch.Time(remote.CanceledAt)
	sub.CancelAtPeriodEnd = remote.CancelAtPeriodEnd
}

// CreateSubscription подписывает клиента на план у провайдера и сохраняет
// подписку с границами периода, рассчитанными провайдером.
func (s *Service) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*models.Subscription, error) {
	const op = "billing.CreateSubscription"
	if req.CustomerID == 0 {
		return nil, validationError("customer is required")
	}
	if req.PlanID == 0 {
		return nil, validationError("plan is required")
	}
	if req.Quantity < 0 {
		return nil, validationError("quantity must not be negative")
	}

	customer, err := s.repo.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%s: customer: %w", op, err)
	}
	plan, err := s.repo.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: plan: %w", op, err)
	}
	if !plan.IsActive {
		return nil, validationError("plan %q is not available", plan.Name)
	}
	if customer.ExternalID == "" || plan.ExternalID == "" {
		return nil, validationError("customer and plan must be synchronized with the payment provider")
	}

	remote, err := s.reconciler.GetOrCreateSubscription(ctx, "", paymentprovider.SubscriptionParams{
		Customer:        customer.ExternalID,
		Plan:            plan.ExternalID,
		Quantity:        req.Quantity,
		Metadata:        req.Metadata,
		Source:          req.Source,
		TrialEnd:        epoch.Unix(req.TrialEnd),
		TrialPeriodDays: req.TrialPeriodDays,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub := &models.Subscription{
		CustomerID: customer.ID,
		PlanID:     plan.ID,
		Quantity:   1,
	}
	applyRemoteSubscription(sub, remote)
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateSubscription(ctx, *sub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.ID = id
	s.log.Info("subscription created", slog.Int64("id", id), slog.String("external_id", sub.ExternalID))
	return sub, nil
}

// CancelSubscription отменяет подписку у провайдера. Если у провайдера
// подписки уже нет, локальная запись всё равно помечается отменённой.
func (s *Service) CancelSubscription(ctx context.Context, id int64, atPeriodEnd bool) (*models.Subscription, error) {
	const op = "billing.CancelSubscription"
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	remote, found, err := s.reconciler.CancelSubscription(ctx, sub.ExternalID, atPeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if found {
		applyRemoteSubscription(sub, remote)
	} else {
		s.log.Warn("subscription already absent at provider", slog.Int64("id", id))
		now := s.now().UTC()
		sub.Status = models.StatusCanceled
		sub.CanceledAt = &now
		sub.EndedAt = &now
		sub.CancelAtPeriodEnd = false
	}

	if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}
