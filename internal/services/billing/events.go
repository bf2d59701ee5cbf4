package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

// HandleProviderEvent применяет уведомление провайдера к локальным записям.
// Уведомления о неизвестных локально объектах пропускаются.
func (s *Service) HandleProviderEvent(ctx context.Context, event *paymentprovider.Event) error {
	const op = "billing.HandleProviderEvent"
	log := s.log.With(slog.String("event_id", event.ID), slog.String("type", event.RawType))

	switch event.Type {
	case paymentprovider.EventSubscriptionUpdated, paymentprovider.EventSubscriptionDeleted:
		if event.Subscription == nil {
			return validationError("event %s has no subscription", event.ID)
		}
		sub, err := s.repo.GetSubscriptionByExternalID(ctx, event.Subscription.ID)
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("subscription is not tracked locally")
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if event.Type == paymentprovider.EventSubscriptionUpdated &&
			!models.SubscriptionStatus(event.Subscription.Status).Valid() {
			log.Warn("unsupported subscription status, event skipped",
				slog.String("status", event.Subscription.Status))
			return nil
		}
		applyRemoteSubscription(sub, event.Subscription)
		if event.Type == paymentprovider.EventSubscriptionDeleted {
			sub.Status = models.StatusCanceled
		}
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("subscription synchronized", slog.String("status", string(sub.Status)))

	case paymentprovider.EventChargeUpdated, paymentprovider.EventChargeDisputed:
		if event.Charge == nil {
			return validationError("event %s has no charge", event.ID)
		}
		charge, err := s.repo.GetChargeByExternalID(ctx, event.Charge.ID)
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("charge is not tracked locally")
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if event.Type == paymentprovider.EventChargeDisputed {
			// Спор меняет только флаг: состояние оплаты в уведомлении не передаётся.
			charge.Disputed = true
		} else {
			charge.Paid = event.Charge.Paid
			charge.Refunded = event.Charge.Refunded
			charge.Captured = event.Charge.Captured
			charge.AmountRefunded = event.Charge.AmountRefunded
			charge.Disputed = charge.Disputed || event.Charge.Disputed
		}
		if err := s.repo.UpdateChargeState(ctx, *charge); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("charge synchronized")

	default:
		log.Debug("event ignored")
	}
	return nil
}
