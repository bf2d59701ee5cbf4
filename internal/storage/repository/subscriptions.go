package repository

import (
	"context"
	"database/sql"

	"github.com/magabrotheeeer/trip-billing/internal/models"
)

const subscriptionColumns = `id, customer_id, plan_id, COALESCE(external_id, ''), status, quantity, start,
	current_period_start, current_period_end, trial_start, trial_end, ended_at, canceled_at,
	cancel_at_period_end, created_at, updated_at`

func scanSubscription(row scanner) (*models.Subscription, error) {
	var (
		sub                                       models.Subscription
		start, periodStart, periodEnd             sql.NullTime
		trialStart, trialEnd, endedAt, canceledAt sql.NullTime
	)
	if err := row.Scan(&sub.ID, &sub.CustomerID, &sub.PlanID, &sub.ExternalID, &sub.Status, &sub.Quantity,
		&start, &periodStart, &periodEnd, &trialStart, &trialEnd, &endedAt, &canceledAt,
		&sub.CancelAtPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	sub.Start = timePtr(start)
	sub.CurrentPeriodStart = timePtr(periodStart)
	sub.CurrentPeriodEnd = timePtr(periodEnd)
	sub.TrialStart = timePtr(trialStart)
	sub.TrialEnd = timePtr(trialEnd)
	sub.EndedAt = timePtr(endedAt)
	sub.CanceledAt = timePtr(canceledAt)
	return &sub, nil
}

// CreateSubscription сохраняет подписку и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO subscriptions (customer_id, plan_id, external_id, status, quantity, start,
			      current_period_start, current_period_end, trial_start, trial_end, ended_at,
			      canceled_at, cancel_at_period_end)
			  VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query,
		sub.CustomerID, sub.PlanID, sub.ExternalID, sub.Status, sub.Quantity, sub.Start,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.TrialStart, sub.TrialEnd, sub.EndedAt,
		sub.CanceledAt, sub.CancelAtPeriodEnd,
	).Scan(&id); err != nil {
		return 0, wrapErr(op, err)
	}
	return id, nil
}

// UpdateSubscription перезаписывает состояние подписки, полученное от провайдера.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpdateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE subscriptions
			  SET plan_id = $1, external_id = NULLIF($2, ''), status = $3, quantity = $4, start = $5,
			      current_period_start = $6, current_period_end = $7, trial_start = $8,
			      trial_end = $9, ended_at = $10, canceled_at = $11, cancel_at_period_end = $12,
			      updated_at = NOW()
			  WHERE id = $13`
	res, err := s.DB.ExecContext(ctx, query,
		sub.PlanID, sub.ExternalID, sub.Status, sub.Quantity, sub.Start,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.TrialStart,
		sub.TrialEnd, sub.EndedAt, sub.CanceledAt, sub.CancelAtPeriodEnd, sub.ID)
	if err != nil {
		return wrapErr(op, err)
	}
	return expectOne(op, res)
}

// GetSubscription возвращает подписку по ID.
func (s *Storage) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return sub, nil
}

// GetSubscriptionByExternalID возвращает подписку по id у провайдера.
func (s *Storage) GetSubscriptionByExternalID(ctx context.Context, externalID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByExternalID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE external_id = $1`, externalID))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return sub, nil
}

// FirstSubscription возвращает самую раннюю подписку клиента.
func (s *Storage) FirstSubscription(ctx context.Context, customerID int64) (*models.Subscription, error) {
	const op = "storage.FirstSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE customer_id = $1 ORDER BY id LIMIT 1`, customerID))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return sub, nil
}
