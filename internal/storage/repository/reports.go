package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/trip-billing/internal/models"
)

func (s *Storage) queryCustomers(ctx context.Context, op, query string, args ...any) ([]*models.Customer, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer closeRows(rows)

	var result []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *Storage) queryPlanCounts(ctx context.Context, op, query string, args ...any) ([]models.PlanCount, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer closeRows(rows)

	var result []models.PlanCount
	for rows.Next() {
		var pc models.PlanCount
		if err := rows.Scan(&pc.PlanID, &pc.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CustomersStartedDuring клиенты, чья подписка (не пробная) стартовала в указанном месяце.
func (s *Storage) CustomersStartedDuring(ctx context.Context, year, month int) ([]*models.Customer, error) {
	from, to := monthRange(year, month)
	return s.queryCustomers(ctx, "storage.CustomersStartedDuring",
		`SELECT DISTINCT `+customerColumns+` FROM customers c
		 JOIN subscriptions s ON s.customer_id = c.id
		 WHERE s.status <> 'trialing' AND s.start >= $1 AND s.start < $2
		 ORDER BY c.id`, from, to)
}

// ActiveCustomers клиенты с активной подпиской.
func (s *Storage) ActiveCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.queryCustomers(ctx, "storage.ActiveCustomers",
		`SELECT DISTINCT `+customerColumns+` FROM customers c
		 JOIN subscriptions s ON s.customer_id = c.id
		 WHERE s.status = 'active'
		 ORDER BY c.id`)
}

// CustomersCanceledDuring клиенты, чья подписка отменена в указанном месяце.
func (s *Storage) CustomersCanceledDuring(ctx context.Context, year, month int) ([]*models.Customer, error) {
	from, to := monthRange(year, month)
	return s.queryCustomers(ctx, "storage.CustomersCanceledDuring",
		`SELECT DISTINCT `+customerColumns+` FROM customers c
		 JOIN subscriptions s ON s.customer_id = c.id
		 WHERE s.status = 'canceled' AND s.canceled_at >= $1 AND s.canceled_at < $2
		 ORDER BY c.id`, from, to)
}

// StartedPlanSummary число стартовавших в месяце подписок по планам.
func (s *Storage) StartedPlanSummary(ctx context.Context, year, month int) ([]models.PlanCount, error) {
	from, to := monthRange(year, month)
	return s.queryPlanCounts(ctx, "storage.StartedPlanSummary",
		`SELECT plan_id, COUNT(*) FROM subscriptions
		 WHERE status <> 'trialing' AND start >= $1 AND start < $2
		 GROUP BY plan_id ORDER BY plan_id`, from, to)
}

// ActivePlanSummary число активных подписок по планам.
func (s *Storage) ActivePlanSummary(ctx context.Context) ([]models.PlanCount, error) {
	return s.queryPlanCounts(ctx, "storage.ActivePlanSummary",
		`SELECT plan_id, COUNT(*) FROM subscriptions
		 WHERE status = 'active'
		 GROUP BY plan_id ORDER BY plan_id`)
}

// CanceledPlanSummary число отменённых в месяце подписок по планам.
func (s *Storage) CanceledPlanSummary(ctx context.Context, year, month int) ([]models.PlanCount, error) {
	from, to := monthRange(year, month)
	return s.queryPlanCounts(ctx, "storage.CanceledPlanSummary",
		`SELECT plan_id, COUNT(*) FROM subscriptions
		 WHERE status = 'canceled' AND canceled_at >= $1 AND canceled_at < $2
		 GROUP BY plan_id ORDER BY plan_id`, from, to)
}

// PaidTotals суммы оплаченных и возвращённых платежей за месяц.
func (s *Storage) PaidTotals(ctx context.Context, year, month int) (models.ChargeTotals, error) {
	const op = "storage.PaidTotals"
	if err := checkCtx(ctx, op); err != nil {
		return models.ChargeTotals{}, err
	}
	from, to := monthRange(year, month)

	var totals models.ChargeTotals
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(amount_refunded), 0) FROM charges
		 WHERE paid AND charge_created >= $1 AND charge_created < $2`, from, to,
	).Scan(&totals.TotalAmount, &totals.TotalRefunded); err != nil {
		return models.ChargeTotals{}, wrapErr(op, err)
	}
	return totals, nil
}
