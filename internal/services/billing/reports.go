package billing

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// PlanReport сводка подписок по планам за месяц.
type PlanReport struct {
	Year     int                `json:"year"`
	Month    int                `json:"month"`
	Started  []models.PlanCount `json:"started"`
	Active   []models.PlanCount `json:"active"`
	Canceled []models.PlanCount `json:"canceled"`
}

// ChargeReport суммы оплаченных платежей за месяц.
type ChargeReport struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	models.ChargeTotals
}

func validatePeriod(year, month int) error {
	if month < 1 || month > 12 {
		return validationError("month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return validationError("year %d is out of range", year)
	}
	return nil
}

// StartedDuring клиенты, чья платная подписка началась в указанном месяце.
func (s *Service) StartedDuring(ctx context.Context, year, month int) ([]*models.Customer, error) {
	const op = "billing.StartedDuring"
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	customers, err := s.repo.CustomersStartedDuring(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return customers, nil
}

// ActiveCustomers клиенты с активной подпиской.
func (s *Service) ActiveCustomers(ctx context.Context) ([]*models.Customer, error) {
	const op = "billing.ActiveCustomers"
	customers, err := s.repo.ActiveCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return customers, nil
}

// CanceledDuring клиенты, отменившие подписку в указанном месяце.
func (s *Service) CanceledDuring(ctx context.Context, year, month int) ([]*models.Customer, error) {
	const op = "billing.CanceledDuring"
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	customers, err := s.repo.CustomersCanceledDuring(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return customers, nil
}

// StartedPlanSummaryFor число начатых подписок по планам за месяц.
func (s *Service) StartedPlanSummaryFor(ctx context.Context, year, month int) ([]models.PlanCount, error) {
	const op = "billing.StartedPlanSummaryFor"
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	summary, err := s.repo.StartedPlanSummary(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summary, nil
}

// ActivePlanSummary число активных подписок по планам.
func (s *Service) ActivePlanSummary(ctx context.Context) ([]models.PlanCount, error) {
	const op = "billing.ActivePlanSummary"
	summary, err := s.repo.ActivePlanSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summary, nil
}

// CanceledPlanSummaryFor число отменённых подписок по планам за месяц.
func (s *Service) CanceledPlanSummaryFor(ctx context.Context, year, month int) ([]models.PlanCount, error) {
	const op = "billing.CanceledPlanSummaryFor"
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	summary, err := s.repo.CanceledPlanSummary(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summary, nil
}

// PaidTotalsFor суммы оплаченных платежей и возвратов за месяц.
func (s *Service) PaidTotalsFor(ctx context.Context, year, month int) (*ChargeReport, error) {
	const op = "billing.PaidTotalsFor"
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	totals, err := s.repo.PaidTotals(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &ChargeReport{Year: year, Month: month, ChargeTotals: totals}, nil
}

// PlanReportFor собирает все сводки по планам за месяц.
func (s *Service) PlanReportFor(ctx context.Context, year, month int) (*PlanReport, error) {
	started, err := s.StartedPlanSummaryFor(ctx, year, month)
	if err != nil {
		return nil, err
	}
	active, err := s.ActivePlanSummary(ctx)
	if err != nil {
		return nil, err
	}
	canceled, err := s.CanceledPlanSummaryFor(ctx, year, month)
	if err != nil {
		return nil, err
	}
	return &PlanReport{Year: year, Month: month, Started: started, Active: active, Canceled: canceled}, nil
}
