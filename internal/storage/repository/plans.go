package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/trip-billing/internal/models"
)

const planColumns = `id, COALESCE(external_id, ''), name, description, amount, currency, interval,
	interval_count, trial_period_days, statement_descriptor, metadata, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (*models.Plan, error) {
	var (
		p        models.Plan
		metadata []byte
	)
	if err := row.Scan(&p.ID, &p.ExternalID, &p.Name, &p.Description, &p.Amount, &p.Currency,
		&p.Interval, &p.IntervalCount, &p.TrialPeriodDays, &p.StatementDescriptor, &metadata,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &p, nil
}

func encodeMetadata(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

// CreatePlan сохраняет план и возвращает его ID.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (int64, error) {
	const op = "storage.CreatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	metadata, err := encodeMetadata(plan.Metadata)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO plans (external_id, name, description, amount, currency, interval,
			      interval_count, trial_period_days, statement_descriptor, metadata, is_active)
			  VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query,
		plan.ExternalID, plan.Name, plan.Description, plan.Amount, plan.Currency, plan.Interval,
		plan.IntervalCount, plan.TrialPeriodDays, plan.StatementDescriptor, metadata, plan.IsActive,
	).Scan(&id); err != nil {
		return 0, wrapErr(op, err)
	}
	return id, nil
}

// UpdatePlan перезаписывает изменяемые поля плана.
func (s *Storage) UpdatePlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.UpdatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	metadata, err := encodeMetadata(plan.Metadata)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE plans
			  SET external_id = NULLIF($1, ''), name = $2, description = $3, amount = $4,
			      currency = $5, interval = $6, interval_count = $7, trial_period_days = $8,
			      statement_descriptor = $9, metadata = $10, is_active = $11, updated_at = NOW()
			  WHERE id = $12`
	res, err := s.DB.ExecContext(ctx, query,
		plan.ExternalID, plan.Name, plan.Description, plan.Amount, plan.Currency, plan.Interval,
		plan.IntervalCount, plan.TrialPeriodDays, plan.StatementDescriptor, metadata, plan.IsActive,
		plan.ID)
	if err != nil {
		return wrapErr(op, err)
	}
	return expectOne(op, res)
}

// SetPlanActive включает или отключает план.
func (s *Storage) SetPlanActive(ctx context.Context, id int64, active bool) error {
	const op = "storage.SetPlanActive"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE plans SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return wrapErr(op, err)
	}
	return expectOne(op, res)
}

// GetPlan возвращает план по ID.
func (s *Storage) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "storage.GetPlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanPlan(s.DB.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return p, nil
}

// GetPlanByName возвращает план по названию.
func (s *Storage) GetPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	const op = "storage.GetPlanByName"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanPlan(s.DB.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE name = $1`, name))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return p, nil
}

// ListPlans возвращает планы, при activeOnly только активные.
func (s *Storage) ListPlans(ctx context.Context, activeOnly bool) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + planColumns + ` FROM plans WHERE ($1 = false OR is_active) ORDER BY amount DESC, id`
	rows, err := s.DB.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer closeRows(rows)

	var result []*models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func closeRows(rows *sql.Rows) {
	_ = rows.Close()
}
