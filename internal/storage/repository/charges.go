package repository

import (
	"context"
	"database/sql"

	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// CreateCharge сохраняет подтверждённый провайдером платёж и возвращает его ID.
func (s *Storage) CreateCharge(ctx context.Context, ch models.Charge) (int64, error) {
	const op = "storage.CreateCharge"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO charges (customer_id, external_id, amount, amount_refunded, currency,
			      description, receipt_email, paid, disputed, refunded, captured, charge_created)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query,
		ch.CustomerID, ch.ExternalID, ch.Amount, ch.AmountRefunded, ch.Currency,
		ch.Description, ch.ReceiptEmail, ch.Paid, ch.Disputed, ch.Refunded, ch.Captured, ch.ChargeCreated,
	).Scan(&id); err != nil {
		return 0, wrapErr(op, err)
	}
	return id, nil
}

// GetChargeByExternalID возвращает платёж по id у провайдера.
func (s *Storage) GetChargeByExternalID(ctx context.Context, externalID string) (*models.Charge, error) {
	const op = "storage.GetChargeByExternalID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, customer_id, external_id, amount, amount_refunded, currency, description,
			      receipt_email, paid, disputed, refunded, captured, charge_created, created_at
			  FROM charges WHERE external_id = $1`
	var (
		ch         models.Charge
		customerID sql.NullInt64
		created    sql.NullTime
	)
	if err := s.DB.QueryRowContext(ctx, query, externalID).Scan(&ch.ID, &customerID, &ch.ExternalID,
		&ch.Amount, &ch.AmountRefunded, &ch.Currency, &ch.Description, &ch.ReceiptEmail, &ch.Paid,
		&ch.Disputed, &ch.Refunded, &ch.Captured, &created, &ch.CreatedAt); err != nil {
		return nil, wrapErr(op, err)
	}
	if customerID.Valid {
		ch.CustomerID = &customerID.Int64
	}
	ch.ChargeCreated = timePtr(created)
	return &ch, nil
}

// UpdateChargeState обновляет флаги платежа, которые меняются после захвата.
func (s *Storage) UpdateChargeState(ctx context.Context, ch models.Charge) error {
	const op = "storage.UpdateChargeState"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE charges
			  SET paid = $1, disputed = $2, refunded = $3, captured = $4, amount_refunded = $5
			  WHERE external_id = $6`
	res, err := s.DB.ExecContext(ctx, query,
		ch.Paid, ch.Disputed, ch.Refunded, ch.Captured, ch.AmountRefunded, ch.ExternalID)
	if err != nil {
		return wrapErr(op, err)
	}
	return expectOne(op, res)
}
