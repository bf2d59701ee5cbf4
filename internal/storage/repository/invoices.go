package repository

import (
	"context"
	"database/sql"

	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// CreateInvoice сохраняет счёт и возвращает его ID.
func (s *Storage) CreateInvoice(ctx context.Context, inv models.Invoice) (int64, error) {
	const op = "storage.CreateInvoice"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO invoices (customer_id, subscription_id, external_id, status, amount_due,
			      subtotal, total, currency, description, statement_descriptor, receipt_number,
			      attempted, attempt_count, paid, period_start, period_end)
			  VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query,
		inv.CustomerID, inv.SubscriptionID, inv.ExternalID, inv.Status, inv.AmountDue,
		inv.Subtotal, inv.Total, inv.Currency, inv.Description, inv.StatementDescriptor, inv.ReceiptNumber,
		inv.Attempted, inv.AttemptCount, inv.Paid, inv.PeriodStart, inv.PeriodEnd,
	).Scan(&id); err != nil {
		return 0, wrapErr(op, err)
	}
	return id, nil
}

// GetInvoice возвращает счёт по ID.
func (s *Storage) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	const op = "storage.GetInvoice"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, customer_id, subscription_id, COALESCE(external_id, ''), status, amount_due,
			      subtotal, total, currency, description, statement_descriptor, receipt_number,
			      attempted, attempt_count, paid, period_start, period_end, created_at
			  FROM invoices WHERE id = $1`
	var (
		inv                    models.Invoice
		subscriptionID         sql.NullInt64
		periodStart, periodEnd sql.NullTime
	)
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&inv.ID, &inv.CustomerID, &subscriptionID,
		&inv.ExternalID, &inv.Status, &inv.AmountDue, &inv.Subtotal, &inv.Total, &inv.Currency,
		&inv.Description, &inv.StatementDescriptor, &inv.ReceiptNumber, &inv.Attempted,
		&inv.AttemptCount, &inv.Paid, &periodStart, &periodEnd, &inv.CreatedAt); err != nil {
		return nil, wrapErr(op, err)
	}
	if subscriptionID.Valid {
		inv.SubscriptionID = &subscriptionID.Int64
	}
	inv.PeriodStart = timePtr(periodStart)
	inv.PeriodEnd = timePtr(periodEnd)
	return &inv, nil
}

// DeleteInvoice удаляет счёт.
func (s *Storage) DeleteInvoice(ctx context.Context, id int64) error {
	const op = "storage.DeleteInvoice"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return wrapErr(op, err)
	}
	return expectOne(op, res)
}
