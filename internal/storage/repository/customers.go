package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/trip-billing/internal/models"
)

const customerColumns = `c.id, c.user_id, COALESCE(c.external_id, ''), c.balance, c.currency, c.auto_renew,
	c.is_active, c.start_date, c.end_date, c.created_at, c.updated_at`

func scanCustomer(row scanner) (*models.Customer, error) {
	var c models.Customer
	if err := row.Scan(&c.ID, &c.UserID, &c.ExternalID, &c.Balance, &c.Currency, &c.AutoRenew,
		&c.IsActive, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCustomer сохраняет клиента и возвращает его ID.
func (s *Storage) CreateCustomer(ctx context.Context, c models.Customer) (int64, error) {
	const op = "storage.CreateCustomer"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO customers (user_id, external_id, balance, currency, auto_renew,
			      is_active, start_date, end_date)
			  VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query,
		c.UserID, c.ExternalID, c.Balance, c.Currency, c.AutoRenew, c.IsActive, c.StartDate, c.EndDate,
	).Scan(&id); err != nil {
		return 0, wrapErr(op, err)
	}
	return id, nil
}

// UpdateCustomer перезаписывает изменяемые поля клиента.
func (s *Storage) UpdateCustomer(ctx context.Context, c models.Customer) error {
	const op = "storage.UpdateCustomer"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE customers
			  SET external_id = NULLIF($1, ''), balance = $2, currency = $3, auto_renew = $4,
			      is_active = $5, start_date = $6, end_date = $7, updated_at = NOW()
			  WHERE id = $8`
	res, err := s.DB.ExecContext(ctx, query,
		c.ExternalID, c.Balance, c.Currency, c.AutoRenew, c.IsActive, c.StartDate, c.EndDate, c.ID)
	if err != nil {
		return wrapErr(op, err)
	}
	return expectOne(op, res)
}

// SetCustomerActive обновляет только флаг активности.
func (s *Storage) SetCustomerActive(ctx context.Context, id int64, active bool) error {
	const op = "storage.SetCustomerActive"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE customers SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return wrapErr(op, err)
	}
	return expectOne(op, res)
}

// GetCustomer возвращает клиента по ID.
func (s *Storage) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	const op = "storage.GetCustomer"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanCustomer(s.DB.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers c WHERE c.id = $1`, id))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return c, nil
}

// GetCustomerByUser возвращает клиента пользователя.
func (s *Storage) GetCustomerByUser(ctx context.Context, userID string) (*models.Customer, error) {
	const op = "storage.GetCustomerByUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanCustomer(s.DB.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers c WHERE c.user_id = $1`, userID))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return c, nil
}

// GetCustomerByEmail возвращает клиента по email пользователя.
func (s *Storage) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	const op = "storage.GetCustomerByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanCustomer(s.DB.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers c JOIN users u ON u.id = c.user_id WHERE lower(u.email) = lower($1)`, email))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return c, nil
}

// ListRenewalReminders возвращает активных клиентов без автопродления,
// срок которых истекает в интервале [from, to).
func (s *Storage) ListRenewalReminders(ctx context.Context, from, to time.Time) ([]models.RenewalReminder, error) {
	const op = "storage.ListRenewalReminders"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT c.id, u.email, u.first_name, u.last_name, c.end_date
			  FROM customers c
			  JOIN users u ON u.id = c.user_id
			  WHERE c.is_active AND NOT c.auto_renew
			    AND c.end_date >= $1 AND c.end_date < $2
			  ORDER BY c.id`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer closeRows(rows)

	var result []models.RenewalReminder
	for rows.Next() {
		var (
			r           models.RenewalReminder
			first, last string
		)
		if err := rows.Scan(&r.CustomerID, &r.Email, &first, &last, &r.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		r.Name = models.User{FirstName: first, LastName: last}.FullName()
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
