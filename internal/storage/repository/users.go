package repository

import (
	"context"

	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// UpsertUser сохраняет пользователя, полученного от провайдера идентичности.
func (s *Storage) UpsertUser(ctx context.Context, user models.User) error {
	const op = "storage.UpsertUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO users (id, email, first_name, last_name, role)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (id) DO UPDATE
			  SET email = EXCLUDED.email, first_name = EXCLUDED.first_name,
			      last_name = EXCLUDED.last_name, role = EXCLUDED.role`
	if _, err := s.DB.ExecContext(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.Role); err != nil {
		return wrapErr(op, err)
	}
	return nil
}

// GetUser возвращает пользователя по id.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, email, first_name, last_name, role FROM users WHERE id = $1`
	var u models.User
	if err := s.DB.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role); err != nil {
		return nil, wrapErr(op, err)
	}
	return &u, nil
}
