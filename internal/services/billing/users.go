package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

// ResolveUser возвращает сохранённый профиль пользователя. Если профиля
// ещё нет, используются данные из токена.
func (s *Service) ResolveUser(ctx context.Context, id, email, role string) (*models.User, error) {
	const op = "billing.ResolveUser"
	user, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.User{ID: id, Email: email, Role: role}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.Role = role
	return user, nil
}

// CustomerForUser возвращает платёжный профиль пользователя.
func (s *Service) CustomerForUser(ctx context.Context, userID string) (*models.Customer, error) {
	const op = "billing.CustomerForUser"
	c, err := s.repo.GetCustomerByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// CancelUserSubscription отменяет подписку, если она принадлежит клиенту
// пользователя. Чужая подписка неотличима от отсутствующей.
func (s *Service) CancelUserSubscription(ctx context.Context, userID string, id int64, atPeriodEnd bool) (*models.Subscription, error) {
	const op = "billing.CancelUserSubscription"
	c, err := s.repo.GetCustomerByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.CustomerID != c.ID {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return s.CancelSubscription(ctx, id, atPeriodEnd)
}
