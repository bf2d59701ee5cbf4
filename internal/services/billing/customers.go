package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/trip-billing/internal/lib/money"
	"github.com/magabrotheeeer/trip-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/lib/term"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

// CreateCustomerRequest данные нового платёжного профиля.
type CreateCustomerRequest struct {
	User      models.User
	Balance   decimal.Decimal
	Source    string
	Shipping  *paymentprovider.Shipping
	AutoRenew *bool
	Metadata  map[string]string
}

// CreateCustomer создаёт клиента у провайдера и локально.
// Срок членства начинается в момент создания и длится один период.
func (s *Service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error) {
	const op = "billing.CreateCustomer"
	if req.User.ID == "" {
		return nil, validationError("user is required")
	}

	_, err := s.repo.GetCustomerByUser(ctx, req.User.ID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w", op, ErrCustomerExists)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	remote, err := s.reconciler.GetOrCreateCustomer(ctx, "", paymentprovider.CustomerParams{
		Balance:     money.ToMinor(req.Balance),
		Description: "Customer for " + req.User.Email,
		Email:       req.User.Email,
		Metadata:    req.Metadata,
		Shipping:    req.Shipping,
		Source:      req.Source,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpsertUser(ctx, req.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	customer := &models.Customer{
		UserID:     req.User.ID,
		ExternalID: remote.ID,
		Balance:    req.Balance,
		Currency:   remote.Currency,
		AutoRenew:  true,
		StartDate:  now,
		EndDate:    term.DefaultEnd(now),
	}
	if customer.Currency == "" {
		customer.Currency = s.currency
	}
	if req.AutoRenew != nil {
		customer.AutoRenew = *req.AutoRenew
	}
	if err := s.SaveCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("customer created", slog.Int64("id", customer.ID), slog.String("external_id", customer.ExternalID))
	return customer, nil
}

// SaveCustomer сохраняет клиента (создаёт, если ID не задан) и сразу
// пересчитывает флаг активности.
func (s *Service) SaveCustomer(ctx context.Context, c *models.Customer) error {
	const op = "billing.SaveCustomer"
	if c.ID == 0 {
		id, err := s.repo.CreateCustomer(ctx, *c)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		c.ID = id
	} else if err := s.repo.UpdateCustomer(ctx, *c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.RefreshStatus(ctx, c)
}

// RefreshStatus приводит is_active к значению now <= end_date и
// сохраняет флаг, если он изменился.
func (s *Service) RefreshStatus(ctx context.Context, c *models.Customer) error {
	const op = "billing.RefreshStatus"
	active := term.IsActive(c.EndDate, s.now())
	if active == c.IsActive {
		return nil
	}
	if err := s.repo.SetCustomerActive(ctx, c.ID, active); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.IsActive = active
	return nil
}

// Renew продлевает членство клиента в момент at и отправляет уведомление.
func (s *Service) Renew(ctx context.Context, customerID int64, at time.Time) (*models.Customer, error) {
	const op = "billing.Renew"
	c, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.StartDate, c.EndDate = term.Extend(c.StartDate, c.EndDate, at.UTC())
	if err := s.SaveCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("membership renewed", slog.Int64("customer_id", c.ID), slog.Time("end_date", c.EndDate))

	user, err := s.repo.GetUser(ctx, c.UserID)
	if err != nil {
		s.log.Warn("renewal notice skipped", slog.Int64("customer_id", c.ID), sl.Err(err))
		return c, nil
	}
	s.notify(ctx, rabbitmq.RoutingRenewal, models.RenewalNotice{
		Email:     user.Email,
		Name:      user.FullName(),
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
	})
	return c, nil
}

// ToggleAutoRenew переключает автопродление пользователя и синхронизирует
// с ним cancel_at_period_end самой ранней подписки клиента.
func (s *Service) ToggleAutoRenew(ctx context.Context, userID string) (*models.Customer, error) {
	const op = "billing.ToggleAutoRenew"
	c, err := s.repo.GetCustomerByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub, err := s.repo.FirstSubscription(ctx, c.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSubscription)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.AutoRenew = !c.AutoRenew

	var remote *paymentprovider.RemoteSubscription
	if c.AutoRenew {
		plan, err := s.repo.GetPlan(ctx, sub.PlanID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keep := false
		remote, err = s.reconciler.GetOrCreateSubscription(ctx, sub.ExternalID, paymentprovider.SubscriptionParams{
			Customer:          c.ExternalID,
			Plan:              plan.ExternalID,
			CancelAtPeriodEnd: &keep,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		remote, _, err = s.reconciler.CancelSubscription(ctx, sub.ExternalID, true)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if remote != nil {
		if remote.ID != sub.ExternalID {
			s.log.Info("subscription recreated at provider",
				slog.Int64("subscription_id", sub.ID), slog.String("external_id", remote.ID))
		}
		applyRemoteSubscription(sub, remote)
	} else {
		sub.CancelAtPeriodEnd = !c.AutoRenew
	}
	if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.SaveCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
