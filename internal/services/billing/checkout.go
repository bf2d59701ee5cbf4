package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/trip-billing/internal/lib/card"
	"github.com/magabrotheeeer/trip-billing/internal/lib/money"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

// CheckoutRequest регистрация на мероприятие. User равен nil для гостя.
// Source токен карты, выпущенный провайдером на стороне клиента; Card
// используется только для локальной проверки.
type CheckoutRequest struct {
	EventID  int64
	User     *models.User
	Attendee models.Attendee
	Card     card.Details
	Source   string
}

// CheckoutResult итог регистрации.
type CheckoutResult struct {
	EventID int64          `json:"event_id"`
	Email   string         `json:"email"`
	Amount  int64          `json:"amount"`
	Charge  *models.Charge `json:"charge,omitempty"`
}

// Checkout регистрирует участника на мероприятие. Члены клуба платят
// членский взнос, гости обычный; бесплатная регистрация проходит без платежа.
// Участник добавляется только после подтверждённого платежа.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	const op = "billing.Checkout"
	event, err := s.repo.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !event.IsActive {
		return nil, validationError("registration for %q is closed", event.Name)
	}

	attendee := req.Attendee
	fee := event.NonMemberFee
	if req.User != nil {
		fee = event.MemberFee
		if attendee.Email == "" {
			attendee.Email = req.User.Email
		}
		if attendee.FirstName == "" && attendee.LastName == "" {
			attendee.FirstName, attendee.LastName = req.User.FirstName, req.User.LastName
		}
	}
	attendee.Email = strings.TrimSpace(attendee.Email)
	if attendee.Email == "" {
		return nil, validationError("email is required")
	}

	registered, err := s.repo.IsAttendee(ctx, event.ID, attendee.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if registered {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyRegistered)
	}

	result := &CheckoutResult{EventID: event.ID, Email: attendee.Email, Amount: money.ToMinor(fee)}
	if result.Amount == 0 {
		if err := s.addAttendee(ctx, event.ID, attendee, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return result, nil
	}

	if err := req.Card.Validate(s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var customerID *int64
	if req.User != nil {
		customer, err := s.repo.GetCustomerByUser(ctx, req.User.ID)
		switch {
		case err == nil:
			customerID = &customer.ID
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	charge, err := s.CreateCharge(ctx, CreateChargeRequest{
		CustomerID:   customerID,
		Amount:       result.Amount,
		Source:       req.Source,
		Description:  fmt.Sprintf("Charge from %s for %s", attendee.Email, event.Name),
		ReceiptEmail: attendee.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.Charge = charge

	if err := s.addAttendee(ctx, event.ID, attendee, &charge.ID); err != nil {
		s.log.Error("attendee not registered after charge",
			slog.Int64("event_id", event.ID), slog.String("charge", charge.ExternalID))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *Service) addAttendee(ctx context.Context, eventID int64, a models.Attendee, chargeID *int64) error {
	err := s.repo.AddAttendee(ctx, eventID, a, chargeID)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return ErrAlreadyRegistered
	}
	if err != nil {
		return err
	}
	s.log.Info("attendee registered", slog.Int64("event_id", eventID))
	return nil
}
