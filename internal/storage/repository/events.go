package repository

import (
	"context"

	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// GetEvent возвращает мероприятие по ID.
func (s *Storage) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	const op = "storage.GetEvent"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, name, date, member_fee, non_member_fee, is_active FROM events WHERE id = $1`
	var ev models.Event
	if err := s.DB.QueryRowContext(ctx, query, id).
		Scan(&ev.ID, &ev.Name, &ev.Date, &ev.MemberFee, &ev.NonMemberFee, &ev.IsActive); err != nil {
		return nil, wrapErr(op, err)
	}
	return &ev, nil
}

// CreateEvent сохраняет мероприятие и возвращает его ID.
func (s *Storage) CreateEvent(ctx context.Context, ev models.Event) (int64, error) {
	const op = "storage.CreateEvent"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	if err := s.DB.QueryRowContext(ctx,
		`INSERT INTO events (name, date, member_fee, non_member_fee, is_active)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		ev.Name, ev.Date, ev.MemberFee, ev.NonMemberFee, ev.IsActive).Scan(&id); err != nil {
		return 0, wrapErr(op, err)
	}
	return id, nil
}

// IsAttendee сообщает, зарегистрирован ли email на мероприятие.
func (s *Storage) IsAttendee(ctx context.Context, eventID int64, email string) (bool, error) {
	const op = "storage.IsAttendee"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_attendees WHERE event_id = $1 AND lower(email) = lower($2))`,
		eventID, email).Scan(&exists); err != nil {
		return false, wrapErr(op, err)
	}
	return exists, nil
}

// AddAttendee регистрирует участника. Повторная регистрация даёт ErrAlreadyExists.
func (s *Storage) AddAttendee(ctx context.Context, eventID int64, a models.Attendee, chargeID *int64) error {
	const op = "storage.AddAttendee"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO event_attendees (event_id, email, first_name, last_name, charge_id)
		 VALUES ($1, lower($2), $3, $4, $5)`,
		eventID, a.Email, a.FirstName, a.LastName, chargeID); err != nil {
		return wrapErr(op, err)
	}
	return nil
}
