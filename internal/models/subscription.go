package models

import (
	"errors"
	"fmt"
	"time"
)

// SubscriptionStatus статус подписки, закрытый набор значений провайдера.
type SubscriptionStatus string

// Допустимые значения SubscriptionStatus.
const (
	StatusTrialing SubscriptionStatus = "trialing"
	StatusActive   SubscriptionStatus = "active"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusUnpaid   SubscriptionStatus = "unpaid"
)

// ErrInvalidSubscription подписка нарушает инварианты модели.
var ErrInvalidSubscription = errors.New("invalid subscription")

// Valid сообщает, входит ли статус в закрытый набор.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusTrialing, StatusActive, StatusPastDue, StatusCanceled, StatusUnpaid:
		return true
	}
	return false
}

// Subscription связывает Customer с Plan и хранит границы расчётного цикла,
// полученные от провайдера. Отменённые подписки не удаляются.
type Subscription struct {
	ID                 int64              `json:"id"`
	CustomerID         int64              `json:"customer_id"`
	PlanID             int64              `json:"plan_id"`
	ExternalID         string             `json:"external_id"`
	Status             SubscriptionStatus `json:"status"`
	Quantity           int64              `json:"quantity"`
	Start              *time.Time         `json:"start,omitempty"`
	CurrentPeriodStart *time.Time         `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time         `json:"current_period_end,omitempty"`
	TrialStart         *time.Time         `json:"trial_start,omitempty"`
	TrialEnd           *time.Time         `json:"trial_end,omitempty"`
	EndedAt            *time.Time         `json:"ended_at,omitempty"`
	CanceledAt         *time.Time         `json:"canceled_at,omitempty"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Validate проверяет статус и порядок границ текущего периода.
func (s *Subscription) Validate() error {
	if !s.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSubscription, s.Status)
	}
	if s.CurrentPeriodStart != nil && s.CurrentPeriodEnd != nil &&
		s.CurrentPeriodEnd.Before(*s.CurrentPeriodStart) {
		return fmt.Errorf("%w: current period ends before it starts", ErrInvalidSubscription)
	}
	return nil
}
