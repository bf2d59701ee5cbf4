package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event мероприятие с платной регистрацией.
type Event struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Date         time.Time       `json:"date"`
	MemberFee    decimal.Decimal `json:"member_fee"`
	NonMemberFee decimal.Decimal `json:"non_member_fee"`
	IsActive     bool            `json:"is_active"`
}

// Attendee участник мероприятия.
type Attendee struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
