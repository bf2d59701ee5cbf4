package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer платёжный профиль пользователя, зеркало клиента у провайдера.
// У каждого пользователя не больше одного Customer.
type Customer struct {
	ID         int64           `json:"id"`
	UserID     string          `json:"user_id"`
	ExternalID string          `json:"external_id"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   string          `json:"currency"`
	AutoRenew  bool            `json:"auto_renew"`
	IsActive   bool            `json:"is_active"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// User учётная запись, полученная от провайдера идентичности.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// FullName возвращает имя и фамилию пользователя.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
