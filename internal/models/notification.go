package models

import "time"

// Receipt сообщение об успешном платеже для отправки квитанции.
type Receipt struct {
	Email       string `json:"email"`
	ChargeID    string `json:"charge_id"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// RenewalNotice сообщение о продлении членства.
type RenewalNotice struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// RenewalReminder напоминание о скором окончании срока без автопродления.
type RenewalReminder struct {
	CustomerID int64     `json:"customer_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	EndDate    time.Time `json:"end_date"`
}
