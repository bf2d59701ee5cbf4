package models

import "time"

// Charge разовый платёж, например оплата регистрации на мероприятие.
// После захвата меняются только флаги возврата и спора.
type Charge struct {
	ID             int64      `json:"id"`
	CustomerID     *int64     `json:"customer_id,omitempty"`
	ExternalID     string     `json:"external_id"`
	Amount         int64      `json:"amount"`
	AmountRefunded int64      `json:"amount_refunded"`
	Currency       string     `json:"currency"`
	Description    string     `json:"description,omitempty"`
	ReceiptEmail   string     `json:"receipt_email,omitempty"`
	Paid           bool       `json:"paid"`
	Disputed       bool       `json:"disputed"`
	Refunded       bool       `json:"refunded"`
	Captured       bool       `json:"captured"`
	ChargeCreated  *time.Time `json:"charge_created,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ChargeTotals суммы оплаченных платежей за период.
type ChargeTotals struct {
	TotalAmount   int64 `json:"total_amount"`
	TotalRefunded int64 `json:"total_refunded"`
}
