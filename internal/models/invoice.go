package models

import "time"

// Invoice счёт провайдера по клиенту и, опционально, по подписке.
type Invoice struct {
	ID                  int64      `json:"id"`
	CustomerID          int64      `json:"customer_id"`
	SubscriptionID      *int64     `json:"subscription_id,omitempty"`
	ExternalID          string     `json:"external_id"`
	Status              string     `json:"status"`
	AmountDue           int64      `json:"amount_due"`
	Subtotal            int64      `json:"subtotal"`
	Total               int64      `json:"total"`
	Currency            string     `json:"currency"`
	Description         string     `json:"description,omitempty"`
	StatementDescriptor string     `json:"statement_descriptor,omitempty"`
	ReceiptNumber       string     `json:"receipt_number,omitempty"`
	Attempted           bool       `json:"attempted"`
	AttemptCount        int64      `json:"attempt_count"`
	Paid                bool       `json:"paid"`
	PeriodStart         *time.Time `json:"period_start,omitempty"`
	PeriodEnd           *time.Time `json:"period_end,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}
