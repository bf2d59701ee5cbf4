// Package models содержит доменные структуры биллинга: тарифные планы,
// клиентов, подписки, разовые платежи и счета, а также связанные с ними
// вспомогательные типы. Денежные суммы хранятся в минорных единицах (int64)
// либо в decimal, но не во float.
package models

import "time"

// Interval периодичность списаний по плану.
type Interval string

// Допустимые значения Interval.
const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Valid сообщает, является ли значение допустимой периодичностью.
func (i Interval) Valid() bool {
	switch i {
	case IntervalDay, IntervalWeek, IntervalMonth, IntervalYear:
		return true
	}
	return false
}

// Plan тарифный план, синхронизированный с планом у платёжного провайдера.
type Plan struct {
	ID                  int64             `json:"id"`
	ExternalID          string            `json:"external_id"`
	Name                string            `json:"name"`
	Description         string            `json:"description,omitempty"`
	Amount              int64             `json:"amount"` // в минорных единицах
	Currency            string            `json:"currency"`
	Interval            Interval          `json:"interval"`
	IntervalCount       int64             `json:"interval_count"`
	TrialPeriodDays     int64             `json:"trial_period_days"`
	StatementDescriptor string            `json:"statement_descriptor,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	IsActive            bool              `json:"is_active"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// PlanCount количество подписок на план, используется в отчётах.
type PlanCount struct {
	PlanID int64 `json:"plan_id"`
	Count  int   `json:"count"`
}
