package paymentprovider

// Address почтовый адрес для доставки.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Shipping данные доставки клиента или платежа.
type Shipping struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}

// PlanParams изменяемые поля плана. ID используется только при создании.
type PlanParams struct {
	ID                  string
	Name                string
	Amount              int64
	Currency            string
	Interval            string
	IntervalCount       int64
	Metadata            map[string]string
	StatementDescriptor string
	TrialPeriodDays     int64
}

// RemotePlan представление плана у провайдера.
type RemotePlan struct {
	ID              string
	Name            string
	Amount          int64
	Currency        string
	Interval        string
	IntervalCount   int64
	TrialPeriodDays int64
	Active          bool
	Metadata        map[string]string
}

// CustomerParams изменяемые поля клиента.
type CustomerParams struct {
	Balance     int64
	Description string
	Email       string
	Metadata    map[string]string
	Shipping    *Shipping
	Source      string
}

// RemoteCustomer представление клиента у провайдера.
type RemoteCustomer struct {
	ID          string
	Balance     int64
	Currency    string
	Description string
	Email       string
	Metadata    map[string]string
}

// SubscriptionParams изменяемые поля подписки.
type SubscriptionParams struct {
	Customer          string
	Plan              string
	Quantity          int64
	Metadata          map[string]string
	Source            string
	TrialEnd          int64
	TrialPeriodDays   int64
	CancelAtPeriodEnd *bool
}

// RemoteSubscription представление подписки у провайдера.
// Временные метки в секундах от начала эпохи, 0 означает отсутствие значения.
type RemoteSubscription struct {
	ID                 string
	Customer           string
	Plan               string
	Status             string
	Quantity           int64
	Start              int64
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
	TrialStart         int64
	TrialEnd           int64
	EndedAt            int64
	CanceledAt         int64
	CancelAtPeriodEnd  bool
	Metadata           map[string]string
}

// InvoiceParams изменяемые поля счёта.
type InvoiceParams struct {
	Customer            string
	Subscription        string
	ApplicationFee      int64
	Description         string
	StatementDescriptor string
	Metadata            map[string]string
}

// RemoteInvoice представление счёта у провайдера.
type RemoteInvoice struct {
	ID                  string
	Customer            string
	Status              string
	AmountDue           int64
	Subtotal            int64
	Total               int64
	Currency            string
	Description         string
	StatementDescriptor string
	ReceiptNumber       string
	Attempted           bool
	AttemptCount        int64
	Paid                bool
	PeriodStart         int64
	PeriodEnd           int64
}

// ChargeParams изменяемые поля платежа. При обновлении провайдер принимает
// только описание, метаданные, email для квитанции и доставку.
type ChargeParams struct {
	Amount              int64
	Currency            string
	Capture             *bool
	Customer            string
	Source              string
	Description         string
	ReceiptEmail        string
	StatementDescriptor string
	Metadata            map[string]string
	Shipping            *Shipping
}

// RemoteCharge представление платежа у провайдера.
type RemoteCharge struct {
	ID             string
	Customer       string
	Amount         int64
	AmountRefunded int64
	Currency       string
	Description    string
	ReceiptEmail   string
	Paid           bool
	Refunded       bool
	Captured       bool
	Disputed       bool
	Created        int64
}

// EventType нормализованный тип уведомления провайдера.
type EventType string

// Поддерживаемые типы уведомлений.
const (
	EventSubscriptionUpdated EventType = "subscription.updated"
	EventSubscriptionDeleted EventType = "subscription.deleted"
	EventChargeUpdated       EventType = "charge.updated"
	EventChargeDisputed      EventType = "charge.disputed"
	EventIgnored             EventType = "ignored"
)

// Event разобранное уведомление провайдера. Заполнено поле,
// соответствующее типу события.
type Event struct {
	ID           string
	Type         EventType
	RawType      string
	Subscription *RemoteSubscription
	Charge       *RemoteCharge
}
