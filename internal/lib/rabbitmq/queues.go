package rabbitmq

// Exchange direct-exchange уведомлений биллинга.
const Exchange = "billing"

const prefetchCount = 10

// Ключи маршрутизации.
const (
	RoutingReceipt         = "receipt"
	RoutingRenewal         = "renewal"
	RoutingRenewalReminder = "renewal_reminder"
)

// Имена очередей.
const (
	QueueReceipt         = "billing.receipt"
	QueueRenewal         = "billing.renewal"
	QueueRenewalReminder = "billing.renewal_reminder"
)

// QueueConfig очередь и ключ, которым она привязана к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// BillingQueues все очереди уведомлений биллинга.
func BillingQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueReceipt, RoutingKey: RoutingReceipt},
		{QueueName: QueueRenewal, RoutingKey: RoutingRenewal},
		{QueueName: QueueRenewalReminder, RoutingKey: RoutingRenewalReminder},
	}
}
