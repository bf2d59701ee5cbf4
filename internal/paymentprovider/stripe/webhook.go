package stripe

import (
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

// ParseWebhook проверяет подпись уведомления и приводит его к paymentprovider.Event.
// Неизвестные типы событий возвращаются с типом EventIgnored.
func (c *Client) ParseWebhook(payload []byte, signature string) (*paymentprovider.Event, error) {
	const op = "stripe.ParseWebhook"
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := decodeEvent(event)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func decodeEvent(event stripe.Event) (*paymentprovider.Event, error) {
	out := &paymentprovider.Event{ID: event.ID, RawType: string(event.Type), Type: paymentprovider.EventIgnored}
	if event.Data == nil {
		return out, nil
	}
	switch event.Type {
	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("parse subscription event: %w", err)
		}
		out.Type = paymentprovider.EventSubscriptionUpdated
		if event.Type == "customer.subscription.deleted" {
			out.Type = paymentprovider.EventSubscriptionDeleted
		}
		out.Subscription = toRemoteSubscription(&sub)
	case "charge.succeeded", "charge.updated", "charge.refunded", "charge.captured":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("parse charge event: %w", err)
		}
		out.Type = paymentprovider.EventChargeUpdated
		out.Charge = toRemoteCharge(&ch)
	case "charge.dispute.created":
		var dispute stripe.Dispute
		if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
			return nil, fmt.Errorf("parse dispute event: %w", err)
		}
		if dispute.Charge == nil {
			return out, nil
		}
		// В уведомлении о споре платёж не раскрыт: известен только его id.
		out.Type = paymentprovider.EventChargeDisputed
		out.Charge = &paymentprovider.RemoteCharge{ID: dispute.Charge.ID, Disputed: true}
	}
	return out, nil
}
