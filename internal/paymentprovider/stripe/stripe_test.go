package stripe

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		in    error
		check func(t *testing.T, err error)
	}{
		{
			name: "resource missing",
			in:   &stripe.Error{Code: stripe.ErrorCodeResourceMissing, HTTPStatusCode: http.StatusNotFound},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, paymentprovider.ErrNotFound)
			},
		},
		{
			name: "card declined",
			in: &stripe.Error{
				Type:        stripe.ErrorTypeCard,
				Code:        stripe.ErrorCodeCardDeclined,
				DeclineCode: stripe.DeclineCodeInsufficientFunds,
				Msg:         "Your card has insufficient funds.",
			},
			check: func(t *testing.T, err error) {
				var cardErr *paymentprovider.CardError
				require.ErrorAs(t, err, &cardErr)
				assert.Equal(t, "card_declined", cardErr.Code)
				assert.Equal(t, "insufficient_funds", cardErr.DeclineCode)
				assert.Equal(t, "Your card has insufficient funds.", cardErr.Message)
			},
		},
		{
			name: "invalid request",
			in:   &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusBadRequest, Msg: "bad param"},
			check: func(t *testing.T, err error) {
				var reqErr *paymentprovider.RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
				assert.Equal(t, "bad param", reqErr.Message)
			},
		},
		{
			name: "transport failure",
			in:   errors.New("dial tcp: connection refused"),
			check: func(t *testing.T, err error) {
				var reqErr *paymentprovider.RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Zero(t, reqErr.StatusCode)
				assert.False(t, paymentprovider.IsCardError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mapError(tt.in))
		})
	}
}

func TestClientWrap_KeepsOp(t *testing.T) {
	c := &Client{log: newNoopLogger()}

	err := c.wrap("stripe.RetrievePlan", &stripe.Error{Code: stripe.ErrorCodeResourceMissing})

	assert.ErrorIs(t, err, paymentprovider.ErrNotFound)
	assert.Contains(t, err.Error(), "stripe.RetrievePlan")
}

const subscriptionJSON = `{
	"id": "sub_123",
	"object": "subscription",
	"status": "active",
	"customer": "cus_123",
	"start_date": 1700000000,
	"cancel_at_period_end": true,
	"items": {
		"object": "list",
		"data": [{
			"id": "si_1",
			"quantity": 2,
			"current_period_start": 1700000000,
			"current_period_end": 1731622400,
			"plan": {"id": "individual", "object": "plan"}
		}]
	}
}`

func TestToRemoteSubscription(t *testing.T) {
	var sub stripe.Subscription
	require.NoError(t, json.Unmarshal([]byte(subscriptionJSON), &sub))

	got := toRemoteSubscription(&sub)

	assert.Equal(t, "sub_123", got.ID)
	assert.Equal(t, "cus_123", got.Customer)
	assert.Equal(t, "individual", got.Plan)
	assert.Equal(t, "active", got.Status)
	assert.Equal(t, int64(2), got.Quantity)
	assert.Equal(t, int64(1700000000), got.CurrentPeriodStart)
	assert.Equal(t, int64(1731622400), got.CurrentPeriodEnd)
	assert.True(t, got.CancelAtPeriodEnd)
	assert.Zero(t, got.TrialEnd)
}

func TestToRemoteInvoice_PaidFromStatus(t *testing.T) {
	got := toRemoteInvoice(&stripe.Invoice{ID: "in_1", Status: stripe.InvoiceStatusPaid, AmountDue: 15000})
	assert.True(t, got.Paid)
	assert.Equal(t, int64(15000), got.AmountDue)

	got = toRemoteInvoice(&stripe.Invoice{ID: "in_2", Status: stripe.InvoiceStatusDraft})
	assert.False(t, got.Paid)
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name      string
		eventType stripe.EventType
		raw       string
		wantType  paymentprovider.EventType
		check     func(t *testing.T, ev *paymentprovider.Event)
	}{
		{
			name:      "subscription deleted",
			eventType: "customer.subscription.deleted",
			raw:       subscriptionJSON,
			wantType:  paymentprovider.EventSubscriptionDeleted,
			check: func(t *testing.T, ev *paymentprovider.Event) {
				require.NotNil(t, ev.Subscription)
				assert.Equal(t, "sub_123", ev.Subscription.ID)
			},
		},
		{
			name:      "charge refunded",
			eventType: "charge.refunded",
			raw:       `{"id":"ch_1","object":"charge","amount":15000,"amount_refunded":15000,"refunded":true,"paid":true}`,
			wantType:  paymentprovider.EventChargeUpdated,
			check: func(t *testing.T, ev *paymentprovider.Event) {
				require.NotNil(t, ev.Charge)
				assert.True(t, ev.Charge.Refunded)
				assert.Equal(t, int64(15000), ev.Charge.AmountRefunded)
			},
		},
		{
			name:      "dispute created",
			eventType: "charge.dispute.created",
			raw:       `{"id":"dp_1","object":"dispute","charge":"ch_9"}`,
			wantType:  paymentprovider.EventChargeDisputed,
			check: func(t *testing.T, ev *paymentprovider.Event) {
				require.NotNil(t, ev.Charge)
				assert.Equal(t, paymentprovider.RemoteCharge{ID: "ch_9", Disputed: true}, *ev.Charge)
			},
		},
		{
			name:      "unknown type ignored",
			eventType: "invoice.finalized",
			raw:       `{"id":"in_1","object":"invoice"}`,
			wantType:  paymentprovider.EventIgnored,
			check: func(t *testing.T, ev *paymentprovider.Event) {
				assert.Nil(t, ev.Subscription)
				assert.Nil(t, ev.Charge)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeEvent(stripe.Event{
				ID:   "evt_1",
				Type: tt.eventType,
				Data: &stripe.EventData{Raw: json.RawMessage(tt.raw)},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, ev.Type)
			assert.Equal(t, string(tt.eventType), ev.RawType)
			tt.check(t, ev)
		})
	}
}

func TestParseWebhook(t *testing.T) {
	const secret = "whsec_test"
	c := &Client{webhookSecret: secret, log: newNoopLogger()}
	payload := []byte(`{"id":"evt_1","object":"event","type":"customer.subscription.updated","data":{"object":` + subscriptionJSON + `}}`)

	t.Run("valid signature", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   payload,
			Secret:    secret,
			Timestamp: time.Now(),
		})

		ev, err := c.ParseWebhook(signed.Payload, signed.Header)
		require.NoError(t, err)
		assert.Equal(t, paymentprovider.EventSubscriptionUpdated, ev.Type)
		assert.Equal(t, "sub_123", ev.Subscription.ID)
	})

	t.Run("bad signature", func(t *testing.T) {
		_, err := c.ParseWebhook(payload, "t=1,v1=deadbeef")
		require.Error(t, err)
	})
}

func TestNewChargeParams(t *testing.T) {
	capture := true
	tests := []struct {
		name  string
		in    paymentprovider.ChargeParams
		check func(t *testing.T, p *stripe.ChargeParams)
	}{
		{
			name: "token source",
			in: paymentprovider.ChargeParams{
				Amount: 5000, Currency: "usd", Source: "tok_visa", Capture: &capture,
				Description: "Annual meeting", Metadata: map[string]string{"event_id": "4"},
			},
			check: func(t *testing.T, p *stripe.ChargeParams) {
				require.NotNil(t, p.Source)
				require.NotNil(t, p.Source.Token)
				assert.Equal(t, "tok_visa", *p.Source.Token)
				assert.Nil(t, p.Customer)
				assert.Equal(t, int64(5000), *p.Amount)
				assert.Equal(t, "usd", *p.Currency)
				assert.True(t, *p.Capture)
				assert.Equal(t, "Annual meeting", *p.Description)
				assert.Equal(t, "4", p.Metadata["event_id"])
			},
		},
		{
			name: "saved customer without source",
			in:   paymentprovider.ChargeParams{Amount: 15000, Currency: "usd", Customer: "cus_1"},
			check: func(t *testing.T, p *stripe.ChargeParams) {
				assert.Nil(t, p.Source)
				require.NotNil(t, p.Customer)
				assert.Equal(t, "cus_1", *p.Customer)
				assert.Nil(t, p.StatementDescriptor)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newChargeParams(tt.in)
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}
