package stripe

import (
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

func customerParams(in paymentprovider.CustomerParams) *stripe.CustomerParams {
	params := &stripe.CustomerParams{}
	if in.Balance != 0 {
		params.Balance = stripe.Int64(in.Balance)
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	if in.Email != "" {
		params.Email = stripe.String(in.Email)
	}
	if in.Source != "" {
		params.Source = stripe.String(in.Source)
	}
	if in.Shipping != nil {
		params.Shipping = &stripe.CustomerShippingParams{
			Name:    stripe.String(in.Shipping.Name),
			Address: addressParams(in.Shipping.Address),
		}
		if in.Shipping.Phone != "" {
			params.Shipping.Phone = stripe.String(in.Shipping.Phone)
		}
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func subscriptionParams(in paymentprovider.SubscriptionParams) *stripe.SubscriptionParams {
	params := &stripe.SubscriptionParams{}
	if in.Plan != "" || in.Quantity > 0 {
		item := &stripe.SubscriptionItemsParams{}
		if in.Plan != "" {
			item.Plan = stripe.String(in.Plan)
		}
		if in.Quantity > 0 {
			item.Quantity = stripe.Int64(in.Quantity)
		}
		params.Items = []*stripe.SubscriptionItemsParams{item}
	}
	if in.Source != "" {
		params.DefaultSource = stripe.String(in.Source)
	}
	if in.TrialEnd > 0 {
		params.TrialEnd = stripe.Int64(in.TrialEnd)
	}
	if in.TrialPeriodDays > 0 {
		params.TrialPeriodDays = stripe.Int64(in.TrialPeriodDays)
	}
	params.CancelAtPeriodEnd = in.CancelAtPeriodEnd
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func invoiceParams(in paymentprovider.InvoiceParams) *stripe.InvoiceParams {
	params := &stripe.InvoiceParams{}
	if in.ApplicationFee > 0 {
		params.ApplicationFeeAmount = stripe.Int64(in.ApplicationFee)
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	if in.StatementDescriptor != "" {
		params.StatementDescriptor = stripe.String(in.StatementDescriptor)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func chargeParams(in paymentprovider.ChargeParams) *stripe.ChargeParams {
	params := &stripe.ChargeParams{}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	if in.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(in.ReceiptEmail)
	}
	if in.Shipping != nil {
		params.Shipping = &stripe.ShippingDetailsParams{
			Name:    stripe.String(in.Shipping.Name),
			Address: addressParams(in.Shipping.Address),
		}
		if in.Shipping.Phone != "" {
			params.Shipping.Phone = stripe.String(in.Shipping.Phone)
		}
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

// newChargeParams собирает параметры создания платежа; source передаётся
// токеном или id сохранённой карты.
func newChargeParams(in paymentprovider.ChargeParams) (*stripe.ChargeParams, error) {
	params := chargeParams(in)
	params.Amount = stripe.Int64(in.Amount)
	params.Currency = stripe.String(in.Currency)
	params.Capture = in.Capture
	if in.Customer != "" {
		params.Customer = stripe.String(in.Customer)
	}
	if in.Source != "" {
		if err := params.SetSource(in.Source); err != nil {
			return nil, fmt.Errorf("charge source: %w", err)
		}
	}
	if in.StatementDescriptor != "" {
		params.StatementDescriptor = stripe.String(in.StatementDescriptor)
	}
	return params, nil
}

func addressParams(a paymentprovider.Address) *stripe.AddressParams {
	return &stripe.AddressParams{
		Line1:      stripe.String(a.Line1),
		Line2:      stripe.String(a.Line2),
		City:       stripe.String(a.City),
		State:      stripe.String(a.State),
		PostalCode: stripe.String(a.PostalCode),
		Country:    stripe.String(a.Country),
	}
}

func toRemotePlan(p *stripe.Plan) *paymentprovider.RemotePlan {
	return &paymentprovider.RemotePlan{
		ID:              p.ID,
		Name:            p.Nickname,
		Amount:          p.Amount,
		Currency:        string(p.Currency),
		Interval:        string(p.Interval),
		IntervalCount:   p.IntervalCount,
		TrialPeriodDays: p.TrialPeriodDays,
		Active:          p.Active,
		Metadata:        p.Metadata,
	}
}

func toRemoteCustomer(c *stripe.Customer) *paymentprovider.RemoteCustomer {
	return &paymentprovider.RemoteCustomer{
		ID:          c.ID,
		Balance:     c.Balance,
		Currency:    string(c.Currency),
		Description: c.Description,
		Email:       c.Email,
		Metadata:    c.Metadata,
	}
}

func toRemoteSubscription(s *stripe.Subscription) *paymentprovider.RemoteSubscription {
	out := &paymentprovider.RemoteSubscription{
		ID:                s.ID,
		Status:            string(s.Status),
		Start:             s.StartDate,
		TrialStart:        s.TrialStart,
		TrialEnd:          s.TrialEnd,
		EndedAt:           s.EndedAt,
		CanceledAt:        s.CanceledAt,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		Metadata:          s.Metadata,
	}
	if s.Customer != nil {
		out.Customer = s.Customer.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 {
		item := s.Items.Data[0]
		out.Quantity = item.Quantity
		out.CurrentPeriodStart = item.CurrentPeriodStart
		out.CurrentPeriodEnd = item.CurrentPeriodEnd
		if item.Plan != nil {
			out.Plan = item.Plan.ID
		}
	}
	return out
}

func toRemoteInvoice(i *stripe.Invoice) *paymentprovider.RemoteInvoice {
	out := &paymentprovider.RemoteInvoice{
		ID:                  i.ID,
		Status:              string(i.Status),
		AmountDue:           i.AmountDue,
		Subtotal:            i.Subtotal,
		Total:               i.Total,
		Currency:            string(i.Currency),
		Description:         i.Description,
		StatementDescriptor: i.StatementDescriptor,
		ReceiptNumber:       i.ReceiptNumber,
		Attempted:           i.Attempted,
		AttemptCount:        i.AttemptCount,
		Paid:                i.Status == stripe.InvoiceStatusPaid,
		PeriodStart:         i.PeriodStart,
		PeriodEnd:           i.PeriodEnd,
	}
	if i.Customer != nil {
		out.Customer = i.Customer.ID
	}
	return out
}

func toRemoteCharge(c *stripe.Charge) *paymentprovider.RemoteCharge {
	out := &paymentprovider.RemoteCharge{
		ID:             c.ID,
		Amount:         c.Amount,
		AmountRefunded: c.AmountRefunded,
		Currency:       string(c.Currency),
		Description:    c.Description,
		ReceiptEmail:   c.ReceiptEmail,
		Paid:           c.Paid,
		Refunded:       c.Refunded,
		Captured:       c.Captured,
		Disputed:       c.Disputed,
		Created:        c.Created,
	}
	if c.Customer != nil {
		out.Customer = c.Customer.ID
	}
	return out
}
