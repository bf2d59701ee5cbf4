// Package reconcile синхронизирует локальные записи биллинга с объектами
// платёжного провайдера по схеме get-or-create.
//
// Каждая операция получает внешний id (возможно пустой) и полный набор
// изменяемых полей. Если объект у провайдера найден, поля применяются к нему
// через обновление; если id пуст или провайдер вернул ErrNotFound, объект
// создаётся. Остальные ошибки провайдера возвращаются вызывающему.
// Локально пакет ничего не сохраняет.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

// Значения по умолчанию для создаваемых объектов.
const (
	DefaultCurrency      = "usd"
	DefaultIntervalCount = 1
	DefaultQuantity      = 1
)

var (
	// ErrChargeSource платёж без источника средств и без клиента.
	ErrChargeSource = errors.New("charge must have a source or a customer")
	// ErrMissingField не передано обязательное для создания поле.
	ErrMissingField = errors.New("missing required field")
)

var reconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "billing_reconcile_total",
	Help: "Outcomes of payment provider reconciliation calls.",
}, []string{"resource", "action"})

// Reconciler выполняет get-or-create операции поверх платёжного провайдера.
type Reconciler struct {
	provider paymentprovider.Provider
	log      *slog.Logger
}

// New создаёт Reconciler.
func New(provider paymentprovider.Provider, log *slog.Logger) *Reconciler {
	return &Reconciler{
		provider: provider,
		log:      log,
	}
}

// lookup получает объект провайдера. Пустой id и ErrNotFound дают (nil, nil).
func lookup[T any](ctx context.Context, r *Reconciler, resource, id string,
	get func(context.Context, string) (*T, error)) (*T, error) {
	if id == "" {
		return nil, nil
	}
	obj, err := get(ctx, id)
	if errors.Is(err, paymentprovider.ErrNotFound) {
		r.log.Info("remote object not found", slog.String("resource", resource), slog.String("id", id))
		reconcileTotal.WithLabelValues(resource, "not_found").Inc()
		return nil, nil
	}
	if err != nil {
		reconcileTotal.WithLabelValues(resource, "error").Inc()
		return nil, err
	}
	return obj, nil
}

// copyMetadata возвращает новую карту на каждый вызов.
func copyMetadata(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slug приводит имя плана к виду, пригодному как id у провайдера.
func Slug(name string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

func (r *Reconciler) result(resource, action string, err error) error {
	if err != nil {
		reconcileTotal.WithLabelValues(resource, "error").Inc()
		r.log.Error("reconcile failed", slog.String("resource", resource), slog.String("action", action), sl.Err(err))
		return err
	}
	reconcileTotal.WithLabelValues(resource, action).Inc()
	return nil
}

// GetOrCreatePlan обновляет план с id или создаёт новый. Новый план получает
// id из названия, если params.ID не задан.
func (r *Reconciler) GetOrCreatePlan(ctx context.Context, id string, params paymentprovider.PlanParams) (*paymentprovider.RemotePlan, error) {
	const op = "reconcile.GetOrCreatePlan"
	params.Metadata = copyMetadata(params.Metadata)

	existing, err := lookup(ctx, r, "plan", id, r.provider.RetrievePlan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		plan, err := r.provider.UpdatePlan(ctx, existing.ID, params)
		if err := r.result("plan", "update", err); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return plan, nil
	}

	if params.Name == "" {
		return nil, fmt.Errorf("%s: plan name: %w", op, ErrMissingField)
	}
	if params.ID == "" {
		params.ID = Slug(params.Name)
	}
	if params.Currency == "" {
		params.Currency = DefaultCurrency
	}
	if params.IntervalCount <= 0 {
		params.IntervalCount = DefaultIntervalCount
	}
	plan, err := r.provider.CreatePlan(ctx, params)
	if err := r.result("plan", "create", err); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.log.Info("remote plan created", slog.String("id", plan.ID))
	return plan, nil
}

// DeletePlan удаляет план у провайдера. Возвращает false, если плана уже нет.
func (r *Reconciler) DeletePlan(ctx context.Context, id string) (bool, error) {
	const op = "reconcile.DeletePlan"
	existing, err := lookup(ctx, r, "plan", id, r.provider.RetrievePlan)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if existing == nil {
		return false, nil
	}
	if err := r.result("plan", "delete", r.provider.DeletePlan(ctx, existing.ID)); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// GetOrCreateCustomer обновляет клиента с id или создаёт нового.
// Баланс передаётся провайдеру только если он положительный.
func (r *Reconciler) GetOrCreateCustomer(ctx context.Context, id string, params paymentprovider.CustomerParams) (*paymentprovider.RemoteCustomer, error) {
	const op = "reconcile.GetOrCreateCustomer"
	params.Metadata = copyMetadata(params.Metadata)
	if params.Balance < 0 {
		params.Balance = 0
	}

	existing, err := lookup(ctx, r, "customer", id, r.provider.RetrieveCustomer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		customer, err := r.provider.UpdateCustomer(ctx, existing.ID, params)
		if err := r.result("customer", "update", err); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return customer, nil
	}

	customer, err := r.provider.CreateCustomer(ctx, params)
	if err := r.result("customer", "create", err); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.log.Info("remote customer created", slog.String("id", customer.ID))
	return customer, nil
}

// DeleteCustomer удаляет клиента у провайдера. Возвращает false, если клиента уже нет.
func (r *Reconciler) DeleteCustomer(ctx context.Context, id string) (bool, error) {
	const op = "reconcile.DeleteCustomer"
	existing, err := lookup(ctx, r, "customer", id, r.provider.RetrieveCustomer)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if existing == nil {
		return false, nil
	}
	if err := r.result("customer", "delete", r.provider.DeleteCustomer(ctx, existing.ID)); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// GetOrCreateSubscription обновляет подписку с id или подписывает
// params.Customer на params.Plan.
func (r *Reconciler) GetOrCreateSubscription(ctx context.Context, id string, params paymentprovider.SubscriptionParams) (*paymentprovider.RemoteSubscription, error) {
	const op = "reconcile.GetOrCreateSubscription"
	params.Metadata = copyMetadata(params.Metadata)

	existing, err := lookup(ctx, r, "subscription", id, r.provider.RetrieveSubscription)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		sub, err := r.provider.UpdateSubscription(ctx, existing.ID, params)
		if err := r.result("subscription", "update", err); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return sub, nil
	}

	if params.Customer == "" {
		return nil, fmt.Errorf("%s: customer: %w", op, ErrMissingField)
	}
	if params.Plan == "" {
		return nil, fmt.Errorf("%s: plan: %w", op, ErrMissingField)
	}
	if params.Quantity <= 0 {
		params.Quantity = DefaultQuantity
	}
	sub, err := r.provider.CreateSubscription(ctx, params)
	if err := r.result("subscription", "create", err); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.log.Info("remote subscription created", slog.String("id", sub.ID))
	return sub, nil
}

// CancelSubscription отменяет подписку. Если подписки у провайдера уже нет,
// возвращает (nil, false, nil).
func (r *Reconciler) CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*paymentprovider.RemoteSubscription, bool, error) {
	const op = "reconcile.CancelSubscription"
	existing, err := lookup(ctx, r, "subscription", id, r.provider.RetrieveSubscription)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if existing == nil {
		return nil, false, nil
	}
	sub, err := r.provider.CancelSubscription(ctx, existing.ID, atPeriodEnd)
	if errors.Is(err, paymentprovider.ErrNotFound) {
		reconcileTotal.WithLabelValues("subscription", "not_found").Inc()
		return nil, false, nil
	}
	if err := r.result("subscription", "cancel", err); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return sub, true, nil
}

// GetOrCreateInvoice обновляет счёт с id или выставляет новый счёт params.Customer.
func (r *Reconciler) GetOrCreateInvoice(ctx context.Context, id string, params paymentprovider.InvoiceParams) (*paymentprovider.RemoteInvoice, error) {
	const op = "reconcile.GetOrCreateInvoice"
	params.Metadata = copyMetadata(params.Metadata)

	existing, err := lookup(ctx, r, "invoice", id, r.provider.RetrieveInvoice)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		inv, err := r.provider.UpdateInvoice(ctx, existing.ID, params)
		if err := r.result("invoice", "update", err); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return inv, nil
	}

	if params.Customer == "" {
		return nil, fmt.Errorf("%s: customer: %w", op, ErrMissingField)
	}
	inv, err := r.provider.CreateInvoice(ctx, params)
	if err := r.result("invoice", "create", err); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.log.Info("remote invoice created", slog.String("id", inv.ID))
	return inv, nil
}

// DeleteInvoice удаляет счёт у провайдера. Возвращает false, если счёта уже нет.
func (r *Reconciler) DeleteInvoice(ctx context.Context, id string) (bool, error) {
	const op = "reconcile.DeleteInvoice"
	existing, err := lookup(ctx, r, "invoice", id, r.provider.RetrieveInvoice)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if existing == nil {
		return false, nil
	}
	if err := r.result("invoice", "delete", r.provider.DeleteInvoice(ctx, existing.ID)); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// GetOrCreateCharge обновляет платёж с id или проводит новый.
// Для нового платежа нужен источник средств или клиент; отказ по карте
// возвращается как *paymentprovider.CardError.
func (r *Reconciler) GetOrCreateCharge(ctx context.Context, id string, params paymentprovider.ChargeParams) (*paymentprovider.RemoteCharge, error) {
	const op = "reconcile.GetOrCreateCharge"
	params.Metadata = copyMetadata(params.Metadata)

	existing, err := lookup(ctx, r, "charge", id, r.provider.RetrieveCharge)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		ch, err := r.provider.UpdateCharge(ctx, existing.ID, params)
		if err := r.result("charge", "update", err); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return ch, nil
	}

	if params.Source == "" && params.Customer == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrChargeSource)
	}
	if params.Currency == "" {
		params.Currency = DefaultCurrency
	}
	if params.Capture == nil {
		capture := true
		params.Capture = &capture
	}
	ch, err := r.provider.CreateCharge(ctx, params)
	if err := r.result("charge", "create", err); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.log.Info("remote charge created", slog.String("id", ch.ID), slog.Int64("amount", ch.Amount))
	return ch, nil
}
