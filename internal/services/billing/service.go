// Package billing связывает проверку входных данных, синхронизацию с
// платёжным провайдером и локальное хранилище. Локальная запись создаётся
// только после того, как провайдер подтвердил свою.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

var (
	// ErrValidation входные данные отклонены до обращения к провайдеру.
	ErrValidation = errors.New("validation failed")
	// ErrCustomerExists у пользователя уже есть платёжный профиль.
	ErrCustomerExists = errors.New("customer already exists")
	// ErrNoSubscription у клиента нет ни одной подписки.
	ErrNoSubscription = errors.New("customer has no subscription")
	// ErrAlreadyRegistered email уже зарегистрирован на мероприятие.
	ErrAlreadyRegistered = errors.New("this email is already registered for this event")
)

// PlanRepository хранилище тарифных планов.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan models.Plan) (int64, error)
	UpdatePlan(ctx context.Context, plan models.Plan) error
	SetPlanActive(ctx context.Context, id int64, active bool) error
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
	GetPlanByName(ctx context.Context, name string) (*models.Plan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]*models.Plan, error)
}

// CustomerRepository хранилище пользователей и клиентов.
type CustomerRepository interface {
	UpsertUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateCustomer(ctx context.Context, c models.Customer) (int64, error)
	UpdateCustomer(ctx context.Context, c models.Customer) error
	SetCustomerActive(ctx context.Context, id int64, active bool) error
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByUser(ctx context.Context, userID string) (*models.Customer, error)
}

// SubscriptionRepository хранилище подписок.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
	UpdateSubscription(ctx context.Context, sub models.Subscription) error
	GetSubscription(ctx context.Context, id int64) (*models.Subscription, error)
	GetSubscriptionByExternalID(ctx context.Context, externalID string) (*models.Subscription, error)
	FirstSubscription(ctx context.Context, customerID int64) (*models.Subscription, error)
}

// PaymentRepository хранилище платежей, счетов и регистраций на мероприятия.
type PaymentRepository interface {
	CreateCharge(ctx context.Context, ch models.Charge) (int64, error)
	GetChargeByExternalID(ctx context.Context, externalID string) (*models.Charge, error)
	UpdateChargeState(ctx context.Context, ch models.Charge) error
	CreateInvoice(ctx context.Context, inv models.Invoice) (int64, error)
	GetInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	IsAttendee(ctx context.Context, eventID int64, email string) (bool, error)
	AddAttendee(ctx context.Context, eventID int64, a models.Attendee, chargeID *int64) error
}

// ReportRepository отчётные выборки.
type ReportRepository interface {
	CustomersStartedDuring(ctx context.Context, year, month int) ([]*models.Customer, error)
	ActiveCustomers(ctx context.Context) ([]*models.Customer, error)
	CustomersCanceledDuring(ctx context.Context, year, month int) ([]*models.Customer, error)
	StartedPlanSummary(ctx context.Context, year, month int) ([]models.PlanCount, error)
	ActivePlanSummary(ctx context.Context) ([]models.PlanCount, error)
	CanceledPlanSummary(ctx context.Context, year, month int) ([]models.PlanCount, error)
	PaidTotals(ctx context.Context, year, month int) (models.ChargeTotals, error)
}

// Repository всё хранилище, нужное сервису.
type Repository interface {
	PlanRepository
	CustomerRepository
	SubscriptionRepository
	PaymentRepository
	ReportRepository
}

// Reconciler get-or-create операции над объектами провайдера.
type Reconciler interface {
	GetOrCreatePlan(ctx context.Context, id string, params paymentprovider.PlanParams) (*paymentprovider.RemotePlan, error)
	DeletePlan(ctx context.Context, id string) (bool, error)
	GetOrCreateCustomer(ctx context.Context, id string, params paymentprovider.CustomerParams) (*paymentprovider.RemoteCustomer, error)
	GetOrCreateSubscription(ctx context.Context, id string, params paymentprovider.SubscriptionParams) (*paymentprovider.RemoteSubscription, error)
	CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*paymentprovider.RemoteSubscription, bool, error)
	GetOrCreateInvoice(ctx context.Context, id string, params paymentprovider.InvoiceParams) (*paymentprovider.RemoteInvoice, error)
	DeleteInvoice(ctx context.Context, id string) (bool, error)
	GetOrCreateCharge(ctx context.Context, id string, params paymentprovider.ChargeParams) (*paymentprovider.RemoteCharge, error)
}

// Cache кеш чтения планов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Publisher очередь уведомлений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service сервис биллинга. cache и publisher могут быть nil.
type Service struct {
	repo       Repository
	reconciler Reconciler
	cache      Cache
	publisher  Publisher
	currency   string
	log        *slog.Logger
	now        func() time.Time
}

// New создаёт Service. currency используется для платежей, в которых валюта не указана.
func New(repo Repository, reconciler Reconciler, cache Cache, publisher Publisher, currency string, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		reconciler: reconciler,
		cache:      cache,
		publisher:  publisher,
		currency:   currency,
		log:        log,
		now:        time.Now,
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notify публикует уведомление. Ошибка публикации только логируется.
func (s *Service) notify(ctx context.Context, routingKey string, message any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, message); err != nil {
		s.log.Error("failed to publish notification", slog.String("routing_key", routingKey), sl.Err(err))
	}
}

func copyMetadata(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
