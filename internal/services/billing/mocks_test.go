package billing

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

type RepoMock struct{ mock.Mock }

var _ Repository = (*RepoMock)(nil)

func (m *RepoMock) CreatePlan(ctx context.Context, plan models.Plan) (int64, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdatePlan(ctx context.Context, plan models.Plan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *RepoMock) SetPlanActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *RepoMock) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) GetPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) ListPlans(ctx context.Context, activeOnly bool) ([]*models.Plan, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func (m *RepoMock) UpsertUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *RepoMock) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) CreateCustomer(ctx context.Context, c models.Customer) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdateCustomer(ctx context.Context, c models.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *RepoMock) SetCustomerActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *RepoMock) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *RepoMock) GetCustomerByUser(ctx context.Context, userID string) (*models.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdateSubscription(ctx context.Context, sub models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *RepoMock) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) GetSubscriptionByExternalID(ctx context.Context, externalID string) (*models.Subscription, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) FirstSubscription(ctx context.Context, customerID int64) (*models.Subscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) CreateCharge(ctx context.Context, ch models.Charge) (int64, error) {
	args := m.Called(ctx, ch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetChargeByExternalID(ctx context.Context, externalID string) (*models.Charge, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Charge), args.Error(1)
}

func (m *RepoMock) UpdateChargeState(ctx context.Context, ch models.Charge) error {
	return m.Called(ctx, ch).Error(0)
}

func (m *RepoMock) CreateInvoice(ctx context.Context, inv models.Invoice) (int64, error) {
	args := m.Called(ctx, inv)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *RepoMock) DeleteInvoice(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RepoMock) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *RepoMock) IsAttendee(ctx context.Context, eventID int64, email string) (bool, error) {
	args := m.Called(ctx, eventID, email)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) AddAttendee(ctx context.Context, eventID int64, a models.Attendee, chargeID *int64) error {
	return m.Called(ctx, eventID, a, chargeID).Error(0)
}

func (m *RepoMock) CustomersStartedDuring(ctx context.Context, year, month int) ([]*models.Customer, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *RepoMock) ActiveCustomers(ctx context.Context) ([]*models.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *RepoMock) CustomersCanceledDuring(ctx context.Context, year, month int) ([]*models.Customer, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *RepoMock) StartedPlanSummary(ctx context.Context, year, month int) ([]models.PlanCount, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlanCount), args.Error(1)
}

func (m *RepoMock) ActivePlanSummary(ctx context.Context) ([]models.PlanCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlanCount), args.Error(1)
}

func (m *RepoMock) CanceledPlanSummary(ctx context.Context, year, month int) ([]models.PlanCount, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlanCount), args.Error(1)
}

func (m *RepoMock) PaidTotals(ctx context.Context, year, month int) (models.ChargeTotals, error) {
	args := m.Called(ctx, year, month)
	return args.Get(0).(models.ChargeTotals), args.Error(1)
}

type ReconcilerMock struct{ mock.Mock }

var _ Reconciler = (*ReconcilerMock)(nil)

func (m *ReconcilerMock) GetOrCreatePlan(ctx context.Context, id string, params paymentprovider.PlanParams) (*paymentprovider.RemotePlan, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemotePlan), args.Error(1)
}

func (m *ReconcilerMock) DeletePlan(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ReconcilerMock) GetOrCreateCustomer(ctx context.Context, id string, params paymentprovider.CustomerParams) (*paymentprovider.RemoteCustomer, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteCustomer), args.Error(1)
}

func (m *ReconcilerMock) GetOrCreateSubscription(ctx context.Context, id string, params paymentprovider.SubscriptionParams) (*paymentprovider.RemoteSubscription, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteSubscription), args.Error(1)
}

func (m *ReconcilerMock) CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*paymentprovider.RemoteSubscription, bool, error) {
	args := m.Called(ctx, id, atPeriodEnd)
	var sub *paymentprovider.RemoteSubscription
	if args.Get(0) != nil {
		sub = args.Get(0).(*paymentprovider.RemoteSubscription)
	}
	return sub, args.Bool(1), args.Error(2)
}

func (m *ReconcilerMock) GetOrCreateInvoice(ctx context.Context, id string, params paymentprovider.InvoiceParams) (*paymentprovider.RemoteInvoice, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteInvoice), args.Error(1)
}

func (m *ReconcilerMock) DeleteInvoice(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ReconcilerMock) GetOrCreateCharge(ctx context.Context, id string, params paymentprovider.ChargeParams) (*paymentprovider.RemoteCharge, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RemoteCharge), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo       *RepoMock
	reconciler *ReconcilerMock
	cache      *CacheMock
	publisher  *PublisherMock
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:       new(RepoMock),
		reconciler: new(ReconcilerMock),
		cache:      new(CacheMock),
		publisher:  new(PublisherMock),
	}
	f.svc = New(f.repo, f.reconciler, f.cache, f.publisher, "usd", newNoopLogger())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.repo.AssertExpectations(t)
	f.reconciler.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}
