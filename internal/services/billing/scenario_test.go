package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider/providertest"
	"github.com/magabrotheeeer/trip-billing/internal/services/reconcile"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

// newScenario собирает сервис с настоящим reconcile.Reconciler поверх мока провайдера.
func newScenario() (*Service, *RepoMock, *providertest.MockProvider) {
	repo := new(RepoMock)
	provider := new(providertest.MockProvider)
	svc := New(repo, reconcile.New(provider, newNoopLogger()), nil, nil, "usd", newNoopLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, provider
}

func TestScenario_NewCustomerIsCreatedAtProvider(t *testing.T) {
	svc, repo, provider := newScenario()
	repo.On("GetCustomerByUser", mock.Anything, testUser.ID).Return(nil, repository.ErrNotFound)
	provider.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(p paymentprovider.CustomerParams) bool {
		return p.Email == testUser.Email && p.Balance == 0 && p.Metadata != nil
	})).Return(&paymentprovider.RemoteCustomer{ID: "cus_new", Currency: "usd"}, nil)
	repo.On("UpsertUser", mock.Anything, testUser).Return(nil)
	repo.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(c models.Customer) bool {
		return c.ExternalID == "cus_new" && c.EndDate.Equal(fixedNow.AddDate(1, 0, 0))
	})).Return(int64(12), nil)
	repo.On("SetCustomerActive", mock.Anything, int64(12), true).Return(nil)

	c, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{User: testUser})

	require.NoError(t, err)
	assert.True(t, c.IsActive)
	assert.Equal(t, "cus_new", c.ExternalID)
	provider.AssertNotCalled(t, "RetrieveCustomer", mock.Anything, mock.Anything)
	provider.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestScenario_PlanReconcileIsIdempotent(t *testing.T) {
	svc, repo, provider := newScenario()
	req := CreatePlanRequest{Name: "Individual", Amount: 15000, Interval: models.IntervalYear}
	remote := &paymentprovider.RemotePlan{
		ID: "individual", Name: "Individual", Amount: 15000, Currency: "usd", Interval: "year", IntervalCount: 1,
	}
	stored := &models.Plan{ID: 1, ExternalID: "individual", Name: "Individual", Amount: 15000, Currency: "usd",
		Interval: models.IntervalYear, IntervalCount: 1, IsActive: true}

	repo.On("GetPlanByName", mock.Anything, "Individual").Return(nil, repository.ErrNotFound).Once()
	provider.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p paymentprovider.PlanParams) bool {
		return p.ID == "individual" && p.Currency == "usd" && p.IntervalCount == 1
	})).Return(remote, nil).Once()
	repo.On("CreatePlan", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	first, err := svc.CreatePlan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	repo.On("GetPlanByName", mock.Anything, "Individual").Return(stored, nil).Once()
	provider.On("RetrievePlan", mock.Anything, "individual").Return(remote, nil).Once()
	provider.On("UpdatePlan", mock.Anything, "individual", mock.Anything).Return(remote, nil).Once()
	repo.On("UpdatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
		return p.ID == 1 && p.ExternalID == "individual"
	})).Return(nil).Once()

	second, err := svc.CreatePlan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	provider.AssertNumberOfCalls(t, "CreatePlan", 1)
	repo.AssertNumberOfCalls(t, "CreatePlan", 1)
	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestScenario_CancelOfMissingRemoteSubscription(t *testing.T) {
	svc, repo, provider := newScenario()
	repo.On("GetSubscription", mock.Anything, int64(2)).
		Return(&models.Subscription{ID: 2, ExternalID: "sub_gone", Status: models.StatusActive, Quantity: 1}, nil)
	provider.On("RetrieveSubscription", mock.Anything, "sub_gone").Return(nil, paymentprovider.ErrNotFound)
	repo.On("UpdateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
		return s.Status == models.StatusCanceled && s.CanceledAt != nil && s.CanceledAt.Equal(fixedNow)
	})).Return(nil)

	sub, err := svc.CancelSubscription(context.Background(), 2, false)

	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, sub.Status)
	provider.AssertNotCalled(t, "CancelSubscription", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}
