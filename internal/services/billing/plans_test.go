package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trip-billing/internal/cache"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

func individualRequest() CreatePlanRequest {
	return CreatePlanRequest{Name: "Individual", Amount: 15000, Interval: models.IntervalYear}
}

func TestService_CreatePlan(t *testing.T) {
	remote := &paymentprovider.RemotePlan{
		ID: "plan_xxx", Name: "Individual", Amount: 15000, Currency: "usd",
		Interval: "year", IntervalCount: 1, Active: true,
	}

	tests := []struct {
		name       string
		req        CreatePlanRequest
		setupMocks func(f *fixture)
		wantID     int64
		wantErr    error
		wantRemote bool
	}{
		{
			name: "new plan takes external id from provider",
			req:  individualRequest(),
			setupMocks: func(f *fixture) {
				f.repo.On("GetPlanByName", mock.Anything, "Individual").Return(nil, repository.ErrNotFound)
				f.reconciler.On("GetOrCreatePlan", mock.Anything, "", mock.MatchedBy(func(p paymentprovider.PlanParams) bool {
					return p.Name == "Individual" && p.Amount == 15000 && p.Interval == "year"
				})).Return(remote, nil)
				f.repo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
					return p.ExternalID == "plan_xxx" && p.Amount == 15000 && p.IsActive
				})).Return(int64(7), nil)
				f.cache.On("Invalidate", mock.Anything, []string{cache.KeyActivePlans, cache.KeyAllPlans, cache.PlanKey(7)}).Return(nil)
			},
			wantID: 7,
		},
		{
			name: "existing plan is updated in place",
			req:  individualRequest(),
			setupMocks: func(f *fixture) {
				f.repo.On("GetPlanByName", mock.Anything, "Individual").
					Return(&models.Plan{ID: 3, ExternalID: "plan_xxx", Name: "Individual"}, nil)
				f.reconciler.On("GetOrCreatePlan", mock.Anything, "plan_xxx", mock.Anything).Return(remote, nil)
				f.repo.On("UpdatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
					return p.ID == 3 && p.ExternalID == "plan_xxx"
				})).Return(nil)
				f.cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
			},
			wantID: 3,
		},
		{
			name: "provider failure leaves no local record",
			req:  individualRequest(),
			setupMocks: func(f *fixture) {
				f.repo.On("GetPlanByName", mock.Anything, "Individual").Return(nil, repository.ErrNotFound)
				f.reconciler.On("GetOrCreatePlan", mock.Anything, "", mock.Anything).
					Return(nil, &paymentprovider.RequestError{StatusCode: 500, Message: "boom"})
			},
			wantRemote: true,
		},
		{
			name:       "missing name",
			req:        CreatePlanRequest{Amount: 100, Interval: models.IntervalYear},
			setupMocks: func(_ *fixture) {},
			wantErr:    ErrValidation,
		},
		{
			name:       "negative amount",
			req:        CreatePlanRequest{Name: "Broken", Amount: -1, Interval: models.IntervalYear},
			setupMocks: func(_ *fixture) {},
			wantErr:    ErrValidation,
		},
		{
			name:       "unknown interval",
			req:        CreatePlanRequest{Name: "Weird", Amount: 100, Interval: "fortnight"},
			setupMocks: func(_ *fixture) {},
			wantErr:    ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setupMocks(f)

			plan, err := f.svc.CreatePlan(context.Background(), tt.req)

			switch {
			case tt.wantRemote:
				var reqErr *paymentprovider.RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Nil(t, plan)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, plan)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, plan.ID)
				assert.Equal(t, "plan_xxx", plan.ExternalID)
				assert.Equal(t, int64(15000), plan.Amount)
			}
			f.assertExpectations(t)
		})
	}
}

func TestService_DeletePlan(t *testing.T) {
	tests := []struct {
		name    string
		removed bool
	}{
		{name: "removed at provider", removed: true},
		{name: "already absent at provider", removed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.On("GetPlan", mock.Anything, int64(4)).Return(&models.Plan{ID: 4, ExternalID: "future"}, nil)
			f.reconciler.On("DeletePlan", mock.Anything, "future").Return(tt.removed, nil)
			f.repo.On("SetPlanActive", mock.Anything, int64(4), false).Return(nil)
			f.cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil)

			err := f.svc.DeletePlan(context.Background(), 4)

			require.NoError(t, err)
			f.assertExpectations(t)
		})
	}
}

func TestService_DeletePlan_ProviderError(t *testing.T) {
	f := newFixture()
	f.repo.On("GetPlan", mock.Anything, int64(4)).Return(&models.Plan{ID: 4, ExternalID: "future"}, nil)
	f.reconciler.On("DeletePlan", mock.Anything, "future").Return(false, errors.New("network"))

	err := f.svc.DeletePlan(context.Background(), 4)

	require.Error(t, err)
	f.repo.AssertNotCalled(t, "SetPlanActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ListPlans(t *testing.T) {
	plans := []*models.Plan{{ID: 1, Name: "Individual"}, {ID: 2, Name: "Future"}}

	t.Run("cache hit", func(t *testing.T) {
		f := newFixture()
		f.cache.On("Get", mock.Anything, cache.KeyActivePlans, mock.Anything).
			Run(func(args mock.Arguments) {
				*args.Get(2).(*[]*models.Plan) = plans
			}).Return(true, nil)

		got, err := f.svc.ListPlans(context.Background(), true)

		require.NoError(t, err)
		assert.Equal(t, plans, got)
		f.assertExpectations(t)
	})

	t.Run("cache miss fills cache", func(t *testing.T) {
		f := newFixture()
		f.cache.On("Get", mock.Anything, cache.KeyAllPlans, mock.Anything).Return(false, nil)
		f.repo.On("ListPlans", mock.Anything, false).Return(plans, nil)
		f.cache.On("Set", mock.Anything, cache.KeyAllPlans, plans, planCacheTTL).Return(nil)

		got, err := f.svc.ListPlans(context.Background(), false)

		require.NoError(t, err)
		assert.Equal(t, plans, got)
		f.assertExpectations(t)
	})

	t.Run("cache error falls back to storage", func(t *testing.T) {
		f := newFixture()
		f.cache.On("Get", mock.Anything, cache.KeyActivePlans, mock.Anything).Return(false, errors.New("redis down"))
		f.repo.On("ListPlans", mock.Anything, true).Return(plans, nil)
		f.cache.On("Set", mock.Anything, cache.KeyActivePlans, plans, planCacheTTL).Return(errors.New("redis down"))

		got, err := f.svc.ListPlans(context.Background(), true)

		require.NoError(t, err)
		assert.Len(t, got, 2)
		f.assertExpectations(t)
	})
}

func TestService_ListPlans_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := &cache.Cache{Db: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = rc.Close() })

	repo := new(RepoMock)
	repo.On("ListPlans", mock.Anything, true).Return([]*models.Plan{{ID: 1, Name: "Individual", Amount: 15000}}, nil).Once()
	svc := New(repo, new(ReconcilerMock), rc, nil, "usd", newNoopLogger())

	first, err := svc.ListPlans(context.Background(), true)
	require.NoError(t, err)
	second, err := svc.ListPlans(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, int64(15000), second[0].Amount)
	repo.AssertNumberOfCalls(t, "ListPlans", 1)
}

func TestService_GetPlan(t *testing.T) {
	f := newFixture()
	plan := &models.Plan{ID: 5, Name: "Academic"}
	f.cache.On("Get", mock.Anything, cache.PlanKey(5), mock.Anything).Return(false, nil)
	f.repo.On("GetPlan", mock.Anything, int64(5)).Return(plan, nil)
	f.cache.On("Set", mock.Anything, cache.PlanKey(5), plan, planCacheTTL).Return(nil)

	got, err := f.svc.GetPlan(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, "Academic", got.Name)
	f.assertExpectations(t)
}
