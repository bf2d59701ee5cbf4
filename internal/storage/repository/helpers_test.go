//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/trip-billing/internal/migrations"
	"github.com/magabrotheeeer/trip-billing/internal/models"
)

const migrationsPath = "../../../migrations"

// setupTestDatabase поднимает PostgreSQL в контейнере и накатывает миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("billing"),
		postgres.WithUsername("billing"),
		postgres.WithPassword("billing"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(ctx, storage))
	return storage
}

// testFactory создаёт связанные записи для тестов.
type testFactory struct {
	t       *testing.T
	storage *Storage
}

func (f testFactory) user(email string) models.User {
	u := models.User{ID: uuid.NewString(), Email: email, FirstName: "Ann", LastName: "Lee", Role: "user"}
	require.NoError(f.t, f.storage.UpsertUser(context.Background(), u))
	return u
}

func (f testFactory) plan(name string, amount int64) int64 {
	id, err := f.storage.CreatePlan(context.Background(), models.Plan{
		ExternalID: name, Name: name, Amount: amount, Currency: "usd",
		Interval: models.IntervalYear, IntervalCount: 1, IsActive: true,
	})
	require.NoError(f.t, err)
	return id
}

func (f testFactory) customer(userID string, end time.Time, autoRenew bool) int64 {
	id, err := f.storage.CreateCustomer(context.Background(), models.Customer{
		UserID: userID, ExternalID: "cus_" + userID[:8], Balance: decimal.Zero, Currency: "usd",
		AutoRenew: autoRenew, IsActive: true, StartDate: end.AddDate(-1, 0, 0), EndDate: end,
	})
	require.NoError(f.t, err)
	return id
}

func (f testFactory) subscription(customerID, planID int64, status models.SubscriptionStatus, start time.Time, canceledAt *time.Time) int64 {
	end := start.AddDate(1, 0, 0)
	id, err := f.storage.CreateSubscription(context.Background(), models.Subscription{
		CustomerID: customerID, PlanID: planID, ExternalID: "sub_" + uuid.NewString()[:8], Status: status,
		Quantity: 1, Start: &start, CurrentPeriodStart: &start, CurrentPeriodEnd: &end, CanceledAt: canceledAt,
	})
	require.NoError(f.t, err)
	return id
}
