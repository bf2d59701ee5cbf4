// Команда init-plans создаёт стандартные планы членства у провайдера и в базе.
// Повторный запуск пропускает уже созданные планы.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/trip-billing/internal/config"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/migrations"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider/stripe"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
	"github.com/magabrotheeeer/trip-billing/internal/services/reconcile"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		logger.Error("failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	provider := stripe.New(cfg.Stripe.SecretKey, cfg.WebhookSecret, logger)
	service := billing.New(db, reconcile.New(provider, logger), nil, nil, cfg.Currency, logger)

	created, err := service.SeedPlans(ctx, billing.DefaultPlans())
	for _, plan := range created {
		logger.Info("created plan", slog.String("name", plan.Name), slog.String("external_id", plan.ExternalID))
	}
	if err != nil {
		logger.Error("failed to create plans", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("all plans are in place", slog.Int("created", len(created)))
}
