package billingapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/trip-billing/internal/cache"
	"github.com/magabrotheeeer/trip-billing/internal/config"
	"github.com/magabrotheeeer/trip-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/trip-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/migrations"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider/stripe"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
	"github.com/magabrotheeeer/trip-billing/internal/services/reconcile"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API биллинга со всеми подключениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилище, накатывает миграции и собирает маршруты.
// Redis и RabbitMQ необязательны: без них API работает без кеша планов
// и без почтовых уведомлений.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	var planCache billing.Cache
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("plan cache disabled", sl.Err(err))
		} else {
			app.cache = c
			planCache = c
		}
	}

	var publisher billing.Publisher
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
		}
		app.conn = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.BillingQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
		}
		app.ch = ch
		publisher = rabbitmq.NewPublisher(ch)
	}

	provider := stripe.New(cfg.Stripe.SecretKey, cfg.WebhookSecret, logger)
	billingService := billing.New(
		db,
		reconcile.New(provider, logger),
		planCache,
		publisher,
		cfg.Currency,
		logger,
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, Deps{
		Billing:  billingService,
		Tokens:   jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		Webhooks: provider,
		DB:       db,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
