// Package scheduler запускает фоновые задачи биллинга по расписанию cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/trip-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// ReminderRepository источник клиентов, которым нужно напомнить о продлении.
type ReminderRepository interface {
	ListRenewalReminders(ctx context.Context, from, to time.Time) ([]models.RenewalReminder, error)
}

// Publisher публикует уведомления в очередь.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// SchedulerService публикует напоминания о скором окончании членства.
type SchedulerService struct {
	repo      ReminderRepository
	publisher Publisher
	log       *slog.Logger
	cron      *cron.Cron
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ReminderRepository, publisher Publisher, log *slog.Logger) *SchedulerService {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		cron:      cron.New(cron.WithChain(cron.Recover(cronLogger))),
		now:       time.Now,
	}
}

// Start регистрирует задачу напоминаний по расписанию schedule и запускает cron.
func (s *SchedulerService) Start(ctx context.Context, schedule string) error {
	const op = "scheduler.Start"
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.NotifyRenewalReminders(ctx); err != nil {
			s.log.Error("renewal reminder job failed", sl.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("scheduled renewal reminder job", slog.String("schedule", schedule))
	s.cron.Start()
	return nil
}

// Stop останавливает cron; возвращённый контекст завершается, когда доработают запущенные задачи.
func (s *SchedulerService) Stop() context.Context {
	return s.cron.Stop()
}

// NotifyRenewalReminders публикует напоминание каждому клиенту, срок которого
// истекает завтра (по UTC), и возвращает число опубликованных сообщений.
func (s *SchedulerService) NotifyRenewalReminders(ctx context.Context) (int, error) {
	const op = "scheduler.NotifyRenewalReminders"
	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	reminders, err := s.repo.ListRenewalReminders(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(reminders) == 0 {
		s.log.Info("no memberships expiring tomorrow")
		return 0, nil
	}
	s.log.Info("found memberships expiring tomorrow", slog.Int("count", len(reminders)))

	sent := 0
	for _, r := range reminders {
		if err := s.publisher.Publish(ctx, rabbitmq.RoutingRenewalReminder, r); err != nil {
			s.log.Error("failed to publish message", slog.Int64("customer_id", r.CustomerID), sl.Err(err))
			continue
		}
		sent++
	}
	return sent, nil
}
