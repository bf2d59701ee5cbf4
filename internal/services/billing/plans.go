package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/trip-billing/internal/cache"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

const planCacheTTL = 10 * time.Minute

// CreatePlanRequest поля нового или обновляемого плана.
type CreatePlanRequest struct {
	Name                string            `json:"name" validate:"required"`
	Description         string            `json:"description"`
	Amount              int64             `json:"amount" validate:"min=0"`
	Currency            string            `json:"currency"`
	Interval            models.Interval   `json:"interval" validate:"required"`
	IntervalCount       int64             `json:"interval_count"`
	TrialPeriodDays     int64             `json:"trial_period_days"`
	StatementDescriptor string            `json:"statement_descriptor"`
	Metadata            map[string]string `json:"metadata"`
	Inactive            bool              `json:"inactive"`
}

// CreatePlan синхронизирует план с провайдером и сохраняет его локально.
// План ищется по названию: повторный вызов обновляет существующий план,
// а не создаёт второй.
func (s *Service) CreatePlan(ctx context.Context, req CreatePlanRequest) (*models.Plan, error) {
	const op = "billing.CreatePlan"
	if req.Name == "" {
		return nil, validationError("plan name is required")
	}
	if req.Amount < 0 {
		return nil, validationError("plan amount must not be negative")
	}
	if !req.Interval.Valid() {
		return nil, validationError("unknown interval %q", req.Interval)
	}

	existing, err := s.repo.GetPlanByName(ctx, req.Name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var externalID string
	if existing != nil {
		externalID = existing.ExternalID
	}

	remote, err := s.reconciler.GetOrCreatePlan(ctx, externalID, paymentprovider.PlanParams{
		Name:                req.Name,
		Amount:              req.Amount,
		Currency:            req.Currency,
		Interval:            string(req.Interval),
		IntervalCount:       req.IntervalCount,
		Metadata:            req.Metadata,
		StatementDescriptor: req.StatementDescriptor,
		TrialPeriodDays:     req.TrialPeriodDays,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plan := models.Plan{
		ExternalID:          remote.ID,
		Name:                req.Name,
		Description:         req.Description,
		Amount:              remote.Amount,
		Currency:            remote.Currency,
		Interval:            models.Interval(remote.Interval),
		IntervalCount:       remote.IntervalCount,
		TrialPeriodDays:     remote.TrialPeriodDays,
		StatementDescriptor: req.StatementDescriptor,
		Metadata:            copyMetadata(req.Metadata),
		IsActive:            !req.Inactive,
	}
	if existing != nil {
		plan.ID = existing.ID
		plan.CreatedAt = existing.CreatedAt
		if err := s.repo.UpdatePlan(ctx, plan); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		id, err := s.repo.CreatePlan(ctx, plan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		plan.ID = id
	}

	s.invalidatePlans(ctx, plan.ID)
	s.log.Info("plan saved", slog.Int64("id", plan.ID), slog.String("external_id", plan.ExternalID))
	return &plan, nil
}

// DeletePlan удаляет план у провайдера и отключает его локально.
// История подписок на план сохраняется.
func (s *Service) DeletePlan(ctx context.Context, id int64) error {
	const op = "billing.DeletePlan"
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	removed, err := s.reconciler.DeletePlan(ctx, plan.ExternalID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !removed {
		s.log.Warn("plan already absent at provider", slog.Int64("id", id))
	}

	if err := s.repo.SetPlanActive(ctx, id, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidatePlans(ctx, id)
	return nil
}

// ListPlans возвращает планы, при activeOnly только активные.
func (s *Service) ListPlans(ctx context.Context, activeOnly bool) ([]*models.Plan, error) {
	const op = "billing.ListPlans"
	key := cache.KeyAllPlans
	if activeOnly {
		key = cache.KeyActivePlans
	}

	var plans []*models.Plan
	if s.cachedGet(ctx, key, &plans) {
		return plans, nil
	}

	plans, err := s.repo.ListPlans(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cachedSet(ctx, key, plans)
	return plans, nil
}

// GetPlan возвращает план по ID.
func (s *Service) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "billing.GetPlan"
	key := cache.PlanKey(id)

	var plan models.Plan
	if s.cachedGet(ctx, key, &plan) {
		return &plan, nil
	}

	found, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cachedSet(ctx, key, found)
	return found, nil
}

func (s *Service) cachedGet(ctx context.Context, key string, result any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), sl.Err(err))
		return false
	}
	return found
}

func (s *Service) cachedSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, planCacheTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service) invalidatePlans(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.KeyActivePlans, cache.KeyAllPlans, cache.PlanKey(id)); err != nil {
		s.log.Warn("failed to invalidate plan cache", sl.Err(err))
	}
}
