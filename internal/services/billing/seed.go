package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

// DefaultPlans стандартные годовые планы членства.
func DefaultPlans() []CreatePlanRequest {
	return []CreatePlanRequest{
		{
			Name:   "Individual",
			Amount: 15000,
			Description: "Any person interested in the promotion and development of " +
				"the professional liability industry is eligible for membership",
		},
		{
			Name:   "Corporate Member",
			Amount: 100000,
			Description: "Must be an employee of a Corporate Sponsor\n\n" +
				"Corporate affiliates hold the same rights as an individual member",
		},
		{
			Name:   "Future",
			Amount: 5000,
			Description: "Must be 35 years of age or younger and involved in the " +
				"professional liability industry\n\n" +
				"Full membership benefits, including member discounts for event registration",
		},
		{
			Name:        "Academic",
			Description: "Website access only\n\nMust be a student or teacher at an academic institution",
		},
		{
			Name:        "Admin",
			Description: "Used for administrative purposes only",
			Inactive:    true,
		},
	}
}

// SeedPlans создаёт недостающие планы и возвращает только созданные.
// Уже существующие планы с тем же названием не трогаются.
func (s *Service) SeedPlans(ctx context.Context, plans []CreatePlanRequest) ([]*models.Plan, error) {
	const op = "billing.SeedPlans"
	var created []*models.Plan
	for _, req := range plans {
		_, err := s.repo.GetPlanByName(ctx, req.Name)
		if err == nil {
			s.log.Debug("plan already exists", slog.String("name", req.Name))
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, fmt.Errorf("%s: %w", op, err)
		}
		if req.Interval == "" {
			req.Interval = models.IntervalYear
		}
		plan, err := s.CreatePlan(ctx, req)
		if err != nil {
			return created, fmt.Errorf("%s: %s: %w", op, req.Name, err)
		}
		created = append(created, plan)
	}
	return created, nil
}
