// Package create реализует HTTP-обработчик подписки текущего пользователя
// на тарифный план.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trip-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
)

// Request тело запроса.
type Request struct {
	PlanID          int64             `json:"plan_id" validate:"required,min=1"`
	Quantity        int64             `json:"quantity" validate:"min=0"`
	TrialPeriodDays int64             `json:"trial_period_days" validate:"min=0"`
	Source          string            `json:"source"`
	Metadata        map[string]string `json:"metadata"`
}

// Service бизнес-логика создания подписки.
type Service interface {
	CustomerForUser(ctx context.Context, userID string) (*models.Customer, error)
	CreateSubscription(ctx context.Context, req billing.CreateSubscriptionRequest) (*models.Subscription, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подписаться на план
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Данные подписки"
// @Success 201 {object} response.OKResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 402 {object} response.ErrorResponse "Карта отклонена"
// @Failure 404 {object} response.ErrorResponse "Нет платёжного профиля или плана"
// @Failure 422 {object} response.ErrorResponse
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claims, ok := middlewarectx.ClaimsFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Warn("validation failed", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
	}

	customer, err := h.service.CustomerForUser(r.Context(), claims.UserID())
	if err != nil {
		log.Error("failed to find customer", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not create subscription")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	sub, err := h.service.CreateSubscription(r.Context(), billing.CreateSubscriptionRequest{
		CustomerID:      customer.ID,
		PlanID:          req.PlanID,
		Quantity:        req.Quantity,
		TrialPeriodDays: req.TrialPeriodDays,
		Source:          req.Source,
		Metadata:        req.Metadata,
	})
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not create subscription")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("subscription created", slog.Int64("id", sub.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(sub))
}
