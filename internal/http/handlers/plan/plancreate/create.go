// Package plancreate реализует HTTP-обработчик создания тарифного плана.
//
// План синхронизируется с платёжным провайдером; повторный запрос с тем же
// названием обновляет существующий план.
package plancreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
)

// Service бизнес-логика создания плана.
type Service interface {
	CreatePlan(ctx context.Context, req billing.CreatePlanRequest) (*models.Plan, error)
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
// @Summary Создать или обновить план
// @Tags Plans
// @Accept json
// @Produce json
// @Param request body billing.CreatePlanRequest true "Параметры плана"
// @Success 201 {object} response.OKResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req billing.CreatePlanRequest
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

	plan, err := h.service.CreatePlan(r.Context(), req)
	if err != nil {
		log.Error("failed to create plan", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not create plan")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("plan saved", slog.Int64("id", plan.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(plan))
}
