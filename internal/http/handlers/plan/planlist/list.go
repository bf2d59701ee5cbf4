// Package planlist реализует HTTP-обработчик списка тарифных планов.
package planlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// Service бизнес-логика чтения планов.
type Service interface {
	ListPlans(ctx context.Context, activeOnly bool) ([]*models.Plan, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список планов
// @Description По умолчанию возвращает только активные планы.
// @Tags Plans
// @Produce json
// @Param active query bool false "Только активные планы" default(true)
// @Success 200 {object} response.OKResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	activeOnly := true
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			log.Warn("invalid active parameter", slog.String("active", raw))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid active parameter"))
			return
		}
		activeOnly = v
	}

	plans, err := h.service.ListPlans(r.Context(), activeOnly)
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not list plans")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(plans))
}
