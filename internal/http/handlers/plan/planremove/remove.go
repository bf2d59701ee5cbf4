// Package planremove реализует HTTP-обработчик удаления тарифного плана.
package planremove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
)

// Service бизнес-логика удаления плана.
type Service interface {
	DeletePlan(ctx context.Context, id int64) error
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
// @Summary Удалить план
// @Description План удаляется у провайдера и отключается локально.
// @Tags Plans
// @Produce json
// @Param id path int true "ID плана"
// @Success 200 {object} response.OKResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /plans/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid plan id", slog.String("id", chi.URLParam(r, "id")))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	if err := h.service.DeletePlan(r.Context(), id); err != nil {
		log.Error("failed to delete plan", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not delete plan")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("plan deleted", slog.Int64("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_id": id,
	}))
}
