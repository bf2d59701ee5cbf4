// Package cancel реализует HTTP-обработчик отмены подписки.
//
// Параметр at_period_end оставляет подписку действующей до конца оплаченного
// периода. Отмена подписки, которой у провайдера уже нет, считается успешной.
package cancel

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trip-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// Service бизнес-логика отмены подписки.
type Service interface {
	CancelSubscription(ctx context.Context, id int64, atPeriodEnd bool) (*models.Subscription, error)
	CancelUserSubscription(ctx context.Context, userID string, id int64, atPeriodEnd bool) (*models.Subscription, error)
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
// @Summary Отменить подписку
// @Description Администратор может отменить любую подписку, пользователь только свою.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID подписки"
// @Param at_period_end query bool false "Отменить в конце периода"
// @Success 200 {object} response.OKResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /subscriptions/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"
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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid subscription id", slog.String("id", chi.URLParam(r, "id")))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	var atPeriodEnd bool
	if raw := r.URL.Query().Get("at_period_end"); raw != "" {
		if atPeriodEnd, err = strconv.ParseBool(raw); err != nil {
			log.Warn("invalid at_period_end parameter", slog.String("at_period_end", raw))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid at_period_end parameter"))
			return
		}
	}

	var sub *models.Subscription
	if claims.IsAdmin() {
		sub, err = h.service.CancelSubscription(r.Context(), id, atPeriodEnd)
	} else {
		sub, err = h.service.CancelUserSubscription(r.Context(), claims.UserID(), id, atPeriodEnd)
	}
	if err != nil {
		log.Error("failed to cancel subscription", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not cancel subscription")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("subscription canceled", slog.Int64("id", id), slog.Bool("at_period_end", atPeriodEnd))
	render.JSON(w, r, response.OKWithData(sub))
}
