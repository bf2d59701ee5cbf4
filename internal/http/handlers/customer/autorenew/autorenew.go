// Package autorenew реализует HTTP-обработчик переключения автопродления
// членства текущего пользователя.
package autorenew

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trip-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// Service бизнес-логика автопродления.
type Service interface {
	ToggleAutoRenew(ctx context.Context, userID string) (*models.Customer, error)
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
// @Summary Переключить автопродление
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.OKResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Нет подписки"
// @Router /customers/auto-renew [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.customer.autorenew"
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

	customer, err := h.service.ToggleAutoRenew(r.Context(), claims.UserID())
	if err != nil {
		log.Error("failed to toggle auto renew", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not change auto renew")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("auto renew changed", slog.Int64("customer_id", customer.ID), slog.Bool("auto_renew", customer.AutoRenew))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"auto_renew": customer.AutoRenew,
	}))
}
