// Package renew реализует HTTP-обработчик продления членства клиента.
package renew

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
)

// Request тело запроса. Без at продление считается от текущего момента.
type Request struct {
	CustomerID int64      `json:"customer_id" validate:"required,min=1"`
	At         *time.Time `json:"at"`
}

// Service бизнес-логика продления.
type Service interface {
	Renew(ctx context.Context, customerID int64, at time.Time) (*models.Customer, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	now      func() time.Time
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		now:      time.Now,
	}
}

// ServeHTTP godoc
// @Summary Продлить членство
// @Description Если срок ещё не истёк, новый срок отсчитывается от его конца.
// @Tags Renewals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Клиент и момент продления"
// @Success 200 {object} response.OKResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /renewals [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.renewal.renew"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	at := h.now()
	if req.At != nil {
		at = *req.At
	}

	customer, err := h.service.Renew(r.Context(), req.CustomerID, at)
	if err != nil {
		log.Error("failed to renew membership", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not renew membership")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(customer))
}
