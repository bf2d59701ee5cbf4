// Package customercreate реализует HTTP-обработчик создания платёжного
// профиля текущего пользователя.
package customercreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/trip-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
)

// Request тело запроса. Баланс задаётся в основных единицах валюты.
type Request struct {
	FirstName string                    `json:"first_name" validate:"required"`
	LastName  string                    `json:"last_name" validate:"required"`
	Balance   decimal.Decimal           `json:"balance"`
	Source    string                    `json:"source"`
	AutoRenew *bool                     `json:"auto_renew"`
	Shipping  *paymentprovider.Shipping `json:"shipping"`
	Metadata  map[string]string         `json:"metadata"`
}

// Service бизнес-логика создания клиента.
type Service interface {
	ResolveUser(ctx context.Context, id, email, role string) (*models.User, error)
	CreateCustomer(ctx context.Context, req billing.CreateCustomerRequest) (*models.Customer, error)
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
// @Summary Создать платёжный профиль
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Данные клиента"
// @Success 201 {object} response.OKResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 402 {object} response.ErrorResponse "Карта отклонена"
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /customers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.customer.create"
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

	user, err := h.service.ResolveUser(r.Context(), claims.UserID(), claims.Email, claims.Role)
	if err != nil {
		log.Error("failed to resolve user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create customer"))
		return
	}
	user.FirstName, user.LastName = req.FirstName, req.LastName

	customer, err := h.service.CreateCustomer(r.Context(), billing.CreateCustomerRequest{
		User:      *user,
		Balance:   req.Balance,
		Source:    req.Source,
		Shipping:  req.Shipping,
		AutoRenew: req.AutoRenew,
		Metadata:  req.Metadata,
	})
	if err != nil {
		log.Error("failed to create customer", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not create customer")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("customer created", slog.Int64("id", customer.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(customer))
}
