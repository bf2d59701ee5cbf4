// Package checkout реализует HTTP-обработчик регистрации на мероприятие.
//
// Запрос может быть анонимным. Аутентифицированный пользователь платит
// членский взнос, данные участника по умолчанию берутся из его профиля.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trip-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/card"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/models"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
)

// Request тело запроса. Source токен карты, выданный провайдером на клиенте.
type Request struct {
	Email     string       `json:"email" validate:"omitempty,email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Card      card.Details `json:"card"`
	Source    string       `json:"source"`
}

// Service бизнес-логика регистрации.
type Service interface {
	ResolveUser(ctx context.Context, id, email, role string) (*models.User, error)
	Checkout(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutResult, error)
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
// @Summary Зарегистрироваться на мероприятие
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "ID мероприятия"
// @Param request body Request true "Участник и карта"
// @Success 201 {object} response.OKResponse
// @Failure 402 {object} response.ErrorResponse "Карта отклонена"
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 422 {object} response.ErrorResponse
// @Router /events/{id}/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || eventID <= 0 {
		log.Warn("invalid event id", slog.String("id", chi.URLParam(r, "id")))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
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

	checkoutReq := billing.CheckoutRequest{
		EventID:  eventID,
		Attendee: models.Attendee{Email: req.Email, FirstName: req.FirstName, LastName: req.LastName},
		Card:     req.Card,
		Source:   req.Source,
	}
	if claims, ok := middlewarectx.ClaimsFromContext(r.Context()); ok {
		user, err := h.service.ResolveUser(r.Context(), claims.UserID(), claims.Email, claims.Role)
		if err != nil {
			log.Error("failed to resolve user", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not complete registration"))
			return
		}
		checkoutReq.User = user
	}

	result, err := h.service.Checkout(r.Context(), checkoutReq)
	if err != nil {
		log.Error("checkout failed", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not complete registration")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("attendee registered", slog.Int64("event_id", eventID), slog.Int64("amount", result.Amount))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(result))
}
