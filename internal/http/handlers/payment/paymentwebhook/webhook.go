// Package paymentwebhook принимает уведомления платёжного провайдера.
//
// Подпись проверяется до разбора события. Ошибка применения события
// возвращает 500, чтобы провайдер повторил доставку.
package paymentwebhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
)

// SignatureHeader заголовок с подписью уведомления.
const SignatureHeader = "Stripe-Signature"

const maxBodyBytes = 64 << 10

// Service применяет уведомление к локальным записям.
type Service interface {
	HandleProviderEvent(ctx context.Context, event *paymentprovider.Event) error
}

type Handler struct {
	log     *slog.Logger
	parser  paymentprovider.WebhookParser
	service Service
}

func New(log *slog.Logger, parser paymentprovider.WebhookParser, service Service) *Handler {
	return &Handler{
		log:     log,
		parser:  parser,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Уведомления платёжного провайдера
// @Tags Webhooks
// @Accept json
// @Success 200
// @Failure 400 "Неверная подпись или тело"
// @Failure 500 "Событие не применено"
// @Router /webhooks/stripe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	event, err := h.parser.ParseWebhook(body, r.Header.Get(SignatureHeader))
	if err != nil {
		log.Warn("rejected webhook", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.HandleProviderEvent(r.Context(), event); err != nil {
		log.Error("failed to apply webhook event", slog.String("event_id", event.ID), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook event processed", slog.String("event_id", event.ID), slog.String("type", event.RawType))
	w.WriteHeader(http.StatusOK)
}
