// Package response содержит единый формат JSON-ответов HTTP-обработчиков
// и соответствие ошибок сервиса биллинга HTTP-статусам.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trip-billing/internal/lib/card"
	"github.com/magabrotheeeer/trip-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
	"github.com/magabrotheeeer/trip-billing/internal/services/reconcile"
	"github.com/magabrotheeeer/trip-billing/internal/storage/repository"
)

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKResponse успешный ответ.
type OKResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse ответ с ошибкой.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// OKWithData возвращает успешный ответ с данными.
func OKWithData(data any) OKResponse {
	return OKResponse{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ответ с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError собирает нарушения валидации в одно сообщение.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min", "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "max", "lte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return ErrorResponse{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// FromServiceError выбирает HTTP-статус и текст ответа для ошибки сервиса.
// Текст ошибки карты показывается пользователю как есть; детали остальных
// ошибок провайдера и хранилища наружу не попадают.
func FromServiceError(err error, fallback string) (int, ErrorResponse) {
	var cardErr *paymentprovider.CardError
	var reqErr *paymentprovider.RequestError

	switch {
	case errors.As(err, &cardErr):
		return http.StatusPaymentRequired, Error(cardErr.Message)
	case errors.Is(err, billing.ErrValidation),
		errors.Is(err, reconcile.ErrChargeSource),
		errors.Is(err, reconcile.ErrMissingField),
		errors.Is(err, card.ErrInvalidNumber),
		errors.Is(err, card.ErrExpired),
		errors.Is(err, card.ErrInvalidCVC):
		return http.StatusUnprocessableEntity, Error(validationMessage(err))
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, Error("not found")
	case errors.Is(err, billing.ErrAlreadyRegistered):
		return http.StatusConflict, Error(billing.ErrAlreadyRegistered.Error())
	case errors.Is(err, billing.ErrCustomerExists):
		return http.StatusConflict, Error(billing.ErrCustomerExists.Error())
	case errors.Is(err, billing.ErrNoSubscription):
		return http.StatusConflict, Error(billing.ErrNoSubscription.Error())
	case errors.As(err, &reqErr):
		return http.StatusBadGateway, Error("payment provider is unavailable")
	default:
		return http.StatusInternalServerError, Error(fallback)
	}
}

// validationMessage отрезает от текста ошибки префиксы вида "pkg.Func: ".
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "+billing.ErrValidation.Error()); i >= 0 {
		return msg[i+2:]
	}
	for strings.Contains(msg, ": ") {
		head, tail, _ := strings.Cut(msg, ": ")
		if !strings.Contains(head, ".") || strings.Contains(head, " ") {
			break
		}
		msg = tail
	}
	return msg
}
