package paymentprovider

import (
	"errors"
	"fmt"
)

// ErrNotFound ресурс у провайдера не найден. Для операций get-or-create
// это ожидаемое состояние, запускающее ветку создания.
var ErrNotFound = errors.New("paymentprovider: resource not found")

// CardError платёж отклонён: карта не прошла проверку у провайдера.
// Message предназначено для показа пользователю.
type CardError struct {
	Code        string
	DeclineCode string
	Message     string
}

func (e *CardError) Error() string {
	if e.DeclineCode != "" {
		return fmt.Sprintf("card error (%s/%s): %s", e.Code, e.DeclineCode, e.Message)
	}
	return fmt.Sprintf("card error (%s): %s", e.Code, e.Message)
}

// RequestError любая другая ошибка обращения к провайдеру: валидация на его
// стороне, 4xx/5xx, сетевые сбои.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("payment provider request failed (status %d, code %q): %s", e.StatusCode, e.Code, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsCardError сообщает, является ли err (или обёрнутая в нём ошибка) CardError.
func IsCardError(err error) bool {
	var cardErr *CardError
	return errors.As(err, &cardErr)
}
