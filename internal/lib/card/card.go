// Package card выполняет локальную проверку данных банковской карты
// до обращения к платёжному провайдеру: контрольная сумма Луна, срок действия, CVC.
package card

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrInvalidNumber номер карты не проходит проверку контрольной суммы.
	ErrInvalidNumber = errors.New("the credit card you entered was invalid")
	// ErrExpired срок действия карты истёк или указан неверно.
	ErrExpired = errors.New("card expiration date is invalid")
	// ErrInvalidCVC код безопасности неверной длины.
	ErrInvalidCVC = errors.New("card security code is invalid")
)

var nonNumbers = regexp.MustCompile(`\D`)

// Details данные карты, введённые пользователем.
type Details struct {
	Number   string `json:"number"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	CVC      string `json:"cvc"`
}

// StripNonNumbers убирает из строки все нецифровые символы.
func StripNonNumbers(number string) string {
	return nonNumbers.ReplaceAllString(number, "")
}

// LuhnValid проверяет номер карты по алгоритму Луна (mod 10).
// Разделители вроде пробелов и дефисов игнорируются.
func LuhnValid(number string) bool {
	digits := StripNonNumbers(number)
	if digits == "" {
		return false
	}

	sum := 0
	parity := len(digits) & 1
	for i := 0; i < len(digits); i++ {
		digit := int(digits[i] - '0')
		if (i&1)^parity == 0 {
			digit *= 2
		}
		if digit > 9 {
			digit -= 9
		}
		sum += digit
	}
	return sum%10 == 0
}

// ValidateExpiry проверяет месяц и год окончания действия карты относительно now.
func ValidateExpiry(month, year int, now time.Time) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrExpired)
	}
	if year < now.Year() || year > 9999 {
		return fmt.Errorf("%w: year must be between %d and 9999", ErrExpired, now.Year())
	}
	if year == now.Year() && month < int(now.Month()) {
		return fmt.Errorf("%w: expiration month must be greater than or equal to %d for %d",
			ErrExpired, int(now.Month()), now.Year())
	}
	return nil
}

// ValidateCVC проверяет длину кода безопасности (от 3 до 5 символов).
func ValidateCVC(cvc string) error {
	if len(cvc) < 3 || len(cvc) > 5 {
		return ErrInvalidCVC
	}
	return nil
}

// Validate выполняет все локальные проверки карты.
func (d Details) Validate(now time.Time) error {
	if !LuhnValid(d.Number) {
		return ErrInvalidNumber
	}
	if err := ValidateExpiry(d.ExpMonth, d.ExpYear, now); err != nil {
		return err
	}
	return ValidateCVC(d.CVC)
}
