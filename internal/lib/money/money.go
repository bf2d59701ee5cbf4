// Package money переводит денежные суммы между основными единицами валюты
// (decimal) и минорными единицами (центы), в которых работает платёжный провайдер.
package money

import "github.com/shopspring/decimal"

const minorExponent = 2

// ToMinor переводит сумму в основных единицах в минорные с банковским
// округлением до целого.
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Shift(minorExponent).RoundBank(0).IntPart()
}

// FromMinor переводит сумму в минорных единицах в основные.
func FromMinor(amount int64) decimal.Decimal {
	return decimal.New(amount, -minorExponent)
}

// Divide делит value на arg и форматирует результат с двумя знаками после запятой.
// При делении на ноль возвращает "0.00".
func Divide(value, arg int64) string {
	if arg == 0 {
		return decimal.Zero.StringFixed(minorExponent)
	}
	return decimal.NewFromInt(value).
		DivRound(decimal.NewFromInt(arg), minorExponent).
		StringFixed(minorExponent)
}

// Format возвращает сумму в минорных единицах в виде строки "150.00".
func Format(amount int64) string {
	return FromMinor(amount).StringFixed(minorExponent)
}
