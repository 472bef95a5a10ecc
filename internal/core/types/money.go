package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a rupee amount with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// Use ParseMoney for values that arrive as text.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// ParseMoney creates a Money value from a string.
func ParseMoney(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Amount returns quantity × price per kilogram.
func Amount(q Quantity, pricePerKg Money) Money {
	return q.Decimal().Mul(pricePerKg)
}

// PricePerKg derives a unit price from a total, zero when q is zero.
func PricePerKg(total Money, q Quantity) Money {
	if q.IsZero() {
		return decimal.Zero
	}
	return total.Div(q.Decimal())
}

// FormatRupees renders an amount as "Rs. 6000.00".
func FormatRupees(m Money) string {
	return "Rs. " + m.StringFixed(2)
}
