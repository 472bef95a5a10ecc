// Package types provides the numeric value types of the ledger.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is a mass in kilograms, fixed-point with 4 decimal places.
// Stored as a scaled integer so stock arithmetic never drifts.
type Quantity int64

// QuantityScale is the number of Quantity units in one kilogram.
const QuantityScale int64 = 10_000

// MaxKg is the largest mass, in kilograms, a single quantity may hold.
// Three outputs at this bound still sum well inside int64.
const MaxKg int64 = 1_000_000_000_000

// MaxQuantity is MaxKg in Quantity units.
const MaxQuantity = Quantity(MaxKg * QuantityScale)

// Kg converts a float kilogram amount to Quantity.
func Kg(v float64) Quantity {
	return Quantity(math.Round(v * float64(QuantityScale)))
}

// ParseQuantity parses a decimal string such as "1000" or "12.5".
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	return quantityFromDecimal(d)
}

func quantityFromDecimal(d decimal.Decimal) (Quantity, error) {
	if d.Abs().GreaterThan(decimal.NewFromInt(MaxKg)) {
		return 0, fmt.Errorf("quantity %s kg is out of range (max %d kg)", d.String(), MaxKg)
	}
	return Quantity(d.Shift(4).Round(0).IntPart()), nil
}

// InRange reports whether q is within ±MaxQuantity.
func (q Quantity) InRange() bool { return q >= -MaxQuantity && q <= MaxQuantity }

// Float64 returns the amount in kilograms.
func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

// Decimal returns the amount in kilograms as a decimal.
func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), -4) }

func (q Quantity) IsZero() bool     { return q == 0 }
func (q Quantity) IsPositive() bool { return q > 0 }
func (q Quantity) IsNegative() bool { return q < 0 }

// ClampZero returns q, or zero when q is negative.
func (q Quantity) ClampZero() Quantity {
	if q < 0 {
		return 0
	}
	return q
}

// String returns the shortest decimal form, e.g. "800" or "12.5".
func (q Quantity) String() string {
	return q.Decimal().String()
}

// Display renders the quantity for documents, e.g. "800 kg".
func (q Quantity) Display() string {
	return q.String() + " kg"
}

// MarshalJSON encodes Quantity as a JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
// Legacy collections sometimes stored form input verbatim as strings.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*q = 0
			return nil
		}
	}

	parsed, err := ParseQuantity(raw)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Sum adds quantities, saturating at the int64 bounds instead of wrapping.
func Sum(qs ...Quantity) Quantity {
	var total Quantity
	for _, q := range qs {
		switch {
		case q > 0 && total > Quantity(math.MaxInt64)-q:
			total = Quantity(math.MaxInt64)
		case q < 0 && total < Quantity(math.MinInt64)-q:
			total = Quantity(math.MinInt64)
		default:
			total += q
		}
	}
	return total
}

// SumDecimal adds quantities exactly, in kilograms.
func SumDecimal(qs ...Quantity) decimal.Decimal {
	total := decimal.Zero
	for _, q := range qs {
		total = total.Add(q.Decimal())
	}
	return total
}
