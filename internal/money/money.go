package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// Epsilon absorbs rounding in every amount comparison.
var Epsilon = decimal.RequireFromString("0.01")

const Places = 2

func Parse(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.ContainsAny(trimmed, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.Exponent() < -Places {
		return decimal.Zero, ErrTooManyDecimals
	}
	return amount, nil
}

func ParsePositive(input string) (decimal.Decimal, error) {
	amount, err := Parse(input)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

func Format(value decimal.Decimal) string {
	return value.StringFixed(Places)
}

func Round(value decimal.Decimal) decimal.Decimal {
	return value.Round(Places)
}

// NonNegative clamps negative values to zero.
func NonNegative(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}

func Min(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal {
	return decimal.Min(first, rest...)
}

// Settled reports whether an outstanding amount is within rounding of zero.
func Settled(remaining decimal.Decimal) bool {
	return remaining.LessThanOrEqual(Epsilon)
}

func NearlyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Epsilon)
}

func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, value := range values {
		total = total.Add(value)
	}
	return total
}

// Amount is a decimal rendered in JSON as a bare number with two fraction
// digits, so equal values always serialize to the same bytes.
type Amount struct {
	decimal.Decimal
}

func A(value decimal.Decimal) Amount {
	return Amount{Decimal: value}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(Places)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}
