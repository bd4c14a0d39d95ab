package shared

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds to two decimal places, half away from zero at the cent level.
// All derived monetary fields pass through here so repeated derivation is
// byte-stable.
func Round2(x float64) float64 {
	v, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return v
}

// Percentage returns round(part/whole*100) as an integer, and 0 when the
// denominator is zero. Never NaN or Inf.
func Percentage(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	ratio := decimal.NewFromFloat(part).Div(decimal.NewFromFloat(whole)).Mul(decimal.NewFromInt(100))
	return int(ratio.Round(0).IntPart())
}

// MulRound returns round2(a*b) without intermediate float drift.
func MulRound(a, b float64) float64 {
	v, _ := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).Float64()
	return v
}

// SumRound adds a series of amounts in exact decimal space and rounds once.
func SumRound(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	v, _ := total.Round(2).Float64()
	return v
}

// RequirePositive validates a driver field that must be a finite number > 0.
func RequirePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(field, "must be a finite number")
	}
	if v <= 0 {
		return Invalid(field, "must be greater than zero")
	}
	return nil
}

// RequireNonNegative validates a driver field that must be a finite number >= 0.
func RequireNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(field, "must be a finite number")
	}
	if v < 0 {
		return Invalid(field, "must not be negative")
	}
	return nil
}
