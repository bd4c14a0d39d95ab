package ledger

import (
	"github.com/leadkhata/leadkhata/internal/shared"
)

// Derive validates driver fields and computes the dependent ones. Pure and
// idempotent: re-running it on an already-derived entry with unchanged inputs
// yields identical output.
func Derive(e Entry) (Entry, error) {
	if e.IsPaymentOnly {
		if err := shared.RequirePositive("debit", e.Debit); err != nil {
			return Entry{}, err
		}
		e.BatteryType = ""
		e.TotalWeight = 0
		e.RatePerKg = 0
		e.Credit = 0
		e.WeightLogs = nil
		e.Debit = shared.Round2(e.Debit)
		return e, nil
	}

	if e.BatteryType != BatteryTypeBattery && e.BatteryType != BatteryTypeGutka {
		return Entry{}, shared.Invalid("batteryType", `must be "battery" or "gutka"`)
	}
	// Once weight-log appends occur the logs are the source of totalWeight.
	if len(e.WeightLogs) > 0 {
		weights := make([]float64, len(e.WeightLogs))
		for i, l := range e.WeightLogs {
			if err := shared.RequireNonNegative("weightLogs.weight", l.Weight); err != nil {
				return Entry{}, err
			}
			weights[i] = l.Weight
		}
		e.TotalWeight = shared.SumRound(weights...)
	}
	if err := shared.RequirePositive("totalWeight", e.TotalWeight); err != nil {
		return Entry{}, err
	}
	if err := shared.RequirePositive("ratePerKg", e.RatePerKg); err != nil {
		return Entry{}, err
	}
	if err := shared.RequireNonNegative("debit", e.Debit); err != nil {
		return Entry{}, err
	}

	e.TotalWeight = shared.Round2(e.TotalWeight)
	e.Credit = shared.MulRound(e.TotalWeight, e.RatePerKg)
	e.Debit = shared.Round2(e.Debit)
	return e, nil
}
