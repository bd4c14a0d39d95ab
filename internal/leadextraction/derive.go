package leadextraction

import (
	"github.com/leadkhata/leadkhata/internal/shared"
)

// Derive validates driver fields and computes leadWeight, leadPending and the
// completion percentage. Pure and idempotent.
func Derive(e Extraction) (Extraction, error) {
	if err := shared.RequireNonNegative("leadReceived", e.LeadReceived); err != nil {
		return Extraction{}, err
	}
	e.LeadReceived = shared.Round2(e.LeadReceived)

	// Received-only records track lead coming back against no particular
	// batch; the expectation-side fields stay zero.
	if e.IsLeadReceivedOnly {
		e.BatteryWeight = 0
		e.LeadPercentage = 0
		e.LeadWeight = 0
		e.LeadPending = 0
		e.Percentage = 0
		return e, nil
	}

	if err := shared.RequireNonNegative("batteryWeight", e.BatteryWeight); err != nil {
		return Extraction{}, err
	}
	if e.LeadPercentage <= 0 || e.LeadPercentage > 100 {
		e.LeadPercentage = DefaultLeadPercentage
	}

	e.BatteryWeight = shared.Round2(e.BatteryWeight)
	e.LeadWeight = shared.MulRound(e.BatteryWeight, e.LeadPercentage/100)
	e.LeadPending = shared.SumRound(e.LeadWeight, -e.LeadReceived)
	e.Percentage = shared.Percentage(e.LeadReceived, e.LeadWeight)
	return e, nil
}
