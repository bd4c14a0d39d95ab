package leadselling

import (
	"github.com/leadkhata/leadkhata/internal/shared"
)

// Derive validates driver fields and computes credit and the per-entry
// balance. Pure and idempotent.
func Derive(s Sale) (Sale, error) {
	if s.IsPaymentOnly {
		if err := shared.RequirePositive("debit", s.Debit); err != nil {
			return Sale{}, err
		}
		s.Weight = 0
		s.Rate = 0
		s.CommuteRent = 0
		s.Credit = 0
		s.Debit = shared.Round2(s.Debit)
		s.Balance = -s.Debit
		return s, nil
	}

	if err := shared.RequirePositive("weight", s.Weight); err != nil {
		return Sale{}, err
	}
	if err := shared.RequirePositive("rate", s.Rate); err != nil {
		return Sale{}, err
	}
	if err := shared.RequireNonNegative("commuteRent", s.CommuteRent); err != nil {
		return Sale{}, err
	}
	if err := shared.RequireNonNegative("debit", s.Debit); err != nil {
		return Sale{}, err
	}

	s.Weight = shared.Round2(s.Weight)
	s.CommuteRent = shared.Round2(s.CommuteRent)
	s.Debit = shared.Round2(s.Debit)
	s.Credit = shared.SumRound(shared.MulRound(s.Weight, s.Rate), s.CommuteRent)
	s.Balance = shared.SumRound(s.Credit, -s.Debit)
	return s, nil
}
