package shared

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerLine is implemented by any record that participates in running-balance
// replay: ledger entries, lead sales, and their payment-only variants.
type LedgerLine interface {
	LineDate() time.Time
	LineCreatedAt() time.Time
	LineCredit() float64
	LineDebit() float64
}

// SortLines orders records in ledger order: date ascending, then creation time
// ascending. Two entries on the same date replay in the order they were
// recorded; the stable sort preserves insertion order on full timestamp ties.
func SortLines[T LedgerLine](records []T) {
	sort.SliceStable(records, func(i, j int) bool {
		di, dj := records[i].LineDate(), records[j].LineDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return records[i].LineCreatedAt().Before(records[j].LineCreatedAt())
	})
}

// Replay sorts records into ledger order in place and returns the running
// balance after each record, plus the final total. The accumulation happens in
// exact decimal space, so the last balance equals round2(Σcredit − Σdebit)
// regardless of sequence length.
func Replay[T LedgerLine](records []T) ([]float64, float64) {
	SortLines(records)
	running := decimal.Zero
	balances := make([]float64, len(records))
	for i, rec := range records {
		running = running.
			Add(decimal.NewFromFloat(rec.LineCredit())).
			Sub(decimal.NewFromFloat(rec.LineDebit()))
		balances[i], _ = running.Round(2).Float64()
	}
	final, _ := running.Round(2).Float64()
	return balances, final
}
