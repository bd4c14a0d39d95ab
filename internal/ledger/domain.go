package ledger

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BatteryType enumerates scrap intake categories.
type BatteryType string

const (
	BatteryTypeBattery BatteryType = "battery"
	BatteryTypeGutka   BatteryType = "gutka"
)

// WeightLog is one append-only weighing against an entry, timestamped at
// insertion.
type WeightLog struct {
	Weight float64   `bson:"weight" json:"weight"`
	Time   time.Time `bson:"time" json:"time"`
}

// Entry is one daily ledger record for a customer. The stored Balance is a
// point-in-time snapshot, not a source of truth: the authoritative figure is
// recomputed on every read and the stored value may drift between writes.
type Entry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID    primitive.ObjectID `bson:"customerId" json:"customerId"`
	Date          time.Time          `bson:"date" json:"date"`
	BatteryType   BatteryType        `bson:"batteryType,omitempty" json:"batteryType,omitempty"`
	TotalWeight   float64            `bson:"totalWeight" json:"totalWeight"`
	RatePerKg     float64            `bson:"ratePerKg" json:"ratePerKg"`
	Credit        float64            `bson:"credit" json:"credit"`
	Debit         float64            `bson:"debit" json:"debit"`
	Balance       float64            `bson:"balance" json:"balance"`
	WeightLogs    []WeightLog        `bson:"weightLogs,omitempty" json:"weightLogs,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsPaymentOnly bool               `bson:"isPaymentOnly" json:"isPaymentOnly"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// LineDate implements shared.LedgerLine.
func (e Entry) LineDate() time.Time { return e.Date }

// LineCreatedAt implements shared.LedgerLine.
func (e Entry) LineCreatedAt() time.Time { return e.CreatedAt }

// LineCredit implements shared.LedgerLine.
func (e Entry) LineCredit() float64 { return e.Credit }

// LineDebit implements shared.LedgerLine.
func (e Entry) LineDebit() float64 { return e.Debit }

// CreateInput for new ledger entries. The customer reference arrives fully
// resolved or as a name to resolve-or-create; exactly one must be set.
type CreateInput struct {
	CustomerID    primitive.ObjectID
	CustomerName  string
	Date          time.Time
	BatteryType   BatteryType
	TotalWeight   float64
	RatePerKg     float64
	Debit         float64
	Notes         string
	IsPaymentOnly bool
}

// UpdateInput for editing entries. Derived fields are recomputed whenever a
// driver field changes.
type UpdateInput struct {
	Date          time.Time
	BatteryType   BatteryType
	TotalWeight   float64
	RatePerKg     float64
	Debit         float64
	Notes         string
	IsPaymentOnly bool
}

// ListRequest filters entry listings.
type ListRequest struct {
	CustomerID primitive.ObjectID
	Date       time.Time // single-day window
	From       time.Time
	To         time.Time
	Query      string // customer-name substring
}

// StatementLine pairs an entry with its replayed running balance.
type StatementLine struct {
	Entry          Entry   `json:"entry"`
	RunningBalance float64 `json:"runningBalance"`
}

// Statement is a customer's chronological history with running balances.
type Statement struct {
	CustomerID  primitive.ObjectID `json:"customerId"`
	Lines       []StatementLine    `json:"lines"`
	TotalCredit float64            `json:"totalCredit"`
	TotalDebit  float64            `json:"totalDebit"`
	Balance     float64            `json:"balance"`
}

// DailyView is one day's slice of the ledger with cumulative balances carried
// from the beginning of history, not reset at midnight.
type DailyView struct {
	Date       time.Time       `json:"date"`
	Lines      []StatementLine `json:"lines"`
	DayCredit  float64         `json:"dayCredit"`
	DayDebit   float64         `json:"dayDebit"`
	DayWeight  float64         `json:"dayWeight"`
	CloseOfDay float64         `json:"closeOfDay"`
	Entries    int             `json:"entries"`
}

// Summary aggregates a selected entry set. Recomputed fresh per call.
type Summary struct {
	TotalEntries int     `json:"totalEntries"`
	TotalWeight  float64 `json:"totalWeight"`
	TotalCredit  float64 `json:"totalCredit"`
	TotalDebit   float64 `json:"totalDebit"`
	NetBalance   float64 `json:"netBalance"`
}
