package leadselling

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sale is one lead-selling record: recovered lead sold on to a buyer, with the
// transport charge folded into the credit. Unlike ledger entries the per-entry
// balance here is fully determined by the entry itself.
type Sale struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID    primitive.ObjectID `bson:"customerId" json:"customerId"`
	Date          time.Time          `bson:"date" json:"date"`
	CommuteRent   float64            `bson:"commuteRent" json:"commuteRent"`
	Weight        float64            `bson:"weight" json:"weight"`
	Rate          float64            `bson:"rate" json:"rate"`
	Credit        float64            `bson:"credit" json:"credit"`
	Debit         float64            `bson:"debit" json:"debit"`
	Balance       float64            `bson:"balance" json:"balance"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsPaymentOnly bool               `bson:"isPaymentOnly" json:"isPaymentOnly"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// LineDate implements shared.LedgerLine.
func (s Sale) LineDate() time.Time { return s.Date }

// LineCreatedAt implements shared.LedgerLine.
func (s Sale) LineCreatedAt() time.Time { return s.CreatedAt }

// LineCredit implements shared.LedgerLine.
func (s Sale) LineCredit() float64 { return s.Credit }

// LineDebit implements shared.LedgerLine.
func (s Sale) LineDebit() float64 { return s.Debit }

// Input carries the driver fields for creates and updates.
type Input struct {
	CustomerID    primitive.ObjectID
	CustomerName  string
	Date          time.Time
	CommuteRent   float64
	Weight        float64
	Rate          float64
	Debit         float64
	Notes         string
	IsPaymentOnly bool
}

// ListRequest filters sale listings.
type ListRequest struct {
	CustomerID primitive.ObjectID
	Date       time.Time
	From       time.Time
	To         time.Time
	Query      string
}

// StatementLine pairs a sale with its replayed running balance.
type StatementLine struct {
	Sale           Sale    `json:"sale"`
	RunningBalance float64 `json:"runningBalance"`
}

// Statement is a buyer's chronological history with running balances.
type Statement struct {
	CustomerID  primitive.ObjectID `json:"customerId"`
	Lines       []StatementLine    `json:"lines"`
	TotalCredit float64            `json:"totalCredit"`
	TotalDebit  float64            `json:"totalDebit"`
	Balance     float64            `json:"balance"`
}

// Summary aggregates a selected sale set.
type Summary struct {
	TotalEntries int     `json:"totalEntries"`
	TotalWeight  float64 `json:"totalWeight"`
	TotalCredit  float64 `json:"totalCredit"`
	TotalDebit   float64 `json:"totalDebit"`
	NetBalance   float64 `json:"netBalance"`
}
