package leadextraction

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultLeadPercentage is assumed when the recovery rate is absent or outside
// (0, 100].
const DefaultLeadPercentage = 60.0

// Extraction is one lead-recovery record: a batch of scrap batteries handed to
// a smelter, the lead expected back at the agreed recovery rate, and what has
// actually come back so far.
type Extraction struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID         primitive.ObjectID `bson:"customerId,omitempty" json:"customerId,omitempty"`
	Date               time.Time          `bson:"date" json:"date"`
	Description        string             `bson:"description,omitempty" json:"description,omitempty"`
	BatteryWeight      float64            `bson:"batteryWeight" json:"batteryWeight"`
	LeadPercentage     float64            `bson:"leadPercentage" json:"leadPercentage"`
	LeadWeight         float64            `bson:"leadWeight" json:"leadWeight"`
	LeadReceived       float64            `bson:"leadReceived" json:"leadReceived"`
	LeadPending        float64            `bson:"leadPending" json:"leadPending"`
	Percentage         int                `bson:"percentage" json:"percentage"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsLeadReceivedOnly bool               `bson:"isLeadReceivedOnly" json:"isLeadReceivedOnly"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}

// Input carries the driver fields for creates and updates. Derived fields are
// always recomputed server-side.
type Input struct {
	CustomerID         primitive.ObjectID
	CustomerName       string
	Date               time.Time
	Description        string
	BatteryWeight      float64
	LeadPercentage     float64
	LeadReceived       float64
	Notes              string
	IsLeadReceivedOnly bool
}

// ListRequest filters extraction listings.
type ListRequest struct {
	CustomerID primitive.ObjectID
	Date       time.Time
	From       time.Time
	To         time.Time
	Query      string
}

// Summary aggregates a selected extraction set. AverageCompletion is the
// integer percentage of expected lead actually received, 0 when nothing was
// expected.
type Summary struct {
	TotalEntries       int     `json:"totalEntries"`
	TotalBatteryWeight float64 `json:"totalBatteryWeight"`
	TotalLeadWeight    float64 `json:"totalLeadWeight"`
	TotalLeadReceived  float64 `json:"totalLeadReceived"`
	TotalLeadPending   float64 `json:"totalLeadPending"`
	AverageCompletion  int     `json:"averageCompletion"`
}
