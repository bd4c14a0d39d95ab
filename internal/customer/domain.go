package customer

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer model. Identity is the unique name, compared case-insensitively.
// Customers hold no back-references to their entries; the relation is resolved
// only by query from the entry side.
type Customer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameFolded  string             `bson:"nameFolded" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Input for creating or updating customers.
type Input struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

// SearchResult carries a name-search hit list with its aggregate summary.
type SearchResult struct {
	Customers       []Customer `json:"customers"`
	UniqueCustomers int        `json:"uniqueCustomers"`
}
