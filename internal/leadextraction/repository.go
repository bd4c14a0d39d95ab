package leadextraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/leadkhata/leadkhata/internal/shared"
)

// Query narrows which extractions Find returns. The date range is half-open
// [From, To).
type Query struct {
	CustomerID  primitive.ObjectID
	CustomerIDs []primitive.ObjectID
	From        time.Time
	To          time.Time
}

func (q Query) bson() bson.M {
	filter := bson.M{}
	if !q.CustomerID.IsZero() {
		filter["customerId"] = q.CustomerID
	}
	if len(q.CustomerIDs) > 0 {
		filter["customerId"] = bson.M{"$in": q.CustomerIDs}
	}
	dateCond := bson.M{}
	if !q.From.IsZero() {
		dateCond["$gte"] = q.From
	}
	if !q.To.IsZero() {
		dateCond["$lt"] = q.To
	}
	if len(dateCond) > 0 {
		filter["date"] = dateCond
	}
	return filter
}

// RepositoryPort defines data access methods for lead extractions.
type RepositoryPort interface {
	Create(ctx context.Context, e Extraction) (*Extraction, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Extraction, error)
	Find(ctx context.Context, q Query) ([]Extraction, error)
	Update(ctx context.Context, id primitive.ObjectID, e Extraction) (*Extraction, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewRepository builds the Mongo-backed extraction repository.
func NewRepository(db *mongo.Database) RepositoryPort {
	return &mongoRepository{coll: db.Collection("lead_extractions")}
}

func (r *mongoRepository) Create(ctx context.Context, e Extraction) (*Extraction, error) {
	res, err := r.coll.InsertOne(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("leadextraction: insert: %w", err)
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return &e, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Extraction, error) {
	var e Extraction
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("lead extraction", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("leadextraction: find: %w", err)
	}
	return &e, nil
}

func (r *mongoRepository) Find(ctx context.Context, q Query) ([]Extraction, error) {
	sort := bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}}
	cursor, err := r.coll.Find(ctx, q.bson(), options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("leadextraction: find: %w", err)
	}
	var out []Extraction
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("leadextraction: decode: %w", err)
	}
	return out, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, e Extraction) (*Extraction, error) {
	patch := bson.M{"$set": bson.M{
		"customerId":         e.CustomerID,
		"date":               e.Date,
		"description":        e.Description,
		"batteryWeight":      e.BatteryWeight,
		"leadPercentage":     e.LeadPercentage,
		"leadWeight":         e.LeadWeight,
		"leadReceived":       e.LeadReceived,
		"leadPending":        e.LeadPending,
		"percentage":         e.Percentage,
		"notes":              e.Notes,
		"isLeadReceivedOnly": e.IsLeadReceivedOnly,
	}}
	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, patch,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var updated Extraction
	err := res.Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("lead extraction", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("leadextraction: update: %w", err)
	}
	return &updated, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("leadextraction: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.NotFound("lead extraction", id.Hex())
	}
	return nil
}
