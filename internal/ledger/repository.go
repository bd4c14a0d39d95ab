package ledger

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

// Query narrows which entries Find returns. Zero values mean no constraint;
// the date range is half-open [From, To).
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

// RepositoryPort defines data access methods for ledger entries.
type RepositoryPort interface {
	Create(ctx context.Context, e Entry) (*Entry, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Entry, error)
	Find(ctx context.Context, q Query) ([]Entry, error)
	Update(ctx context.Context, id primitive.ObjectID, e Entry) (*Entry, error)
	SetBalance(ctx context.Context, id primitive.ObjectID, balance float64) error
	AppendWeightLog(ctx context.Context, id primitive.ObjectID, log WeightLog, totalWeight, credit float64) (*Entry, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewRepository builds the Mongo-backed ledger repository.
func NewRepository(db *mongo.Database) RepositoryPort {
	return &mongoRepository{coll: db.Collection("ledger_entries")}
}

func (r *mongoRepository) Create(ctx context.Context, e Entry) (*Entry, error) {
	res, err := r.coll.InsertOne(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("ledger: insert: %w", err)
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return &e, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Entry, error) {
	var e Entry
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("ledger entry", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: find: %w", err)
	}
	return &e, nil
}

func (r *mongoRepository) Find(ctx context.Context, q Query) ([]Entry, error) {
	filter := q.bson()
	// Ledger order: date ascending, creation time as tie-break.
	sort := bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("ledger: find: %w", err)
	}
	var out []Entry
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("ledger: decode: %w", err)
	}
	return out, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, e Entry) (*Entry, error) {
	patch := bson.M{"$set": bson.M{
		"date":          e.Date,
		"batteryType":   e.BatteryType,
		"totalWeight":   e.TotalWeight,
		"ratePerKg":     e.RatePerKg,
		"credit":        e.Credit,
		"debit":         e.Debit,
		"balance":       e.Balance,
		"notes":         e.Notes,
		"isPaymentOnly": e.IsPaymentOnly,
	}}
	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, patch,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var updated Entry
	err := res.Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("ledger entry", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: update: %w", err)
	}
	return &updated, nil
}

func (r *mongoRepository) SetBalance(ctx context.Context, id primitive.ObjectID, balance float64) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"balance": balance}})
	if err != nil {
		return fmt.Errorf("ledger: set balance: %w", err)
	}
	return nil
}

func (r *mongoRepository) AppendWeightLog(ctx context.Context, id primitive.ObjectID, log WeightLog, totalWeight, credit float64) (*Entry, error) {
	patch := bson.M{
		"$push": bson.M{"weightLogs": log},
		"$set":  bson.M{"totalWeight": totalWeight, "credit": credit},
	}
	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, patch,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var updated Entry
	err := res.Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("ledger entry", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: append weight: %w", err)
	}
	return &updated, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("ledger: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.NotFound("ledger entry", id.Hex())
	}
	return nil
}
