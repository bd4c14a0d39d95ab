package leadselling

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

// Query narrows which sales Find returns. The date range is half-open
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

// RepositoryPort defines data access methods for lead sales.
type RepositoryPort interface {
	Create(ctx context.Context, s Sale) (*Sale, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Sale, error)
	Find(ctx context.Context, q Query) ([]Sale, error)
	Update(ctx context.Context, id primitive.ObjectID, s Sale) (*Sale, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewRepository builds the Mongo-backed sales repository.
func NewRepository(db *mongo.Database) RepositoryPort {
	return &mongoRepository{coll: db.Collection("lead_sales")}
}

func (r *mongoRepository) Create(ctx context.Context, s Sale) (*Sale, error) {
	res, err := r.coll.InsertOne(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("leadselling: insert: %w", err)
	}
	s.ID = res.InsertedID.(primitive.ObjectID)
	return &s, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Sale, error) {
	var s Sale
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("lead sale", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("leadselling: find: %w", err)
	}
	return &s, nil
}

func (r *mongoRepository) Find(ctx context.Context, q Query) ([]Sale, error) {
	sort := bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}}
	cursor, err := r.coll.Find(ctx, q.bson(), options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("leadselling: find: %w", err)
	}
	var out []Sale
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("leadselling: decode: %w", err)
	}
	return out, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, s Sale) (*Sale, error) {
	patch := bson.M{"$set": bson.M{
		"date":          s.Date,
		"commuteRent":   s.CommuteRent,
		"weight":        s.Weight,
		"rate":          s.Rate,
		"credit":        s.Credit,
		"debit":         s.Debit,
		"balance":       s.Balance,
		"notes":         s.Notes,
		"isPaymentOnly": s.IsPaymentOnly,
	}}
	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, patch,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var updated Sale
	err := res.Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("lead sale", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("leadselling: update: %w", err)
	}
	return &updated, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("leadselling: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.NotFound("lead sale", id.Hex())
	}
	return nil
}
