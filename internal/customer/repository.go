package customer

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/leadkhata/leadkhata/internal/shared"
)

// RepositoryPort defines data access methods for customers.
type RepositoryPort interface {
	Create(ctx context.Context, c Customer) (*Customer, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Customer, error)
	FindByFoldedName(ctx context.Context, folded string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Update(ctx context.Context, id primitive.ObjectID, c Customer) (*Customer, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewRepository builds the Mongo-backed customer repository.
func NewRepository(db *mongo.Database) RepositoryPort {
	return &mongoRepository{coll: db.Collection("customers")}
}

func (r *mongoRepository) Create(ctx context.Context, c Customer) (*Customer, error) {
	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("customer: insert: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return &c, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Customer, error) {
	var c Customer
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("customer", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("customer: find: %w", err)
	}
	return &c, nil
}

func (r *mongoRepository) FindByFoldedName(ctx context.Context, folded string) (*Customer, error) {
	var c Customer
	err := r.coll.FindOne(ctx, bson.M{"nameFolded": folded}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("customer", folded)
	}
	if err != nil {
		return nil, fmt.Errorf("customer: find by name: %w", err)
	}
	return &c, nil
}

func (r *mongoRepository) List(ctx context.Context) ([]Customer, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("customer: list: %w", err)
	}
	var out []Customer
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("customer: decode list: %w", err)
	}
	return out, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, c Customer) (*Customer, error) {
	patch := bson.M{"$set": bson.M{
		"name":        c.Name,
		"nameFolded":  c.NameFolded,
		"description": c.Description,
		"address":     c.Address,
		"phone":       c.Phone,
	}}
	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, patch,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var updated Customer
	err := res.Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("customer", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("customer: update: %w", err)
	}
	return &updated, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("customer: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.NotFound("customer", id.Hex())
	}
	return nil
}
