package auth

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/leadkhata/leadkhata/internal/shared"
)

// Repository defines admin account lookups.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Admin, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewRepository builds the Mongo-backed admin repository.
func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection("admins")}
}

func (r *mongoRepository) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	var admin Admin
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.NotFound("admin", username)
	}
	if err != nil {
		return nil, fmt.Errorf("auth: find admin: %w", err)
	}
	return &admin, nil
}
