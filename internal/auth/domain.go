package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is the single operator account. The application has no tenant or role
// model; one admin owns all books.
type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

// CookieName is the HTTP-only cookie carrying the admin JWT.
const CookieName = "leadkhata_token"
