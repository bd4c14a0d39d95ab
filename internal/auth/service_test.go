package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/shared"
)

type memoryAdminRepo struct {
	admins map[string]*Admin
}

func (r *memoryAdminRepo) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	admin, ok := r.admins[username]
	if !ok {
		return nil, shared.NotFound("admin", username)
	}
	return admin, nil
}

func seedAdmin(t *testing.T, username, password string) *memoryAdminRepo {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &memoryAdminRepo{admins: map[string]*Admin{
		username: {ID: primitive.NewObjectID(), Username: username, PasswordHash: hash, CreatedAt: time.Now()},
	}}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := seedAdmin(t, "owner", "strong-password")
	svc := NewService(repo)

	admin, err := svc.Authenticate(ctx, "owner", "strong-password")
	require.NoError(t, err)
	require.Equal(t, "owner", admin.Username)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	ctx := context.Background()
	repo := seedAdmin(t, "owner", "strong-password")
	svc := NewService(repo)

	_, err := svc.Authenticate(ctx, "owner", "wrong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	ctx := context.Background()
	repo := seedAdmin(t, "owner", "strong-password")
	svc := NewService(repo)

	_, err := svc.Authenticate(ctx, "nobody", "strong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	admin := &Admin{ID: primitive.NewObjectID(), Username: "owner"}

	signed, err := tokens.Generate(admin)
	require.NoError(t, err)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "owner", claims.Username)
	require.Equal(t, admin.ID.Hex(), claims.AdminID)
}

func TestTokenRejectsTampering(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)
	admin := &Admin{ID: primitive.NewObjectID(), Username: "owner"}

	signed, err := other.Generate(admin)
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	require.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	tokens := NewTokenManager("test-secret", -time.Minute)
	admin := &Admin{ID: primitive.NewObjectID(), Username: "owner"}

	signed, err := tokens.Generate(admin)
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	require.Error(t, err)
}
