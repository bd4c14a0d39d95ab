package customer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/shared"
)

type memoryCustomerRepo struct {
	customers map[primitive.ObjectID]*Customer
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{customers: make(map[primitive.ObjectID]*Customer)}
}

func (r *memoryCustomerRepo) Create(ctx context.Context, c Customer) (*Customer, error) {
	c.ID = primitive.NewObjectID()
	r.customers[c.ID] = &c
	return &c, nil
}

func (r *memoryCustomerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, shared.NotFound("customer", id.Hex())
	}
	return c, nil
}

func (r *memoryCustomerRepo) FindByFoldedName(ctx context.Context, folded string) (*Customer, error) {
	for _, c := range r.customers {
		if c.NameFolded == folded {
			return c, nil
		}
	}
	return nil, shared.NotFound("customer", folded)
}

func (r *memoryCustomerRepo) List(ctx context.Context) ([]Customer, error) {
	var out []Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memoryCustomerRepo) Update(ctx context.Context, id primitive.ObjectID, c Customer) (*Customer, error) {
	existing, ok := r.customers[id]
	if !ok {
		return nil, shared.NotFound("customer", id.Hex())
	}
	existing.Name = c.Name
	existing.NameFolded = c.NameFolded
	existing.Description = c.Description
	existing.Address = c.Address
	existing.Phone = c.Phone
	return existing, nil
}

func (r *memoryCustomerRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.customers[id]; !ok {
		return shared.NotFound("customer", id.Hex())
	}
	delete(r.customers, id)
	return nil
}

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	c, err := svc.Create(ctx, Input{Name: "  Acme Traders ", Phone: "99887766"})
	require.NoError(t, err)
	require.Equal(t, "Acme Traders", c.Name)
	require.False(t, c.ID.IsZero())
	require.WithinDuration(t, time.Now(), c.CreatedAt, time.Minute)
}

func TestCreateCustomerRequiresName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	_, err := svc.Create(ctx, Input{Name: "   "})
	var validation *shared.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "name", validation.Field)
}

func TestCreateCustomerDuplicateNameCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	_, err := svc.Create(ctx, Input{Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{Name: "ACME"})
	require.ErrorIs(t, err, shared.ErrDuplicateName)
}

func TestUpdateCustomerKeepsOwnName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	c, err := svc.Create(ctx, Input{Name: "Acme"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, c.ID, Input{Name: "acme", Address: "Scrap yard road"})
	require.NoError(t, err)
	require.Equal(t, "acme", updated.Name)
	require.Equal(t, "Scrap yard road", updated.Address)
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	_, err := svc.Create(ctx, Input{Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "Mac Co"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "Bolt"})
	require.NoError(t, err)

	result, err := svc.Search(ctx, "ac")
	require.NoError(t, err)
	require.Len(t, result.Customers, 2)
	require.Equal(t, 2, result.UniqueCustomers)
}

func TestSearchRejectsShortQuery(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	_, err := svc.Search(ctx, "a")
	var validation *shared.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "q", validation.Field)
}

func TestFindOrCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	first, err := svc.FindOrCreate(ctx, "New Seller")
	require.NoError(t, err)

	again, err := svc.FindOrCreate(ctx, "new seller")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
}

func TestDeleteDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	c, err := svc.Create(ctx, Input{Name: "Gone Soon"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, c.ID))

	// A stale reference from an entry is still accepted by EnsureExists.
	require.NoError(t, svc.EnsureExists(ctx, c.ID))
	require.Error(t, svc.EnsureExists(ctx, primitive.NilObjectID))
}
