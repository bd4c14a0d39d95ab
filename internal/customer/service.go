package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/shared"
)

// Service handles customer business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a new customer. Names are unique case-insensitively.
func (s *Service) Create(ctx context.Context, input Input) (*Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, shared.Invalid("name", "required")
	}
	folded := shared.FoldName(name)
	if existing, err := s.repo.FindByFoldedName(ctx, folded); err == nil && existing != nil {
		return nil, shared.ErrDuplicateName
	}
	return s.repo.Create(ctx, Customer{
		Name:        name,
		NameFolded:  folded,
		Description: input.Description,
		Address:     input.Address,
		Phone:       input.Phone,
		CreatedAt:   time.Now(),
	})
}

// Get returns one customer by id.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*Customer, error) {
	return s.repo.FindByID(ctx, id)
}

// Update modifies a customer, re-checking name uniqueness when it changes.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, input Input) (*Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, shared.Invalid("name", "required")
	}
	folded := shared.FoldName(name)
	if existing, err := s.repo.FindByFoldedName(ctx, folded); err == nil && existing != nil && existing.ID != id {
		return nil, shared.ErrDuplicateName
	}
	return s.repo.Update(ctx, id, Customer{
		Name:        name,
		NameFolded:  folded,
		Description: input.Description,
		Address:     input.Address,
		Phone:       input.Phone,
	})
}

// Delete removes a customer. Entries referencing it keep the stale reference;
// there is deliberately no cascade.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// List returns all customers sorted by name.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.List(ctx)
}

// Search filters customers by case-insensitive substring. The full candidate
// set is loaded and filtered in memory, acceptable at this scale.
func (s *Service) Search(ctx context.Context, query string) (*SearchResult, error) {
	if len(strings.TrimSpace(query)) < shared.MinSearchLength {
		return nil, shared.Invalid("q", "query must be at least 2 characters")
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var hits []Customer
	for _, c := range all {
		if shared.MatchesQuery(c.Name, query) {
			hits = append(hits, c)
		}
	}
	return &SearchResult{Customers: hits, UniqueCustomers: len(hits)}, nil
}

// MatchIDs returns the hex ids of customers whose names match the query.
// Entry listings use this to filter by customer name.
func (s *Service) MatchIDs(ctx context.Context, query string) ([]string, error) {
	result, err := s.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(result.Customers))
	for _, c := range result.Customers {
		ids = append(ids, c.ID.Hex())
	}
	return ids, nil
}

// NameIndex maps customer hex id to display name for statement rendering.
// Callers substitute a placeholder label for ids missing from the index.
func (s *Service) NameIndex(ctx context.Context) (map[string]string, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(all))
	for _, c := range all {
		index[c.ID.Hex()] = c.Name
	}
	return index, nil
}

// FindOrCreate resolves a customer by name, creating it on first reference.
func (s *Service) FindOrCreate(ctx context.Context, name string) (*Customer, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, shared.Invalid("customerName", "required")
	}
	if existing, err := s.repo.FindByFoldedName(ctx, shared.FoldName(trimmed)); err == nil {
		return existing, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return s.Create(ctx, Input{Name: trimmed})
}

// ResolveName maps a customer name to its id, creating the customer on first
// reference.
func (s *Service) ResolveName(ctx context.Context, name string) (primitive.ObjectID, error) {
	c, err := s.FindOrCreate(ctx, name)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return c.ID, nil
}

// EnsureExists verifies a referenced customer id. A zero id is rejected, a
// well-formed id pointing at a deleted customer is allowed to stand (entries
// retain stale references by design).
func (s *Service) EnsureExists(ctx context.Context, id primitive.ObjectID) error {
	if id.IsZero() {
		return shared.Invalid("customerId", "required")
	}
	_, err := s.repo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}
