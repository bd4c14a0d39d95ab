package leadextraction

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/shared"
)

// CustomerDirectory resolves customer references. The customer link is
// optional on extractions; when present it must be well-formed.
type CustomerDirectory interface {
	EnsureExists(ctx context.Context, id primitive.ObjectID) error
	ResolveName(ctx context.Context, name string) (primitive.ObjectID, error)
	MatchIDs(ctx context.Context, query string) ([]string, error)
}

// Service handles lead-extraction business logic.
type Service struct {
	repo      RepositoryPort
	customers CustomerDirectory
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, customers CustomerDirectory) *Service {
	return &Service{repo: repo, customers: customers}
}

func (s *Service) resolveCustomer(ctx context.Context, input Input) (primitive.ObjectID, error) {
	if !input.CustomerID.IsZero() {
		if err := s.customers.EnsureExists(ctx, input.CustomerID); err != nil {
			return primitive.NilObjectID, err
		}
		return input.CustomerID, nil
	}
	if input.CustomerName != "" {
		return s.customers.ResolveName(ctx, input.CustomerName)
	}
	// The customer link is optional here, unlike ledger entries.
	return primitive.NilObjectID, nil
}

// Create derives and persists a new extraction record.
func (s *Service) Create(ctx context.Context, input Input) (*Extraction, error) {
	if input.Date.IsZero() {
		return nil, shared.Invalid("date", "required")
	}
	customerID, err := s.resolveCustomer(ctx, input)
	if err != nil {
		return nil, err
	}

	extraction, err := Derive(Extraction{
		CustomerID:         customerID,
		Date:               input.Date,
		Description:        input.Description,
		BatteryWeight:      input.BatteryWeight,
		LeadPercentage:     input.LeadPercentage,
		LeadReceived:       input.LeadReceived,
		Notes:              input.Notes,
		IsLeadReceivedOnly: input.IsLeadReceivedOnly,
	})
	if err != nil {
		return nil, err
	}
	extraction.CreatedAt = time.Now()
	return s.repo.Create(ctx, extraction)
}

// Update re-derives an extraction after a driver-field change.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, input Input) (*Extraction, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, shared.Invalid("date", "required")
	}
	customerID, err := s.resolveCustomer(ctx, input)
	if err != nil {
		return nil, err
	}
	if customerID.IsZero() {
		customerID = existing.CustomerID
	}

	next := *existing
	next.CustomerID = customerID
	next.Date = input.Date
	next.Description = input.Description
	next.BatteryWeight = input.BatteryWeight
	next.LeadPercentage = input.LeadPercentage
	next.LeadReceived = input.LeadReceived
	next.Notes = input.Notes
	next.IsLeadReceivedOnly = input.IsLeadReceivedOnly

	derived, err := Derive(next)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, derived)
}

// Delete removes an extraction record.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// Get returns one extraction as stored.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*Extraction, error) {
	return s.repo.FindByID(ctx, id)
}

// RecordReceived adds newly delivered lead to an extraction and re-derives the
// pending and completion figures.
func (s *Service) RecordReceived(ctx context.Context, id primitive.ObjectID, amount float64) (*Extraction, error) {
	if err := shared.RequirePositive("leadReceived", amount); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *existing
	next.LeadReceived = shared.SumRound(next.LeadReceived, amount)
	derived, err := Derive(next)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, derived)
}

// List returns extractions matching the request plus their summary.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Extraction, *Summary, error) {
	q := Query{CustomerID: req.CustomerID, From: req.From, To: req.To}
	if !req.Date.IsZero() {
		q.From, q.To = shared.DayWindow(req.Date)
	}
	if req.Query != "" {
		hexIDs, err := s.customers.MatchIDs(ctx, req.Query)
		if err != nil {
			return nil, nil, err
		}
		for _, hex := range hexIDs {
			if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
				q.CustomerIDs = append(q.CustomerIDs, oid)
			}
		}
		if len(q.CustomerIDs) == 0 {
			return nil, &Summary{}, nil
		}
	}

	extractions, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	return extractions, Summarize(extractions), nil
}

// Summary aggregates extractions in a date range.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	extractions, err := s.repo.Find(ctx, Query{From: from, To: to})
	if err != nil {
		return nil, err
	}
	return Summarize(extractions), nil
}

// Summarize folds an extraction set into its aggregate figures.
func Summarize(extractions []Extraction) *Summary {
	var battery, lead, received, pending []float64
	for _, e := range extractions {
		battery = append(battery, e.BatteryWeight)
		lead = append(lead, e.LeadWeight)
		received = append(received, e.LeadReceived)
		pending = append(pending, e.LeadPending)
	}
	totalLead := shared.SumRound(lead...)
	totalReceived := shared.SumRound(received...)
	return &Summary{
		TotalEntries:       len(extractions),
		TotalBatteryWeight: shared.SumRound(battery...),
		TotalLeadWeight:    totalLead,
		TotalLeadReceived:  totalReceived,
		TotalLeadPending:   shared.SumRound(pending...),
		AverageCompletion:  shared.Percentage(totalReceived, totalLead),
	}
}
