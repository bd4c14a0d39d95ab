package leadselling

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/shared"
)

// CustomerDirectory resolves buyer references.
type CustomerDirectory interface {
	EnsureExists(ctx context.Context, id primitive.ObjectID) error
	ResolveName(ctx context.Context, name string) (primitive.ObjectID, error)
	MatchIDs(ctx context.Context, query string) ([]string, error)
}

// Service handles lead-selling business logic.
type Service struct {
	repo      RepositoryPort
	customers CustomerDirectory
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, customers CustomerDirectory) *Service {
	return &Service{repo: repo, customers: customers}
}

// Create derives and persists a new sale.
func (s *Service) Create(ctx context.Context, input Input) (*Sale, error) {
	customerID := input.CustomerID
	if customerID.IsZero() {
		if input.CustomerName == "" {
			return nil, shared.Invalid("customerId", "required")
		}
		id, err := s.customers.ResolveName(ctx, input.CustomerName)
		if err != nil {
			return nil, err
		}
		customerID = id
	} else if err := s.customers.EnsureExists(ctx, customerID); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, shared.Invalid("date", "required")
	}

	sale, err := Derive(Sale{
		CustomerID:    customerID,
		Date:          input.Date,
		CommuteRent:   input.CommuteRent,
		Weight:        input.Weight,
		Rate:          input.Rate,
		Debit:         input.Debit,
		Notes:         input.Notes,
		IsPaymentOnly: input.IsPaymentOnly,
	})
	if err != nil {
		return nil, err
	}
	sale.CreatedAt = time.Now()
	return s.repo.Create(ctx, sale)
}

// Update re-derives a sale after a driver-field change.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, input Input) (*Sale, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, shared.Invalid("date", "required")
	}

	next := *existing
	next.Date = input.Date
	next.CommuteRent = input.CommuteRent
	next.Weight = input.Weight
	next.Rate = input.Rate
	next.Debit = input.Debit
	next.Notes = input.Notes
	next.IsPaymentOnly = input.IsPaymentOnly

	derived, err := Derive(next)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, derived)
}

// Delete removes a sale.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// Get returns one sale as stored.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*Sale, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns sales matching the request, in ledger order with running
// balances, plus their summary.
func (s *Service) List(ctx context.Context, req ListRequest) ([]StatementLine, *Summary, error) {
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

	sales, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	return replayLines(sales), summarize(sales), nil
}

// Statement returns a buyer's complete history with running balances.
func (s *Service) Statement(ctx context.Context, customerID primitive.ObjectID) (*Statement, error) {
	sales, err := s.repo.Find(ctx, Query{CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	lines := replayLines(sales)

	credits := make([]float64, len(sales))
	debits := make([]float64, len(sales))
	for i, sale := range sales {
		credits[i] = sale.Credit
		debits[i] = sale.Debit
	}
	balance := 0.0
	if len(lines) > 0 {
		balance = lines[len(lines)-1].RunningBalance
	}
	return &Statement{
		CustomerID:  customerID,
		Lines:       lines,
		TotalCredit: shared.SumRound(credits...),
		TotalDebit:  shared.SumRound(debits...),
		Balance:     balance,
	}, nil
}

// Summary aggregates sales in a date range.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	sales, err := s.repo.Find(ctx, Query{From: from, To: to})
	if err != nil {
		return nil, err
	}
	return summarize(sales), nil
}

func replayLines(sales []Sale) []StatementLine {
	balances, _ := shared.Replay(sales)
	lines := make([]StatementLine, len(sales))
	for i, sale := range sales {
		lines[i] = StatementLine{Sale: sale, RunningBalance: balances[i]}
	}
	return lines
}

func summarize(sales []Sale) *Summary {
	var weights, credits, debits []float64
	for _, sale := range sales {
		weights = append(weights, sale.Weight)
		credits = append(credits, sale.Credit)
		debits = append(debits, sale.Debit)
	}
	totalCredit := shared.SumRound(credits...)
	totalDebit := shared.SumRound(debits...)
	return &Summary{
		TotalEntries: len(sales),
		TotalWeight:  shared.SumRound(weights...),
		TotalCredit:  totalCredit,
		TotalDebit:   totalDebit,
		NetBalance:   shared.SumRound(totalCredit, -totalDebit),
	}
}
