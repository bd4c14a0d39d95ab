package ledger

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/shared"
)

// CustomerDirectory resolves customer references for the ledger. Resolution
// happens here, at the boundary; the derivation core only ever sees a
// fully-resolved id.
type CustomerDirectory interface {
	EnsureExists(ctx context.Context, id primitive.ObjectID) error
	ResolveName(ctx context.Context, name string) (primitive.ObjectID, error)
	MatchIDs(ctx context.Context, query string) ([]string, error)
}

// Service handles ledger business logic.
type Service struct {
	repo      RepositoryPort
	customers CustomerDirectory
	logger    *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, customers CustomerDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, customers: customers, logger: logger}
}

// Create derives and persists a new entry. The stored balance is snapshotted
// from a replay of the customer's history including the new entry.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Entry, error) {
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

	entry, err := Derive(Entry{
		CustomerID:    customerID,
		Date:          input.Date,
		BatteryType:   input.BatteryType,
		TotalWeight:   input.TotalWeight,
		RatePerKg:     input.RatePerKg,
		Debit:         input.Debit,
		Notes:         input.Notes,
		IsPaymentOnly: input.IsPaymentOnly,
	})
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = time.Now()

	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.snapshotBalance(ctx, created)
	return created, nil
}

// Update re-derives an entry after a driver-field change.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*Entry, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, shared.Invalid("date", "required")
	}

	next := *existing
	next.Date = input.Date
	next.BatteryType = input.BatteryType
	next.TotalWeight = input.TotalWeight
	next.RatePerKg = input.RatePerKg
	next.Debit = input.Debit
	next.Notes = input.Notes
	next.IsPaymentOnly = input.IsPaymentOnly

	derived, err := Derive(next)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, derived)
	if err != nil {
		return nil, err
	}
	s.snapshotBalance(ctx, updated)
	return updated, nil
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// Get returns one entry as stored.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*Entry, error) {
	return s.repo.FindByID(ctx, id)
}

// AddWeightLog appends one weighing to an entry and recomputes totalWeight and
// credit from the full log set. The log list is append-only.
func (s *Service) AddWeightLog(ctx context.Context, id primitive.ObjectID, weight float64) (*Entry, error) {
	if err := shared.RequirePositive("weight", weight); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsPaymentOnly {
		return nil, shared.Invalid("weight", "payment-only entries carry no weight")
	}

	log := WeightLog{Weight: shared.Round2(weight), Time: time.Now()}
	next := *existing
	next.WeightLogs = append(next.WeightLogs, log)
	derived, err := Derive(next)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.AppendWeightLog(ctx, id, log, derived.TotalWeight, derived.Credit)
	if err != nil {
		return nil, err
	}
	s.snapshotBalance(ctx, updated)
	return updated, nil
}

// List returns entries matching the request, in ledger order, with running
// balances replayed over exactly the selected set.
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

	entries, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	lines := replayLines(entries)
	return lines, summarize(entries), nil
}

// Statement returns a customer's complete history with running balances.
func (s *Service) Statement(ctx context.Context, customerID primitive.ObjectID) (*Statement, error) {
	entries, err := s.repo.Find(ctx, Query{CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	lines := replayLines(entries)

	credits := make([]float64, len(entries))
	debits := make([]float64, len(entries))
	for i, e := range entries {
		credits[i] = e.Credit
		debits[i] = e.Debit
	}
	totalCredit := shared.SumRound(credits...)
	totalDebit := shared.SumRound(debits...)

	balance := 0.0
	if len(lines) > 0 {
		balance = lines[len(lines)-1].RunningBalance
	}
	return &Statement{
		CustomerID:  customerID,
		Lines:       lines,
		TotalCredit: totalCredit,
		TotalDebit:  totalDebit,
		Balance:     balance,
	}, nil
}

// Daily returns one day's entries with balances cumulative from the beginning
// of history. All records dated before the end of the day participate in the
// replay; the day view is a snapshot of the cumulative balance, not the day's
// net change.
func (s *Service) Daily(ctx context.Context, date time.Time) (*DailyView, error) {
	dayStart, dayEnd := shared.DayWindow(date)
	entries, err := s.repo.Find(ctx, Query{To: dayEnd})
	if err != nil {
		return nil, err
	}
	all := replayLines(entries)

	view := &DailyView{Date: dayStart}
	var dayCredits, dayDebits, dayWeights []float64
	for _, line := range all {
		if line.Entry.Date.Before(dayStart) {
			view.CloseOfDay = line.RunningBalance
			continue
		}
		view.Lines = append(view.Lines, line)
		view.CloseOfDay = line.RunningBalance
		dayCredits = append(dayCredits, line.Entry.Credit)
		dayDebits = append(dayDebits, line.Entry.Debit)
		dayWeights = append(dayWeights, line.Entry.TotalWeight)
	}
	view.Entries = len(view.Lines)
	view.DayCredit = shared.SumRound(dayCredits...)
	view.DayDebit = shared.SumRound(dayDebits...)
	view.DayWeight = shared.SumRound(dayWeights...)
	return view, nil
}

// Summary aggregates entries in a date range.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	entries, err := s.repo.Find(ctx, Query{From: from, To: to})
	if err != nil {
		return nil, err
	}
	return summarize(entries), nil
}

// StoredBalance returns the point-in-time snapshot persisted with the entry.
// It is a cache and may drift from the replayed figure.
func (s *Service) StoredBalance(ctx context.Context, id primitive.ObjectID) (float64, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return entry.Balance, nil
}

// ComputedRunningBalance replays the owning customer's history and returns the
// authoritative balance at this entry. Disagreement with the stored snapshot
// is logged as a consistency warning; the recomputed value always wins.
func (s *Service) ComputedRunningBalance(ctx context.Context, id primitive.ObjectID) (float64, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	entries, err := s.repo.Find(ctx, Query{CustomerID: entry.CustomerID})
	if err != nil {
		return 0, err
	}
	balances, _ := shared.Replay(entries)
	for i, e := range entries {
		if e.ID == id {
			if e.Balance != balances[i] {
				s.logger.Warn("stored balance drifted",
					slog.Any("warning", shared.ConsistencyWarning{
						Entity:   "ledger_entry",
						ID:       id.Hex(),
						Field:    "balance",
						Stored:   e.Balance,
						Computed: balances[i],
					}))
			}
			return balances[i], nil
		}
	}
	return 0, shared.NotFound("ledger entry", id.Hex())
}

// replayLines sorts entries into ledger order and pairs each with its running
// balance. A stale customer reference never fails the replay; placeholder
// labels are presentation's concern.
func replayLines(entries []Entry) []StatementLine {
	balances, _ := shared.Replay(entries)
	lines := make([]StatementLine, len(entries))
	for i, e := range entries {
		lines[i] = StatementLine{Entry: e, RunningBalance: balances[i]}
	}
	return lines
}

func summarize(entries []Entry) *Summary {
	var weights, credits, debits []float64
	for _, e := range entries {
		weights = append(weights, e.TotalWeight)
		credits = append(credits, e.Credit)
		debits = append(debits, e.Debit)
	}
	totalCredit := shared.SumRound(credits...)
	totalDebit := shared.SumRound(debits...)
	return &Summary{
		TotalEntries: len(entries),
		TotalWeight:  shared.SumRound(weights...),
		TotalCredit:  totalCredit,
		TotalDebit:   totalDebit,
		NetBalance:   shared.SumRound(totalCredit, -totalDebit),
	}
}

// snapshotBalance persists the replayed running balance as the entry's stored
// snapshot. Best effort: a failure here leaves a stale cache, which reads
// already tolerate.
func (s *Service) snapshotBalance(ctx context.Context, entry *Entry) {
	entries, err := s.repo.Find(ctx, Query{CustomerID: entry.CustomerID})
	if err != nil {
		s.logger.Warn("snapshot balance load", slog.Any("error", err))
		return
	}
	balances, _ := shared.Replay(entries)
	for i, e := range entries {
		if e.ID == entry.ID {
			entry.Balance = balances[i]
			if err := s.repo.SetBalance(ctx, entry.ID, balances[i]); err != nil {
				s.logger.Warn("snapshot balance save", slog.Any("error", err))
			}
			return
		}
	}
}
