package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/shared"
)

type memoryLedgerRepo struct {
	entries map[primitive.ObjectID]Entry
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{entries: make(map[primitive.ObjectID]Entry)}
}

func (m *memoryLedgerRepo) Create(_ context.Context, e Entry) (*Entry, error) {
	e.ID = primitive.NewObjectID()
	m.entries[e.ID] = e
	return &e, nil
}

func (m *memoryLedgerRepo) FindByID(_ context.Context, id primitive.ObjectID) (*Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, shared.NotFound("ledger entry", id.Hex())
	}
	return &e, nil
}

func (m *memoryLedgerRepo) Find(_ context.Context, q Query) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if !q.CustomerID.IsZero() && e.CustomerID != q.CustomerID {
			continue
		}
		if len(q.CustomerIDs) > 0 {
			matched := false
			for _, id := range q.CustomerIDs {
				if e.CustomerID == id {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if !q.From.IsZero() && e.Date.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !e.Date.Before(q.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryLedgerRepo) Update(_ context.Context, id primitive.ObjectID, e Entry) (*Entry, error) {
	existing, ok := m.entries[id]
	if !ok {
		return nil, shared.NotFound("ledger entry", id.Hex())
	}
	e.ID = id
	e.CustomerID = existing.CustomerID
	e.CreatedAt = existing.CreatedAt
	e.WeightLogs = existing.WeightLogs
	m.entries[id] = e
	return &e, nil
}

func (m *memoryLedgerRepo) SetBalance(_ context.Context, id primitive.ObjectID, balance float64) error {
	e, ok := m.entries[id]
	if !ok {
		return shared.NotFound("ledger entry", id.Hex())
	}
	e.Balance = balance
	m.entries[id] = e
	return nil
}

func (m *memoryLedgerRepo) AppendWeightLog(_ context.Context, id primitive.ObjectID, log WeightLog, totalWeight, credit float64) (*Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, shared.NotFound("ledger entry", id.Hex())
	}
	e.WeightLogs = append(e.WeightLogs, log)
	e.TotalWeight = totalWeight
	e.Credit = credit
	m.entries[id] = e
	return &e, nil
}

func (m *memoryLedgerRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.entries[id]; !ok {
		return shared.NotFound("ledger entry", id.Hex())
	}
	delete(m.entries, id)
	return nil
}

// fakeDirectory accepts any well-formed id and resolves names to stable ids.
type fakeDirectory struct {
	byName  map[string]primitive.ObjectID
	matches []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byName: make(map[string]primitive.ObjectID)}
}

func (f *fakeDirectory) EnsureExists(_ context.Context, id primitive.ObjectID) error {
	if id.IsZero() {
		return shared.Invalid("customerId", "required")
	}
	return nil
}

func (f *fakeDirectory) ResolveName(_ context.Context, name string) (primitive.ObjectID, error) {
	if id, ok := f.byName[name]; ok {
		return id, nil
	}
	id := primitive.NewObjectID()
	f.byName[name] = id
	return id, nil
}

func (f *fakeDirectory) MatchIDs(context.Context, string) ([]string, error) {
	return f.matches, nil
}

func newTestService(t *testing.T) (*Service, *memoryLedgerRepo, *fakeDirectory) {
	t.Helper()
	repo := newMemoryLedgerRepo()
	dir := newFakeDirectory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, dir, logger), repo, dir
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateDerivesCredit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Create(ctx, CreateInput{
		CustomerID:  primitive.NewObjectID(),
		Date:        day(1),
		BatteryType: BatteryTypeBattery,
		TotalWeight: 100,
		RatePerKg:   5,
	})
	require.NoError(t, err)
	require.Equal(t, 500.0, entry.Credit)
	require.Equal(t, 500.0, entry.Balance)
	require.False(t, entry.CreatedAt.IsZero())
}

func TestCreateRoundsHalfAwayFromZero(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.Create(context.Background(), CreateInput{
		CustomerID:  primitive.NewObjectID(),
		Date:        day(1),
		BatteryType: BatteryTypeGutka,
		TotalWeight: 3,
		RatePerKg:   10.555,
	})
	require.NoError(t, err)
	require.Equal(t, 31.67, entry.Credit)
}

func TestCreateResolvesCustomerName(t *testing.T) {
	svc, _, dir := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{
		CustomerName: "Acme Traders",
		Date:         day(1),
		BatteryType:  BatteryTypeBattery,
		TotalWeight:  10,
		RatePerKg:    50,
	})
	require.NoError(t, err)
	require.Equal(t, dir.byName["Acme Traders"], first.CustomerID)

	second, err := svc.Create(ctx, CreateInput{
		CustomerName: "Acme Traders",
		Date:         day(2),
		BatteryType:  BatteryTypeBattery,
		TotalWeight:  10,
		RatePerKg:    50,
	})
	require.NoError(t, err)
	require.Equal(t, first.CustomerID, second.CustomerID)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	customerID := primitive.NewObjectID()

	cases := []struct {
		name  string
		input CreateInput
		field string
	}{
		{
			name:  "missing customer reference",
			input: CreateInput{Date: day(1), BatteryType: BatteryTypeBattery, TotalWeight: 1, RatePerKg: 1},
			field: "customerId",
		},
		{
			name:  "missing date",
			input: CreateInput{CustomerID: customerID, BatteryType: BatteryTypeBattery, TotalWeight: 1, RatePerKg: 1},
			field: "date",
		},
		{
			name:  "bad battery type",
			input: CreateInput{CustomerID: customerID, Date: day(1), BatteryType: "plastic", TotalWeight: 1, RatePerKg: 1},
			field: "batteryType",
		},
		{
			name:  "zero weight",
			input: CreateInput{CustomerID: customerID, Date: day(1), BatteryType: BatteryTypeBattery, TotalWeight: 0, RatePerKg: 1},
			field: "totalWeight",
		},
		{
			name:  "negative rate",
			input: CreateInput{CustomerID: customerID, Date: day(1), BatteryType: BatteryTypeBattery, TotalWeight: 1, RatePerKg: -2},
			field: "ratePerKg",
		},
		{
			name:  "payment only without debit",
			input: CreateInput{CustomerID: customerID, Date: day(1), IsPaymentOnly: true},
			field: "debit",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			var verr *shared.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCreatePaymentOnlyClearsIntakeFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.Create(context.Background(), CreateInput{
		CustomerID:    primitive.NewObjectID(),
		Date:          day(1),
		BatteryType:   BatteryTypeBattery,
		TotalWeight:   50,
		RatePerKg:     10,
		Debit:         200,
		IsPaymentOnly: true,
	})
	require.NoError(t, err)
	require.Empty(t, entry.BatteryType)
	require.Zero(t, entry.TotalWeight)
	require.Zero(t, entry.Credit)
	require.Equal(t, 200.0, entry.Debit)
	require.Equal(t, -200.0, entry.Balance)
}

func TestStatementRunningBalances(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	customerID := primitive.NewObjectID()

	_, err := svc.Create(ctx, CreateInput{
		CustomerID: customerID, Date: day(1),
		BatteryType: BatteryTypeBattery, TotalWeight: 100, RatePerKg: 5,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{
		CustomerID: customerID, Date: day(2), Debit: 200, IsPaymentOnly: true,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{
		CustomerID: customerID, Date: day(3),
		BatteryType: BatteryTypeBattery, TotalWeight: 60, RatePerKg: 5,
	})
	require.NoError(t, err)

	statement, err := svc.Statement(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, statement.Lines, 3)

	balances := make([]float64, len(statement.Lines))
	for i, line := range statement.Lines {
		balances[i] = line.RunningBalance
	}
	require.Equal(t, []float64{500, 300, 600}, balances)
	require.Equal(t, 800.0, statement.TotalCredit)
	require.Equal(t, 200.0, statement.TotalDebit)
	require.Equal(t, 600.0, statement.Balance)
}

func TestStatementOrdersSameDayByCreation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	customerID := primitive.NewObjectID()

	// Inserted out of order on purpose; createdAt breaks the tie.
	later, err := repo.Create(ctx, Entry{
		CustomerID: customerID, Date: day(1), Credit: 100,
		CreatedAt: time.Date(2024, time.March, 1, 15, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	earlier, err := repo.Create(ctx, Entry{
		CustomerID: customerID, Date: day(1), Credit: 50,
		CreatedAt: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	statement, err := svc.Statement(ctx, customerID)
	require.NoError(t, err)
	require.Equal(t, earlier.ID, statement.Lines[0].Entry.ID)
	require.Equal(t, later.ID, statement.Lines[1].Entry.ID)
	require.Equal(t, 50.0, statement.Lines[0].RunningBalance)
	require.Equal(t, 150.0, statement.Lines[1].RunningBalance)
}

func TestAddWeightLogRecomputesTotals(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Create(ctx, CreateInput{
		CustomerID:  primitive.NewObjectID(),
		Date:        day(1),
		BatteryType: BatteryTypeBattery,
		TotalWeight: 40,
		RatePerKg:   10,
	})
	require.NoError(t, err)

	updated, err := svc.AddWeightLog(ctx, entry.ID, 12.5)
	require.NoError(t, err)
	// First append seeds the log list, so the logged weight replaces the
	// manually entered total.
	require.Len(t, updated.WeightLogs, 1)
	require.Equal(t, 12.5, updated.TotalWeight)
	require.Equal(t, 125.0, updated.Credit)

	updated, err = svc.AddWeightLog(ctx, entry.ID, 7.5)
	require.NoError(t, err)
	require.Len(t, updated.WeightLogs, 2)
	require.Equal(t, 20.0, updated.TotalWeight)
	require.Equal(t, 200.0, updated.Credit)
}

func TestAddWeightLogRejectsPaymentOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Create(ctx, CreateInput{
		CustomerID: primitive.NewObjectID(), Date: day(1),
		Debit: 100, IsPaymentOnly: true,
	})
	require.NoError(t, err)

	_, err = svc.AddWeightLog(ctx, entry.ID, 5)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "weight", verr.Field)
}

func TestUpdateRederivesCredit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Create(ctx, CreateInput{
		CustomerID:  primitive.NewObjectID(),
		Date:        day(1),
		BatteryType: BatteryTypeBattery,
		TotalWeight: 10,
		RatePerKg:   50,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, entry.ID, UpdateInput{
		Date:        day(1),
		BatteryType: BatteryTypeGutka,
		TotalWeight: 20,
		RatePerKg:   55,
	})
	require.NoError(t, err)
	require.Equal(t, 1100.0, updated.Credit)
	require.Equal(t, BatteryTypeGutka, updated.BatteryType)
}

func TestDailyViewCarriesCumulativeBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	customerID := primitive.NewObjectID()

	_, err := svc.Create(ctx, CreateInput{
		CustomerID: customerID, Date: day(1),
		BatteryType: BatteryTypeBattery, TotalWeight: 100, RatePerKg: 10,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{
		CustomerID: customerID, Date: day(5),
		BatteryType: BatteryTypeBattery, TotalWeight: 50, RatePerKg: 10,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{
		CustomerID: customerID, Date: day(9),
		BatteryType: BatteryTypeBattery, TotalWeight: 30, RatePerKg: 10,
	})
	require.NoError(t, err)

	view, err := svc.Daily(ctx, day(5))
	require.NoError(t, err)
	require.Equal(t, 1, view.Entries)
	require.Equal(t, 500.0, view.DayCredit)
	require.Equal(t, 50.0, view.DayWeight)
	// Balance is cumulative from the start of history, not reset at midnight.
	require.Equal(t, 1500.0, view.CloseOfDay)
	require.Equal(t, 1500.0, view.Lines[0].RunningBalance)
}

func TestDailyViewEmptyDayKeepsPriorBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		CustomerID: primitive.NewObjectID(), Date: day(1),
		BatteryType: BatteryTypeBattery, TotalWeight: 10, RatePerKg: 10,
	})
	require.NoError(t, err)

	view, err := svc.Daily(ctx, day(3))
	require.NoError(t, err)
	require.Zero(t, view.Entries)
	require.Zero(t, view.DayCredit)
	require.Equal(t, 100.0, view.CloseOfDay)
}

func TestListByDateWindow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	customerID := primitive.NewObjectID()

	for d := 1; d <= 3; d++ {
		_, err := svc.Create(ctx, CreateInput{
			CustomerID: customerID, Date: day(d),
			BatteryType: BatteryTypeBattery, TotalWeight: 10, RatePerKg: 10,
		})
		require.NoError(t, err)
	}

	lines, summary, err := svc.List(ctx, ListRequest{Date: day(2)})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, 1, summary.TotalEntries)
	require.Equal(t, 100.0, summary.TotalCredit)
}

func TestListByNameQueryNoMatches(t *testing.T) {
	svc, _, dir := newTestService(t)
	ctx := context.Background()
	dir.matches = nil

	_, err := svc.Create(ctx, CreateInput{
		CustomerID: primitive.NewObjectID(), Date: day(1),
		BatteryType: BatteryTypeBattery, TotalWeight: 10, RatePerKg: 10,
	})
	require.NoError(t, err)

	lines, summary, err := svc.List(ctx, ListRequest{Query: "nobody"})
	require.NoError(t, err)
	require.Empty(t, lines)
	require.Zero(t, summary.TotalEntries)
}

func TestListByNameQueryFilters(t *testing.T) {
	svc, _, dir := newTestService(t)
	ctx := context.Background()
	wanted := primitive.NewObjectID()
	other := primitive.NewObjectID()
	dir.matches = []string{wanted.Hex()}

	_, err := svc.Create(ctx, CreateInput{
		CustomerID: wanted, Date: day(1),
		BatteryType: BatteryTypeBattery, TotalWeight: 10, RatePerKg: 10,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{
		CustomerID: other, Date: day(1),
		BatteryType: BatteryTypeBattery, TotalWeight: 99, RatePerKg: 10,
	})
	require.NoError(t, err)

	lines, _, err := svc.List(ctx, ListRequest{Query: "acme"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, wanted, lines[0].Entry.CustomerID)
}

func TestComputedBalanceWinsOverStoredDrift(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Create(ctx, CreateInput{
		CustomerID:  primitive.NewObjectID(),
		Date:        day(1),
		BatteryType: BatteryTypeBattery,
		TotalWeight: 10,
		RatePerKg:   10,
	})
	require.NoError(t, err)

	// Simulate snapshot drift from an out-of-band edit.
	require.NoError(t, repo.SetBalance(ctx, entry.ID, 9999))

	stored, err := svc.StoredBalance(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, 9999.0, stored)

	computed, err := svc.ComputedRunningBalance(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, 100.0, computed)
}

func TestDeleteRemovesEntry(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Create(ctx, CreateInput{
		CustomerID: primitive.NewObjectID(), Date: day(1),
		BatteryType: BatteryTypeBattery, TotalWeight: 10, RatePerKg: 10,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	_, err = svc.Get(ctx, entry.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
