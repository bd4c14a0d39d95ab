package migration

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/leadextraction"
	"github.com/leadkhata/leadkhata/internal/leadselling"
	"github.com/leadkhata/leadkhata/internal/ledger"
	"github.com/leadkhata/leadkhata/internal/shared"
)

type memLedgerRepo struct {
	entries map[primitive.ObjectID]ledger.Entry
}

func (m *memLedgerRepo) Create(_ context.Context, e ledger.Entry) (*ledger.Entry, error) {
	e.ID = primitive.NewObjectID()
	m.entries[e.ID] = e
	return &e, nil
}

func (m *memLedgerRepo) FindByID(_ context.Context, id primitive.ObjectID) (*ledger.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, shared.NotFound("ledger entry", id.Hex())
	}
	return &e, nil
}

func (m *memLedgerRepo) Find(context.Context, ledger.Query) ([]ledger.Entry, error) {
	out := make([]ledger.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *memLedgerRepo) Update(_ context.Context, id primitive.ObjectID, e ledger.Entry) (*ledger.Entry, error) {
	e.ID = id
	m.entries[id] = e
	return &e, nil
}

func (m *memLedgerRepo) SetBalance(_ context.Context, id primitive.ObjectID, balance float64) error {
	e := m.entries[id]
	e.Balance = balance
	m.entries[id] = e
	return nil
}

func (m *memLedgerRepo) AppendWeightLog(_ context.Context, id primitive.ObjectID, log ledger.WeightLog, totalWeight, credit float64) (*ledger.Entry, error) {
	e := m.entries[id]
	e.WeightLogs = append(e.WeightLogs, log)
	e.TotalWeight = totalWeight
	e.Credit = credit
	m.entries[id] = e
	return &e, nil
}

func (m *memLedgerRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.entries, id)
	return nil
}

type memExtractionRepo struct {
	extractions map[primitive.ObjectID]leadextraction.Extraction
}

func (m *memExtractionRepo) Create(_ context.Context, e leadextraction.Extraction) (*leadextraction.Extraction, error) {
	e.ID = primitive.NewObjectID()
	m.extractions[e.ID] = e
	return &e, nil
}

func (m *memExtractionRepo) FindByID(_ context.Context, id primitive.ObjectID) (*leadextraction.Extraction, error) {
	e, ok := m.extractions[id]
	if !ok {
		return nil, shared.NotFound("lead extraction", id.Hex())
	}
	return &e, nil
}

func (m *memExtractionRepo) Find(context.Context, leadextraction.Query) ([]leadextraction.Extraction, error) {
	out := make([]leadextraction.Extraction, 0, len(m.extractions))
	for _, e := range m.extractions {
		out = append(out, e)
	}
	return out, nil
}

func (m *memExtractionRepo) Update(_ context.Context, id primitive.ObjectID, e leadextraction.Extraction) (*leadextraction.Extraction, error) {
	e.ID = id
	m.extractions[id] = e
	return &e, nil
}

func (m *memExtractionRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.extractions, id)
	return nil
}

type memSaleRepo struct {
	sales map[primitive.ObjectID]leadselling.Sale
}

func (m *memSaleRepo) Create(_ context.Context, s leadselling.Sale) (*leadselling.Sale, error) {
	s.ID = primitive.NewObjectID()
	m.sales[s.ID] = s
	return &s, nil
}

func (m *memSaleRepo) FindByID(_ context.Context, id primitive.ObjectID) (*leadselling.Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return nil, shared.NotFound("lead sale", id.Hex())
	}
	return &s, nil
}

func (m *memSaleRepo) Find(context.Context, leadselling.Query) ([]leadselling.Sale, error) {
	out := make([]leadselling.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSaleRepo) Update(_ context.Context, id primitive.ObjectID, s leadselling.Sale) (*leadselling.Sale, error) {
	s.ID = id
	m.sales[id] = s
	return &s, nil
}

func (m *memSaleRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.sales, id)
	return nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func newTestService(t *testing.T) (*Service, *memLedgerRepo, *memExtractionRepo, *memSaleRepo, *countingInvalidator) {
	t.Helper()
	ledgerRepo := &memLedgerRepo{entries: make(map[primitive.ObjectID]ledger.Entry)}
	extractionRepo := &memExtractionRepo{extractions: make(map[primitive.ObjectID]leadextraction.Extraction)}
	saleRepo := &memSaleRepo{sales: make(map[primitive.ObjectID]leadselling.Sale)}
	inv := &countingInvalidator{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(ledgerRepo, extractionRepo, saleRepo, inv, logger), ledgerRepo, extractionRepo, saleRepo, inv
}

func date(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestRunSkipsConsistentRecords(t *testing.T) {
	svc, ledgerRepo, _, saleRepo, inv := newTestService(t)
	ctx := context.Background()
	customerID := primitive.NewObjectID()

	_, err := ledgerRepo.Create(ctx, ledger.Entry{
		CustomerID: customerID, Date: date(1), BatteryType: ledger.BatteryTypeBattery,
		TotalWeight: 100, RatePerKg: 5, Credit: 500, Balance: 500, CreatedAt: date(1),
	})
	require.NoError(t, err)
	_, err = saleRepo.Create(ctx, leadselling.Sale{
		CustomerID: customerID, Date: date(1),
		Weight: 10, Rate: 100, Credit: 1000, Balance: 1000, CreatedAt: date(1),
	})
	require.NoError(t, err)

	result, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Zero(t, result.Updated)
	require.Equal(t, 2, result.Skipped)
	require.Empty(t, result.Errors)
	require.NotEmpty(t, result.RunID)
	require.Zero(t, inv.calls)
}

func TestRunFixesDriftedDerivedFields(t *testing.T) {
	svc, ledgerRepo, extractionRepo, saleRepo, inv := newTestService(t)
	ctx := context.Background()
	customerID := primitive.NewObjectID()

	// Legacy records with stale or missing derived values.
	entry, err := ledgerRepo.Create(ctx, ledger.Entry{
		CustomerID: customerID, Date: date(1), BatteryType: ledger.BatteryTypeBattery,
		TotalWeight: 100, RatePerKg: 5, Credit: 0, Balance: 0, CreatedAt: date(1),
	})
	require.NoError(t, err)
	extraction, err := extractionRepo.Create(ctx, leadextraction.Extraction{
		Date: date(1), BatteryWeight: 100, LeadPercentage: 60, LeadReceived: 45,
	})
	require.NoError(t, err)
	sale, err := saleRepo.Create(ctx, leadselling.Sale{
		CustomerID: customerID, Date: date(1), Weight: 10, Rate: 100, CommuteRent: 50,
	})
	require.NoError(t, err)

	result, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, result.Updated)
	require.Empty(t, result.Errors)
	require.Equal(t, 1, inv.calls)

	fixed, err := ledgerRepo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, 500.0, fixed.Credit)
	require.Equal(t, 500.0, fixed.Balance)

	fixedExtraction, err := extractionRepo.FindByID(ctx, extraction.ID)
	require.NoError(t, err)
	require.Equal(t, 60.0, fixedExtraction.LeadWeight)
	require.Equal(t, 15.0, fixedExtraction.LeadPending)
	require.Equal(t, 75, fixedExtraction.Percentage)

	fixedSale, err := saleRepo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Equal(t, 1050.0, fixedSale.Credit)
	require.Equal(t, 1050.0, fixedSale.Balance)
}

func TestRunIsIdempotent(t *testing.T) {
	svc, ledgerRepo, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := ledgerRepo.Create(ctx, ledger.Entry{
		CustomerID: primitive.NewObjectID(), Date: date(1),
		BatteryType: ledger.BatteryTypeBattery,
		TotalWeight: 100, RatePerKg: 5, CreatedAt: date(1),
	})
	require.NoError(t, err)

	first, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Updated)

	second, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Zero(t, second.Updated)
	require.Equal(t, 1, second.Skipped)
}

func TestRunCollectsPerRecordErrors(t *testing.T) {
	svc, ledgerRepo, _, _, _ := newTestService(t)
	ctx := context.Background()
	customerID := primitive.NewObjectID()

	// One unfixable record alongside a valid drifted one.
	_, err := ledgerRepo.Create(ctx, ledger.Entry{
		CustomerID: customerID, Date: date(1), BatteryType: "plastic",
		TotalWeight: 10, RatePerKg: 5, CreatedAt: date(1),
	})
	require.NoError(t, err)
	_, err = ledgerRepo.Create(ctx, ledger.Entry{
		CustomerID: customerID, Date: date(2), BatteryType: ledger.BatteryTypeBattery,
		TotalWeight: 10, RatePerKg: 5, CreatedAt: date(2),
	})
	require.NoError(t, err)

	result, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "batteryType")
	require.Equal(t, 1, result.Updated)
}
