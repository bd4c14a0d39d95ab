package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leadkhata/leadkhata/internal/leadextraction"
	"github.com/leadkhata/leadkhata/internal/leadselling"
	"github.com/leadkhata/leadkhata/internal/ledger"
	"github.com/leadkhata/leadkhata/internal/shared"
)

// Result reports one backfill run. Updated and Skipped together cover every
// record visited; Errors holds per-record failures that did not stop the run.
type Result struct {
	RunID      string    `json:"runId"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Errors     []string  `json:"errors"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Invalidator drops caches that became stale after a bulk rewrite.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service recomputes stored derived fields across all collections. Running it
// twice in a row leaves the second run with zero updates.
type Service struct {
	ledgerRepo     ledger.RepositoryPort
	extractionRepo leadextraction.RepositoryPort
	saleRepo       leadselling.RepositoryPort
	invalidator    Invalidator
	logger         *slog.Logger
}

// NewService builds a Service instance. The invalidator may be nil.
func NewService(
	ledgerRepo ledger.RepositoryPort,
	extractionRepo leadextraction.RepositoryPort,
	saleRepo leadselling.RepositoryPort,
	invalidator Invalidator,
	logger *slog.Logger,
) *Service {
	return &Service{
		ledgerRepo:     ledgerRepo,
		extractionRepo: extractionRepo,
		saleRepo:       saleRepo,
		invalidator:    invalidator,
		logger:         logger,
	}
}

// Run walks every record, re-derives its computed fields and rewrites only the
// ones that drifted. Individual failures are collected, never fatal.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Errors:    []string{},
	}
	s.logger.Info("migration backfill started", slog.String("run_id", result.RunID))

	s.backfillLedger(ctx, result)
	s.backfillExtractions(ctx, result)
	s.backfillSales(ctx, result)

	if s.invalidator != nil && result.Updated > 0 {
		if err := s.invalidator.Invalidate(ctx); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("cache invalidate: %v", err))
		}
	}

	result.FinishedAt = time.Now()
	s.logger.Info("migration backfill finished",
		slog.String("run_id", result.RunID),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *Service) backfillLedger(ctx context.Context, result *Result) {
	entries, err := s.ledgerRepo.Find(ctx, ledger.Query{})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("ledger: load: %v", err))
		return
	}

	// Re-derive first, then replay balances per customer over the corrected
	// figures so snapshots settle in one pass.
	stored := make(map[string]ledger.Entry, len(entries))
	failed := make(map[string]bool)
	for i, e := range entries {
		stored[e.ID.Hex()] = e
		derived, err := ledger.Derive(e)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ledger %s: %v", e.ID.Hex(), err))
			failed[e.ID.Hex()] = true
			continue
		}
		derived.ID = e.ID
		derived.CustomerID = e.CustomerID
		derived.CreatedAt = e.CreatedAt
		entries[i] = derived
	}

	byCustomer := make(map[string][]ledger.Entry)
	for _, e := range entries {
		key := e.CustomerID.Hex()
		byCustomer[key] = append(byCustomer[key], e)
	}

	for _, group := range byCustomer {
		balances, _ := shared.Replay(group)
		for i, derived := range group {
			if failed[derived.ID.Hex()] {
				continue
			}
			derived.Balance = balances[i]

			if ledgerConsistent(stored[derived.ID.Hex()], derived) {
				result.Skipped++
				continue
			}
			if _, err := s.ledgerRepo.Update(ctx, derived.ID, derived); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("ledger %s: %v", derived.ID.Hex(), err))
				continue
			}
			result.Updated++
		}
	}
}

func ledgerConsistent(stored, derived ledger.Entry) bool {
	return stored.TotalWeight == derived.TotalWeight &&
		stored.Credit == derived.Credit &&
		stored.Debit == derived.Debit &&
		stored.Balance == derived.Balance &&
		stored.BatteryType == derived.BatteryType
}

func (s *Service) backfillExtractions(ctx context.Context, result *Result) {
	extractions, err := s.extractionRepo.Find(ctx, leadextraction.Query{})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("leadextraction: load: %v", err))
		return
	}
	for _, e := range extractions {
		derived, err := leadextraction.Derive(e)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("leadextraction %s: %v", e.ID.Hex(), err))
			continue
		}
		if extractionConsistent(e, derived) {
			result.Skipped++
			continue
		}
		derived.ID = e.ID
		derived.CreatedAt = e.CreatedAt
		if _, err := s.extractionRepo.Update(ctx, e.ID, derived); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("leadextraction %s: %v", e.ID.Hex(), err))
			continue
		}
		result.Updated++
	}
}

func extractionConsistent(stored, derived leadextraction.Extraction) bool {
	return stored.LeadWeight == derived.LeadWeight &&
		stored.LeadPending == derived.LeadPending &&
		stored.Percentage == derived.Percentage &&
		stored.LeadPercentage == derived.LeadPercentage
}

func (s *Service) backfillSales(ctx context.Context, result *Result) {
	sales, err := s.saleRepo.Find(ctx, leadselling.Query{})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("leadselling: load: %v", err))
		return
	}
	for _, sale := range sales {
		derived, err := leadselling.Derive(sale)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("leadselling %s: %v", sale.ID.Hex(), err))
			continue
		}
		if saleConsistent(sale, derived) {
			result.Skipped++
			continue
		}
		derived.ID = sale.ID
		derived.CreatedAt = sale.CreatedAt
		if _, err := s.saleRepo.Update(ctx, sale.ID, derived); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("leadselling %s: %v", sale.ID.Hex(), err))
			continue
		}
		result.Updated++
	}
}

func saleConsistent(stored, derived leadselling.Sale) bool {
	return stored.Credit == derived.Credit && stored.Balance == derived.Balance
}
