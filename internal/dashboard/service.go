package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leadkhata/leadkhata/internal/leadextraction"
	"github.com/leadkhata/leadkhata/internal/leadselling"
	"github.com/leadkhata/leadkhata/internal/ledger"
)

// LedgerSource provides ledger aggregates.
type LedgerSource interface {
	Summary(ctx context.Context, from, to time.Time) (*ledger.Summary, error)
}

// ExtractionSource provides lead-extraction aggregates.
type ExtractionSource interface {
	Summary(ctx context.Context, from, to time.Time) (*leadextraction.Summary, error)
}

// SaleSource provides lead-selling aggregates.
type SaleSource interface {
	Summary(ctx context.Context, from, to time.Time) (*leadselling.Summary, error)
}

// Overview is the combined cross-entity summary behind the dashboard.
type Overview struct {
	Ledger      *ledger.Summary         `json:"ledger"`
	Extractions *leadextraction.Summary `json:"extractions"`
	Sales       *leadselling.Summary    `json:"sales"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// Service assembles the dashboard overview.
type Service struct {
	ledger      LedgerSource
	extractions ExtractionSource
	sales       SaleSource
	cache       *Cache
	logger      *slog.Logger
}

// NewService builds a Service instance.
func NewService(ledgerSrc LedgerSource, extractions ExtractionSource, sales SaleSource, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		ledger:      ledgerSrc,
		extractions: extractions,
		sales:       sales,
		cache:       cache,
		logger:      logger,
	}
}

// Overview returns the combined summary for the range, served from cache when
// fresh. The three entity summaries load concurrently.
func (s *Service) Overview(ctx context.Context, from, to time.Time) (*Overview, error) {
	key, err := s.cache.BuildKey(ctx, keyOverview(from, to)...)
	if err != nil {
		s.logger.Warn("dashboard cache key", slog.Any("error", err))
		return s.load(ctx, from, to)
	}

	var overview Overview
	err = s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (interface{}, error) {
		return s.load(ctx, from, to)
	})
	if err != nil {
		return nil, err
	}
	return &overview, nil
}

// Warm precomputes and caches the all-time overview. The nightly worker task
// calls this so the first morning request is served hot.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.Overview(ctx, time.Time{}, time.Time{})
	return err
}

// Invalidate drops all cached overviews.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) load(ctx context.Context, from, to time.Time) (*Overview, error) {
	overview := &Overview{GeneratedAt: time.Now()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.ledger.Summary(ctx, from, to)
		if err != nil {
			return err
		}
		overview.Ledger = summary
		return nil
	})
	g.Go(func() error {
		summary, err := s.extractions.Summary(ctx, from, to)
		if err != nil {
			return err
		}
		overview.Extractions = summary
		return nil
	})
	g.Go(func() error {
		summary, err := s.sales.Summary(ctx, from, to)
		if err != nil {
			return err
		}
		overview.Sales = summary
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}
