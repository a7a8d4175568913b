package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata"
)

// FundService keeps the fund code list and the latest fund snapshots.
type FundService struct {
	*codeBook
	provider marketdata.FundProvider
	guard    reloadGuard

	mu     sync.RWMutex
	quotes map[string]domain.FundQuote
}

func NewFundService(ctx context.Context, repo domain.CodeListRepository, provider marketdata.FundProvider, notifier Notifier) (*FundService, error) {
	book, err := newCodeBook(ctx, domain.ListKindFund, repo, notifier)
	if err != nil {
		return nil, err
	}
	return &FundService{
		codeBook: book,
		provider: provider,
		quotes:   make(map[string]domain.FundQuote),
	}, nil
}

// SetCoalesce makes a reload requested during a fetch run once the fetch
// completes instead of being dropped.
func (s *FundService) SetCoalesce(coalesce bool) {
	s.guard.setCoalesce(coalesce)
}

func (s *FundService) Kind() domain.ListKind { return domain.ListKindFund }

// Reloading reports whether a fetch is in flight.
func (s *FundService) Reloading() bool {
	return s.guard.fetching()
}

// Reload fetches snapshots for the current fund codes and replaces the cache.
// It returns ErrReloadInProgress without fetching when a reload is running.
func (s *FundService) Reload(ctx context.Context) error {
	if !s.guard.begin() {
		slog.DebugContext(ctx, "Fund reload skipped, previous reload still running")
		return ErrReloadInProgress
	}
	for {
		s.reload(ctx)
		if !s.guard.end() {
			return nil
		}
	}
}

func (s *FundService) reload(ctx context.Context) {
	reloadID := uuid.NewString()
	defer s.notifier.DataChanged(domain.ListKindFund)

	codes, err := s.refresh(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read fund codes, using last known list", "reload_id", reloadID, "error", err)
	}

	if len(codes) == 0 {
		s.replace(nil)
		slog.DebugContext(ctx, "Fund list empty, cache cleared", "reload_id", reloadID)
		return
	}

	quotes := s.provider.FetchFunds(ctx, codes)
	if len(quotes) == 0 {
		slog.WarnContext(ctx, "No fund snapshot fetched, keeping previous data", "reload_id", reloadID, "requested", len(codes))
		return
	}

	s.replace(quotes)
	slog.InfoContext(ctx, "Funds reloaded", "reload_id", reloadID, "requested", len(codes), "fetched", len(quotes))
}

func (s *FundService) replace(quotes []domain.FundQuote) {
	next := make(map[string]domain.FundQuote, len(quotes))
	for _, q := range quotes {
		next[q.Code] = q
	}

	s.mu.Lock()
	s.quotes = next
	s.mu.Unlock()
}

// Quote returns the cached snapshot of code.
func (s *FundService) Quote(code string) (domain.FundQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[code]
	return q, ok
}

// Rows projects the code list onto the cache. Price is the estimated worth
// and percent the estimated change.
func (s *FundService) Rows() []domain.Row {
	codes := s.Codes()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return project(domain.ListKindFund, codes, s.quotes, func(q domain.FundQuote) domain.Row {
		return domain.Row{
			Code:    q.Code,
			Name:    q.Name,
			Price:   q.EstimatedWorth,
			Percent: q.EstimatedWorthPercent,
			Kind:    domain.ListKindFund,
		}
	})
}
