package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata"
)

// StockService keeps the ordered security code list and the latest quotes.
type StockService struct {
	*codeBook
	provider marketdata.SecurityProvider
	guard    reloadGuard

	mu     sync.RWMutex
	quotes map[string]domain.SecurityQuote
}

func NewStockService(ctx context.Context, repo domain.CodeListRepository, provider marketdata.SecurityProvider, notifier Notifier) (*StockService, error) {
	book, err := newCodeBook(ctx, domain.ListKindStock, repo, notifier)
	if err != nil {
		return nil, err
	}
	return &StockService{
		codeBook: book,
		provider: provider,
		quotes:   make(map[string]domain.SecurityQuote),
	}, nil
}

func (s *StockService) SetCoalesce(coalesce bool) {
	s.guard.setCoalesce(coalesce)
}

func (s *StockService) Kind() domain.ListKind { return domain.ListKindStock }

func (s *StockService) Reloading() bool {
	return s.guard.fetching()
}

// Reload fetches one batch for the current codes and replaces the cache.
// It returns ErrReloadInProgress without fetching when a reload is running.
func (s *StockService) Reload(ctx context.Context) error {
	if !s.guard.begin() {
		slog.DebugContext(ctx, "Stock reload skipped, previous reload still running")
		return ErrReloadInProgress
	}
	for {
		s.reload(ctx)
		if !s.guard.end() {
			return nil
		}
	}
}

func (s *StockService) reload(ctx context.Context) {
	reloadID := uuid.NewString()
	defer s.notifier.DataChanged(domain.ListKindStock)

	codes, err := s.refresh(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read stock codes, using last known list", "reload_id", reloadID, "error", err)
	}

	if len(codes) == 0 {
		s.replace(nil)
		slog.DebugContext(ctx, "Stock list empty, cache cleared", "reload_id", reloadID)
		return
	}

	quotes := s.provider.FetchSecurities(ctx, codes)
	if len(quotes) == 0 {
		slog.WarnContext(ctx, "No stock quote fetched, keeping previous data", "reload_id", reloadID, "requested", len(codes))
		return
	}

	s.replace(quotes)
	slog.InfoContext(ctx, "Stocks reloaded", "reload_id", reloadID, "requested", len(codes), "fetched", len(quotes))
}

func (s *StockService) replace(quotes []domain.SecurityQuote) {
	next := make(map[string]domain.SecurityQuote, len(quotes))
	for _, q := range quotes {
		next[q.Code] = q
	}

	s.mu.Lock()
	s.quotes = next
	s.mu.Unlock()
}

func (s *StockService) Quote(code string) (domain.SecurityQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[code]
	return q, ok
}

// Rows projects the code list onto the cache with the percent change
// derived from price and previous close.
func (s *StockService) Rows() []domain.Row {
	codes := s.Codes()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return project(domain.ListKindStock, codes, s.quotes, func(q domain.SecurityQuote) domain.Row {
		return domain.Row{
			Code:    q.Code,
			Name:    q.Name,
			Price:   q.Price,
			Percent: q.PercentChange(),
			Kind:    domain.ListKindStock,
		}
	})
}

// MoveCodeUp swaps code with its predecessor.
func (s *StockService) MoveCodeUp(ctx context.Context, code string) error {
	return s.update(ctx, func(codes domain.CodeList) (domain.CodeList, error) {
		return codes.MoveUp(code)
	})
}

// MoveCodeDown swaps code with its successor.
func (s *StockService) MoveCodeDown(ctx context.Context, code string) error {
	return s.update(ctx, func(codes domain.CodeList) (domain.CodeList, error) {
		return codes.MoveDown(code)
	})
}
