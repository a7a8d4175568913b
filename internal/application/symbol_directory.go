package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata"
)

// CustomCodeName labels the suggestion echoing a query no entry starts with.
const CustomCodeName = "自定义代码"

// SymbolDirectory lazily downloads the symbol list once per process.
// A failed download is not cached, the next lookup retries.
type SymbolDirectory struct {
	provider marketdata.SymbolProvider

	mu      sync.Mutex
	loaded  bool
	symbols []domain.SymbolSuggestion
}

func NewSymbolDirectory(provider marketdata.SymbolProvider) *SymbolDirectory {
	return &SymbolDirectory{provider: provider}
}

// List returns the directory, fetching it on first use.
func (d *SymbolDirectory) List(ctx context.Context) []domain.SymbolSuggestion {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded {
		symbols, err := d.provider.FetchSymbols(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load symbol directory", "error", err)
			return []domain.SymbolSuggestion{}
		}
		d.symbols = symbols
		d.loaded = true
		slog.InfoContext(ctx, "Symbol directory loaded", "count", len(symbols))
	}

	out := make([]domain.SymbolSuggestion, len(d.symbols))
	copy(out, d.symbols)
	return out
}

// Search matches query case-insensitively against "code | name" labels.
// Unless some label starts with "<query> |", the query itself is offered
// first as a custom code. An empty query returns the whole list.
func (d *SymbolDirectory) Search(ctx context.Context, query string) []domain.SymbolSuggestion {
	symbols := d.List(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		return symbols
	}

	needle := strings.ToLower(query)
	exactPrefix := needle + " |"

	matches := make([]domain.SymbolSuggestion, 0)
	exact := false
	for _, s := range symbols {
		label := strings.ToLower(s.Label())
		if !strings.Contains(label, needle) {
			continue
		}
		if strings.HasPrefix(label, exactPrefix) {
			exact = true
		}
		matches = append(matches, s)
	}

	if exact {
		return matches
	}
	custom := domain.SymbolSuggestion{Code: query, Name: CustomCodeName, Custom: true}
	return append([]domain.SymbolSuggestion{custom}, matches...)
}
