package application

import (
	"context"
	"errors"
	"sync"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

type mockFundProvider struct {
	mu        sync.Mutex
	fetchFunc func(ctx context.Context, codes []string) []domain.FundQuote
	calls     [][]string
}

func (m *mockFundProvider) FetchFunds(ctx context.Context, codes []string) []domain.FundQuote {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string(nil), codes...))
	fn := m.fetchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, codes)
	}
	return nil
}

func (m *mockFundProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockFundProvider) LastCodes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

type mockSecurityProvider struct {
	mu        sync.Mutex
	fetchFunc func(ctx context.Context, codes []string) []domain.SecurityQuote
	calls     int
}

func (m *mockSecurityProvider) FetchSecurities(ctx context.Context, codes []string) []domain.SecurityQuote {
	m.mu.Lock()
	m.calls++
	fn := m.fetchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, codes)
	}
	return nil
}

func (m *mockSecurityProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockSymbolProvider struct {
	mu        sync.Mutex
	fetchFunc func(ctx context.Context) ([]domain.SymbolSuggestion, error)
	calls     int
}

func (m *mockSymbolProvider) FetchSymbols(ctx context.Context) ([]domain.SymbolSuggestion, error) {
	m.mu.Lock()
	m.calls++
	fn := m.fetchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return nil, errors.New("no symbols")
}

func (m *mockSymbolProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockRepository is an in-memory code list store with injectable failures.
type mockRepository struct {
	mu      sync.Mutex
	lists   map[domain.ListKind]domain.CodeList
	loadErr error
	saveErr error
}

func newMockRepository(funds, stocks domain.CodeList) *mockRepository {
	return &mockRepository{
		lists: map[domain.ListKind]domain.CodeList{
			domain.ListKindFund:  funds,
			domain.ListKindStock: stocks,
		},
	}
}

func (m *mockRepository) Load(ctx context.Context, kind domain.ListKind) (domain.CodeList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append(domain.CodeList{}, m.lists[kind]...), nil
}

func (m *mockRepository) Save(ctx context.Context, kind domain.ListKind, codes domain.CodeList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.lists[kind] = append(domain.CodeList{}, codes...)
	return nil
}

func (m *mockRepository) set(kind domain.ListKind, codes domain.CodeList) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[kind] = codes
}

func (m *mockRepository) get(kind domain.ListKind) domain.CodeList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists[kind]
}

func (m *mockRepository) failLoads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.ListKind
}

func (n *recordingNotifier) DataChanged(kind domain.ListKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, kind)
}

func (n *recordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func fund(code, name, worth, percent string) domain.FundQuote {
	return domain.FundQuote{
		Code:                  code,
		Name:                  name,
		NetWorth:              "1.0000",
		NetWorthDate:          "2024-01-05",
		EstimatedWorth:        worth,
		EstimatedWorthPercent: percent,
		EstimatedWorthTime:    "2024-01-08 15:00",
	}
}

func security(code, name, price, previousClose string) domain.SecurityQuote {
	return domain.SecurityQuote{
		Code:          code,
		Name:          name,
		Price:         price,
		PreviousClose: previousClose,
	}
}
