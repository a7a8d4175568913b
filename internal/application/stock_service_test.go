package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

func newStockService(t *testing.T, repo domain.CodeListRepository, provider *mockSecurityProvider, notifier Notifier) *StockService {
	t.Helper()
	svc, err := NewStockService(context.Background(), repo, provider, notifier)
	require.NoError(t, err)
	return svc
}

func TestStockService_Rows(t *testing.T) {
	repo := newMockRepository(nil, domain.CodeList{"sh600519", "gb_aapl", "hf_CL"})
	provider := &mockSecurityProvider{
		fetchFunc: func(ctx context.Context, codes []string) []domain.SecurityQuote {
			return []domain.SecurityQuote{
				security("sh600519", "贵州茅台", "1710.00", "1692.00"),
				security("hf_CL", "纽约原油", "72.10", "0"),
			}
		},
	}
	svc := newStockService(t, repo, provider, nil)

	require.NoError(t, svc.Reload(context.Background()))
	rows := svc.Rows()

	require.Len(t, rows, 3)
	assert.Equal(t, domain.Row{
		Code:    "sh600519",
		Name:    "贵州茅台",
		Price:   "1710.00",
		Percent: "1.06",
		Kind:    domain.ListKindStock,
	}, rows[0])
	assert.Equal(t, domain.MissingQuoteRow(domain.ListKindStock, "gb_aapl"), rows[1])
	assert.Equal(t, "0.00", rows[2].Percent)
	assert.False(t, rows[2].Placeholder)
}

func TestStockService_Rows_Empty(t *testing.T) {
	svc := newStockService(t, newMockRepository(nil, nil), &mockSecurityProvider{}, nil)

	assert.Equal(t, []domain.Row{domain.EmptyListRow(domain.ListKindStock)}, svc.Rows())
}

func TestStockService_Reload(t *testing.T) {
	t.Run("failed batch keeps previous quotes", func(t *testing.T) {
		repo := newMockRepository(nil, domain.CodeList{"sz000001"})
		calls := 0
		provider := &mockSecurityProvider{
			fetchFunc: func(ctx context.Context, codes []string) []domain.SecurityQuote {
				calls++
				if calls > 1 {
					return []domain.SecurityQuote{}
				}
				return []domain.SecurityQuote{security("sz000001", "平安银行", "10.50", "10.00")}
			},
		}
		notifier := &recordingNotifier{}
		svc := newStockService(t, repo, provider, notifier)

		require.NoError(t, svc.Reload(context.Background()))
		require.NoError(t, svc.Reload(context.Background()))

		q, ok := svc.Quote("sz000001")
		assert.True(t, ok)
		assert.Equal(t, "10.50", q.Price)
		assert.Equal(t, "5.00", svc.Rows()[0].Percent)
		assert.Equal(t, 2, notifier.Count())
	})

	t.Run("new batch replaces the cache", func(t *testing.T) {
		repo := newMockRepository(nil, domain.CodeList{"sz000001", "sh600000"})
		calls := 0
		provider := &mockSecurityProvider{
			fetchFunc: func(ctx context.Context, codes []string) []domain.SecurityQuote {
				calls++
				if calls == 1 {
					return []domain.SecurityQuote{
						security("sz000001", "平安银行", "10.50", "10.00"),
						security("sh600000", "浦发银行", "7.00", "7.00"),
					}
				}
				return []domain.SecurityQuote{security("sh600000", "浦发银行", "7.07", "7.00")}
			},
		}
		svc := newStockService(t, repo, provider, nil)

		require.NoError(t, svc.Reload(context.Background()))
		require.NoError(t, svc.Reload(context.Background()))

		_, ok := svc.Quote("sz000001")
		assert.False(t, ok)
		q, ok := svc.Quote("sh600000")
		assert.True(t, ok)
		assert.Equal(t, "7.07", q.Price)
	})

	t.Run("in-flight reload drops the next request", func(t *testing.T) {
		repo := newMockRepository(nil, domain.CodeList{"sz000001"})
		started := make(chan struct{})
		release := make(chan struct{})
		provider := &mockSecurityProvider{
			fetchFunc: func(ctx context.Context, codes []string) []domain.SecurityQuote {
				close(started)
				<-release
				return nil
			},
		}
		svc := newStockService(t, repo, provider, nil)

		done := make(chan error, 1)
		go func() { done <- svc.Reload(context.Background()) }()
		<-started

		assert.ErrorIs(t, svc.Reload(context.Background()), ErrReloadInProgress)
		close(release)
		assert.NoError(t, <-done)
		assert.Equal(t, 1, provider.CallCount())
	})
}

func TestStockService_Move(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		move     func(svc *StockService) error
		expected domain.CodeList
		err      error
	}{
		{
			name:     "up swaps with predecessor",
			move:     func(svc *StockService) error { return svc.MoveCodeUp(ctx, "b") },
			expected: domain.CodeList{"b", "a", "c"},
		},
		{
			name:     "up on first is a no-op",
			move:     func(svc *StockService) error { return svc.MoveCodeUp(ctx, "a") },
			expected: domain.CodeList{"a", "b", "c"},
		},
		{
			name:     "down swaps with successor",
			move:     func(svc *StockService) error { return svc.MoveCodeDown(ctx, "b") },
			expected: domain.CodeList{"a", "c", "b"},
		},
		{
			name:     "down on last is a no-op",
			move:     func(svc *StockService) error { return svc.MoveCodeDown(ctx, "c") },
			expected: domain.CodeList{"a", "b", "c"},
		},
		{
			name:     "unknown code",
			move:     func(svc *StockService) error { return svc.MoveCodeUp(ctx, "z") },
			expected: domain.CodeList{"a", "b", "c"},
			err:      domain.ErrCodeNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepository(nil, domain.CodeList{"a", "b", "c"})
			svc := newStockService(t, repo, &mockSecurityProvider{}, nil)

			err := tc.move(svc)

			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, svc.Codes())
			assert.Equal(t, tc.expected, repo.get(domain.ListKindStock))
		})
	}
}
