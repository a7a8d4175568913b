package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

func sampleSymbols() []domain.SymbolSuggestion {
	return []domain.SymbolSuggestion{
		{Code: "sh600519", Name: "贵州茅台"},
		{Code: "sz000001", Name: "平安银行"},
		{Code: "sh600000", Name: "浦发银行"},
		{Code: "gb_aapl", Name: "Apple"},
	}
}

func TestSymbolDirectory_LoadsOnce(t *testing.T) {
	provider := &mockSymbolProvider{
		fetchFunc: func(ctx context.Context) ([]domain.SymbolSuggestion, error) {
			return sampleSymbols(), nil
		},
	}
	dir := NewSymbolDirectory(provider)

	first := dir.List(context.Background())
	second := dir.List(context.Background())

	assert.Len(t, first, 4)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.CallCount())
}

func TestSymbolDirectory_RetriesAfterFailure(t *testing.T) {
	fail := true
	provider := &mockSymbolProvider{
		fetchFunc: func(ctx context.Context) ([]domain.SymbolSuggestion, error) {
			if fail {
				return nil, errors.New("timeout")
			}
			return sampleSymbols(), nil
		},
	}
	dir := NewSymbolDirectory(provider)

	assert.Empty(t, dir.List(context.Background()))

	fail = false
	assert.Len(t, dir.List(context.Background()), 4)
	assert.Equal(t, 2, provider.CallCount())
}

func TestSymbolDirectory_Search(t *testing.T) {
	provider := &mockSymbolProvider{
		fetchFunc: func(ctx context.Context) ([]domain.SymbolSuggestion, error) {
			return sampleSymbols(), nil
		},
	}
	dir := NewSymbolDirectory(provider)
	ctx := context.Background()

	testCases := []struct {
		name     string
		query    string
		expected []string
	}{
		{"empty query returns all", "", []string{"sh600519", "sz000001", "sh600000", "gb_aapl"}},
		{"exact code has no custom entry", "sh600519", []string{"sh600519"}},
		{"exact code is case-insensitive", "SH600519", []string{"sh600519"}},
		{"prefix gets custom entry first", "sh600", []string{"sh600", "sh600519", "sh600000"}},
		{"name match", "银行", []string{"银行", "sz000001", "sh600000"}},
		{"case-insensitive name", "apple", []string{"apple", "gb_aapl"}},
		{"no match offers only custom", "hf_CL", []string{"hf_CL"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := dir.Search(ctx, tc.query)

			codes := make([]string, 0, len(got))
			for _, s := range got {
				codes = append(codes, s.Code)
			}
			assert.Equal(t, tc.expected, codes)
		})
	}

	custom := dir.Search(ctx, "hf_CL")[0]
	assert.True(t, custom.Custom)
	assert.Equal(t, CustomCodeName, custom.Name)
}
