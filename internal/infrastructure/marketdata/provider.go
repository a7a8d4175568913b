package marketdata

import (
	"context"
	"errors"
	"net/http"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

// Error taxonomy shared by the endpoint clients. They are logged at the
// provider boundary and never returned from the Fetch* methods.
var (
	// ErrTransport means the request failed or timed out.
	ErrTransport = errors.New("transport error")
	// ErrFormat means the payload failed marker or shape validation.
	ErrFormat = errors.New("format error")
	// ErrParse means a single record was malformed and got dropped.
	ErrParse = errors.New("parse error")
)

// FundProvider fetches one snapshot per fund code and returns the successes.
type FundProvider interface {
	FetchFunds(ctx context.Context, codes []string) []domain.FundQuote
}

// SecurityProvider fetches a batch of security codes in one request.
// A failed request yields an empty slice.
type SecurityProvider interface {
	FetchSecurities(ctx context.Context, codes []string) []domain.SecurityQuote
}

// SymbolProvider lists code/name pairs for search.
type SymbolProvider interface {
	FetchSymbols(ctx context.Context) ([]domain.SymbolSuggestion, error)
}

// HTTPClient is the subset of *http.Client the endpoint clients need.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36"

// SetBrowserHeaders sets the User-Agent and Referer the quote hosts expect
// without overwriting headers already present on req.
func SetBrowserHeaders(req *http.Request, referer string) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", browserUserAgent)
	}
	if referer != "" && req.Header.Get("Referer") == "" {
		req.Header.Set("Referer", referer)
	}
}
