package leekhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata"
)

const defaultURL = "https://leek-hub.vercel.app/api/stocks"

// Client implements marketdata.SymbolProvider against the stock list endpoint.
type Client struct {
	url        string
	httpClient marketdata.HTTPClient
}

// NewClient creates a new directory client with the default endpoint.
func NewClient() *Client {
	return NewClientWithURL(defaultURL)
}

// NewClientWithURL creates a new client for a custom endpoint.
func NewClientWithURL(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(httpClient marketdata.HTTPClient) *Client {
	return &Client{
		url:        defaultURL,
		httpClient: httpClient,
	}
}

// SetURL sets the endpoint (useful for testing).
func (c *Client) SetURL(url string) {
	c.url = url
}

type stocksResponse struct {
	Data []stockEntry `json:"data"`
}

type stockEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// FetchSymbols downloads the full code/name list.
func (c *Client) FetchSymbols(ctx context.Context) ([]domain.SymbolSuggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", marketdata.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %w", marketdata.ErrTransport, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", c.url)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("%w: API returned status %d: %s", marketdata.ErrTransport, resp.StatusCode, string(body))
	}

	var stocksResp stocksResponse
	if err := json.NewDecoder(resp.Body).Decode(&stocksResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", marketdata.ErrFormat, err)
	}

	suggestions := make([]domain.SymbolSuggestion, 0, len(stocksResp.Data))
	for _, e := range stocksResp.Data {
		if e.Code == "" {
			continue
		}
		suggestions = append(suggestions, domain.SymbolSuggestion{Code: e.Code, Name: e.Name})
	}

	return suggestions, nil
}

// Compile-time check that Client implements SymbolProvider.
var _ marketdata.SymbolProvider = (*Client)(nil)
