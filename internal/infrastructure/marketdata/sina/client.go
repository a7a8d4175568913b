package sina

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "http://hq.sinajs.cn"
	listPath       = "/list="
	referer        = "http://finance.sina.com.cn"
	failureMarker  = "FAILED"
)

// Client implements marketdata.SecurityProvider against the Sina quote feed.
type Client struct {
	baseURL    string
	httpClient marketdata.HTTPClient
}

// NewClient creates a new Sina feed client with default settings.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a new client with a custom base URL.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(httpClient marketdata.HTTPClient) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// FetchSecurities issues one combined request for all codes. Any transport or
// format failure loses the whole batch and yields an empty slice.
func (c *Client) FetchSecurities(ctx context.Context, codes []string) []domain.SecurityQuote {
	if len(codes) == 0 {
		return []domain.SecurityQuote{}
	}

	slog.DebugContext(ctx, "Fetching stock data", "count", len(codes))

	text, err := c.fetchFeed(ctx, codes)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch stock data", "count", len(codes), "error", err)
		return []domain.SecurityQuote{}
	}

	quotes, dropped := ParseFeed(text)
	for _, dropErr := range dropped {
		slog.DebugContext(ctx, "Dropped stock record", "error", dropErr)
	}

	slog.DebugContext(ctx, "Stock data fetched", "requested", len(codes), "parsed", len(quotes))
	return quotes
}

// fetchFeed returns the decoded feed text.
func (c *Client) fetchFeed(ctx context.Context, codes []string) (string, error) {
	reqURL := c.baseURL + listPath + strings.Join(codes, ",")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", marketdata.ErrTransport, err)
	}
	marketdata.SetBrowserHeaders(req, referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute request: %w", marketdata.ErrTransport, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d", marketdata.ErrTransport, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", marketdata.ErrTransport, err)
	}

	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode GB18030 body: %w", marketdata.ErrFormat, err)
	}

	text := string(decoded)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response body", marketdata.ErrFormat)
	}
	if strings.Contains(text, failureMarker) {
		return "", fmt.Errorf("%w: response reports %s", marketdata.ErrFormat, failureMarker)
	}

	return text, nil
}

// Compile-time check that Client implements SecurityProvider.
var _ marketdata.SecurityProvider = (*Client)(nil)
