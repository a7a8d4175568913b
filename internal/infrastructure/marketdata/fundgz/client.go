package fundgz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL     = "https://fundgz.1234567.com.cn"
	snapshotPathFormat = "/js/%s.js"
	referer            = "http://fund.eastmoney.com/"

	payloadMarker = "jsonpgz"
	payloadPrefix = "jsonpgz("
	payloadSuffix = ");"

	// DefaultConcurrency caps simultaneous snapshot requests.
	DefaultConcurrency = 10
	// DefaultTimeout bounds a single snapshot request.
	DefaultTimeout = 10 * time.Second
)

// Client implements marketdata.FundProvider against the fund valuation endpoint.
type Client struct {
	baseURL     string
	httpClient  marketdata.HTTPClient
	concurrency int
	timeout     time.Duration
	now         func() time.Time
}

// NewClient creates a new fund snapshot client with default settings.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a new client with a custom base URL.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{},
		concurrency: DefaultConcurrency,
		timeout:     DefaultTimeout,
		now:         time.Now,
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(httpClient marketdata.HTTPClient) *Client {
	c := NewClient()
	c.httpClient = httpClient
	return c
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetConcurrency changes the in-flight request cap. Values below 1 are ignored.
func (c *Client) SetConcurrency(n int) {
	if n > 0 {
		c.concurrency = n
	}
}

// SetTimeout changes the per-code request timeout. Values below 1ns are ignored.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// snapshotResponse is the JSON body embedded in the jsonpgz(...) wrapper.
type snapshotResponse struct {
	FundCode string `json:"fundcode"`
	Name     string `json:"name"`
	DWJZ     string `json:"dwjz"`  // unit net worth
	JZRQ     string `json:"jzrq"`  // net worth date
	GSZ      string `json:"gsz"`   // estimated worth
	GSZZL    string `json:"gszzl"` // estimated change percent
	GZTime   string `json:"gztime"`
}

// FetchFunds requests one snapshot per code with at most c.concurrency in
// flight. A failed code is logged and left out; the others still complete.
// Result order follows codes.
func (c *Client) FetchFunds(ctx context.Context, codes []string) []domain.FundQuote {
	results := make([]*domain.FundQuote, len(codes))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, code := range codes {
		g.Go(func() error {
			quote, err := c.FetchFund(ctx, code)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to fetch fund data", "code", code, "error", err)
				return nil
			}
			results[i] = quote
			return nil
		})
	}
	_ = g.Wait()

	quotes := make([]domain.FundQuote, 0, len(codes))
	for _, q := range results {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}

	slog.DebugContext(ctx, "Fund data fetched", "requested", len(codes), "fetched", len(quotes))
	return quotes
}

// FetchFund retrieves the snapshot of a single fund within the client's timeout.
func (c *Client) FetchFund(ctx context.Context, code string) (*domain.FundQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Add("rt", strconv.FormatInt(c.now().UnixMilli(), 10))
	reqURL := c.baseURL + fmt.Sprintf(snapshotPathFormat, url.PathEscape(code)) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", marketdata.ErrTransport, err)
	}
	marketdata.SetBrowserHeaders(req, referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %w", marketdata.ErrTransport, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d", marketdata.ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", marketdata.ErrTransport, err)
	}

	return decodeSnapshot(string(body))
}

// decodeSnapshot validates the jsonpgz marker before unwrapping the JSON body.
func decodeSnapshot(payload string) (*domain.FundQuote, error) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, payloadMarker) {
		return nil, fmt.Errorf("%w: payload does not start with %s: %q", marketdata.ErrFormat, payloadMarker, excerpt(payload))
	}
	if !strings.HasPrefix(payload, payloadPrefix) || !strings.HasSuffix(payload, payloadSuffix) {
		return nil, fmt.Errorf("%w: malformed %s wrapper: %q", marketdata.ErrFormat, payloadMarker, excerpt(payload))
	}

	body := payload[len(payloadPrefix) : len(payload)-len(payloadSuffix)]

	var snap snapshotResponse
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return nil, fmt.Errorf("%w: failed to decode snapshot: %w", marketdata.ErrFormat, err)
	}
	if snap.FundCode == "" {
		return nil, fmt.Errorf("%w: snapshot without fundcode", marketdata.ErrFormat)
	}

	return &domain.FundQuote{
		Code:                  snap.FundCode,
		Name:                  snap.Name,
		NetWorth:              snap.DWJZ,
		NetWorthDate:          snap.JZRQ,
		EstimatedWorth:        snap.GSZ,
		EstimatedWorthPercent: snap.GSZZL,
		EstimatedWorthTime:    snap.GZTime,
	}, nil
}

func excerpt(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// Compile-time check that Client implements FundProvider.
var _ marketdata.FundProvider = (*Client)(nil)
