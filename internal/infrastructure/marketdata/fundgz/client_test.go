package fundgz

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata"
)

func snapshot(code string) string {
	return fmt.Sprintf(`jsonpgz({"fundcode":"%s","name":"华夏成长混合","jzrq":"2023-12-07","dwjz":"1.0360",`+
		`"gsz":"1.0412","gszzl":"0.50","gztime":"2023-12-08 15:00"});`, code)
}

func codeFromPath(path string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, "/js/"), ".js")
}

func TestFetchFund(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		body           string
		expectedErr    error
		failConnection bool
	}{
		{
			name:       "Success",
			statusCode: http.StatusOK,
			body:       snapshot("000001"),
		},
		{
			name:        "Missing marker",
			statusCode:  http.StatusOK,
			body:        `var data = {"fundcode":"000001"};`,
			expectedErr: marketdata.ErrFormat,
		},
		{
			name:        "Empty wrapper",
			statusCode:  http.StatusOK,
			body:        `jsonpgz();`,
			expectedErr: marketdata.ErrFormat,
		},
		{
			name:        "Malformed JSON",
			statusCode:  http.StatusOK,
			body:        `jsonpgz({"fundcode":);`,
			expectedErr: marketdata.ErrFormat,
		},
		{
			name:        "HTTP 404",
			statusCode:  http.StatusNotFound,
			body:        `Not Found`,
			expectedErr: marketdata.ErrTransport,
		},
		{
			name:           "Network Error",
			failConnection: true,
			expectedErr:    marketdata.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/js/000001.js", r.URL.Path)
				assert.NotEmpty(t, r.URL.Query().Get("rt"))
				assert.Equal(t, referer, r.Header.Get("Referer"))

				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient()
			if tt.failConnection {
				client.SetBaseURL("http://127.0.0.1:0")
			} else {
				client.SetBaseURL(server.URL)
			}

			quote, err := client.FetchFund(context.Background(), "000001")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, quote)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.FundQuote{
				Code:                  "000001",
				Name:                  "华夏成长混合",
				NetWorth:              "1.0360",
				NetWorthDate:          "2023-12-07",
				EstimatedWorth:        "1.0412",
				EstimatedWorthPercent: "0.50",
				EstimatedWorthTime:    "2023-12-08 15:00",
			}, *quote)
		})
	}
}

func TestFetchFunds_PartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := codeFromPath(r.URL.Path)
		if code == "B" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(snapshot(code)))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	quotes := client.FetchFunds(context.Background(), []string{"A", "B", "C"})

	codes := make([]string, 0, len(quotes))
	for _, q := range quotes {
		codes = append(codes, q.Code)
	}
	assert.ElementsMatch(t, []string{"A", "C"}, codes)
}

func TestFetchFunds_PerRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := codeFromPath(r.URL.Path)
		if code == "slow" {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		_, _ = w.Write([]byte(snapshot(code)))
	}))
	defer server.Close()
	defer close(release)

	client := NewClientWithBaseURL(server.URL)
	client.SetTimeout(50 * time.Millisecond)

	start := time.Now()
	quotes := client.FetchFunds(context.Background(), []string{"fast", "slow"})

	require.Len(t, quotes, 1)
	assert.Equal(t, "fast", quotes[0].Code)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetchFunds_ConcurrencyCap(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(snapshot(codeFromPath(r.URL.Path))))
	}))
	defer server.Close()

	codes := make([]string, 25)
	for i := range codes {
		codes[i] = fmt.Sprintf("%06d", i)
	}

	client := NewClientWithBaseURL(server.URL)
	quotes := client.FetchFunds(context.Background(), codes)

	require.Len(t, quotes, len(codes))
	for i, q := range quotes {
		assert.Equal(t, codes[i], q.Code)
	}
	assert.LessOrEqual(t, peak.Load(), int32(DefaultConcurrency))
	assert.Greater(t, peak.Load(), int32(1))
}

func TestFetchFunds_Empty(t *testing.T) {
	client := NewClientWithBaseURL("http://127.0.0.1:0")
	quotes := client.FetchFunds(context.Background(), nil)
	assert.NotNil(t, quotes)
	assert.Empty(t, quotes)
}

func TestSetters_IgnoreInvalidValues(t *testing.T) {
	client := NewClient()
	client.SetConcurrency(0)
	client.SetTimeout(0)
	assert.Equal(t, DefaultConcurrency, client.concurrency)
	assert.Equal(t, DefaultTimeout, client.timeout)

	client.SetConcurrency(3)
	client.SetTimeout(time.Second)
	assert.Equal(t, 3, client.concurrency)
	assert.Equal(t, time.Second, client.timeout)
}
