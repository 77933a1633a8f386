// Package feed fetches live market quotes from a CoinGecko-compatible
// markets API.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptofolio/internal/domain"
)

// DefaultBaseURL is the public CoinGecko API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// DefaultTimeout bounds a single upstream fetch. A stalled fetch surfaces as
// a *domain.FeedUnavailableError instead of blocking the request forever.
const DefaultTimeout = 10 * time.Second

// Source supplies market quotes for a set of asset identifiers. Identifiers
// the provider does not know are simply absent from the result map; callers
// must treat a missing key as "price unavailable".
type Source interface {
	Quotes(ctx context.Context, ids []string) (map[string]domain.MarketQuote, error)
}

// Compile-time interface check.
var _ Source = (*Client)(nil)

// Client fetches quotes from the provider's /coins/markets endpoint. It
// keeps no state between calls: every Quotes call is an independent network
// round-trip, with no caching or retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a feed client for the given provider root. An empty
// baseURL selects the public CoinGecko API; a non-positive timeout selects
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// marketRow matches one item of the provider's /coins/markets response.
type marketRow struct {
	ID        string  `json:"id"`
	Price     float64 `json:"current_price"`
	Change24h float64 `json:"price_change_percentage_24h"`
}

// Quotes fetches current USD quotes for the given ids. A non-success
// upstream status or a transport failure (including timeout) is reported as
// a *domain.FeedUnavailableError; it is never retried and no fallback price
// is substituted.
func (c *Client) Quotes(ctx context.Context, ids []string) (map[string]domain.MarketQuote, error) {
	u := c.baseURL + "/coins/markets?vs_currency=usd&ids=" + url.QueryEscape(strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FeedUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FeedUnavailableError{StatusCode: resp.StatusCode}
	}

	var rows []marketRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding market data: %w", err)
	}

	quotes := make(map[string]domain.MarketQuote, len(rows))
	for _, row := range rows {
		quotes[row.ID] = domain.MarketQuote{Price: row.Price, Change24h: row.Change24h}
	}
	return quotes, nil
}
