// Package cryptofolio provides a Go SDK for the cryptofolio-server HTTP API.
package cryptofolio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a typed client for the cryptofolio-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client for the given server root, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Quote mirrors the server's market quote payload.
type Quote struct {
	Price     float64 `json:"currentPrice"`
	Change24h float64 `json:"priceChangePercent24h"`
}

// Position mirrors one entry of the portfolio breakdown.
type Position struct {
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Value     float64 `json:"value"`
	Change24h float64 `json:"change24h"`
}

// Profile is the account summary with its live valuation.
type Profile struct {
	UserID     string              `json:"userId"`
	Name       string              `json:"name"`
	BalanceUSD float64             `json:"balanceUSD"`
	TotalValue float64             `json:"-"`
	Breakdown  map[string]Position `json:"-"`
}

// TradeRequest describes a simulated buy or sell. Exactly one of AmountUSD
// or Qty should be set.
type TradeRequest struct {
	UserID    string  `json:"userId,omitempty"`
	Action    string  `json:"action"`
	CoinID    string  `json:"coinId"`
	AmountUSD float64 `json:"amountUsd,omitempty"`
	Qty       float64 `json:"qty,omitempty"`
}

// TradeResult is the trade outcome. Business rejections (insufficient funds
// or holdings) come back with Success=false and a nil error: the request was
// accepted, the trade just didn't go through.
type TradeResult struct {
	Success    bool     `json:"success"`
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	TradeID    string   `json:"tradeId"`
	NewBalance *float64 `json:"newBalance"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Coins fetches current quotes. With no ids the server's default set is
// returned.
func (c *Client) Coins(ctx context.Context, ids ...string) (map[string]Quote, error) {
	u := c.baseURL + "/api/coins"
	if len(ids) > 0 {
		u += "?ids=" + url.QueryEscape(strings.Join(ids, ","))
	}
	var out struct {
		Data map[string]Quote `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Profile fetches an account summary and its live valuation. An empty
// userID selects the server's default user.
func (c *Client) Profile(ctx context.Context, userID string) (*Profile, error) {
	u := c.baseURL + "/api/profile"
	if userID != "" {
		u += "/" + url.PathEscape(userID)
	}
	var out struct {
		Profile   Profile `json:"profile"`
		Portfolio struct {
			TotalValue float64             `json:"totalValue"`
			Breakdown  map[string]Position `json:"breakdown"`
		} `json:"portfolio"`
	}
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	p := out.Profile
	p.TotalValue = out.Portfolio.TotalValue
	p.Breakdown = out.Portfolio.Breakdown
	return &p, nil
}

// Trade submits a simulated buy or sell.
func (c *Client) Trade(ctx context.Context, req TradeRequest) (*TradeResult, error) {
	var out TradeResult
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/transaction", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat sends one message to the assistant and returns its reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	body := map[string]string{"message": message}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/chat", body, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// do performs one request and decodes the response, converting non-2xx
// responses into *APIError.
func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &envelope)
		msg := envelope.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return json.Unmarshal(data, out)
}
