// Package domain defines the core types shared across the cryptofolio
// backend: accounts, market quotes, portfolio valuations, and the sentinel
// errors the HTTP layer maps to status codes.
package domain

import (
	"errors"
	"fmt"
)

// MarketQuote is a price snapshot for one asset at fetch time. Quotes are
// fetched fresh per request and never stored, so repeated requests may
// observe different prices.
type MarketQuote struct {
	Price     float64 `json:"currentPrice"`
	Change24h float64 `json:"priceChangePercent24h"`
}

// Account is a user's simulated cash balance and holdings. Accounts live in
// process memory only and are discarded on restart. BalanceUSD and every
// holding quantity stay non-negative; trades that would violate that are
// rejected before any mutation.
type Account struct {
	UserID     string             `json:"userId"`
	Name       string             `json:"name"`
	BalanceUSD float64            `json:"balanceUSD"`
	Holdings   map[string]float64 `json:"holdings"`
}

// Clone returns a deep copy of the account, safe to hand out while the
// original keeps being mutated.
func (a Account) Clone() Account {
	c := a
	c.Holdings = make(map[string]float64, len(a.Holdings))
	for asset, qty := range a.Holdings {
		c.Holdings[asset] = qty
	}
	return c
}

// TradeAction is the direction of a simulated trade.
type TradeAction string

// Valid trade actions.
const (
	TradeActionBuy  TradeAction = "buy"
	TradeActionSell TradeAction = "sell"
)

// Position is the valuation of a single held asset within a portfolio
// breakdown.
type Position struct {
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Value     float64 `json:"value"`
	Change24h float64 `json:"change24h"`
}

// Portfolio is a per-request valuation of an account's holdings. It is
// derived from (holdings, quotes) and never stored.
type Portfolio struct {
	TotalValue float64             `json:"totalValue"`
	Breakdown  map[string]Position `json:"breakdown"`
}

// Sentinel errors surfaced to API clients as transport/validation failures.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrInvalidAmount    = errors.New("trade amount must be positive")
	ErrInvalidAction    = errors.New(`action must be "buy" or "sell"`)
)

// FeedUnavailableError reports a failed call to the upstream market-data
// provider. StatusCode is the upstream HTTP status when the provider
// responded; Err is set for transport failures such as timeouts.
type FeedUnavailableError struct {
	StatusCode int
	Err        error
}

func (e *FeedUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("market data feed unavailable: %v", e.Err)
	}
	return fmt.Sprintf("market data feed unavailable (upstream status %d)", e.StatusCode)
}

func (e *FeedUnavailableError) Unwrap() error { return e.Err }
