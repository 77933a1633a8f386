// Package httpapi provides the JSON HTTP API for the cryptofolio backend:
// live coin quotes, profile valuation, simulated trades, and the chat proxy.
package httpapi

import (
	"cryptofolio/internal/domain"
	"cryptofolio/internal/engine"
)

// CoinsResponse maps asset identifiers to their current quotes.
type CoinsResponse struct {
	Success bool                          `json:"success"`
	Data    map[string]domain.MarketQuote `json:"data"`
}

// ProfileJSON is the account summary returned by the profile endpoint.
// Holdings are reported through the portfolio breakdown, not here.
type ProfileJSON struct {
	UserID     string  `json:"userId"`
	Name       string  `json:"name"`
	BalanceUSD float64 `json:"balanceUSD"`
}

// ProfileResponse pairs the account summary with its live valuation.
type ProfileResponse struct {
	Success   bool             `json:"success"`
	Profile   ProfileJSON      `json:"profile"`
	Portfolio domain.Portfolio `json:"portfolio"`
}

// TransactionRequest is the trade submission body. userId defaults to the
// seed user; exactly one of amountUsd or qty should be set.
type TransactionRequest struct {
	UserID    string  `json:"userId"`
	Action    string  `json:"action"`
	CoinID    string  `json:"coinId"`
	AmountUSD float64 `json:"amountUsd"`
	Qty       float64 `json:"qty"`
}

// TransactionResponse carries the trade outcome. Business rejections
// (insufficient funds or holdings) use success=false with status "error" on
// an HTTP 200, so clients can render them as in-app messages rather than
// network failures.
type TransactionResponse struct {
	Success    bool     `json:"success"`
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	TradeID    string   `json:"tradeId,omitempty"`
	NewBalance *float64 `json:"newBalance,omitempty"`
}

// ChatRequest is the chat proxy input.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the chat proxy output.
type ChatResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply"`
}

// ErrorResponse is the transport/validation error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// convertResult converts an engine outcome into the transaction envelope.
func convertResult(res engine.Result) TransactionResponse {
	if res.Rejected {
		return TransactionResponse{
			Success: false,
			Status:  "error",
			Message: res.Message,
		}
	}
	balance := res.NewBalance
	return TransactionResponse{
		Success:    true,
		Status:     "ok",
		Message:    res.Message,
		TradeID:    res.TradeID,
		NewBalance: &balance,
	}
}
