// Package engine validates and applies simulated trades against user
// accounts, pricing each trade with a freshly fetched market quote.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"cryptofolio/internal/domain"
	"cryptofolio/internal/feed"
	"cryptofolio/internal/store"
)

// Request describes a single buy or sell. Exactly one of AmountUSD or
// Quantity should be set; when both are present Quantity wins.
type Request struct {
	UserID    string
	Action    string
	CoinID    string
	AmountUSD float64
	Quantity  float64
}

// Reject reasons for business-rule outcomes. These are not errors: the
// request was well-formed but the account cannot support the trade.
const (
	RejectInsufficientFunds    = "insufficient_funds"
	RejectInsufficientHoldings = "insufficient_holdings"
)

// Result reports the outcome of a trade request that passed validation.
// Rejected results carry a reason and message; executed results carry a
// trade ID and the new cash balance.
type Result struct {
	TradeID    string
	Rejected   bool
	Reason     string
	Message    string
	Action     domain.TradeAction
	CoinID     string
	Quantity   float64
	Price      float64
	Cost       float64
	NewBalance float64
}

// Engine applies trades to the user store, pricing each trade with a quote
// fetched from the feed at execution time.
type Engine struct {
	feed  feed.Source
	store *store.MemoryStore
	log   *slog.Logger
}

// NewEngine creates an Engine wired with the given feed and store.
func NewEngine(src feed.Source, s *store.MemoryStore) *Engine {
	return &Engine{
		feed:  src,
		store: s,
		log:   slog.Default().With("component", "engine"),
	}
}

// Execute runs one trade end to end: resolve the account, validate the
// action, fetch the quote for the traded asset alone, derive the quantity,
// then validate and apply the mutation under the account's lock. The account
// is never left partially updated; validation finishes before any mutation.
func (e *Engine) Execute(ctx context.Context, req Request) (Result, error) {
	if _, err := e.store.Get(req.UserID); err != nil {
		return Result{}, err
	}

	action := domain.TradeAction(strings.ToLower(req.Action))
	if action != domain.TradeActionBuy && action != domain.TradeActionSell {
		return Result{}, fmt.Errorf("action %q: %w", req.Action, domain.ErrInvalidAction)
	}

	quotes, err := e.feed.Quotes(ctx, []string{req.CoinID})
	if err != nil {
		return Result{}, err
	}
	quote, ok := quotes[req.CoinID]
	if !ok || quote.Price <= 0 {
		return Result{}, fmt.Errorf("no quote for %q: %w", req.CoinID, domain.ErrPriceUnavailable)
	}

	qty := req.Quantity
	if qty == 0 {
		qty = req.AmountUSD / quote.Price
	}
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return Result{}, domain.ErrInvalidAmount
	}

	res := Result{
		Action:   action,
		CoinID:   req.CoinID,
		Quantity: qty,
		Price:    quote.Price,
		Cost:     qty * quote.Price,
	}

	err = e.store.Update(req.UserID, func(a *domain.Account) error {
		switch action {
		case domain.TradeActionBuy:
			if res.Cost > a.BalanceUSD {
				res.Rejected = true
				res.Reason = RejectInsufficientFunds
				res.Message = fmt.Sprintf("insufficient funds: need $%.2f, have $%.2f", res.Cost, a.BalanceUSD)
				return nil
			}
			if a.Holdings == nil {
				a.Holdings = make(map[string]float64)
			}
			a.BalanceUSD -= res.Cost
			a.Holdings[req.CoinID] += qty

		case domain.TradeActionSell:
			have := a.Holdings[req.CoinID]
			if qty > have {
				res.Rejected = true
				res.Reason = RejectInsufficientHoldings
				res.Message = fmt.Sprintf("insufficient holdings: selling %g %s, have %g", qty, req.CoinID, have)
				return nil
			}
			a.Holdings[req.CoinID] = have - qty
			a.BalanceUSD += res.Cost
		}
		res.NewBalance = a.BalanceUSD
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if res.Rejected {
		e.log.Info("trade rejected",
			"user", req.UserID, "coin", req.CoinID, "reason", res.Reason)
		return res, nil
	}

	res.TradeID = uuid.NewString()
	verb := "bought"
	if action == domain.TradeActionSell {
		verb = "sold"
	}
	res.Message = fmt.Sprintf("%s %g %s at $%.2f", verb, qty, req.CoinID, quote.Price)
	e.log.Info("trade executed",
		"tradeId", res.TradeID, "user", req.UserID, "action", string(action),
		"coin", req.CoinID, "qty", qty, "price", quote.Price)
	return res, nil
}
