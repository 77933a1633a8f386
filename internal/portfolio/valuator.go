// Package portfolio values an account's holdings against fetched market
// quotes.
package portfolio

import (
	"fmt"

	"cryptofolio/internal/domain"
)

// Valuator computes portfolio breakdowns. With StrictQuotes set, a held
// asset without a quote fails the whole valuation; otherwise it contributes
// zero value so the profile still renders when one asset is unquoted.
type Valuator struct {
	StrictQuotes bool
}

// Breakdown values each held asset at its quoted price and sums the total.
// Zero-quantity holdings still appear in the breakdown. The computation is a
// pure function of (holdings, quotes).
func (v Valuator) Breakdown(holdings map[string]float64, quotes map[string]domain.MarketQuote) (domain.Portfolio, error) {
	p := domain.Portfolio{Breakdown: make(map[string]domain.Position, len(holdings))}
	for asset, qty := range holdings {
		quote, ok := quotes[asset]
		if !ok && v.StrictQuotes {
			return domain.Portfolio{}, fmt.Errorf("valuing %s: %w", asset, domain.ErrPriceUnavailable)
		}
		pos := domain.Position{
			Quantity:  qty,
			Price:     quote.Price,
			Value:     qty * quote.Price,
			Change24h: quote.Change24h,
		}
		p.Breakdown[asset] = pos
		p.TotalValue += pos.Value
	}
	return p, nil
}
