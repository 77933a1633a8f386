package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"cryptofolio/internal/domain"
	"cryptofolio/internal/store"
)

// fixedFeed serves canned quotes, or a canned error, without any network.
type fixedFeed struct {
	quotes map[string]domain.MarketQuote
	err    error
}

func (f *fixedFeed) Quotes(_ context.Context, ids []string) (map[string]domain.MarketQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]domain.MarketQuote, len(ids))
	for _, id := range ids {
		if q, ok := f.quotes[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func newTestEngine(t *testing.T, f *fixedFeed) (*Engine, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore(domain.Account{
		UserID:     "demo",
		Name:       "Demo User",
		BalanceUSD: 2000,
		Holdings:   map[string]float64{"bitcoin": 0.1},
	})
	return NewEngine(f, s), s
}

func btcAt(price float64) *fixedFeed {
	return &fixedFeed{quotes: map[string]domain.MarketQuote{"bitcoin": {Price: price}}}
}

func TestBuyWithAmountUSD(t *testing.T) {
	e, s := newTestEngine(t, btcAt(50000))

	res, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "buy", CoinID: "bitcoin", AmountUSD: 1000,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.Rejected {
		t.Fatalf("trade rejected: %s", res.Message)
	}
	if res.Quantity != 0.02 {
		t.Errorf("Quantity = %v, want 0.02", res.Quantity)
	}
	if res.Cost != 1000 {
		t.Errorf("Cost = %v, want 1000", res.Cost)
	}
	if res.NewBalance != 1000 {
		t.Errorf("NewBalance = %v, want 1000", res.NewBalance)
	}
	if res.TradeID == "" {
		t.Error("executed trade should carry a trade ID")
	}

	a, _ := s.Get("demo")
	if a.BalanceUSD != 1000 {
		t.Errorf("BalanceUSD = %v, want 1000", a.BalanceUSD)
	}
	if got := a.Holdings["bitcoin"]; math.Abs(got-0.12) > 1e-12 {
		t.Errorf("holdings = %v, want 0.12", got)
	}
}

func TestBuyWithExplicitQuantity(t *testing.T) {
	e, s := newTestEngine(t, btcAt(50000))

	// Quantity wins over AmountUSD when both are present.
	res, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "buy", CoinID: "bitcoin", AmountUSD: 999999, Quantity: 0.01,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.Cost != 500 {
		t.Errorf("Cost = %v, want 500", res.Cost)
	}

	a, _ := s.Get("demo")
	if a.BalanceUSD != 1500 {
		t.Errorf("BalanceUSD = %v, want 1500", a.BalanceUSD)
	}
}

func TestSell(t *testing.T) {
	e, s := newTestEngine(t, btcAt(50000))

	res, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "sell", CoinID: "bitcoin", Quantity: 0.1,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.Rejected {
		t.Fatalf("trade rejected: %s", res.Message)
	}
	if res.NewBalance != 7000 {
		t.Errorf("NewBalance = %v, want 7000", res.NewBalance)
	}

	a, _ := s.Get("demo")
	if a.Holdings["bitcoin"] != 0 {
		t.Errorf("holdings = %v, want 0", a.Holdings["bitcoin"])
	}
	if a.BalanceUSD != 7000 {
		t.Errorf("BalanceUSD = %v, want 7000", a.BalanceUSD)
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	e, s := newTestEngine(t, btcAt(50000))

	res, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "buy", CoinID: "bitcoin", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !res.Rejected {
		t.Fatal("expected rejection")
	}
	if res.Reason != RejectInsufficientFunds {
		t.Errorf("Reason = %q, want %q", res.Reason, RejectInsufficientFunds)
	}

	a, _ := s.Get("demo")
	if a.BalanceUSD != 2000 || a.Holdings["bitcoin"] != 0.1 {
		t.Errorf("account changed after rejection: balance=%v holdings=%v", a.BalanceUSD, a.Holdings["bitcoin"])
	}
}

func TestSellInsufficientHoldings(t *testing.T) {
	e, s := newTestEngine(t, btcAt(50000))

	res, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "sell", CoinID: "bitcoin", Quantity: 0.2,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !res.Rejected {
		t.Fatal("expected rejection")
	}
	if res.Reason != RejectInsufficientHoldings {
		t.Errorf("Reason = %q, want %q", res.Reason, RejectInsufficientHoldings)
	}

	a, _ := s.Get("demo")
	if a.BalanceUSD != 2000 || a.Holdings["bitcoin"] != 0.1 {
		t.Errorf("account changed after rejection: balance=%v holdings=%v", a.BalanceUSD, a.Holdings["bitcoin"])
	}
}

func TestSellAssetNeverHeld(t *testing.T) {
	e, _ := newTestEngine(t, &fixedFeed{quotes: map[string]domain.MarketQuote{
		"solana": {Price: 100},
	}})

	res, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "sell", CoinID: "solana", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !res.Rejected || res.Reason != RejectInsufficientHoldings {
		t.Errorf("result = %+v, want insufficient_holdings rejection", res)
	}
}

func TestUnknownUser(t *testing.T) {
	e, _ := newTestEngine(t, btcAt(50000))

	_, err := e.Execute(context.Background(), Request{
		UserID: "nobody", Action: "buy", CoinID: "bitcoin", AmountUSD: 100,
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestInvalidAction(t *testing.T) {
	e, _ := newTestEngine(t, btcAt(50000))

	_, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "hodl", CoinID: "bitcoin", AmountUSD: 100,
	})
	if !errors.Is(err, domain.ErrInvalidAction) {
		t.Errorf("err = %v, want ErrInvalidAction", err)
	}
}

func TestInvalidAmount(t *testing.T) {
	e, _ := newTestEngine(t, btcAt(50000))

	for _, req := range []Request{
		{UserID: "demo", Action: "buy", CoinID: "bitcoin"},
		{UserID: "demo", Action: "buy", CoinID: "bitcoin", AmountUSD: -10},
		{UserID: "demo", Action: "sell", CoinID: "bitcoin", Quantity: -0.1},
		{UserID: "demo", Action: "buy", CoinID: "bitcoin", AmountUSD: math.NaN()},
	} {
		_, err := e.Execute(context.Background(), req)
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("Execute(%+v) err = %v, want ErrInvalidAmount", req, err)
		}
	}
}

func TestPriceUnavailable(t *testing.T) {
	e, _ := newTestEngine(t, btcAt(50000))

	// Unlike valuation, a missing price is a hard error for trading.
	_, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "buy", CoinID: "notacoin", AmountUSD: 100,
	})
	if !errors.Is(err, domain.ErrPriceUnavailable) {
		t.Errorf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestZeroPriceUnavailable(t *testing.T) {
	e, _ := newTestEngine(t, btcAt(0))

	_, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "buy", CoinID: "bitcoin", AmountUSD: 100,
	})
	if !errors.Is(err, domain.ErrPriceUnavailable) {
		t.Errorf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestFeedErrorPropagates(t *testing.T) {
	feedErr := &domain.FeedUnavailableError{StatusCode: 503}
	e, s := newTestEngine(t, &fixedFeed{err: feedErr})

	_, err := e.Execute(context.Background(), Request{
		UserID: "demo", Action: "buy", CoinID: "bitcoin", AmountUSD: 100,
	})
	var fe *domain.FeedUnavailableError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *domain.FeedUnavailableError", err)
	}

	a, _ := s.Get("demo")
	if a.BalanceUSD != 2000 {
		t.Errorf("account changed after feed failure: balance = %v", a.BalanceUSD)
	}
}

// TestConcurrentBuys checks that simultaneous trades against one account are
// serialized: every deduction lands and the balance never goes negative.
func TestConcurrentBuys(t *testing.T) {
	s := store.NewMemoryStore(domain.Account{
		UserID:     "demo",
		BalanceUSD: 1000,
		Holdings:   map[string]float64{},
	})
	e := NewEngine(btcAt(50000), s)

	const trades = 10
	var wg sync.WaitGroup
	for i := 0; i < trades; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Execute(context.Background(), Request{
				UserID: "demo", Action: "buy", CoinID: "bitcoin", AmountUSD: 100,
			})
			if err != nil {
				t.Errorf("Execute returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	a, _ := s.Get("demo")
	if a.BalanceUSD != 0 {
		t.Errorf("BalanceUSD = %v, want 0 (lost update)", a.BalanceUSD)
	}
	wantQty := float64(trades) * 100 / 50000
	if math.Abs(a.Holdings["bitcoin"]-wantQty) > 1e-12 {
		t.Errorf("holdings = %v, want %v", a.Holdings["bitcoin"], wantQty)
	}
}
