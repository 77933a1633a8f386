package domain

import (
	"errors"
	"testing"
)

func TestAccountClone(t *testing.T) {
	a := Account{
		UserID:     "demo",
		Name:       "Demo User",
		BalanceUSD: 2000,
		Holdings:   map[string]float64{"bitcoin": 0.1},
	}

	c := a.Clone()
	c.BalanceUSD = 0
	c.Holdings["bitcoin"] = 99

	if a.BalanceUSD != 2000 {
		t.Errorf("original BalanceUSD = %v, want 2000", a.BalanceUSD)
	}
	if a.Holdings["bitcoin"] != 0.1 {
		t.Errorf("original holdings mutated through clone: got %v, want 0.1", a.Holdings["bitcoin"])
	}
}

func TestAccountCloneNilHoldings(t *testing.T) {
	c := Account{UserID: "demo"}.Clone()
	if c.Holdings == nil {
		t.Fatal("Clone returned nil Holdings map")
	}
}

func TestFeedUnavailableError(t *testing.T) {
	upstream := &FeedUnavailableError{StatusCode: 429}
	if got := upstream.Error(); got != "market data feed unavailable (upstream status 429)" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("context deadline exceeded")
	transport := &FeedUnavailableError{Err: cause}
	if !errors.Is(transport, cause) {
		t.Error("FeedUnavailableError should unwrap to its cause")
	}
}
