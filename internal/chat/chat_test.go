package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRulesKeywords(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"hello there", "Hi!"},
		{"what is the price of bitcoin?", "market feed"},
		{"how do I buy ethereum", "paper money"},
		{"show my portfolio", "profile page"},
		{"what's my balance", "profile page"},
		{"tell me a joke", "demo assistant"},
	}

	for _, c := range cases {
		reply, err := Rules{}.Reply(context.Background(), c.message)
		if err != nil {
			t.Fatalf("Reply(%q) returned error: %v", c.message, err)
		}
		if !strings.Contains(reply, c.want) {
			t.Errorf("Reply(%q) = %q, want substring %q", c.message, reply, c.want)
		}
	}
}

type stubResponder struct {
	reply string
	err   error
}

func (s stubResponder) Reply(context.Context, string) (string, error) {
	return s.reply, s.err
}

func TestFallbackUsesPrimary(t *testing.T) {
	f := Fallback{Primary: stubResponder{reply: "model says hi"}}
	reply, err := f.Reply(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if reply != "model says hi" {
		t.Errorf("Reply = %q, want primary reply", reply)
	}
}

func TestFallbackOnPrimaryError(t *testing.T) {
	f := Fallback{Primary: stubResponder{err: errors.New("quota exceeded")}}
	reply, err := f.Reply(context.Background(), "what is the price of solana")
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if !strings.Contains(reply, "market feed") {
		t.Errorf("Reply = %q, want canned price reply", reply)
	}
}

func TestFallbackWithoutPrimary(t *testing.T) {
	reply, err := Fallback{}.Reply(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if reply == "" {
		t.Error("Reply should never be empty")
	}
}
