// Package chat proxies user messages to a generative-text model, with a
// rule-based fallback when no model is configured or the upstream call
// fails.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when config names none.
const DefaultModel = "gemini-2.0-flash"

const systemPrompt = "You are the assistant of a simulated cryptocurrency " +
	"portfolio app. All balances and trades are paper money. Keep answers " +
	"short and never give real financial advice."

// Responder answers a single chat message. Conversations carry no state
// between calls.
type Responder interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Compile-time interface checks.
var _ Responder = (*Gemini)(nil)
var _ Responder = Rules{}
var _ Responder = Fallback{}

// Gemini answers via the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini wraps an initialised genai client. An empty model selects
// DefaultModel.
func NewGemini(client *genai.Client, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}
}

// Reply sends the message as a one-shot generation request.
func (g *Gemini) Reply(ctx context.Context, message string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(message), cfg)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty model response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// Rules is the canned responder used when no model is available. Replies are
// keyword-matched.
type Rules struct{}

// Reply never fails.
func (Rules) Reply(_ context.Context, message string) (string, error) {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "hello"), strings.Contains(m, "hi "), m == "hi":
		return "Hi! Ask me about coin prices, trades, or your portfolio.", nil
	case strings.Contains(m, "price"):
		return "Live prices come straight from the market feed — check the dashboard or GET /api/coins.", nil
	case strings.Contains(m, "buy"), strings.Contains(m, "sell"), strings.Contains(m, "trade"):
		return "You can simulate a buy or sell from the trade panel. It's paper money only.", nil
	case strings.Contains(m, "portfolio"), strings.Contains(m, "balance"), strings.Contains(m, "holding"):
		return "Your cash balance and holdings are on your profile page.", nil
	default:
		return "I'm the demo assistant for this simulated portfolio. Ask about prices, trades, or your balance.", nil
	}
}

// Fallback answers with Primary when it is set and succeeds, and falls back
// to canned replies otherwise. It never returns an error.
type Fallback struct {
	Primary Responder
}

func (f Fallback) Reply(ctx context.Context, message string) (string, error) {
	if f.Primary != nil {
		reply, err := f.Primary.Reply(ctx, message)
		if err == nil {
			return reply, nil
		}
		slog.Warn("chat model failed, using canned reply", "error", err)
	}
	return Rules{}.Reply(ctx, message)
}
