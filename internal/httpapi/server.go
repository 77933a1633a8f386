package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"cryptofolio/internal/chat"
	"cryptofolio/internal/domain"
	"cryptofolio/internal/engine"
	"cryptofolio/internal/feed"
	"cryptofolio/internal/portfolio"
	"cryptofolio/internal/store"
)

// defaultCoins is the quote set served when a request names no ids.
var defaultCoins = []string{"bitcoin", "ethereum", "solana"}

// Server serves the portfolio HTTP API.
type Server struct {
	feed        feed.Source
	store       *store.MemoryStore
	valuator    portfolio.Valuator
	engine      *engine.Engine
	chat        chat.Responder
	defaultUser string
	coins       []string
	log         *slog.Logger
}

// NewServer creates the API server. defaultUser is the account used when a
// request names no user; coins is the default quote set (nil selects
// bitcoin, ethereum, solana).
func NewServer(
	src feed.Source,
	st *store.MemoryStore,
	valuator portfolio.Valuator,
	eng *engine.Engine,
	responder chat.Responder,
	defaultUser string,
	coins []string,
	log *slog.Logger,
) *Server {
	if len(coins) == 0 {
		coins = defaultCoins
	}
	if defaultUser == "" {
		defaultUser = store.DefaultUserID
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		feed:        src,
		store:       st,
		valuator:    valuator,
		engine:      eng,
		chat:        responder,
		defaultUser: defaultUser,
		coins:       coins,
		log:         log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/coins", s.handleCoins)
	mux.HandleFunc("GET /api/profile", s.handleProfile)
	mux.HandleFunc("GET /api/profile/{userID}", s.handleProfile)
	mux.HandleFunc("POST /api/transaction", s.handleTransaction)
	mux.HandleFunc("POST /api/chat", s.handleChat)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: msg})
}

// writeDomainError maps domain errors onto the transport tier: 404 for
// unknown accounts and missing prices, 400 for malformed trades, 502 when
// the upstream feed is down.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var feedErr *domain.FeedUnavailableError
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrPriceUnavailable):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidAction), errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &feedErr):
		s.log.Warn("upstream feed failure", "error", err)
		writeError(w, http.StatusBadGateway, feedErr.Error())
	default:
		s.log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseCoinIDs extracts the "ids" query param as a comma-separated list,
// falling back to the configured default set.
func (s *Server) parseCoinIDs(r *http.Request) []string {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		return s.coins
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return s.coins
	}
	return ids
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.feed.Quotes(r.Context(), s.parseCoinIDs(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, CoinsResponse{Success: true, Data: quotes})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		userID = s.defaultUser
	}

	account, err := s.store.Get(userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	var quotes map[string]domain.MarketQuote
	if len(account.Holdings) > 0 {
		ids := make([]string, 0, len(account.Holdings))
		for asset := range account.Holdings {
			ids = append(ids, asset)
		}
		quotes, err = s.feed.Quotes(r.Context(), ids)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	pf, err := s.valuator.Breakdown(account.Holdings, quotes)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, ProfileResponse{
		Success: true,
		Profile: ProfileJSON{
			UserID:     account.UserID,
			Name:       account.Name,
			BalanceUSD: account.BalanceUSD,
		},
		Portfolio: pf,
	})
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CoinID == "" {
		writeError(w, http.StatusBadRequest, "coinId is required")
		return
	}
	if req.UserID == "" {
		req.UserID = s.defaultUser
	}

	res, err := s.engine.Execute(r.Context(), engine.Request{
		UserID:    req.UserID,
		Action:    req.Action,
		CoinID:    req.CoinID,
		AmountUSD: req.AmountUSD,
		Quantity:  req.Qty,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Business-rule rejections still answer 200; convertResult flips the
	// success flag.
	writeJSON(w, convertResult(res))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.chat.Reply(r.Context(), req.Message)
	if err != nil {
		s.log.Warn("chat proxy failed", "error", err)
		writeError(w, http.StatusBadGateway, "chat unavailable")
		return
	}
	writeJSON(w, ChatResponse{Success: true, Reply: reply})
}
