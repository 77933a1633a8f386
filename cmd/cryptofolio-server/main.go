package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"cryptofolio/internal/chat"
	"cryptofolio/internal/config"
	"cryptofolio/internal/engine"
	"cryptofolio/internal/feed"
	"cryptofolio/internal/httpapi"
	"cryptofolio/internal/portfolio"
	"cryptofolio/internal/store"
	"cryptofolio/internal/util"
)

func main() {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	cfgPath := "config/cryptofolio.yaml"
	if p := os.Getenv("CRYPTOFOLIO_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = config.Default()
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	src := feed.NewClient(cfg.Feed.BaseURL, time.Duration(cfg.Feed.TimeoutSeconds)*time.Second)
	st := store.NewMemoryStore(store.SeedAccounts()...)
	eng := engine.NewEngine(src, st)

	responder := chat.Fallback{}
	if cfg.Chat.APIKey != "" {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.Chat.APIKey})
		if err != nil {
			logger.Warn("chat model unavailable, using canned replies", "error", err)
		} else {
			responder.Primary = chat.NewGemini(client, cfg.Chat.Model)
		}
	}

	api := httpapi.NewServer(
		src, st,
		portfolio.Valuator{StrictQuotes: cfg.Pricing.StrictQuotes},
		eng, responder,
		store.DefaultUserID, cfg.Feed.DefaultCoins,
		logger,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: api.Handler()}

	go func() {
		logger.Info("cryptofolio-server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
