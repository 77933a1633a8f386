package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the cryptofolio backend.
type Config struct {
	Server  Server  `yaml:"server"`
	Feed    Feed    `yaml:"feed"`
	Pricing Pricing `yaml:"pricing"`
	Chat    Chat    `yaml:"chat"`
	Logging Logging `yaml:"logging"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Feed configures the market-data provider.
type Feed struct {
	BaseURL        string   `yaml:"base_url"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	DefaultCoins   []string `yaml:"default_coins"`
}

// Pricing controls valuation behaviour. StrictQuotes fails a portfolio
// valuation when a held asset has no quote instead of valuing it at zero.
type Pricing struct {
	StrictQuotes bool `yaml:"strict_quotes"`
}

// Chat configures the optional generative-text proxy. With no API key the
// chat endpoint answers from canned replies.
type Chat struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: Server{Host: "0.0.0.0", Port: 8080},
		Feed: Feed{
			TimeoutSeconds: 10,
			DefaultCoins:   []string{"bitcoin", "ethereum", "solana"},
		},
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// Load reads the YAML configuration file at the given path over the built-in
// defaults, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("FEED_BASE_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}

	if v := os.Getenv("CHAT_MODEL"); v != "" {
		cfg.Chat.Model = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Standard Gemini env var (canonical name used by the SDK).
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Chat.APIKey = v
	}
}
