package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// DefaultMaxTokens leaves room for an NF-e with a few hundred item lines.
const DefaultMaxTokens = 4096

// Config for the OpenAI client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0..2; 0 keeps field values reproducible
	Timeout     time.Duration // http client timeout
	MaxTokens   int           // completion cap, default DefaultMaxTokens

	// DisableJSONMode omits response_format. Some OpenAI-compatible servers
	// reject it; the reply is then unwrapped from markdown fences instead.
	DisableJSONMode bool
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
