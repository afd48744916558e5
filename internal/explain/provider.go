// Package explain attaches plain-language explanations and strategic
// recommendations to the violations of a finished analysis run, using a
// large language model.
package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoAPIKey is returned when a provider is created without credentials.
var ErrNoAPIKey = errors.New("explain: no API key configured")

// Prompt is one request to a provider.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// Provider generates text for a prompt.
type Provider interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Config holds explanation settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	// MaxTokens bounds a rule explanation; recommendations use a larger budget.
	MaxTokens int
	// Timeout applies to each provider call.
	Timeout time.Duration
	// MaxRetries is the number of retries after a failed call.
	MaxRetries int
	// MaxCalls caps the provider calls of one run, retries and the
	// recommendation call included.
	MaxCalls int
	// CacheSize is the number of explanations kept across runs.
	CacheSize int
}

// Defaults.
const (
	DefaultProvider    = "gemini"
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 300
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 2
	DefaultMaxCalls    = 5
	DefaultCacheSize   = 128
)

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Provider:    DefaultProvider,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		MaxCalls:    DefaultMaxCalls,
		CacheSize:   DefaultCacheSize,
	}
}

// NewProvider creates the provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", DefaultProvider:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("explain: unknown provider %q", cfg.Provider)
	}
}
