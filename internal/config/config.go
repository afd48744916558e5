// Package config loads tmdlint configuration from defaults, a YAML file,
// TMDLINT_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/tmdlint/internal/explain"
	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/lint"
)

// Config holds all configuration options.
type Config struct {
	RulesFile  string        `koanf:"rules_file"`
	Format     string        `koanf:"format"`      // auto, text, markdown, json
	Report     string        `koanf:"report"`      // Markdown report path
	JSONReport string        `koanf:"json_report"` // JSON result path
	Verbose    bool          `koanf:"verbose"`
	Lint       LintConfig    `koanf:"lint"`
	Explain    ExplainConfig `koanf:"explain"`
	History    HistoryConfig `koanf:"history"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
}

// LintConfig selects and adjusts rules.
type LintConfig struct {
	Disabled []string          `koanf:"disabled"`
	Only     []string          `koanf:"only"`
	Severity map[string]string `koanf:"severity"` // rule ID -> INFO, WARNING or ERROR
}

// ExplainConfig configures violation explanations.
type ExplainConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Provider    string        `koanf:"provider"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	Temperature float64       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxRetries  int           `koanf:"max_retries"`
	MaxCalls    int           `koanf:"max_calls"`
	CacheSize   int           `koanf:"cache_size"`
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Output formats.
const (
	FormatAuto     = "auto"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Default configuration values.
const (
	DefaultFormat      = FormatAuto
	DefaultHistoryPath = ".tmdlint/history.db"
)

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatAuto, FormatText, FormatMarkdown, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q: must be one of auto, text, markdown, json", c.Format)
	}
	if _, err := c.Lint.Build(); err != nil {
		return err
	}
	if c.Explain.Temperature < 0 || c.Explain.Temperature > 2 {
		return fmt.Errorf("invalid explain.temperature %v: must be between 0 and 2", c.Explain.Temperature)
	}
	if c.Explain.MaxCalls <= 0 {
		return fmt.Errorf("invalid explain.max_calls %d: must be at least 1", c.Explain.MaxCalls)
	}
	if c.Explain.Timeout <= 0 {
		return fmt.Errorf("invalid explain.timeout %v: must be positive", c.Explain.Timeout)
	}
	if c.Explain.MaxRetries < 0 {
		return fmt.Errorf("invalid explain.max_retries %d: must not be negative", c.Explain.MaxRetries)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	return nil
}

// Build converts the settings into a lint configuration. Rule IDs are kept
// as given; the lint configuration matches them case-insensitively, since
// environment variable keys arrive lower-cased.
func (l LintConfig) Build() (*lint.Config, error) {
	cfg := lint.NewConfig().Disable(ruleIDs(l.Disabled)...)
	cfg.OnlyRules = ruleIDs(l.Only)
	for id, name := range l.Severity {
		sev, err := core.ParseSeverity(name)
		if err != nil {
			return nil, fmt.Errorf("lint.severity.%s: %w", id, err)
		}
		cfg.SetSeverity(strings.TrimSpace(id), sev)
	}
	return cfg, nil
}

// Options converts the settings into explanation options.
func (e ExplainConfig) Options() explain.Config {
	return explain.Config{
		Provider:    e.Provider,
		APIKey:      e.APIKey,
		Model:       e.Model,
		Temperature: e.Temperature,
		MaxTokens:   e.MaxTokens,
		Timeout:     e.Timeout,
		MaxRetries:  e.MaxRetries,
		MaxCalls:    e.MaxCalls,
		CacheSize:   e.CacheSize,
	}
}

func ruleIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
