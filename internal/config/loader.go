package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/tmdlint/internal/explain"
)

// EnvPrefix prefixes every configuration environment variable. A double
// underscore separates nested keys: TMDLINT_EXPLAIN__MODEL sets explain.model.
const EnvPrefix = "TMDLINT_"

// APIKeyEnv is read when explain.api_key is not configured.
const APIKeyEnv = "GEMINI_API_KEY"

// configFileNames are searched in the working directory, in order.
var configFileNames = []string{"tmdlint.yaml", "tmdlint.yml", ".tmdlint.yaml"}

// flagKeys maps flag names whose config key differs from the
// snake_case form of the flag name.
var flagKeys = map[string]string{
	"rules":   "rules_file",
	"output":  "report",
	"json":    "json_report",
	"disable": "lint.disabled",
	"only":    "lint.only",
	"explain": "explain.enabled",
	"history": "history.enabled",
}

func defaults() map[string]any {
	return map[string]any{
		"format":              DefaultFormat,
		"verbose":             false,
		"explain.enabled":     false,
		"explain.provider":    explain.DefaultProvider,
		"explain.model":       explain.DefaultModel,
		"explain.temperature": explain.DefaultTemperature,
		"explain.max_tokens":  explain.DefaultMaxTokens,
		"explain.timeout":     explain.DefaultTimeout.String(),
		"explain.max_retries": explain.DefaultMaxRetries,
		"explain.max_calls":   explain.DefaultMaxCalls,
		"explain.cache_size":  explain.DefaultCacheSize,
		"history.enabled":     false,
		"history.path":        DefaultHistoryPath,
	}
}

// findConfigFile returns the explicit path, or the first config file found
// in the working directory, or "".
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Only flags that were set on the command line are applied.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: TMDLINT_EXPLAIN__MAX_CALLS -> explain.max_calls
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = used

	if cfg.Explain.APIKey == "" {
		cfg.Explain.APIKey = os.Getenv(APIKeyEnv)
	}
	cfg.Explain.APIKey = os.ExpandEnv(cfg.Explain.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
