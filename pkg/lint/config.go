package lint

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// Config selects which catalog rules run and at what severity. Rule IDs
// are matched case-insensitively.
type Config struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// OnlyRules, when non-empty, restricts the run to these rule IDs
	OnlyRules []string

	// SeverityOverrides replaces the catalog severity of rules
	SeverityOverrides map[string]core.Severity
}

// NewConfig creates a configuration with every rule enabled.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]core.Severity),
	}
}

// Disable turns off the given rules.
func (c *Config) Disable(ruleIDs ...string) *Config {
	for _, id := range ruleIDs {
		c.DisabledRules[id] = true
	}
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(ruleID string, severity core.Severity) *Config {
	c.SeverityOverrides[ruleID] = severity
	return c
}

// Enabled reports whether the rule takes part in a run.
func (c *Config) Enabled(ruleID string) bool {
	if c == nil {
		return true
	}
	for id, off := range c.DisabledRules {
		if off && strings.EqualFold(id, ruleID) {
			return false
		}
	}
	return len(c.OnlyRules) == 0 || slices.ContainsFunc(c.OnlyRules, func(id string) bool {
		return strings.EqualFold(id, ruleID)
	})
}

// severity returns the override for ruleID. An exact match wins over a
// case-insensitive one.
func (c *Config) severity(ruleID string) (core.Severity, bool) {
	if sev, ok := c.SeverityOverrides[ruleID]; ok {
		return sev, true
	}
	for id, sev := range c.SeverityOverrides {
		if strings.EqualFold(id, ruleID) {
			return sev, true
		}
	}
	return 0, false
}

// Apply returns the enabled rules, with severity overrides applied, in
// catalog order. The input slice is not modified.
func (c *Config) Apply(rules []core.Rule) []core.Rule {
	out := make([]core.Rule, 0, len(rules))
	for _, rule := range rules {
		if !c.Enabled(rule.ID) {
			continue
		}
		if c != nil {
			if sev, ok := c.severity(rule.ID); ok && sev.Valid() {
				rule.Severity = sev
			}
		}
		out = append(out, rule)
	}
	return out
}
