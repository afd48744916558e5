package core

import "strings"

// DefaultCompatibilityLevel is used when a rule record omits CompatibilityLevel.
const DefaultCompatibilityLevel = 1200

// Rule is a best-practice rule loaded from a rule catalog.
// Expression documents the check for humans; it is never executed.
type Rule struct {
	ID                 string
	Name               string
	Category           string
	Description        string
	Severity           Severity
	Scope              string
	Expression         string
	FixExpression      string
	CompatibilityLevel int
}

// ScopeTokens splits Scope on commas and trims each token.
func (r Rule) ScopeTokens() []string {
	parts := strings.Split(r.Scope, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		tokens = append(tokens, strings.TrimSpace(p))
	}
	return tokens
}

// Info returns the rule metadata as a transfer object.
func (r Rule) Info() RuleInfo {
	return RuleInfo{
		ID:            r.ID,
		Name:          r.Name,
		Category:      r.Category,
		Description:   r.Description,
		Severity:      r.Severity,
		Scope:         r.Scope,
		FixExpression: r.FixExpression,
	}
}

// RuleInfo provides metadata about a rule for listings and tooling.
type RuleInfo struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Severity      Severity `json:"severity"`
	Scope         string   `json:"scope"`
	FixExpression string   `json:"fix_expression,omitempty"`
	Implemented   bool     `json:"implemented"`
}
