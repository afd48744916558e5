package explain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

const (
	ruleSystem           = "You are a Power BI and DAX expert who explains technical concepts clearly and provides strategic guidance."
	recommendationSystem = "You are a senior Power BI consultant providing strategic guidance on model optimization."

	maxRuleTokens            = 600
	recommendationMaxTokens  = 800
	maxExampleObjects        = 3
	maxExampleExpressions    = 2
	maxExpressionRunes       = 500
	recommendationExampleCap = 3
)

// ruleGroup is the violations of one rule, in first-seen order.
type ruleGroup struct {
	sample      core.Violation
	count       int
	objects     []string
	expressions []string
	indexes     []int
}

func rulePrompt(g *ruleGroup, maxTokens int) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "As a Power BI and DAX expert, explain this best practice rule that has %d violations:\n\n", g.count)
	fmt.Fprintf(&sb, "Rule: %s\nRule ID: %s\nCategory: %s\nSeverity: %s\n\n",
		g.sample.RuleName, g.sample.RuleID, g.sample.Category, g.sample.Severity)
	fmt.Fprintf(&sb, "Standard Description: %s\n", g.sample.Description)

	sb.WriteString("\nExample objects affected:\n")
	for _, name := range g.objects {
		fmt.Fprintf(&sb, "- %s\n", name)
	}
	for _, expr := range g.expressions {
		fmt.Fprintf(&sb, "\nExample DAX code:\n```dax\n%s\n```\n", expr)
	}

	fmt.Fprintf(&sb, `
Please provide a comprehensive explanation for ALL %[1]d violations of this rule:

1. **Why This Matters**: the core issue and why the rule exists
2. **Impact**: performance, functionality and maintenance impact
3. **How to Fix**: a step-by-step approach to fix all violations of this type
4. **Best Practice**: the recommended pattern going forward
5. **Priority**: how urgent the fix is given %[1]d violations

Make it actionable and specific to fixing all violations at once.
`, g.count)

	return Prompt{
		System:    ruleSystem,
		User:      sb.String(),
		MaxTokens: min(maxTokens+200, maxRuleTokens),
	}
}

type ruleSummary struct {
	RuleID         string   `json:"rule_id"`
	RuleName       string   `json:"rule_name"`
	Category       string   `json:"category"`
	Severity       string   `json:"severity"`
	Count          int      `json:"count"`
	ExampleObjects []string `json:"example_objects"`
}

func recommendationPrompt(summaries []ruleSummary, total int) (Prompt, error) {
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return Prompt{}, err
	}

	user := fmt.Sprintf(`As a Power BI expert consultant, analyze this model's best practice violations and provide strategic recommendations.

Model has %d total violations across %d rule types:

%s

Please provide:

1. **Top 3 Priority Areas**: which violation types to fix first and why
2. **Implementation Strategy**: the best order to fix them, quick wins versus larger refactoring
3. **Expected Impact**: the benefit of fixing each area
4. **Effort Estimation**: rough effort per violation type, bulk operations versus careful analysis
5. **Root Cause Patterns**: systemic modeling issues worth changing

Be specific and actionable, and reference actual rule names and counts.
`, total, len(summaries), data)

	return Prompt{System: recommendationSystem, User: user, MaxTokens: recommendationMaxTokens}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
