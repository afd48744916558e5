package report

import "github.com/leapstack-labs/tmdlint/pkg/core"

// Summary aggregates the outcome of a run.
type Summary struct {
	ObjectCounts core.ObjectCounts `json:"object_counts"`
	Violations   ViolationTotals   `json:"violations"`
	RulesChecked RuleRoster        `json:"rules_checked"`
}

// ViolationTotals groups violations. Groups are listed in the order their
// first violation appears.
type ViolationTotals struct {
	Total      int          `json:"total"`
	BySeverity []Bucket     `json:"by_severity"`
	ByCategory []Bucket     `json:"by_category"`
	ByRule     []RuleBucket `json:"by_rule"`
}

// Bucket is a labelled count.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RuleBucket counts the violations of one rule.
type RuleBucket struct {
	RuleID   string        `json:"rule_id"`
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Severity core.Severity `json:"severity"`
	Count    int           `json:"count"`
}

// RuleRoster lists every rule of the run with its violation count.
type RuleRoster struct {
	Total             int          `json:"total"`
	WithViolations    int          `json:"rules_with_violations"`
	WithoutViolations int          `json:"rules_without_violations"`
	AllRules          []RuleStatus `json:"all_rules"`
}

// RuleStatus is one roster entry.
type RuleStatus struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Category       string        `json:"category"`
	Severity       core.Severity `json:"severity"`
	ViolationCount int           `json:"violation_count"`
	HasViolations  bool          `json:"has_violations"`
}

// Summarize builds the summary of a run. rules is the set that was
// checked, in catalog order; every rule appears in the roster exactly once.
func Summarize(counts core.ObjectCounts, rules []core.Rule, violations []core.Violation) Summary {
	s := Summary{ObjectCounts: counts}
	s.Violations.Total = len(violations)

	severityIdx := make(map[string]int)
	categoryIdx := make(map[string]int)
	ruleIdx := make(map[string]int)

	for _, v := range violations {
		s.Violations.BySeverity = incr(s.Violations.BySeverity, severityIdx, v.Severity.String())
		s.Violations.ByCategory = incr(s.Violations.ByCategory, categoryIdx, v.Category)

		i, ok := ruleIdx[v.RuleID]
		if !ok {
			i = len(s.Violations.ByRule)
			ruleIdx[v.RuleID] = i
			s.Violations.ByRule = append(s.Violations.ByRule, RuleBucket{
				RuleID:   v.RuleID,
				Name:     v.RuleName,
				Category: v.Category,
				Severity: v.Severity,
			})
		}
		s.Violations.ByRule[i].Count++
	}

	s.RulesChecked.Total = len(rules)
	s.RulesChecked.AllRules = make([]RuleStatus, 0, len(rules))
	for _, rule := range rules {
		status := RuleStatus{
			ID:       rule.ID,
			Name:     rule.Name,
			Category: rule.Category,
			Severity: rule.Severity,
		}
		if i, ok := ruleIdx[rule.ID]; ok {
			status.ViolationCount = s.Violations.ByRule[i].Count
			status.HasViolations = true
			s.RulesChecked.WithViolations++
		} else {
			s.RulesChecked.WithoutViolations++
		}
		s.RulesChecked.AllRules = append(s.RulesChecked.AllRules, status)
	}
	return s
}

func incr(buckets []Bucket, index map[string]int, key string) []Bucket {
	if i, ok := index[key]; ok {
		buckets[i].Count++
		return buckets
	}
	index[key] = len(buckets)
	return append(buckets, Bucket{Key: key, Count: 1})
}

// Count returns the count for key, or 0.
func Count(buckets []Bucket, key string) int {
	for _, b := range buckets {
		if b.Key == key {
			return b.Count
		}
	}
	return 0
}
