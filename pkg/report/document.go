package report

import (
	"time"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// Document is the complete outcome of one analysis run.
type Document struct {
	RunID       string
	ModelPath   string
	GeneratedAt time.Time
	RulesSource string
	Summary     Summary
	Violations  []core.Violation

	// Recommendations holds the strategic advice of an explanation
	// provider; empty when none was requested or it failed.
	Recommendations string
}

// Enhanced reports whether any violation carries a provider annotation.
func (d *Document) Enhanced() bool {
	for _, v := range d.Violations {
		if v.Enhanced() {
			return true
		}
	}
	return d.Recommendations != ""
}

// ByCategory groups violations by category in first-seen order.
func (d *Document) ByCategory() []CategoryGroup {
	var groups []CategoryGroup
	index := make(map[string]int)
	for _, v := range d.Violations {
		i, ok := index[v.Category]
		if !ok {
			i = len(groups)
			index[v.Category] = i
			groups = append(groups, CategoryGroup{Category: v.Category})
		}
		groups[i].Violations = append(groups[i].Violations, v)
	}
	return groups
}

// CategoryGroup is the violations of one category.
type CategoryGroup struct {
	Category   string
	Violations []core.Violation
}
