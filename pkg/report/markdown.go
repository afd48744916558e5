package report

import (
	"fmt"
	"io"
	"strings"
)

// DateLayout is the timestamp layout of report headers.
const DateLayout = "2006-01-02 15:04:05"

// Markdown renders doc as a Markdown report. Output depends only on doc.
func Markdown(doc *Document) string {
	var b strings.Builder
	s := doc.Summary

	b.WriteString("# TMDL Best Practices Analysis Report\n")
	fmt.Fprintf(&b, "\nModel: %s\n", doc.ModelPath)
	fmt.Fprintf(&b, "Analysis Date: %s\n", doc.GeneratedAt.Format(DateLayout))

	b.WriteString("\n## Summary\n")
	fmt.Fprintf(&b, "- Tables: %d\n", s.ObjectCounts.Tables)
	fmt.Fprintf(&b, "- Measures: %d\n", s.ObjectCounts.Measures)
	fmt.Fprintf(&b, "- Columns: %d\n", s.ObjectCounts.Columns)
	fmt.Fprintf(&b, "- Relationships: %d\n", s.ObjectCounts.Relationships)
	fmt.Fprintf(&b, "- Total Violations: %d\n", s.Violations.Total)

	b.WriteString("\n### Violations by Severity\n")
	for _, bucket := range s.Violations.BySeverity {
		fmt.Fprintf(&b, "- %s: %d\n", bucket.Key, bucket.Count)
	}

	b.WriteString("\n### Violations by Category\n")
	for _, bucket := range s.Violations.ByCategory {
		fmt.Fprintf(&b, "- %s: %d\n", bucket.Key, bucket.Count)
	}

	if len(s.RulesChecked.AllRules) > 0 {
		fmt.Fprintf(&b, "\n### Rules Checked (%d with violations, %d passed)\n",
			s.RulesChecked.WithViolations, s.RulesChecked.WithoutViolations)
		for _, rule := range s.RulesChecked.AllRules {
			fmt.Fprintf(&b, "- %s (%s, %s): %d\n", rule.Name, rule.ID, rule.Severity, rule.ViolationCount)
		}
	}

	if doc.Recommendations != "" {
		b.WriteString("\n## Strategic Recommendations\n\n")
		b.WriteString(strings.TrimSpace(doc.Recommendations))
		b.WriteString("\n")
	}

	if len(doc.Violations) > 0 {
		b.WriteString("\n## Detailed Violations\n")
		for _, group := range doc.ByCategory() {
			fmt.Fprintf(&b, "\n### %s\n", group.Category)
			for _, v := range group.Violations {
				fmt.Fprintf(&b, "\n#### %s\n", v.RuleName)
				fmt.Fprintf(&b, "**Object:** %s (%s)\n", v.ObjectName, v.ObjectKind)
				fmt.Fprintf(&b, "**Severity:** %s\n", v.Severity)
				fmt.Fprintf(&b, "**File:** %s\n", v.FilePath)
				fmt.Fprintf(&b, "**Description:** %s\n", v.Description)
				if v.FixSuggestion != "" {
					fmt.Fprintf(&b, "**Fix Suggestion:** %s\n", v.FixSuggestion)
				}
				if v.Enhanced() && v.Explanation() != "" {
					fmt.Fprintf(&b, "**Explanation:** %s\n", strings.TrimSpace(v.Explanation()))
				}
			}
		}
	}

	return b.String()
}

// WriteMarkdown writes the Markdown report of doc to w.
func WriteMarkdown(w io.Writer, doc *Document) error {
	_, err := io.WriteString(w, Markdown(doc))
	return err
}
