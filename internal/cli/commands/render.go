package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/tmdlint/internal/cli/output"
	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/report"
)

// renderDocument writes doc in the renderer's effective mode. With
// summaryOnly, text and markdown output stop after the summary.
func renderDocument(r *output.Renderer, doc *report.Document, summaryOnly bool) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return report.WriteJSON(r.Writer(), doc)
	case output.ModeMarkdown:
		if summaryOnly {
			renderSummaryMarkdown(r, doc)
			return nil
		}
		return report.WriteMarkdown(r.Writer(), doc)
	default:
		renderDocumentText(r, doc, summaryOnly)
		return nil
	}
}

func renderSummaryMarkdown(r *output.Renderer, doc *report.Document) {
	s := doc.Summary
	r.Printf("**%s**: %d violations (%d rules with violations, %d passed)\n",
		doc.ModelPath, s.Violations.Total, s.RulesChecked.WithViolations, s.RulesChecked.WithoutViolations)
}

func renderDocumentText(r *output.Renderer, doc *report.Document, summaryOnly bool) {
	styles := r.Styles()
	s := doc.Summary
	c := s.ObjectCounts

	r.Println("")
	r.Println(styles.Header1.Render("TMDL Best Practices Analysis"))
	r.Println(styles.Muted.Render(doc.ModelPath))
	r.Println("")
	r.Printf("   Tables: %d | Measures: %d | Columns: %d | Relationships: %d | Partitions: %d\n",
		c.Tables, c.Measures, c.Columns, c.Relationships, c.Partitions)
	r.Printf("   Violations: %s", styles.Bold.Render(fmt.Sprint(s.Violations.Total)))
	for _, sev := range []core.Severity{core.SeverityError, core.SeverityWarning, core.SeverityInfo} {
		if n := report.Count(s.Violations.BySeverity, sev.String()); n > 0 {
			r.Printf("  %s", styles.Severity(sev).Render(fmt.Sprintf("%d %s", n, sev)))
		}
	}
	r.Println("")
	r.Println("")

	if s.Violations.Total == 0 {
		r.Println("   " + styles.StatusSuccess.String() + fmt.Sprintf(" All %d rules passed", s.RulesChecked.Total))
		r.Println("")
		return
	}

	rows := make([]table.Row, 0, len(s.Violations.ByRule))
	for _, b := range s.Violations.ByRule {
		rows = append(rows, table.Row{b.RuleID, b.Category, b.Severity.String(), b.Count})
	}
	r.Table(table.Row{"Rule", "Category", "Severity", "Violations"}, rows)
	r.Println("")

	if summaryOnly {
		return
	}

	titleCaser := cases.Title(language.English)
	for _, group := range doc.ByCategory() {
		r.Println(styles.Header2.Render(titleCaser.String(group.Category)))
		for _, v := range group.Violations {
			r.Printf("   %s  %s %s  %s\n",
				styles.Severity(v.Severity).Render(fmt.Sprintf("%-7s", v.Severity)),
				v.ObjectKind,
				styles.Bold.Render(v.ObjectName),
				v.RuleName,
			)
			if v.FilePath != "" {
				r.Println(styles.Muted.Render("            " + v.FilePath))
			}
			if v.FixSuggestion != "" {
				r.Println(styles.Muted.Render("            Fix: " + v.FixSuggestion))
			}
		}
		r.Println("")
	}

	if doc.Recommendations != "" {
		r.Println(styles.Header2.Render("Strategic Recommendations"))
		for _, line := range strings.Split(doc.Recommendations, "\n") {
			r.Println("   " + line)
		}
		r.Println("")
	}
}
