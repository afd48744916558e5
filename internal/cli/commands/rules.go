package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/tmdlint/internal/cli/output"
	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/lint"
	_ "github.com/leapstack-labs/tmdlint/pkg/lint/rules" // register built-in predicates
	"github.com/leapstack-labs/tmdlint/pkg/ruleset"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Category string // Filter by category
	Details  bool   // Show full documentation
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the rules of the catalog",
		Long: `List the rules of the rule catalog with their severity and whether a
built-in check implements them. Rules without a check never report violations.

Use --details to see full documentation including examples.`,
		Example: `  # List all rules
  tmdlint rules

  # Show details for a specific rule
  tmdlint rules DAX_COLUMNS_FULLY_QUALIFIED

  # List the rules of a custom catalog as JSON
  tmdlint rules --rules rules.yaml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			catalog, err := loadCatalog(cc.Cfg.RulesFile)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				return showRule(cc.Renderer, catalog, args[0])
			}
			return listRules(cc.Renderer, catalog, opts)
		},
	}

	cmd.Flags().String("rules", "", "Rule catalog file (JSON or YAML); default is the built-in catalog")
	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Filter by category")
	cmd.Flags().BoolVarP(&opts.Details, "details", "d", false, "Show full documentation")

	return cmd
}

func loadCatalog(path string) (*ruleset.Ruleset, error) {
	if path == "" {
		return ruleset.Default(), nil
	}
	return ruleset.Load(path)
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Source string          `json:"source"`
	Rules  []core.RuleInfo `json:"rules"`
	Count  struct {
		Implemented int `json:"implemented"`
		Total       int `json:"total"`
	} `json:"count"`
}

func ruleInfos(catalog *ruleset.Ruleset, category string) []core.RuleInfo {
	var infos []core.RuleInfo
	for _, rule := range catalog.Rules() {
		if category != "" && !strings.EqualFold(rule.Category, category) {
			continue
		}
		info := rule.Info()
		_, info.Implemented = lint.Lookup(rule.ID)
		infos = append(infos, info)
	}
	return infos
}

func listRules(r *output.Renderer, catalog *ruleset.Ruleset, opts *RulesOptions) error {
	infos := ruleInfos(catalog, opts.Category)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := RulesJSONOutput{Source: catalog.Source(), Rules: infos}
		for _, info := range infos {
			if info.Implemented {
				out.Count.Implemented++
			}
		}
		out.Count.Total = len(infos)
		if out.Rules == nil {
			out.Rules = []core.RuleInfo{}
		}
		return r.JSON(out)
	case output.ModeMarkdown:
		listRulesMarkdown(r, catalog, infos, opts.Details)
	default:
		listRulesText(r, catalog, infos, opts.Details)
	}
	return nil
}

func listRulesText(r *output.Renderer, catalog *ruleset.Ruleset, infos []core.RuleInfo, details bool) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Rules (%d, catalog: %s)", len(infos), catalog.Source())))
	r.Println("")

	rows := make([]table.Row, 0, len(infos))
	for _, info := range infos {
		check := styles.StatusSuccess.String()
		if !info.Implemented {
			check = styles.Muted.Render("-")
		}
		rows = append(rows, table.Row{
			info.ID,
			info.Category,
			styles.Severity(info.Severity).Render(info.Severity.String()),
			check,
		})
	}
	r.Table(table.Row{"Rule", "Category", "Severity", "Check"}, rows)

	if details {
		r.Println("")
		for _, info := range infos {
			r.Println(styles.Bold.Render(info.ID) + "  " + info.Name)
			r.Println(styles.Muted.Render("    " + info.Description))
			if def, ok := lint.Lookup(info.ID); ok && def.Rationale != "" {
				r.Println(styles.Muted.Render("    Why: " + truncateOneLine(def.Rationale, 80)))
			}
			r.Println("")
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'tmdlint rules <rule-id>' for detailed documentation"))
	r.Println("")
}

func listRulesMarkdown(r *output.Renderer, catalog *ruleset.Ruleset, infos []core.RuleInfo, details bool) {
	r.Println("# Rules")
	r.Println("")
	r.Printf("Catalog: `%s`\n\n", catalog.Source())

	titleCaser := cases.Title(language.English)
	currentCategory := ""
	for _, info := range infos {
		if info.Category != currentCategory {
			if currentCategory != "" {
				r.Println("")
			}
			currentCategory = info.Category
			r.Println("## " + titleCaser.String(currentCategory))
			r.Println("")
		}

		implemented := ""
		if !info.Implemented {
			implemented = " (no check)"
		}
		r.Printf("- **%s** - %s (`%s`)%s\n", info.ID, info.Name, info.Severity, implemented)
		if details {
			r.Println("  " + info.Description)
		}
	}
	r.Println("")
}

func showRule(r *output.Renderer, catalog *ruleset.Ruleset, ruleID string) error {
	rule, ok := catalog.Get(ruleID)
	if !ok {
		return fmt.Errorf("rule %q not found in %s", ruleID, catalog.Source())
	}
	info := rule.Info()
	def, implemented := lint.Lookup(rule.ID)
	info.Implemented = implemented

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeMarkdown:
		showRuleMarkdown(r, rule, def)
	default:
		showRuleText(r, rule, def, implemented)
	}
	return nil
}

func showRuleText(r *output.Renderer, rule core.Rule, def lint.PredicateDef, implemented bool) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Category"), rule.Category)
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), styles.Severity(rule.Severity).Render(rule.Severity.String()))
	r.Printf("  %s: %s\n", styles.Bold.Render("Scope"), rule.Scope)
	if !implemented {
		r.Printf("  %s: %s\n", styles.Bold.Render("Check"), styles.Warning.Render("not implemented, never reports"))
	}
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if def.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		r.Println("  " + strings.ReplaceAll(def.Rationale, "\n", " "))
		r.Println("")
	}
	if def.BadExample != "" {
		r.Println(styles.Bold.Render("Bad Example"))
		for _, line := range strings.Split(def.BadExample, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
		r.Println("")
	}
	if def.GoodExample != "" {
		r.Println(styles.Bold.Render("Good Example"))
		for _, line := range strings.Split(def.GoodExample, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
		r.Println("")
	}
	if rule.FixExpression != "" {
		r.Println(styles.Bold.Render("How to Fix"))
		r.Println("  " + rule.FixExpression)
		r.Println("")
	}
}

func showRuleMarkdown(r *output.Renderer, rule core.Rule, def lint.PredicateDef) {
	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Category:** %s | **Severity:** `%s` | **Scope:** %s\n\n", rule.Category, rule.Severity, rule.Scope)
	r.Println(rule.Description)
	r.Println("")

	if def.Rationale != "" {
		r.Println("## Why This Matters")
		r.Println("")
		r.Println(def.Rationale)
		r.Println("")
	}
	if def.BadExample != "" {
		r.Println("## Bad Example")
		r.Println("")
		r.Println("```dax")
		r.Println(def.BadExample)
		r.Println("```")
		r.Println("")
	}
	if def.GoodExample != "" {
		r.Println("## Good Example")
		r.Println("")
		r.Println("```dax")
		r.Println(def.GoodExample)
		r.Println("```")
		r.Println("")
	}
	if rule.FixExpression != "" {
		r.Println("## How to Fix")
		r.Println("")
		r.Printf("`%s`\n\n", rule.FixExpression)
	}
}

func truncateOneLine(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
