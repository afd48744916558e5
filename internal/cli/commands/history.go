package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tmdlint/internal/cli/output"
	"github.com/leapstack-labs/tmdlint/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	Rules bool // include per-rule counts
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [model-path]",
		Short: "List recorded analysis runs",
		Long: `List analysis runs recorded with --history (or history.enabled), newest
first. Pass a model path to list the runs of one model.`,
		Example: `  # List the last 10 runs
  tmdlint history

  # List the runs of one model with per-rule counts
  tmdlint history ./Sales.SemanticModel --by-rule`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			listOpts := state.ListOptions{Limit: opts.Limit}
			if len(args) > 0 {
				listOpts.ModelPath = args[0]
			}
			return runHistory(cmd, cc, listOpts, opts.Rules)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Maximum number of runs (0 for all)")
	cmd.Flags().BoolVar(&opts.Rules, "by-rule", false, "Show violation counts per rule")

	return cmd
}

// HistoryRun is the JSON form of one recorded run.
type HistoryRun struct {
	ID           string           `json:"id"`
	ModelPath    string           `json:"model_path"`
	RulesSource  string           `json:"rules_source"`
	CreatedAt    time.Time        `json:"created_at"`
	RulesChecked int              `json:"rules_checked"`
	Violations   int              `json:"violations"`
	Errors       int              `json:"errors"`
	Warnings     int              `json:"warnings"`
	Infos        int              `json:"infos"`
	Rules        []HistoryRuleRow `json:"rules,omitempty"`
}

// HistoryRuleRow is the violation count of one rule in a run.
type HistoryRuleRow struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

func runHistory(cmd *cobra.Command, cc *CommandContext, listOpts state.ListOptions, withRules bool) error {
	ctx := cmd.Context()
	r := cc.Renderer

	path := cc.Cfg.History.Path
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no history database at %s: run 'tmdlint analyze --history' first", path)
	}

	store, err := state.Open(ctx, path, cc.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, listOpts)
	if err != nil {
		return err
	}

	out := make([]HistoryRun, 0, len(runs))
	for _, run := range runs {
		hr := HistoryRun{
			ID:           run.ID,
			ModelPath:    run.ModelPath,
			RulesSource:  run.RulesSource,
			CreatedAt:    run.CreatedAt,
			RulesChecked: run.RulesChecked,
			Violations:   run.Violations,
			Errors:       run.Errors,
			Warnings:     run.Warnings,
			Infos:        run.Infos,
		}
		if withRules {
			counts, err := store.RuleCounts(ctx, run.ID)
			if err != nil {
				return err
			}
			for _, c := range counts {
				hr.Rules = append(hr.Rules, HistoryRuleRow{RuleID: c.RuleID, Severity: c.Severity.String(), Count: c.Count})
			}
		}
		out = append(out, hr)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	renderHistory(r, out)
	return nil
}

func renderHistory(r *output.Renderer, runs []HistoryRun) {
	if len(runs) == 0 {
		r.Println("No runs recorded.")
		return
	}

	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, table.Row{
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.ModelPath,
			run.Violations,
			run.Errors,
			run.Warnings,
			run.Infos,
			shortID(run.ID),
		})
	}
	r.Table(table.Row{"Date", "Model", "Violations", "Errors", "Warnings", "Info", "Run"}, rows)

	for _, run := range runs {
		if len(run.Rules) == 0 {
			continue
		}
		r.Println("")
		r.Printf("Run %s (%s)\n", shortID(run.ID), run.ModelPath)
		ruleRows := make([]table.Row, 0, len(run.Rules))
		for _, rc := range run.Rules {
			ruleRows = append(ruleRows, table.Row{rc.RuleID, rc.Severity, rc.Count})
		}
		r.Table(table.Row{"Rule", "Severity", "Violations"}, ruleRows)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
