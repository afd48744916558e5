package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tmdlint/internal/analyzer"
	"github.com/leapstack-labs/tmdlint/internal/explain"
	"github.com/leapstack-labs/tmdlint/internal/state"
	"github.com/leapstack-labs/tmdlint/pkg/report"
)

// AnalyzeOptions holds options for the analyze command that are not
// configuration keys.
type AnalyzeOptions struct {
	Watch bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <model-path>",
		Short: "Check a TMDL model against the best-practice rules",
		Long: `Parse the TMDL definition folder of a Power BI semantic model and check
every object against the rule catalog.

The model path is a folder that contains the definition folder, usually the
.SemanticModel folder, or any folder below which a .SemanticModel project lives.

Output adapts to environment:
  - Terminal: Styled summary and violations
  - Piped/Scripted: Markdown report
  - JSON: Machine-readable result`,
		Example: `  # Analyze a model and print the report
  tmdlint analyze ./Sales.SemanticModel

  # Write the Markdown report to a file
  tmdlint analyze ./Sales.SemanticModel -o report.md

  # Use a custom rule catalog and skip one rule
  tmdlint analyze ./Sales.SemanticModel --rules rules.yaml --disable HIDE_FOREIGN_KEYS

  # Explain violations with Gemini (needs GEMINI_API_KEY)
  tmdlint analyze ./Sales.SemanticModel --explain

  # Re-run whenever a .tmdl file changes
  tmdlint analyze ./Sales.SemanticModel --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write the Markdown report to this file")
	cmd.Flags().String("json", "", "Write the JSON result to this file")
	cmd.Flags().String("rules", "", "Rule catalog file (JSON or YAML); default is the built-in catalog")
	cmd.Flags().StringSlice("disable", nil, "Rule IDs to skip")
	cmd.Flags().StringSlice("only", nil, "Only check these rule IDs")
	cmd.Flags().Bool("explain", false, "Explain violations with an LLM provider")
	cmd.Flags().Bool("history", false, "Record the run in the history database")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when model files change")

	return cmd
}

func runAnalyze(cmd *cobra.Command, modelPath string, opts *AnalyzeOptions) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)

	a, cleanup, err := newAnalyzer(ctx, cc)
	if err != nil {
		return err
	}
	defer cleanup()

	var store state.Store
	if cc.Cfg.History.Enabled {
		s, err := openHistory(ctx, cc)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	run := func(ctx context.Context) error {
		return analyzeOnce(ctx, cc, a, store, modelPath)
	}
	if !opts.Watch {
		return run(ctx)
	}

	if err := run(ctx); err != nil {
		cc.Renderer.Warning(err.Error())
	}
	return watchModel(ctx, cc, modelPath, run)
}

// newAnalyzer builds the analyzer, with an enhancer when explanations are
// enabled. A missing API key disables explanations with a warning.
func newAnalyzer(ctx context.Context, cc *CommandContext) (*analyzer.Analyzer, func(), error) {
	cleanup := func() {}

	lintCfg, err := cc.Cfg.Lint.Build()
	if err != nil {
		return nil, cleanup, err
	}
	acfg := analyzer.Config{
		RulesFile: cc.Cfg.RulesFile,
		Lint:      lintCfg,
		Logger:    cc.Logger,
	}

	if cc.Cfg.Explain.Enabled {
		opts := cc.Cfg.Explain.Options()
		provider, err := explain.NewProvider(ctx, opts)
		switch {
		case errors.Is(err, explain.ErrNoAPIKey):
			cc.Renderer.Warning("explanations disabled: no API key (set GEMINI_API_KEY or explain.api_key)")
		case err != nil:
			return nil, cleanup, err
		default:
			enhancer, err := explain.NewEnhancer(provider, opts, cc.Logger)
			if err != nil {
				return nil, cleanup, err
			}
			acfg.Enhancer = enhancer
			if c, ok := provider.(io.Closer); ok {
				cleanup = func() { _ = c.Close() }
			}
		}
	}

	a, err := analyzer.New(acfg)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return a, cleanup, nil
}

func openHistory(ctx context.Context, cc *CommandContext) (*state.SQLiteStore, error) {
	path := cc.Cfg.History.Path
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return state.Open(ctx, path, cc.Logger)
}

func analyzeOnce(ctx context.Context, cc *CommandContext, a *analyzer.Analyzer, store state.Store, modelPath string) error {
	r := cc.Renderer

	result, err := a.Analyze(ctx, modelPath)
	if err != nil {
		return err
	}
	for _, skipped := range result.Skipped {
		r.Warning("skipped " + skipped.Error())
	}
	doc := result.Document

	if path := cc.Cfg.Report; path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteMarkdown(w, doc) }); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.Success("report written to " + path)
	}
	if path := cc.Cfg.JSONReport; path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteJSON(w, doc) }); err != nil {
			return fmt.Errorf("failed to write JSON result: %w", err)
		}
		r.Success("JSON result written to " + path)
	}

	if store != nil {
		if _, err := store.RecordRun(ctx, doc); err != nil {
			cc.Logger.Error("failed to record run", "error", err)
			r.Warning("run not recorded: " + err.Error())
		}
	}

	// With a report file the terminal only gets the summary.
	return renderDocument(r, doc, cc.Cfg.Report != "")
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
