// Package analyzer runs a full best-practice analysis of a TMDL model:
// parse, check, summarize and, optionally, explain.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/tmdlint/internal/parser"
	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/lint"
	"github.com/leapstack-labs/tmdlint/pkg/report"
	"github.com/leapstack-labs/tmdlint/pkg/ruleset"

	// built-in predicates
	_ "github.com/leapstack-labs/tmdlint/pkg/lint/rules"
)

// Enhancer annotates the violations of a finished run. It may set
// Violation.Annotation and returns optional recommendations; it must not
// change any other field. Failures are handled inside the enhancer.
type Enhancer interface {
	Enhance(ctx context.Context, violations []core.Violation, model *core.Model) string
}

// Config holds analyzer configuration.
type Config struct {
	// RulesFile is a JSON or YAML rule catalog. Empty uses the built-in catalog.
	RulesFile string
	// Lint selects and adjusts rules (optional)
	Lint *lint.Config
	// Enhancer explains violations after checking (optional)
	Enhancer Enhancer
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Now stamps results (optional, defaults to time.Now)
	Now func() time.Time
}

// Analyzer checks models against a rule catalog loaded once at construction.
// An Analyzer may be reused for any number of runs.
type Analyzer struct {
	catalog  *ruleset.Ruleset
	rules    []core.Rule
	parser   *parser.Parser
	checker  *lint.Checker
	enhancer Enhancer
	logger   *slog.Logger
	now      func() time.Time
}

// Result is the outcome of one run.
type Result struct {
	Document *report.Document
	Model    *core.Model
	// Skipped lists table files left out of the model
	Skipped []parser.FileError
}

// New loads the rule catalog and creates an analyzer. A catalog that cannot
// be loaded is an error.
func New(cfg Config) (*Analyzer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	catalog := ruleset.Default()
	if cfg.RulesFile != "" {
		var err error
		catalog, err = ruleset.Load(cfg.RulesFile)
		if err != nil {
			logger.Error("failed to load rules", "path", cfg.RulesFile, "error", err)
			return nil, err
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	a := &Analyzer{
		catalog:  catalog,
		rules:    cfg.Lint.Apply(catalog.Rules()),
		parser:   parser.New(logger),
		checker:  lint.NewChecker(logger),
		enhancer: cfg.Enhancer,
		logger:   logger,
		now:      now,
	}
	logger.Debug("rules loaded",
		"source", catalog.Source(),
		"catalog", catalog.Len(),
		"active", len(a.rules),
	)
	return a, nil
}

// Catalog returns the loaded rule catalog.
func (a *Analyzer) Catalog() *ruleset.Ruleset { return a.catalog }

// Rules returns the rules checked by each run, in catalog order.
func (a *Analyzer) Rules() []core.Rule {
	out := make([]core.Rule, len(a.rules))
	copy(out, a.rules)
	return out
}

// Analyze parses the model under modelPath and checks it.
func (a *Analyzer) Analyze(ctx context.Context, modelPath string) (*Result, error) {
	a.logger.Info("starting analysis", "model", modelPath)

	parsed, err := a.parser.ParseModelDirectory(ctx, modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	model := parsed.Model

	violations, err := a.checker.Check(ctx, a.rules, model)
	if err != nil {
		return nil, err
	}

	doc := &report.Document{
		RunID:       uuid.NewString(),
		ModelPath:   modelPath,
		GeneratedAt: a.now(),
		RulesSource: a.catalog.Source(),
		Summary:     report.Summarize(model.Counts(), a.rules, violations),
		Violations:  violations,
	}

	// The violation list is final from here on.
	if a.enhancer != nil && len(violations) > 0 {
		doc.Recommendations = a.enhancer.Enhance(ctx, doc.Violations, model)
	}

	a.logger.Info("analysis complete",
		"run_id", doc.RunID,
		"violations", len(violations),
		"skipped_files", len(parsed.Skipped),
	)
	return &Result{Document: doc, Model: model, Skipped: parsed.Skipped}, nil
}
