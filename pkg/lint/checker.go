package lint

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// Checker evaluates catalog rules against a model using registered predicates.
type Checker struct {
	logger *slog.Logger
}

// NewChecker creates a checker. A nil logger discards output.
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{logger: logger}
}

// Check evaluates every rule against the entities in its scope and returns
// the violations in rule order, then scope order.
func (c *Checker) Check(ctx context.Context, rules []core.Rule, model *core.Model) ([]core.Violation, error) {
	var violations []core.Violation
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		violations = append(violations, c.CheckRule(rule, model)...)
	}
	return violations, nil
}

// CheckRule evaluates a single rule.
func (c *Checker) CheckRule(rule core.Rule, model *core.Model) []core.Violation {
	def, ok := Lookup(rule.ID)
	if !ok {
		c.logger.Debug("no predicate for rule", "rule", rule.ID)
		return nil
	}

	var violations []core.Violation
	for _, entity := range ResolveScope(rule.Scope, model) {
		if c.evaluate(def, rule, entity, model) {
			violations = append(violations, core.NewViolation(rule, entity.Ref()))
		}
	}
	return violations
}

// Evaluate reports whether entity violates rule. Rules without a registered
// predicate never report a violation.
func (c *Checker) Evaluate(rule core.Rule, entity core.Entity, model *core.Model) bool {
	def, ok := Lookup(rule.ID)
	if !ok {
		return false
	}
	return c.evaluate(def, rule, entity, model)
}

// evaluate runs the predicate. A panicking predicate is logged and counts
// as no violation.
func (c *Checker) evaluate(def PredicateDef, rule core.Rule, entity core.Entity, model *core.Model) (violated bool) {
	defer func() {
		if r := recover(); r != nil {
			ref := entity.Ref()
			c.logger.Error("predicate failed",
				"rule", rule.ID,
				"object", ref.Name,
				"kind", ref.Kind,
				"file", ref.FilePath,
				"error", fmt.Sprint(r),
			)
			violated = false
		}
	}()
	return def.Check(entity, model)
}
