// Package lint evaluates best-practice rules against parsed TMDL models.
//
// # Architecture
//
// The package has two layers:
//
//  1. Root package (pkg/lint/): the predicate registry, scope resolution and the Checker
//  2. Rules package (pkg/lint/rules/): one built-in predicate per file
//
// Rules themselves come from a catalog (see pkg/ruleset). A catalog rule is
// evaluated only when a predicate with the same ID is registered; its
// Expression text is documentation and is never executed.
//
// # Predicate Registration
//
// Predicates are registered via init() functions when their package is imported:
//
//	import _ "github.com/leapstack-labs/tmdlint/pkg/lint/rules"
//
// # Scope Resolution
//
// A rule's Scope is a comma-separated list of Tabular object types. Any token
// containing "Measure", "Column", "Table" or "Relationship" selects the
// entities of that kind; other tokens select nothing:
//
//	entities := lint.ResolveScope("DataColumn, CalculatedColumn", model)
//
// # Running Checks
//
//	checker := lint.NewChecker(logger)
//	violations := checker.Check(ctx, rules, model)
package lint
