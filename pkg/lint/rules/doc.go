// Package rules contains the built-in predicates for catalog rules.
//
// Each file registers one predicate from init(), keyed by the catalog rule
// ID it implements. Import the package for its side effects:
//
//	import _ "github.com/leapstack-labs/tmdlint/pkg/lint/rules"
package rules
