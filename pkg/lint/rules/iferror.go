package rules

import (
	"regexp"

	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/lint"
)

var ifErrorPattern = regexp.MustCompile(`(?i)IFERROR\s*\(`)

func init() {
	lint.Register(lint.PredicateDef{
		RuleID:      AvoidUsingTheIfErrorFunction,
		Description: "Measures calling IFERROR",
		Kinds:       []core.Kind{core.KindMeasure},
		Check:       checkIfError,

		Rationale: `IFERROR forces the engine to evaluate the expression cell by cell to trap errors,
which disables many storage engine optimizations.`,

		BadExample: `measure Ratio = IFERROR([Sales] / [Units], 0)`,

		GoodExample: `measure Ratio = DIVIDE([Sales], [Units], 0)`,
	})
}

// checkIfError flags measures whose expression calls IFERROR in any casing.
func checkIfError(entity core.Entity, _ *core.Model) bool {
	m, ok := entity.(*core.Measure)
	if !ok {
		return false
	}
	return ifErrorPattern.MatchString(m.Expression)
}
