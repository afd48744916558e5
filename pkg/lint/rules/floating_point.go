package rules

import (
	"strings"

	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/lint"
)

func init() {
	lint.Register(lint.PredicateDef{
		RuleID:      AvoidFloatingPointDataTypes,
		Description: "Columns stored as double",
		Kinds:       []core.Kind{core.KindColumn},
		Check:       checkFloatingPoint,

		Rationale: `Floating point values are approximations; sums and comparisons of values that
should be equal can differ in the last digits. Fixed decimal or int64 avoid this.`,

		BadExample: `column Amount
	dataType: double`,

		GoodExample: `column Amount
	dataType: decimal`,
	})
}

// checkFloatingPoint flags columns whose data type is double, in any casing.
func checkFloatingPoint(entity core.Entity, _ *core.Model) bool {
	c, ok := entity.(*core.Column)
	if !ok {
		return false
	}
	return strings.EqualFold(c.DataType, "double")
}
