package rules

import (
	"strings"

	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/lint"
)

func init() {
	lint.Register(lint.PredicateDef{
		RuleID:      ProvideFormatStringForMeasures,
		Description: "Visible measures without a format string",
		Kinds:       []core.Kind{core.KindMeasure},
		Check:       checkMeasureFormatString,

		Rationale: `Report authors see the raw value of a measure unless a format string is set on the model.
Setting it once keeps numbers, currencies and percentages consistent across every visual.`,

		BadExample: `measure 'Total Sales' = SUM(Sales[Amount])`,

		GoodExample: `measure 'Total Sales' = SUM(Sales[Amount])
	formatString: #,0.00`,
	})
}

// checkMeasureFormatString flags non-hidden measures whose format string is
// empty or only whitespace.
func checkMeasureFormatString(entity core.Entity, _ *core.Model) bool {
	m, ok := entity.(*core.Measure)
	if !ok || m.IsHidden {
		return false
	}
	return strings.TrimSpace(m.FormatString) == ""
}
