package rules

import (
	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/lint"
)

func init() {
	lint.Register(lint.PredicateDef{
		RuleID:      UseTheDivideFunctionForDivision,
		Description: "Measures dividing a bracketed reference with the / operator",
		Kinds:       []core.Kind{core.KindMeasure},
		Check:       checkDivideOperator,

		Rationale: `The / operator raises an error when the denominator is zero. DIVIDE returns BLANK
(or a chosen alternate result) instead, and the engine optimizes it well.`,

		BadExample: `measure Margin = [Profit] / [Revenue]`,

		GoodExample: `measure Margin = DIVIDE([Profit], [Revenue])`,
	})
}

// checkDivideOperator flags measures whose expression contains "]" followed,
// after optional whitespace, by a "/" that does not start a // or /* comment.
func checkDivideOperator(entity core.Entity, _ *core.Model) bool {
	m, ok := entity.(*core.Measure)
	if !ok {
		return false
	}
	return hasBracketDivision(m.Expression)
}

func hasBracketDivision(expr string) bool {
	for i := 0; i < len(expr); i++ {
		if expr[i] != ']' {
			continue
		}
		j := i + 1
		for j < len(expr) && isSpace(expr[j]) {
			j++
		}
		if j >= len(expr) || expr[j] != '/' {
			continue
		}
		if j+1 < len(expr) && (expr[j+1] == '/' || expr[j+1] == '*') {
			continue
		}
		return true
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
