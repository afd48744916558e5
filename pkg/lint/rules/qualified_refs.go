package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/lint"
)

func init() {
	lint.Register(lint.PredicateDef{
		RuleID:      DaxColumnsFullyQualified,
		Description: "Measures referencing a column without its table",
		Kinds:       []core.Kind{core.KindMeasure},
		Check:       checkQualifiedReferences,

		Rationale: `A bare [Name] reads the same for a column and a measure. Prefixing columns with their
table makes the expression unambiguous and keeps it valid when a measure of the same name is added.`,

		BadExample: `measure Total = SUM([Amount])`,

		GoodExample: `measure Total = SUM(Sales[Amount])`,
	})
}

// Characters and keywords that, ending the text before a bracket reference,
// mark the reference as unqualified.
const unqualifiedPrecedingChars = ",()+*/=<>!& \t\n"

var unqualifiedPrecedingSuffixes = []string{" AND ", " OR ", "IF ", "ISFILTERED "}

// checkQualifiedReferences flags measures with at least one bracket
// reference that is not prefixed by a table name.
func checkQualifiedReferences(entity core.Entity, _ *core.Model) bool {
	m, ok := entity.(*core.Measure)
	if !ok {
		return false
	}
	return hasUnqualifiedReference(m.Expression)
}

// hasUnqualifiedReference reports whether expr contains a bracket reference
// judged unqualified. Each candidate is judged at the position of its first
// occurrence in expr, so repeated identical references share one verdict.
func hasUnqualifiedReference(expr string) bool {
	for _, ref := range bracketCandidates(expr) {
		before := strings.TrimRightFunc(expr[:strings.Index(expr, ref)], unicode.IsSpace)
		if isUnqualifiedContext(before) {
			return true
		}
	}
	return false
}

// bracketCandidates returns every "[...]" span (no nested "]") that is not
// directly preceded by a single quote or a word character.
func bracketCandidates(expr string) []string {
	var refs []string
	for i := 0; i < len(expr); {
		if expr[i] != '[' || precededByNameChar(expr[:i]) {
			i++
			continue
		}
		end := strings.IndexByte(expr[i+1:], ']')
		if end <= 0 {
			// "[]" or an unclosed bracket
			i++
			continue
		}
		refs = append(refs, expr[i:i+end+2])
		i += end + 2
	}
	return refs
}

func precededByNameChar(prefix string) bool {
	r, size := utf8.DecodeLastRuneInString(prefix)
	if size == 0 {
		return false
	}
	return r == '\'' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isUnqualifiedContext(before string) bool {
	if before == "" {
		return true
	}
	if strings.ContainsRune(unqualifiedPrecedingChars, rune(before[len(before)-1])) {
		return true
	}
	for _, suffix := range unqualifiedPrecedingSuffixes {
		if strings.HasSuffix(before, suffix) {
			return true
		}
	}
	return false
}
