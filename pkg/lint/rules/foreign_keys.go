package rules

import (
	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/lint"
)

func init() {
	lint.Register(lint.PredicateDef{
		RuleID:      HideForeignKeys,
		Description: "Visible columns used on the many side of a relationship",
		Kinds:       []core.Kind{core.KindColumn},
		Check:       checkForeignKey,

		Rationale: `Foreign key columns duplicate the attributes of the dimension they point to.
Left visible, report authors filter on them instead of on the dimension.`,

		BadExample: `column CustomerKey
	dataType: int64`,

		GoodExample: `column CustomerKey
	dataType: int64
	isHidden: true`,
	})
}

// checkForeignKey flags visible columns whose name is the from-column of a
// relationship. Columns are matched by name only; the table is not compared.
func checkForeignKey(entity core.Entity, model *core.Model) bool {
	c, ok := entity.(*core.Column)
	if !ok || c.IsHidden {
		return false
	}
	return model.HasRelationshipFrom(c.Name)
}
