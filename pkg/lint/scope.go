package lint

import (
	"strings"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// ResolveScope returns the entities of model selected by a rule scope.
// Tokens are matched by substring, so "DataColumn" and "CalculatedColumn"
// both select columns. Entities are returned at most once, in the order
// their tokens appear.
func ResolveScope(scope string, model *core.Model) []core.Entity {
	if model == nil {
		return nil
	}

	var entities []core.Entity
	seen := make(map[core.ObjectRef]bool)
	add := func(e core.Entity) {
		ref := e.Ref()
		if seen[ref] {
			return
		}
		seen[ref] = true
		entities = append(entities, e)
	}

	for _, token := range strings.Split(scope, ",") {
		token = strings.TrimSpace(token)
		if strings.Contains(token, "Measure") {
			for _, m := range model.Measures {
				add(m)
			}
		}
		if strings.Contains(token, "Column") {
			for _, c := range model.Columns {
				add(c)
			}
		}
		if strings.Contains(token, "Table") {
			for _, t := range model.Tables {
				add(t)
			}
		}
		if strings.Contains(token, "Relationship") {
			for _, r := range model.Relationships {
				add(r)
			}
		}
	}
	return entities
}
