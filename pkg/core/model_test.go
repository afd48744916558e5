package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModel_AddTableCollectsChildren(t *testing.T) {
	sales := NewTable("Sales", "", "tables/Sales.tmdl")
	sales.Columns = []*Column{NewColumn("Sales", "Amount", "", sales.FilePath)}
	sales.Measures = []*Measure{NewMeasure("Sales", "Total", "", sales.FilePath)}

	m := &Model{}
	m.AddTable(sales)
	m.Relationships = append(m.Relationships, NewRelationship("r1", "", "relationships.tmdl"))

	assert.Equal(t, ObjectCounts{Tables: 1, Measures: 1, Columns: 1, Relationships: 1}, m.Counts())
	assert.Equal(t, ObjectCounts{}, (*Model)(nil).Counts())
}

func TestObject_Ref(t *testing.T) {
	c := NewColumn("Sales", "Amount", "content", "a.tmdl")
	assert.Equal(t, ObjectRef{Name: "Amount", Kind: KindColumn, FilePath: "a.tmdl"}, c.Ref())

	var e Entity = c
	assert.Equal(t, KindColumn, e.Ref().Kind)
}

func TestNewRelationship_Defaults(t *testing.T) {
	r := NewRelationship("r", "", "relationships.tmdl")
	assert.True(t, r.IsActive)
	assert.Equal(t, "many", r.FromCardinality)
	assert.Equal(t, "one", r.ToCardinality)
	assert.Equal(t, "oneDirection", r.CrossFilteringBehavior)
}

func TestRule_ScopeTokens(t *testing.T) {
	r := Rule{Scope: "DataColumn, CalculatedColumn ,Measure"}
	assert.Equal(t, []string{"DataColumn", "CalculatedColumn", "Measure"}, r.ScopeTokens())
}

func TestNewViolation_CopiesRule(t *testing.T) {
	rule := Rule{ID: "R1", Name: "Rule one", Category: "Perf", Severity: SeverityError, Description: "d", FixExpression: "fix"}
	v := NewViolation(rule, ObjectRef{Name: "X", Kind: KindMeasure, FilePath: "f"})

	rule.Name = "changed"
	assert.Equal(t, "Rule one", v.RuleName)
	assert.Equal(t, "fix", v.FixSuggestion)
	assert.False(t, v.Enhanced())
	assert.Empty(t, v.Explanation())

	v.Annotation = &Annotation{Explanation: "why", Enhanced: true}
	assert.True(t, v.Enhanced())
	assert.Equal(t, "why", v.Explanation())
}
