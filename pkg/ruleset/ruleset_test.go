package ruleset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

const twoRules = `[
  {
    "ID": "B_RULE",
    "Name": "Second alphabetically",
    "Category": "Formatting",
    "Description": "b",
    "Severity": 1,
    "Scope": "Measure",
    "Expression": "x",
    "FixExpression": "IsHidden = true"
  },
  {
    "ID": "A_RULE",
    "Name": "First alphabetically",
    "Category": "Performance",
    "Description": "a",
    "Severity": 3,
    "Scope": "DataColumn, CalculatedColumn",
    "Expression": "y",
    "CompatibilityLevel": 1500
  }
]`

func TestParse_JSON(t *testing.T) {
	rs, err := Parse([]byte(twoRules), FormatJSON)
	require.NoError(t, err)

	require.Equal(t, 2, rs.Len())
	// load order is preserved
	assert.Equal(t, []string{"B_RULE", "A_RULE"}, rs.IDs())

	b, ok := rs.Get("B_RULE")
	require.True(t, ok)
	assert.Equal(t, core.SeverityInfo, b.Severity)
	assert.Equal(t, "IsHidden = true", b.FixExpression)
	assert.Equal(t, core.DefaultCompatibilityLevel, b.CompatibilityLevel)

	a, ok := rs.Get("A_RULE")
	require.True(t, ok)
	assert.Equal(t, core.SeverityError, a.Severity)
	assert.Empty(t, a.FixExpression)
	assert.Equal(t, 1500, a.CompatibilityLevel)

	_, ok = rs.Get("MISSING")
	assert.False(t, ok)
}

func TestParse_YAML(t *testing.T) {
	data := `
- ID: HIDE_FOREIGN_KEYS
  Name: Hide foreign keys
  Category: Formatting
  Description: Foreign keys should be hidden.
  Severity: 2
  Scope: DataColumn
  Expression: IsHidden == false
`
	rs, err := Parse([]byte(data), FormatYAML)
	require.NoError(t, err)
	rule, ok := rs.Get("HIDE_FOREIGN_KEYS")
	require.True(t, ok)
	assert.Equal(t, core.SeverityWarning, rule.Severity)
	assert.Equal(t, "DataColumn", rule.Scope)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"missing scope", `[{"ID":"X","Name":"n","Category":"c","Description":"d","Severity":1,"Expression":"e"}]`, "Scope"},
		{"null name", `[{"ID":"X","Name":null,"Category":"c","Description":"d","Severity":1,"Scope":"Measure","Expression":"e"}]`, "Name"},
		{"severity out of range", `[{"ID":"X","Name":"n","Category":"c","Description":"d","Severity":4,"Scope":"Measure","Expression":"e"}]`, "Severity"},
		{"fractional severity", `[{"ID":"X","Name":"n","Category":"c","Description":"d","Severity":2.5,"Scope":"Measure","Expression":"e"}]`, "Severity"},
		{"string severity", `[{"ID":"X","Name":"n","Category":"c","Description":"d","Severity":"2","Scope":"Measure","Expression":"e"}]`, "Severity"},
		{"bad compatibility", `[{"ID":"X","Name":"n","Category":"c","Description":"d","Severity":2,"Scope":"Measure","Expression":"e","CompatibilityLevel":"new"}]`, "CompatibilityLevel"},
		{"duplicate id", `[
			{"ID":"X","Name":"n","Category":"c","Description":"d","Severity":1,"Scope":"Measure","Expression":"e"},
			{"ID":"X","Name":"n","Category":"c","Description":"d","Severity":1,"Scope":"Measure","Expression":"e"}]`, "ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Parse([]byte(tt.data), FormatJSON)
			require.Error(t, err)
			assert.Nil(t, rs)

			var fe *FieldError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tt.field, fe.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParse_WrongType(t *testing.T) {
	_, err := Parse([]byte(`[{"ID":"X","Name":7,"Category":"c","Description":"d","Severity":1,"Scope":"Measure","Expression":"e"}]`), FormatJSON)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "X", fe.RuleID)
}

func TestParse_Malformed(t *testing.T) {
	for _, data := range []string{`{"ID": "X"}`, `[{`, `not json`} {
		_, err := Parse([]byte(data), FormatJSON)
		assert.Error(t, err, data)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "BPARules.json")
	require.NoError(t, os.WriteFile(path, []byte(twoRules), 0o644))

	rs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, path, rs.Source())

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("rules.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("rules.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("BPARules.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("rules"))
}

func TestDefault(t *testing.T) {
	rs := Default()
	assert.Equal(t, "built-in", rs.Source())
	assert.Equal(t, 8, rs.Len())

	for _, id := range []string{
		"PROVIDE_FORMAT_STRING_FOR_MEASURES",
		"USE_THE_DIVIDE_FUNCTION_FOR_DIVISION",
		"AVOID_USING_THE_IFERROR_FUNCTION",
		"HIDE_FOREIGN_KEYS",
		"DAX_COLUMNS_FULLY_QUALIFIED",
		"AVOID_FLOATING_POINT_DATA_TYPES",
	} {
		_, ok := rs.Get(id)
		assert.True(t, ok, id)
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	rs := Default()
	rules := rs.Rules()
	rules[0].Name = "mutated"

	first, _ := rs.Get(rules[0].ID)
	assert.NotEqual(t, "mutated", first.Name)
}
