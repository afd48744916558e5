package ruleset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

var (
	errMissing   = errors.New("missing required field")
	errDuplicate = errors.New("duplicate rule ID")
)

// requiredFields must be present and non-null in every record.
var requiredFields = []string{"ID", "Name", "Category", "Description", "Severity", "Scope", "Expression"}

// FieldError reports a problem with one field of one rule record.
type FieldError struct {
	Index  int // zero-based record position
	RuleID string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	rule := fmt.Sprintf("rule #%d", e.Index+1)
	if e.RuleID != "" {
		rule += fmt.Sprintf(" (%s)", e.RuleID)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", rule, e.Err)
	}
	return fmt.Sprintf("%s: field %q: %v", rule, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// record mirrors one catalog entry. Numeric fields are decoded loosely and
// checked afterwards so JSON floats and YAML ints are treated alike.
type record struct {
	ID                 string `mapstructure:"ID"`
	Name               string `mapstructure:"Name"`
	Category           string `mapstructure:"Category"`
	Description        string `mapstructure:"Description"`
	Severity           any    `mapstructure:"Severity"`
	Scope              string `mapstructure:"Scope"`
	Expression         string `mapstructure:"Expression"`
	FixExpression      string `mapstructure:"FixExpression"`
	CompatibilityLevel any    `mapstructure:"CompatibilityLevel"`
}

// Parse decodes a rule catalog.
func Parse(data []byte, format Format) (*Ruleset, error) {
	var raw []map[string]any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("malformed %s rule catalog: %w", format, err)
	}

	rules := make([]core.Rule, 0, len(raw))
	for i, fields := range raw {
		rule, err := decodeRecord(i, fields)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return New(rules)
}

func decodeRecord(index int, fields map[string]any) (core.Rule, error) {
	id, _ := fields["ID"].(string)
	for _, name := range requiredFields {
		if v, ok := fields[name]; !ok || v == nil {
			return core.Rule{}, &FieldError{Index: index, RuleID: id, Field: name, Err: errMissing}
		}
	}

	var rec record
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &rec,
		TagName: "mapstructure",
	})
	if err != nil {
		return core.Rule{}, err
	}
	if err := decoder.Decode(fields); err != nil {
		return core.Rule{}, &FieldError{Index: index, RuleID: id, Err: err}
	}

	level, err := toInt(rec.Severity)
	if err != nil {
		return core.Rule{}, &FieldError{Index: index, RuleID: id, Field: "Severity", Err: err}
	}
	severity, err := core.SeverityFromLevel(level)
	if err != nil {
		return core.Rule{}, &FieldError{Index: index, RuleID: id, Field: "Severity", Err: err}
	}

	compat := core.DefaultCompatibilityLevel
	if rec.CompatibilityLevel != nil {
		compat, err = toInt(rec.CompatibilityLevel)
		if err != nil {
			return core.Rule{}, &FieldError{Index: index, RuleID: id, Field: "CompatibilityLevel", Err: err}
		}
	}

	return core.Rule{
		ID:                 rec.ID,
		Name:               rec.Name,
		Category:           rec.Category,
		Description:        rec.Description,
		Severity:           severity,
		Scope:              rec.Scope,
		Expression:         rec.Expression,
		FixExpression:      rec.FixExpression,
		CompatibilityLevel: compat,
	}, nil
}

// toInt accepts integral numbers as produced by the JSON and YAML decoders.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
