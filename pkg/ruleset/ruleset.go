// Package ruleset loads best-practice rule catalogs.
//
// A catalog is an ordered list of records in the Tabular Editor BPA layout:
//
//	[{"ID": "...", "Name": "...", "Category": "...", "Description": "...",
//	  "Severity": 2, "Scope": "Measure", "Expression": "...",
//	  "FixExpression": "...", "CompatibilityLevel": 1200}]
//
// Loading is all or nothing: one bad record fails the whole catalog.
package ruleset

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

//go:embed default_rules.json
var defaultRules []byte

// Format is the encoding of a rule file.
type Format int

// Supported rule file formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFromPath picks the format from the file extension. Anything that
// is not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Ruleset is an immutable, ordered rule catalog.
type Ruleset struct {
	source string
	rules  []core.Rule
	index  map[string]int
}

// Load reads a rule file from disk.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rs, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	rs.source = path
	return rs, nil
}

// Default returns the built-in catalog.
func Default() *Ruleset {
	rs, err := Parse(defaultRules, FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("ruleset: invalid built-in catalog: %v", err))
	}
	rs.source = "built-in"
	return rs
}

// New builds a ruleset from already constructed rules.
// Rules are validated the same way as decoded records.
func New(rules []core.Rule) (*Ruleset, error) {
	rs := &Ruleset{index: make(map[string]int, len(rules))}
	for i, rule := range rules {
		if rule.ID == "" {
			return nil, &FieldError{Index: i, Field: "ID", Err: errMissing}
		}
		if !rule.Severity.Valid() {
			return nil, &FieldError{Index: i, RuleID: rule.ID, Field: "Severity",
				Err: fmt.Errorf("invalid severity level %d", int(rule.Severity))}
		}
		if _, dup := rs.index[rule.ID]; dup {
			return nil, &FieldError{Index: i, RuleID: rule.ID, Field: "ID", Err: errDuplicate}
		}
		if rule.CompatibilityLevel == 0 {
			rule.CompatibilityLevel = core.DefaultCompatibilityLevel
		}
		rs.index[rule.ID] = len(rs.rules)
		rs.rules = append(rs.rules, rule)
	}
	return rs, nil
}

// Source describes where the catalog came from.
func (r *Ruleset) Source() string { return r.source }

// Len returns the number of rules.
func (r *Ruleset) Len() int { return len(r.rules) }

// Rules returns the rules in load order.
func (r *Ruleset) Rules() []core.Rule { return slices.Clone(r.rules) }

// Get returns the rule with the given ID.
func (r *Ruleset) Get(id string) (core.Rule, bool) {
	i, ok := r.index[id]
	if !ok {
		return core.Rule{}, false
	}
	return r.rules[i], true
}

// IDs returns the rule IDs in load order.
func (r *Ruleset) IDs() []string {
	ids := make([]string, len(r.rules))
	for i, rule := range r.rules {
		ids[i] = rule.ID
	}
	return ids
}
