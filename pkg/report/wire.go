package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// Record is the JSON form of a violation exchanged with other tools.
// Optional text fields are null when absent.
type Record struct {
	RuleID        string  `json:"rule_id"`
	RuleName      string  `json:"rule_name"`
	Category      string  `json:"category"`
	Severity      string  `json:"severity"`
	Description   string  `json:"description"`
	ObjectName    string  `json:"object_name"`
	ObjectType    string  `json:"object_type"`
	FilePath      string  `json:"file_path"`
	FixSuggestion *string `json:"fix_suggestion"`
	AIExplanation *string `json:"ai_explanation"`
	AIEnhanced    bool    `json:"ai_enhanced"`
}

// ToRecord converts a violation to its JSON form.
func ToRecord(v core.Violation) Record {
	r := Record{
		RuleID:      v.RuleID,
		RuleName:    v.RuleName,
		Category:    v.Category,
		Severity:    v.Severity.String(),
		Description: v.Description,
		ObjectName:  v.ObjectName,
		ObjectType:  string(v.ObjectKind),
		FilePath:    v.FilePath,
	}
	if v.FixSuggestion != "" {
		fix := v.FixSuggestion
		r.FixSuggestion = &fix
	}
	if v.Annotation != nil {
		explanation := v.Annotation.Explanation
		r.AIExplanation = &explanation
		r.AIEnhanced = v.Annotation.Enhanced
	}
	return r
}

// FromRecord rebuilds a violation from its JSON form.
func FromRecord(r Record) (core.Violation, error) {
	severity, err := core.ParseSeverity(r.Severity)
	if err != nil {
		return core.Violation{}, fmt.Errorf("violation %s/%s: %w", r.RuleID, r.ObjectName, err)
	}
	kind := core.Kind(r.ObjectType)
	if !kind.Valid() {
		return core.Violation{}, fmt.Errorf("violation %s/%s: unknown object type %q", r.RuleID, r.ObjectName, r.ObjectType)
	}

	v := core.Violation{
		RuleID:      r.RuleID,
		RuleName:    r.RuleName,
		Category:    r.Category,
		Severity:    severity,
		Description: r.Description,
		ObjectName:  r.ObjectName,
		ObjectKind:  kind,
		FilePath:    r.FilePath,
	}
	if r.FixSuggestion != nil {
		v.FixSuggestion = *r.FixSuggestion
	}
	if r.AIExplanation != nil || r.AIEnhanced {
		v.Annotation = &core.Annotation{Enhanced: r.AIEnhanced}
		if r.AIExplanation != nil {
			v.Annotation.Explanation = *r.AIExplanation
		}
	}
	return v, nil
}

// ToRecords converts violations to their JSON form.
func ToRecords(violations []core.Violation) []Record {
	records := make([]Record, len(violations))
	for i, v := range violations {
		records[i] = ToRecord(v)
	}
	return records
}

// FromRecords rebuilds violations; the first invalid record fails the call.
func FromRecords(records []Record) ([]core.Violation, error) {
	violations := make([]core.Violation, 0, len(records))
	for _, r := range records {
		v, err := FromRecord(r)
		if err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, nil
}

// documentJSON is the JSON layout of a Document.
type documentJSON struct {
	RunID           string    `json:"run_id,omitempty"`
	ModelPath       string    `json:"model_path"`
	GeneratedAt     time.Time `json:"generated_at"`
	RulesSource     string    `json:"rules_source,omitempty"`
	Summary         Summary   `json:"summary"`
	Violations      []Record  `json:"violations"`
	Recommendations string    `json:"ai_recommendations,omitempty"`
	AIEnhanced      bool      `json:"ai_enhanced"`
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(documentJSON{
		RunID:           doc.RunID,
		ModelPath:       doc.ModelPath,
		GeneratedAt:     doc.GeneratedAt,
		RulesSource:     doc.RulesSource,
		Summary:         doc.Summary,
		Violations:      ToRecords(doc.Violations),
		Recommendations: doc.Recommendations,
		AIEnhanced:      doc.Enhanced(),
	})
}

// ReadJSON reads a document written by WriteJSON.
func ReadJSON(r io.Reader) (*Document, error) {
	var raw documentJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	violations, err := FromRecords(raw.Violations)
	if err != nil {
		return nil, err
	}
	return &Document{
		RunID:           raw.RunID,
		ModelPath:       raw.ModelPath,
		GeneratedAt:     raw.GeneratedAt,
		RulesSource:     raw.RulesSource,
		Summary:         raw.Summary,
		Violations:      violations,
		Recommendations: raw.Recommendations,
	}, nil
}
