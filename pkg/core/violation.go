package core

// Violation records that an entity failed a rule.
// Rule fields are copied when the violation is produced, so later changes
// to the rule catalog do not affect it.
type Violation struct {
	RuleID        string
	RuleName      string
	Category      string
	Severity      Severity
	Description   string
	ObjectName    string
	ObjectKind    Kind
	FilePath      string
	FixSuggestion string

	// Annotation is attached after checking and never changes the fields above.
	Annotation *Annotation
}

// Annotation is supplementary data attached to a finished violation.
type Annotation struct {
	Explanation string
	Enhanced    bool
}

// NewViolation creates a violation of rule by the entity identified by ref.
func NewViolation(rule Rule, ref ObjectRef) Violation {
	return Violation{
		RuleID:        rule.ID,
		RuleName:      rule.Name,
		Category:      rule.Category,
		Severity:      rule.Severity,
		Description:   rule.Description,
		ObjectName:    ref.Name,
		ObjectKind:    ref.Kind,
		FilePath:      ref.FilePath,
		FixSuggestion: rule.FixExpression,
	}
}

// Explanation returns the attached explanation, or "" when none.
func (v Violation) Explanation() string {
	if v.Annotation == nil {
		return ""
	}
	return v.Annotation.Explanation
}

// Enhanced reports whether an explanation provider annotated the violation.
func (v Violation) Enhanced() bool {
	return v.Annotation != nil && v.Annotation.Enhanced
}
