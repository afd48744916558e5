package core

import (
	"fmt"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a rule violation.
// The numeric values match the Severity field of rule catalog files.
type Severity int

// Severity levels for rules and violations.
const (
	// SeverityInfo indicates informational feedback.
	SeverityInfo Severity = 1
	// SeverityWarning indicates a potential issue that should be reviewed.
	SeverityWarning Severity = 2
	// SeverityError indicates a critical issue that should be fixed.
	SeverityError Severity = 3
)

// String returns the name of the severity as it appears in reports.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Valid reports whether s is one of the three defined levels.
func (s Severity) Valid() bool {
	return s >= SeverityInfo && s <= SeverityError
}

// SeverityFromLevel converts a catalog level (1-3) to a Severity.
func SeverityFromLevel(level int) (Severity, error) {
	s := Severity(level)
	if !s.Valid() {
		return 0, fmt.Errorf("invalid severity level %d: must be 1 (info), 2 (warning) or 3 (error)", level)
	}
	return s, nil
}

// ParseSeverity converts a severity name to a Severity value.
// Names are matched case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INFO":
		return SeverityInfo, nil
	case "WARNING":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", name)
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
