// Package state keeps a history of analysis runs in SQLite.
package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/report"
)

// Store records and lists analysis runs.
type Store interface {
	RecordRun(ctx context.Context, doc *report.Document) (*Run, error)
	ListRuns(ctx context.Context, opts ListOptions) ([]*Run, error)
	RuleCounts(ctx context.Context, runID string) ([]RuleCount, error)
	Close() error
}

// Run is one recorded analysis.
type Run struct {
	ID           string
	ModelPath    string
	RulesSource  string
	CreatedAt    time.Time
	Objects      core.ObjectCounts
	RulesChecked int
	Violations   int
	Errors       int
	Warnings     int
	Infos        int
}

// RuleCount is the number of violations of one rule in a run.
type RuleCount struct {
	RuleID   string
	Severity core.Severity
	Count    int
}

// ListOptions filters ListRuns.
type ListOptions struct {
	// ModelPath limits the result to one model (optional)
	ModelPath string
	// Limit caps the number of runs, newest first. Zero means no limit.
	Limit int
}
