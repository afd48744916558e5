package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/tmdlint/pkg/core"
	"github.com/leapstack-labs/tmdlint/pkg/report"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var errNotOpen = errors.New("database not opened")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the history database at path and
// migrates it. Use ":memory:" for an in-memory database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := NewWithDB(db, logger)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Debug("history store opened", "path", path)
	return s, nil
}

// NewWithDB wraps an open connection without migrating it.
func NewWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{db: db, logger: logger}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores the outcome of doc. The document's run id is reused when set.
func (s *SQLiteStore) RecordRun(ctx context.Context, doc *report.Document) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	run := &Run{
		ID:           doc.RunID,
		ModelPath:    doc.ModelPath,
		RulesSource:  doc.RulesSource,
		CreatedAt:    doc.GeneratedAt.UTC(),
		Objects:      doc.Summary.ObjectCounts,
		RulesChecked: doc.Summary.RulesChecked.Total,
		Violations:   doc.Summary.Violations.Total,
		Errors:       report.Count(doc.Summary.Violations.BySeverity, core.SeverityError.String()),
		Warnings:     report.Count(doc.Summary.Violations.BySeverity, core.SeverityWarning.String()),
		Infos:        report.Count(doc.Summary.Violations.BySeverity, core.SeverityInfo.String()),
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
		id, model_path, rules_source, created_at,
		tables_count, measures_count, columns_count, relationships_count, partitions_count,
		rules_checked, violations, errors, warnings, infos
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ModelPath, run.RulesSource, run.CreatedAt.Format(timeLayout),
		run.Objects.Tables, run.Objects.Measures, run.Objects.Columns, run.Objects.Relationships, run.Objects.Partitions,
		run.RulesChecked, run.Violations, run.Errors, run.Warnings, run.Infos,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	for _, b := range doc.Summary.Violations.ByRule {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_rule_counts (run_id, rule_id, severity, count) VALUES (?, ?, ?, ?)`,
			run.ID, b.RuleID, b.Severity.String(), b.Count,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to record rule count for %s: %w", b.RuleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug("run recorded", slog.String("id", run.ID), slog.Int("violations", run.Violations))
	return run, nil
}

// ListRuns returns recorded runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, opts ListOptions) ([]*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	query := `SELECT id, model_path, rules_source, created_at,
		tables_count, measures_count, columns_count, relationships_count, partitions_count,
		rules_checked, violations, errors, warnings, infos
		FROM runs`
	var args []any
	if opts.ModelPath != "" {
		query += ` WHERE model_path = ?`
		args = append(args, opts.ModelPath)
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// RuleCounts returns the per-rule violation counts of a run, largest first.
func (s *SQLiteStore) RuleCounts(ctx context.Context, runID string) ([]RuleCount, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rule_id, severity, count FROM run_rule_counts WHERE run_id = ? ORDER BY count DESC, rule_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule counts: %w", err)
	}
	defer rows.Close()

	var counts []RuleCount
	for rows.Next() {
		var rc RuleCount
		var severity string
		if err := rows.Scan(&rc.RuleID, &severity, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan rule count: %w", err)
		}
		if rc.Severity, err = core.ParseSeverity(severity); err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		counts = append(counts, rc)
	}
	return counts, rows.Err()
}

func scanRun(rows *sql.Rows) (*Run, error) {
	run := &Run{}
	var createdAt string
	err := rows.Scan(
		&run.ID, &run.ModelPath, &run.RulesSource, &createdAt,
		&run.Objects.Tables, &run.Objects.Measures, &run.Objects.Columns, &run.Objects.Relationships, &run.Objects.Partitions,
		&run.RulesChecked, &run.Violations, &run.Errors, &run.Warnings, &run.Infos,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: invalid timestamp %q: %w", run.ID, createdAt, err)
	}
	return run, nil
}
