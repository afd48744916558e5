// Package core defines the shared language of the tmdlint system.
//
// This package contains:
//   - Model entities (Table, Column, Measure, Relationship, Partition)
//   - Rule catalog records and the Severity scale
//   - Violation records produced by the checker
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
