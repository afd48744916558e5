package parser

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// File layout inside the definition folder.
const (
	TablesDirName     = "tables"
	RelationshipsFile = "relationships.tmdl"
	FileExtension     = ".tmdl"
)

// FileError records a table file that was skipped during a directory parse.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// Parser parses model directories.
type Parser struct {
	logger *slog.Logger
}

// New creates a parser. A nil logger discards output.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{logger: logger}
}

// Result is the outcome of parsing a model directory.
type Result struct {
	Model *core.Model
	// Skipped lists table files that could not be parsed.
	Skipped []FileError
}

// ParseModelDirectory parses every table file and the relationships file of
// the model under root. A missing definition folder is returned as a
// *NotFoundError; a table file that fails to parse is logged, recorded in
// Result.Skipped and left out of the model.
func (p *Parser) ParseModelDirectory(ctx context.Context, root string) (*Result, error) {
	p.logger.Debug("looking for definition folder", "root", root)

	defDir, err := FindDefinitionDir(root)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("using definition folder", "path", defDir)

	model := &core.Model{Root: root, DefinitionDir: defDir}
	result := &Result{Model: model}

	tablesDir := filepath.Join(defDir, TablesDirName)
	entries, err := os.ReadDir(tablesDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn("failed to list tables folder", "path", tablesDir, "error", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FileExtension) {
			continue
		}

		path := filepath.Join(tablesDir, entry.Name())
		table, err := ParseTableFile(path)
		if err != nil {
			p.logger.Warn("skipping table file", "path", path, "error", err)
			result.Skipped = append(result.Skipped, FileError{Path: path, Err: err})
			continue
		}
		model.AddTable(table)
	}

	relPath := filepath.Join(defDir, RelationshipsFile)
	if _, err := os.Stat(relPath); err == nil {
		rels, err := ParseRelationshipsFile(relPath)
		if err != nil {
			p.logger.Warn("failed to parse relationships", "path", relPath, "error", err)
		}
		model.Relationships = rels
	}

	counts := model.Counts()
	p.logger.Debug("parsed model",
		"tables", counts.Tables,
		"measures", counts.Measures,
		"columns", counts.Columns,
		"relationships", counts.Relationships,
		"skipped", len(result.Skipped),
	)
	return result, nil
}
