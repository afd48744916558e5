package parser

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tmdlint/internal/testutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParser_ParseModelDirectory(t *testing.T) {
	root := t.TempDir()
	def := filepath.Join(root, "definition")
	writeFile(t, filepath.Join(def, "tables", "Sales.tmdl"), salesTable)
	writeFile(t, filepath.Join(def, "tables", "Customer.tmdl"), "table Customer\n\n\tcolumn CustomerKey\n\t\tdataType: int64\n")
	writeFile(t, filepath.Join(def, "tables", "notes.txt"), "table Ignored\n")
	writeFile(t, filepath.Join(def, "tables", "broken.tmdl"), "expression X = 1\n")
	writeFile(t, filepath.Join(def, RelationshipsFile), relationships)

	p := New(testutil.NewTestLogger(t))
	result, err := p.ParseModelDirectory(context.Background(), root)
	require.NoError(t, err)

	m := result.Model
	assert.Equal(t, def, m.DefinitionDir)
	require.Len(t, m.Tables, 2)
	// tables come in file name order
	assert.Equal(t, "Customer", m.Tables[0].Name)
	assert.Equal(t, "Sales", m.Tables[1].Name)

	counts := m.Counts()
	assert.Equal(t, 2, counts.Tables)
	assert.Equal(t, 3, counts.Measures)
	assert.Equal(t, 4, counts.Columns)
	assert.Equal(t, 3, counts.Relationships)
	assert.Equal(t, 1, counts.Partitions)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, filepath.Join(def, "tables", "broken.tmdl"), result.Skipped[0].Path)
	assert.True(t, errors.Is(result.Skipped[0], ErrNoTableHeader))
}

func TestParser_ParseModelDirectory_NoRelationships(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "definition", "tables", "T.tmdl"), "table T\n")

	result, err := New(nil).ParseModelDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Model.Relationships)
	assert.Len(t, result.Model.Tables, 1)
}

func TestParser_ParseModelDirectory_MissingDefinition(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "readme.md"), "hello")
	require.NoError(t, os.Mkdir(filepath.Join(root, "Report"), 0o755))

	_, err := New(nil).ParseModelDirectory(context.Background(), root)
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []string{"Report/", "readme.md"}, nf.Contents)
	assert.Contains(t, err.Error(), "readme.md")
	assert.Contains(t, err.Error(), "Report/")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestParser_ParseModelDirectory_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "definition", "tables", "T.tmdl"), "table T\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).ParseModelDirectory(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
