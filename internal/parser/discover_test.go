package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDefinitionDir(t *testing.T) {
	t.Run("direct child", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "definition"), 0o755))

		got, err := FindDefinitionDir(root)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "definition"), got)
	})

	t.Run("nested in upload wrapper", func(t *testing.T) {
		root := t.TempDir()
		want := filepath.Join(root, "upload", "Sales", "definition")
		require.NoError(t, os.MkdirAll(want, 0o755))

		got, err := FindDefinitionDir(root)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("semantic model folder preferred", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "A.Report", "definition"), 0o755))
		want := filepath.Join(root, "B.SemanticModel", "definition")
		require.NoError(t, os.MkdirAll(want, 0o755))

		got, err := FindDefinitionDir(root)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("shallow definition wins over deeper one", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "M", "aaa", "definition"), 0o755))
		want := filepath.Join(root, "M", "definition")
		require.NoError(t, os.MkdirAll(want, 0o755))

		got, err := FindDefinitionDir(root)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("shallow semantic model wins over deeper one", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "Deep.SemanticModel", "definition"), 0o755))
		want := filepath.Join(root, "b.SemanticModel", "definition")
		require.NoError(t, os.MkdirAll(want, 0o755))

		got, err := FindDefinitionDir(root)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("semantic model without definition is skipped", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "Empty.SemanticModel"), 0o755))
		want := filepath.Join(root, "z", "definition")
		require.NoError(t, os.MkdirAll(want, 0o755))

		got, err := FindDefinitionDir(root)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("file named definition is ignored", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "definition"), nil, 0o644))

		_, err := FindDefinitionDir(root)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []string{"definition"}, nf.Contents)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := FindDefinitionDir(filepath.Join(t.TempDir(), "nope"))
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Error(t, nf.Err)
		assert.Contains(t, nf.Error(), "error listing directory")
	})
}
