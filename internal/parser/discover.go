package parser

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefinitionDirName is the folder that holds a model's TMDL files.
const DefinitionDirName = "definition"

// semanticModelSuffix marks the folder Power BI Desktop writes a model into.
const semanticModelSuffix = ".SemanticModel"

// NotFoundError is returned when no definition folder exists under Root.
// Contents lists the entries of Root to help the operator spot a wrong path.
type NotFoundError struct {
	Root     string
	Contents []string
	Err      error // set when Root itself could not be listed
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "definition folder not found in: %s\n", e.Root)
	b.WriteString("directory contents:\n")
	switch {
	case e.Err != nil:
		fmt.Fprintf(&b, "  error listing directory: %v\n", e.Err)
	case len(e.Contents) == 0:
		b.WriteString("  (empty)\n")
	default:
		for _, item := range e.Contents {
			fmt.Fprintf(&b, "  %s\n", item)
		}
	}
	b.WriteString("expected: a .SemanticModel folder with a 'definition' subfolder containing TMDL files")
	return b.String()
}

// Is lets errors.Is(err, fs.ErrNotExist) match a NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// FindDefinitionDir locates the definition folder of the model under root.
// root/definition is used when present. Otherwise folders are visited top
// down in lexical order, each folder's children checked before its
// subfolders: a *.SemanticModel folder holding a definition folder wins,
// else the first folder that directly contains a definition folder.
func FindDefinitionDir(root string) (string, error) {
	direct := filepath.Join(root, DefinitionDirName)
	if isDir(direct) {
		return direct, nil
	}
	if _, err := os.ReadDir(root); err != nil {
		return "", notFound(root)
	}

	var found string
	walkDirs(root, func(dir string, children []fs.DirEntry) bool {
		for _, child := range children {
			if !child.IsDir() || !strings.HasSuffix(child.Name(), semanticModelSuffix) {
				continue
			}
			if def := filepath.Join(dir, child.Name(), DefinitionDirName); isDir(def) {
				found = def
				return true
			}
		}
		return false
	})
	if found != "" {
		return found, nil
	}

	walkDirs(root, func(dir string, children []fs.DirEntry) bool {
		for _, child := range children {
			if child.IsDir() && child.Name() == DefinitionDirName {
				found = filepath.Join(dir, DefinitionDirName)
				return true
			}
		}
		return false
	})
	if found != "" {
		return found, nil
	}
	return "", notFound(root)
}

// walkDirs calls visit for dir and then for each subfolder, depth first in
// lexical order, until visit returns true. Unreadable folders are skipped.
func walkDirs(dir string, visit func(dir string, children []fs.DirEntry) bool) bool {
	children, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	if visit(dir, children) {
		return true
	}
	for _, child := range children {
		if child.IsDir() && walkDirs(filepath.Join(dir, child.Name()), visit) {
			return true
		}
	}
	return false
}

func notFound(root string) *NotFoundError {
	nf := &NotFoundError{Root: root}
	entries, err := os.ReadDir(root)
	if err != nil {
		nf.Err = err
		return nf
	}
	for _, entry := range entries {
		if entry.IsDir() {
			nf.Contents = append(nf.Contents, entry.Name()+"/")
		} else {
			nf.Contents = append(nf.Contents, entry.Name())
		}
	}
	return nf
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
