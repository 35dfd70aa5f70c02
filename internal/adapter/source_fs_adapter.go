// Package adapter contains filesystem, validation and UI adapters for the
// vstrip CLI.
package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	m "github.com/verus-tools/vstrip/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer needs
// when collecting and rewriting source files. It hides direct `os` access so
// workflow logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Collect gathers the Rust source files under root. When recursive is
	// false and root is a directory, only its immediate files are taken.
	// Paths matching an exclude pattern are skipped.
	Collect(root m.Path, recursive bool, exclude []string) ([]m.Path, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// FileInfo returns metadata for a path so the domain can distinguish
	// files from directories.
	FileInfo(path m.Path) (os.FileInfo, error)

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// LocalSourceFSAdapter backs SourceFSAdapter with the real filesystem.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter ready to be
// wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Collect gathers Rust sources under root in walk order.
func (a *LocalSourceFSAdapter) Collect(root m.Path, recursive bool, exclude []string) ([]m.Path, error) {
	rootStr, err := normalizeRootPath(string(root))
	if err != nil {
		return nil, err
	}

	globs, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(rootStr)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		if excluded(globs, rootStr) {
			return nil, nil
		}

		return []m.Path{m.Path(rootStr)}, nil
	}

	var paths []m.Path

	err = filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != rootStr && (!recursive || excluded(globs, path)) {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != m.RustFileExt || excluded(globs, path) {
			return nil
		}

		paths = append(paths, m.Path(path))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	if dir := filepath.Dir(string(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}

	return os.WriteFile(string(path), content, perm)
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))

	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}

		globs = append(globs, g)
	}

	return globs, nil
}

// excluded matches both the full path and its base name, so "target" and
// "**/tests/**" style patterns behave as expected.
func excluded(globs []glob.Glob, path string) bool {
	base := filepath.Base(path)

	for _, g := range globs {
		if g.Match(path) || g.Match(base) {
			return true
		}
	}

	return false
}

func normalizeRootPath(root string) (string, error) {
	if strings.HasPrefix(root, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		suffix := strings.TrimPrefix(root, "~")
		suffix = strings.TrimPrefix(suffix, string(os.PathSeparator))
		root = filepath.Join(home, suffix)
	}

	if root == "" {
		root = "."
	}

	return root, nil
}
