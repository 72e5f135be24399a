// Package vault enumerates note files under a vault root and folds them into
// tasks.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/obsidian-tasks/internal/utils"
)

// DefaultExtensions returns the note extensions scanned when none are
// configured.
func DefaultExtensions() []string {
	return []string{".md"}
}

// ErrPathNotFound is returned when the vault root does not exist or is not a
// directory.
var ErrPathNotFound = errors.New("path not found")

// WalkError reports a directory or entry that could not be read during a
// walk. It never stops the walk.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *WalkError) Unwrap() error {
	return e.Err
}

// Walker finds note files.
type Walker struct {
	extensions map[string]bool
}

// NewWalker returns a walker matching the given extensions, case-insensitively.
// With no extensions DefaultExtensions are used.
func NewWalker(extensions []string) *Walker {
	exts := utils.NormalizeExtensions(extensions)
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	w := &Walker{extensions: make(map[string]bool, len(exts))}
	for _, ext := range exts {
		w.extensions[ext] = true
	}
	return w
}

// CheckRoot verifies that root exists, is a directory and can be opened.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return fmt.Errorf("stat vault root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, root)
	}
	f, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("open vault root: %w", err)
	}
	return f.Close()
}

// Walk checks root and returns a lazy sequence of note paths below it, in
// lexical order. A symlinked root is resolved once and walked; yielded paths
// still start with root. Symlinks to directories below the root are not
// followed. Unreadable entries are yielded as a *WalkError with an empty path
// and the walk continues.
func (w *Walker) Walk(root string) (iter.Seq2[string, error], error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}

	// under maps a path in the resolved tree back below root.
	under := func(path string) string {
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return path
		}
		return filepath.Join(root, rel)
	}

	seq := func(yield func(string, error) bool) {
		_ = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield("", &WalkError{Path: under(path), Err: err}) {
					return fs.SkipAll
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !w.Matches(path) || !isRegularNote(path, d) {
				return nil
			}
			if !yield(under(path), nil) {
				return fs.SkipAll
			}
			return nil
		})
	}
	return seq, nil
}

// Matches reports whether path has a recognized note extension.
func (w *Walker) Matches(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// isRegularNote accepts regular files and symlinks that resolve to one.
func isRegularNote(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
