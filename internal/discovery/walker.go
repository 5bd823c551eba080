// Package discovery enumerates Python source files under a project root
// and resolves them to their owning distribution package.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// WalkOptions configures file enumeration.
type WalkOptions struct {
	Excludes         []string // globs matched against paths relative to the walked root, or against base names
	RespectGitignore bool
}

// Walker discovers .py files under a root, honoring exclude globs and
// (optionally) gitignore.
type Walker struct{}

// NewWalker creates a new Walker instance.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkPyFiles returns every ".py" file under root, relative to root,
// forward-slash normalized. Hidden entries (dot-prefixed names) are
// skipped. Permission errors are silently skipped, never panicked on.
func (w *Walker) WalkPyFiles(root string, opts WalkOptions) ([]string, error) {
	return w.walk(root, opts, nil, func(name string) bool {
		return strings.HasSuffix(name, ".py")
	})
}

// WalkPyProjects returns every "pyproject.toml" file under root.
func (w *Walker) WalkPyProjects(root string, opts WalkOptions) ([]string, error) {
	return w.walk(root, opts, nil, func(name string) bool {
		return name == "pyproject.toml"
	})
}

// WalkGlobbedFiles returns every file under root whose root-relative,
// forward-slash path matches any of globs.
func (w *Walker) WalkGlobbedFiles(root string, globs []string, opts WalkOptions) ([]string, error) {
	return w.walk(root, opts, globs, nil)
}

func (w *Walker) walk(root string, opts WalkOptions, pathGlobs []string, nameMatches func(name string) bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	matcher, err := newExcludeMatcher(root, opts.Excludes, opts.RespectGitignore)
	if err != nil {
		return nil, err
	}

	var results []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil // silently skip permission errors etc.
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		name := d.Name()
		if name != "." && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && matcher.matchesDir(relPath) {
				return fs.SkipDir
			}
			return nil
		}

		if matcher.matches(relPath) {
			return nil
		}

		if len(pathGlobs) > 0 {
			if matchesAnyGlob(pathGlobs, relPath) {
				results = append(results, relPath)
			}
			return nil
		}

		if nameMatches != nil && nameMatches(name) {
			results = append(results, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	return results, nil
}

// excludeMatcher combines configured exclude globs with, when enabled,
// the .gitignore file directly in the walked root. Nested .gitignore
// files and a global ignore file are not read.
type excludeMatcher struct {
	globs     []string
	gitignore *ignore.GitIgnore
}

func newExcludeMatcher(root string, excludes []string, respectGitignore bool) (*excludeMatcher, error) {
	m := &excludeMatcher{globs: excludes}

	if respectGitignore {
		gitignorePath := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(gitignorePath); err == nil {
			gi, err := ignore.CompileIgnoreFile(gitignorePath)
			if err != nil {
				return nil, fmt.Errorf("failed to parse .gitignore: %w", err)
			}
			m.gitignore = gi
		}
	}

	return m, nil
}

func (m *excludeMatcher) matches(relPath string) bool {
	if matchesAnyGlob(m.globs, relPath) {
		return true
	}
	if m.gitignore != nil && m.gitignore.MatchesPath(relPath) {
		return true
	}
	return false
}

// matchesDir reports whether a directory (and everything beneath it)
// should be pruned.
func (m *excludeMatcher) matchesDir(relPath string) bool {
	return m.matches(relPath) || m.matches(relPath+"/")
}

func matchesAnyGlob(globs []string, relPath string) bool {
	for _, g := range globs {
		if ok, _ := filepath.Match(g, relPath); ok {
			return true
		}
		// Also allow a glob to match just the base name, the way
		// project-root-anchored excludes commonly read (e.g. "__pycache__").
		if ok, _ := filepath.Match(g, filepath.Base(relPath)); ok {
			return true
		}
	}
	return false
}
