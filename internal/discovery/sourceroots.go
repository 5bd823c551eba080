package discovery

import (
	"path/filepath"
	"strings"
)

// ExpandSourceRoots resolves each configured source-root entry into an
// absolute, deduplicated directory list:
//   - "."                  -> projectRoot
//   - non-glob subpath      -> projectRoot/path
//   - glob                  -> every matching directory under projectRoot
func ExpandSourceRoots(projectRoot string, entries []string, w *Walker, opts WalkOptions) ([]string, error) {
	if len(entries) == 0 {
		entries = []string{"."}
	}

	seen := make(map[string]bool)
	var result []string

	add := func(p string) {
		abs := filepath.Clean(p)
		if !seen[abs] {
			seen[abs] = true
			result = append(result, abs)
		}
	}

	for _, entry := range entries {
		if entry == "." {
			add(projectRoot)
			continue
		}
		if !isGlob(entry) {
			add(filepath.Join(projectRoot, entry))
			continue
		}

		dirs, err := expandDirGlob(projectRoot, entry, w, opts)
		if err != nil {
			return nil, err
		}
		for _, d := range dirs {
			add(d)
		}
	}

	return result, nil
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[")
}

// expandDirGlob enumerates directories under projectRoot matching a glob
// source-root entry, filtered by the same excludes/gitignore used for
// file discovery.
func expandDirGlob(projectRoot, pattern string, w *Walker, opts WalkOptions) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(projectRoot, pattern))
	if err != nil {
		return nil, err
	}

	matcher, err := newExcludeMatcher(projectRoot, opts.Excludes, opts.RespectGitignore)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, m := range matches {
		if fileExists(m) {
			continue // a regular file, not a directory
		}
		rel, err := filepath.Rel(projectRoot, m)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if matcher.matchesDir(rel) {
			continue
		}
		dirs = append(dirs, m)
	}
	return dirs, nil
}
