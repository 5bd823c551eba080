package discovery

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// WalkModuleCandidates returns every relative path under root that could
// back a dotted module path: every ".py"/".pyi" file, and every
// directory (extensionless, to match package-style modules). Used by
// the module glob resolver, which matches a derived filesystem glob
// against candidate paths with an optional {,.py,.pyi} extension.
func (w *Walker) WalkModuleCandidates(root string, opts WalkOptions) ([]string, error) {
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
			return nil
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
			if relPath != "." {
				results = append(results, relPath)
			}
			return nil
		}

		if matcher.matches(relPath) {
			return nil
		}
		if strings.HasSuffix(name, ".py") || strings.HasSuffix(name, ".pyi") {
			results = append(results, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
