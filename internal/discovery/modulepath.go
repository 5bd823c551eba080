package discovery

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ModuleFileResult is the outcome of ModuleToFile: the file backing a
// dotted module path, plus (if the path had a trailing member segment
// that doesn't correspond to a package/module) the stripped member name.
type ModuleFileResult struct {
	SourceRoot string
	FilePath   string
	MemberName string // "" unless the last dotted segment was a member, not a submodule
}

// ModuleToFile resolves a dotted module path to the file that backs it,
// trying each source root in order:
//  1. p/__init__.pyi, p/__init__.py, p.pyi, p.py -> file is the module itself
//  2. if p has a dot, strip the last segment and retry, returning the
//     stripped file plus member_name = last segment
func ModuleToFile(sourceRoots []string, dottedPath string) (*ModuleFileResult, bool) {
	if r, ok := tryResolveAsModule(sourceRoots, dottedPath); ok {
		return r, true
	}

	if idx := strings.LastIndex(dottedPath, "."); idx >= 0 {
		stripped := dottedPath[:idx]
		member := dottedPath[idx+1:]
		if r, ok := tryResolveAsModule(sourceRoots, stripped); ok {
			r.MemberName = member
			return r, true
		}
	}

	return nil, false
}

func tryResolveAsModule(sourceRoots []string, dottedPath string) (*ModuleFileResult, bool) {
	relParts := strings.Split(dottedPath, ".")
	relDir := filepath.Join(relParts...)

	candidates := []string{
		filepath.Join(relDir, "__init__.pyi"),
		filepath.Join(relDir, "__init__.py"),
		relDir + ".pyi",
		relDir + ".py",
	}

	for _, root := range sourceRoots {
		for _, candidate := range candidates {
			full := filepath.Join(root, candidate)
			if fileExists(full) {
				return &ModuleFileResult{SourceRoot: root, FilePath: full}, true
			}
		}
	}
	return nil, false
}

// FileToModulePath is the reverse of ModuleToFile: given an absolute
// file path, finds the longest-prefix-matching source root, strips it,
// drops the .py/.pyi suffix, and joins remaining path separators with
// dots. "__init__" maps to its containing directory.
func FileToModulePath(sourceRoots []string, file string) (string, error) {
	file = filepath.Clean(file)

	var best string
	for _, root := range sourceRoots {
		root = filepath.Clean(root)
		rel, err := filepath.Rel(root, file)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if rel == "." {
			return "", fmt.Errorf("%s is a source root, not a file within one", file)
		}
		if len(root) > len(best) {
			best = root
		}
	}

	if best == "" {
		return "", fmt.Errorf("%s is not under any configured source root", file)
	}

	rel, err := filepath.Rel(best, file)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)

	switch {
	case strings.HasSuffix(rel, ".pyi"):
		rel = strings.TrimSuffix(rel, ".pyi")
	case strings.HasSuffix(rel, ".py"):
		rel = strings.TrimSuffix(rel, ".py")
	}

	rel = strings.TrimSuffix(rel, "/__init__")
	if rel == "" {
		return "", fmt.Errorf("%s resolves to an empty module path", file)
	}

	return strings.ReplaceAll(rel, "/", "."), nil
}
