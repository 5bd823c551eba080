package discovery

import (
	"path/filepath"
	"strings"
)

// FileResolutionStatus is the outcome of resolving an absolute file path
// against the project's source roots and exclude rules.
type FileResolutionStatus int

const (
	Found FileResolutionStatus = iota
	Excluded
	NotFound
)

// FileResolution is the result of PackageResolver.ResolveFilePath.
type FileResolution struct {
	Status     FileResolutionStatus
	SourceRoot string
	Package    *Package
}

// PackageResolver maps files and dotted module paths to their owning
// source root and distribution package.
type PackageResolver struct {
	projectRoot string
	sourceRoots []string
	excludes    []string
	packages    map[string]*Package // keyed by source root
}

// NewPackageResolver resolves a Package for every source root up front.
func NewPackageResolver(projectRoot string, sourceRoots []string, excludes []string) (*PackageResolver, error) {
	packages := make(map[string]*Package, len(sourceRoots))
	for _, root := range sourceRoots {
		pkg, err := ResolvePackage(projectRoot, root)
		if err != nil {
			return nil, err
		}
		packages[root] = pkg
	}

	return &PackageResolver{
		projectRoot: projectRoot,
		sourceRoots: sourceRoots,
		excludes:    excludes,
		packages:    packages,
	}, nil
}

// ResolveFilePath classifies an absolute path against the configured
// source roots and exclude rules.
func (r *PackageResolver) ResolveFilePath(absPath string) FileResolution {
	absPath = filepath.Clean(absPath)

	var matchedRoot string
	for _, root := range r.sourceRoots {
		root = filepath.Clean(root)
		rel, err := filepath.Rel(root, absPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if len(root) > len(matchedRoot) {
			matchedRoot = root
		}
	}

	if matchedRoot == "" {
		return FileResolution{Status: NotFound}
	}

	rel, _ := filepath.Rel(r.projectRoot, absPath)
	rel = filepath.ToSlash(rel)
	if matchesAnyGlob(r.excludes, rel) {
		return FileResolution{Status: Excluded, SourceRoot: matchedRoot}
	}

	return FileResolution{Status: Found, SourceRoot: matchedRoot, Package: r.packages[matchedRoot]}
}

// ResolveModulePath performs the module-to-file mapping then the same
// package lookup as ResolveFilePath.
func (r *PackageResolver) ResolveModulePath(dotted string) FileResolution {
	res, ok := ModuleToFile(r.sourceRoots, dotted)
	if !ok {
		return FileResolution{Status: NotFound}
	}
	return r.ResolveFilePath(res.FilePath)
}

// SourceRoots returns the resolver's configured source roots.
func (r *PackageResolver) SourceRoots() []string {
	return r.sourceRoots
}
