package modtree

import (
	"fmt"

	"github.com/ingo-eichhorst/modguard/internal/discovery"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// resolvedModule is one module path after bulk-path and glob expansion,
// tagged with how it was derived (literal vs glob) for duplicate
// resolution.
type resolvedModule struct {
	cfg      types.ModuleConfig
	fromGlob bool
}

// BuildResult is the outcome of BuildTree: the tree itself plus any
// ModuleNotFound warnings produced while validating literal module paths.
type BuildResult struct {
	Tree     *Tree
	Warnings []types.Diagnostic
}

// BuildTree validates a project's configured modules and builds the
// module tree: bulk-path and glob expansion, duplicate detection,
// visibility checking, root-module policy enforcement, an optional
// circular-dependency check, then trie insertion.
func BuildTree(cfg *types.ProjectConfig, sourceRoots []string, walker *discovery.Walker, walkOpts discovery.WalkOptions) (*BuildResult, error) {
	expanded, warnings, err := expandModules(cfg, sourceRoots, walker, walkOpts)
	if err != nil {
		return nil, err
	}

	resolved, err := resolveDuplicates(expanded)
	if err != nil {
		return nil, err
	}

	if err := checkVisibility(resolved); err != nil {
		return nil, err
	}

	if err := checkRootModulePolicy(resolved, cfg.RootModule); err != nil {
		return nil, err
	}

	if cfg.ForbidCircularDependencies {
		if cycles := findCycles(resolved); len(cycles) > 0 {
			return nil, fmt.Errorf("circular dependency detected among modules: %v", cycles)
		}
	}

	tree := New()
	for _, rm := range resolved {
		if rm.cfg.IsRoot() {
			continue // the implicit root is already terminal in a fresh tree
		}
		if err := tree.Insert(rm.cfg, rm.cfg.Path, nil); err != nil {
			return nil, err
		}
	}

	return &BuildResult{Tree: tree, Warnings: warnings}, nil
}

// expandModules expands bulk "paths" entries into one ModuleConfig per
// path and glob entries into one ModuleConfig per matched dotted module,
// validating literal (non-glob) paths against the filesystem.
func expandModules(cfg *types.ProjectConfig, sourceRoots []string, walker *discovery.Walker, walkOpts discovery.WalkOptions) ([]resolvedModule, []types.Diagnostic, error) {
	var out []resolvedModule
	var warnings []types.Diagnostic

	for _, m := range cfg.Modules {
		paths := m.RawPaths
		if len(paths) == 0 {
			paths = []string{m.Path}
		}

		for _, path := range paths {
			if path == "." {
				path = types.RootModulePath
			}

			if hasGlobSyntax(path) {
				matches, err := ExpandModuleGlob(path, sourceRoots, walker, walkOpts)
				if err != nil {
					return nil, nil, fmt.Errorf("module glob %q: %w", path, err)
				}
				for _, mod := range matches {
					c := m
					c.Path = mod
					c.RawPaths = nil
					out = append(out, resolvedModule{cfg: c, fromGlob: true})
				}
				continue
			}

			if path != types.RootModulePath {
				if _, ok := discovery.ModuleToFile(sourceRoots, path); !ok {
					warnings = append(warnings, types.NewGlobalWarning(types.DiagnosticDetails{
						Configuration: &types.ConfigurationDiagnostic{
							Kind:       types.KindModuleNotFound,
							ModulePath: path,
							Message:    fmt.Sprintf("module path %q does not resolve to a file or directory", path),
						},
					}))
					continue
				}
			}

			c := m
			c.Path = path
			c.RawPaths = nil
			out = append(out, resolvedModule{cfg: c, fromGlob: false})
		}
	}

	return out, warnings, nil
}

// resolveDuplicates resolves modules sharing a path: exactly one
// literal entry wins over any glob-derived entries for that path; any
// other combination (two literals, or glob-derived entries only) is an
// error.
func resolveDuplicates(modules []resolvedModule) ([]resolvedModule, error) {
	byPath := map[string][]resolvedModule{}
	var order []string
	for _, m := range modules {
		if _, ok := byPath[m.cfg.Path]; !ok {
			order = append(order, m.cfg.Path)
		}
		byPath[m.cfg.Path] = append(byPath[m.cfg.Path], m)
	}

	var out []resolvedModule
	for _, path := range order {
		group := byPath[path]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}

		var literals, globs []resolvedModule
		for _, m := range group {
			if m.fromGlob {
				globs = append(globs, m)
			} else {
				literals = append(literals, m)
			}
		}

		switch {
		case len(literals) == 1 && len(globs) >= 1:
			out = append(out, literals[0])
		default:
			return nil, fmt.Errorf("duplicate module path %q", path)
		}
	}

	return out, nil
}

// checkVisibility enforces that every module which restricts
// visibility is depended on only by modules matching one of its
// visibility globs.
func checkVisibility(modules []resolvedModule) error {
	byPath := map[string]resolvedModule{}
	for _, m := range modules {
		byPath[m.cfg.Path] = m
	}

	for _, m := range modules {
		for _, dep := range m.cfg.DependsOn {
			target, ok := byPath[dep.Path]
			if !ok {
				continue
			}
			if len(target.cfg.Visibility) == 0 {
				continue
			}
			if !matchesAnyVisibilityGlob(target.cfg.Visibility, m.cfg.Path) {
				return fmt.Errorf("module %q is not visible to %q", target.cfg.Path, m.cfg.Path)
			}
		}
	}
	return nil
}

func matchesAnyVisibilityGlob(globs []string, path string) bool {
	for _, g := range globs {
		re, err := compileModuleGlob(g)
		if err != nil {
			continue
		}
		candidate := pathToSlashForm(path)
		if re.MatchString(candidate) || re.MatchString(candidate+".py") {
			return true
		}
		if g == path {
			return true
		}
	}
	return false
}

func pathToSlashForm(dotted string) string {
	out := make([]byte, 0, len(dotted))
	for i := 0; i < len(dotted); i++ {
		if dotted[i] == '.' {
			out = append(out, '/')
		} else {
			out = append(out, dotted[i])
		}
	}
	return string(out)
}

// checkRootModulePolicy enforces the configured root_module treatment.
func checkRootModulePolicy(modules []resolvedModule, policy types.RootModuleTreatment) error {
	switch policy {
	case types.RootModuleForbid:
		for _, m := range modules {
			if m.cfg.IsRoot() {
				return fmt.Errorf("root_module policy is forbid but a module declares path %q", types.RootModulePath)
			}
			for _, dep := range m.cfg.DependsOn {
				if dep.Path == types.RootModulePath || dep.Path == "." {
					return fmt.Errorf("root_module policy is forbid but module %q depends on the root module", m.cfg.Path)
				}
			}
		}
	case types.RootModuleDependenciesOnly:
		for _, m := range modules {
			if m.cfg.IsRoot() {
				continue
			}
			for _, dep := range m.cfg.DependsOn {
				if dep.Path == types.RootModulePath || dep.Path == "." {
					return fmt.Errorf("root_module policy is dependenciesonly but module %q depends on the root module", m.cfg.Path)
				}
			}
		}
	}
	return nil
}
