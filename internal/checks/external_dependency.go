package checks

import (
	"strings"

	"github.com/ingo-eichhorst/modguard/internal/discovery"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// ExternalCheckConfig bundles the inputs the external-dependency checker
// needs beyond a single ProcessedFile: the owning package's declared
// dependencies, a user-provided module-to-distribution mapping, and the
// exclusion/rename configuration.
type ExternalCheckConfig struct {
	Package            *discovery.Package
	ModuleDistributions map[string][]string // top-level import name -> distribution names
	Excluded           map[string]bool      // normalized distribution names to always skip
	Rename             map[string]string    // top-level import name -> distribution name override
}

// externalDependencyUsage tracks, per declared dependency, whether any
// import matched it — used for the unused-external-dependency sweep.
type externalDependencyUsage map[string]bool

// CheckExternalDependencies runs the external-dependency checker over
// every import in file, returning diagnostics and the set of declared
// dependency names that were matched by at least one import.
func CheckExternalDependencies(cfg ExternalCheckConfig, file *types.ProcessedFile, lines LineResolver) ([]types.Diagnostic, externalDependencyUsage) {
	used := externalDependencyUsage{}
	var diagnostics []types.Diagnostic

	for i := range file.Imports {
		imp := &file.Imports[i]
		top := topLevelModuleName(imp.ModulePath)
		distNames := distributionNamesFor(top, cfg)

		if anyExcludedOrStdlib(distNames, top, cfg.Excluded) {
			continue
		}

		if file.ModuleConfig != nil && forbidsExternal(file.ModuleConfig.CannotDependOnExternal, distNames) {
			diagnostics = append(diagnostics, externalDiagnostic(types.KindModuleForbiddenExtDep, top, imp, file, lines))
			continue
		}

		if file.ModuleConfig != nil && file.ModuleConfig.HasDependsOnExternal {
			if !containsAny(file.ModuleConfig.DependsOnExternal, distNames) {
				diagnostics = append(diagnostics, externalDiagnostic(types.KindModuleUndeclaredExtDep, top, imp, file, lines))
			}
			continue
		}

		declared := cfg.Package != nil && cfg.Package.Dependencies != nil
		matched := false
		for _, dist := range distNames {
			if containsString(packageDependencies(cfg.Package), dist) {
				matched = true
				used[dist] = true
			}
		}

		if matched {
			continue
		}

		if declared {
			diagnostics = append(diagnostics, externalDiagnostic(types.KindUndeclaredExternalDep, top, imp, file, lines))
		}
	}

	return diagnostics, used
}

// UnusedExternalDependencies is the post-pass over a package's declared
// dependencies after every file has been checked, flagging any
// distribution that was never imported.
func UnusedExternalDependencies(pkg *discovery.Package, used externalDependencyUsage, severity types.RuleSeverity) []types.Diagnostic {
	sev, ok := severityFor(severity)
	if !ok || pkg == nil {
		return nil
	}

	var diagnostics []types.Diagnostic
	for _, dep := range pkg.Dependencies {
		if used[dep] {
			continue
		}
		diagnostics = append(diagnostics, types.Diagnostic{
			Severity: sev,
			Details: types.DiagnosticDetails{
				Code: &types.CodeDiagnostic{Kind: types.KindUnusedExternalDep, Dependency: dep},
			},
		})
	}
	return diagnostics
}

func externalDiagnostic(kind types.CodeDiagnosticKind, dependency string, imp *types.NormalizedImport, file *types.ProcessedFile, lines LineResolver) types.Diagnostic {
	d := types.Diagnostic{
		Severity:   types.SeverityError,
		FilePath:   file.RelativeFilePath,
		LineNumber: lines.LineNumber(imp.AliasOffset),
		Details: types.DiagnosticDetails{
			Code: &types.CodeDiagnostic{Kind: kind, ImportModulePath: imp.ModulePath, Dependency: dependency},
		},
	}
	if importLine := lines.LineNumber(imp.ImportOffset); importLine != d.LineNumber {
		d.OriginalLineNumber = importLine
	}
	return d
}

func topLevelModuleName(modulePath string) string {
	if idx := strings.Index(modulePath, "."); idx >= 0 {
		return modulePath[:idx]
	}
	return modulePath
}

// distributionNamesFor resolves a top-level import name to the
// distribution name(s) that provide it, via the user-supplied mapping,
// falling back to the import name itself normalized as a distribution.
func distributionNamesFor(top string, cfg ExternalCheckConfig) []string {
	if renamed, ok := cfg.Rename[top]; ok {
		return []string{discovery.NormalizeDistName(renamed)}
	}
	if names, ok := cfg.ModuleDistributions[top]; ok && len(names) > 0 {
		out := make([]string, len(names))
		for i, n := range names {
			out[i] = discovery.NormalizeDistName(n)
		}
		return out
	}
	return []string{discovery.NormalizeDistName(top)}
}

func anyExcludedOrStdlib(distNames []string, top string, excluded map[string]bool) bool {
	if StdlibModules[top] {
		return true
	}
	for _, d := range distNames {
		if excluded[d] {
			return true
		}
	}
	return false
}

func packageDependencies(pkg *discovery.Package) []string {
	if pkg == nil {
		return nil
	}
	return pkg.Dependencies
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsAny(haystack, needles []string) bool {
	for _, n := range needles {
		if containsString(haystack, n) {
			return true
		}
	}
	return false
}

func forbidsExternal(forbidden, distNames []string) bool {
	for _, f := range forbidden {
		if containsString(distNames, discovery.NormalizeDistName(f)) {
			return true
		}
	}
	return false
}
