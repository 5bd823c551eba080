// Package pipeline implements the per-file check pipeline and the
// parallel orchestrator that fans it out across a project's source
// files.
package pipeline

import (
	"os"

	"github.com/ingo-eichhorst/modguard/internal/checks"
	"github.com/ingo-eichhorst/modguard/internal/discovery"
	"github.com/ingo-eichhorst/modguard/internal/modtree"
	"github.com/ingo-eichhorst/modguard/internal/pyparse"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// fileOutcome is what processFile returns: the diagnostics it found,
// how many normalized imports it produced (for the NoFirstPartyImportsFound
// sweep), and the external dependencies it matched (for the unused-
// dependency sweep).
type fileOutcome struct {
	Diagnostics  []types.Diagnostic
	ImportCount  int
	ExternalUsed map[string]bool
}

// processFile runs the full per-file pipeline: parse, extract imports,
// parse ignore directives, run the internal/external checkers, apply
// suppression, then run ignore-directive hygiene last so it observes
// what got suppressed.
func processFile(parser *pyparse.Parser, absPath, relPath string, tree *modtree.Tree, resolver *discovery.PackageResolver, cfg *types.ProjectConfig, compiledInterfaces interfaceChecker, opts Options) fileOutcome {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return fileOutcome{Diagnostics: []types.Diagnostic{
			types.NewLocatedWarning(relPath, 0, types.DiagnosticDetails{
				Configuration: &types.ConfigurationDiagnostic{
					Kind:    types.KindSkippedFileSyntaxError,
					Message: err.Error(),
				},
			}),
		}}
	}

	tst, err := parser.Parse(absPath, content)
	if err != nil || tst.HasSyntaxError() {
		msg := "syntax error"
		if err != nil {
			msg = err.Error()
		}
		return fileOutcome{Diagnostics: []types.Diagnostic{
			types.NewLocatedWarning(relPath, 0, types.DiagnosticDetails{
				Configuration: &types.ConfigurationDiagnostic{Kind: types.KindSkippedFileSyntaxError, Message: msg},
			}),
		}}
	}
	defer tst.Close()

	modulePath, _ := discovery.FileToModulePath(resolver.SourceRoots(), absPath)
	isPackageInit := hasSuffixInit(absPath)

	var resolveStringLiteral func(string) bool
	if cfg.IncludeStringImports {
		resolveStringLiteral = func(dotted string) bool {
			_, ok := discovery.ModuleToFile(resolver.SourceRoots(), dotted)
			return ok
		}
	}

	imports := pyparse.ExtractImports(tst, pyparse.ExtractOptions{
		FileModulePath:            modulePath,
		IsPackageInit:             isPackageInit,
		IgnoreTypeCheckingImports: cfg.IgnoreTypeCheckingImports,
		IncludeStringImports:      cfg.IncludeStringImports,
		ResolveStringLiteral:      resolveStringLiteral,
	})

	directives := pyparse.ParseIgnoreDirectives(content)
	lines := pyparse.NewLineIndex(content)

	nearest := tree.FindNearest(modulePath)
	var moduleConfig *types.ModuleConfig
	if nearest != nil {
		moduleConfig = nearest.Config
	}

	file := &types.ProcessedFile{
		RelativeFilePath: relPath,
		ModulePath:       modulePath,
		ModuleConfig:     moduleConfig,
		Imports:          imports,
		IgnoreDirectives: directives,
	}

	var diagnostics []types.Diagnostic

	if opts.EnableDependencies {
		diagnostics = append(diagnostics, checks.CheckInternalDependencies(tree, cfg.RootModule, cfg.Layers, file, lines)...)
	}

	var externalUsed map[string]bool
	if opts.EnableExternal {
		res := resolver.ResolveFilePath(absPath)
		extDiags, used := checks.CheckExternalDependencies(checks.ExternalCheckConfig{
			Package:             pkgOf(res),
			ModuleDistributions: opts.ModuleDistributions,
			Excluded:            opts.ExcludedExternal,
			Rename:              opts.RenameExternal,
		}, file, lines)
		diagnostics = append(diagnostics, extDiags...)
		externalUsed = used
	}

	if opts.EnableInterfaces && compiledInterfaces.compiled != nil {
		diagnostics = append(diagnostics, checkInterfaces(tree, compiledInterfaces, file, lines)...)
	}

	surviving, used := checks.ApplySuppression(diagnostics, directives)
	surviving = append(surviving, checks.CheckIgnoreDirectiveHygiene(directives, used, cfg.Rules, relPath)...)

	return fileOutcome{Diagnostics: surviving, ImportCount: len(imports), ExternalUsed: externalUsed}
}

func pkgOf(res discovery.FileResolution) *discovery.Package {
	if res.Status != discovery.Found {
		return nil
	}
	return res.Package
}

func hasSuffixInit(path string) bool {
	const initPy, initPyi = "__init__.py", "__init__.pyi"
	n := len(path)
	return (n >= len(initPy) && path[n-len(initPy):] == initPy) ||
		(n >= len(initPyi) && path[n-len(initPyi):] == initPyi)
}
