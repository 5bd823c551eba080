package pipeline

import (
	"github.com/ingo-eichhorst/modguard/internal/checks"
	"github.com/ingo-eichhorst/modguard/internal/interfaces"
	"github.com/ingo-eichhorst/modguard/internal/modtree"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// interfaceChecker is the subset of interfaces.Compiled results plus an
// optional type checker the orchestrator hands to each worker.
type interfaceChecker struct {
	compiled    []*interfaces.Compiled
	typeChecker interfaces.TypeChecker
}

// checkInterfaces maps interface-check results to diagnostics for
// every import in file: NotExposed on an inter-module import becomes
// PrivateDependency; Exposed{DidNotMatchInterface} becomes
// InvalidDataTypeExport. Same-module or root-ignored imports short-
// circuit to OK, matching the internal-dependency checker's own
// short-circuits.
func checkInterfaces(tree *modtree.Tree, ic interfaceChecker, file *types.ProcessedFile, lines checks.LineResolver) []types.Diagnostic {
	var diagnostics []types.Diagnostic

	for i := range file.Imports {
		imp := &file.Imports[i]
		target := tree.FindNearest(imp.ModulePath)
		if target == nil || target.Config == nil {
			continue // already reported by the internal-dependency checker
		}
		if file.ModuleConfig != nil && target.Config.Path == file.ModuleConfig.Path {
			continue
		}

		member := memberOf(imp.ModulePath, target.Config.Path)
		result := interfaces.CheckMember(ic.compiled, target.Config.Path, member, ic.typeChecker)

		switch result.Kind {
		case interfaces.ResultNotExposed:
			diagnostics = append(diagnostics, interfaceDiagnostic(types.KindPrivateDependency, imp, file, lines))
		case interfaces.ResultExposed:
			if result.TypeCheckResult == interfaces.TypeCheckDidNotMatch {
				diagnostics = append(diagnostics, interfaceDiagnostic(types.KindInvalidDataTypeExport, imp, file, lines))
			}
		}
	}

	return diagnostics
}

// memberOf derives the member name an import references relative to its
// resolved module: the part of the dotted import path after the
// module's own path, "" if the import targets the module itself.
func memberOf(importPath, modulePath string) string {
	if importPath == modulePath {
		return ""
	}
	prefix := modulePath + "."
	if len(importPath) > len(prefix) && importPath[:len(prefix)] == prefix {
		return importPath[len(prefix):]
	}
	return ""
}

func interfaceDiagnostic(kind types.CodeDiagnosticKind, imp *types.NormalizedImport, file *types.ProcessedFile, lines checks.LineResolver) types.Diagnostic {
	d := types.Diagnostic{
		Severity:   types.SeverityError,
		FilePath:   file.RelativeFilePath,
		LineNumber: lines.LineNumber(imp.AliasOffset),
		Details: types.DiagnosticDetails{
			Code: &types.CodeDiagnostic{Kind: kind, ImportModulePath: imp.ModulePath},
		},
	}
	if importLine := lines.LineNumber(imp.ImportOffset); importLine != d.LineNumber {
		d.OriginalLineNumber = importLine
	}
	return d
}
