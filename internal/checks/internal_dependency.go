package checks

import (
	"github.com/ingo-eichhorst/modguard/internal/modtree"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// LineResolver converts a byte offset into its 1-based line number.
type LineResolver interface {
	LineNumber(offset int) int
}

type layerCheckOutcome int

const (
	layerOK layerCheckOutcome = iota
	layerSame
	layerNotSpecified
	layerViolation
	layerClosedViolation
	layerUnknown
)

// CheckInternalDependencies runs the internal-dependency and layer
// checker over every import in file.
func CheckInternalDependencies(tree *modtree.Tree, rootPolicy types.RootModuleTreatment, layers []types.LayerConfig, file *types.ProcessedFile, lines LineResolver) []types.Diagnostic {
	var diagnostics []types.Diagnostic

	for i := range file.Imports {
		imp := &file.Imports[i]
		diagnostics = append(diagnostics, checkImport(tree, rootPolicy, layers, file, imp, lines)...)
	}

	return diagnostics
}

func checkImport(tree *modtree.Tree, rootPolicy types.RootModuleTreatment, layers []types.LayerConfig, file *types.ProcessedFile, imp *types.NormalizedImport, lines LineResolver) []types.Diagnostic {
	target := tree.FindNearest(imp.ModulePath)
	if target == nil || target.Config == nil {
		return []types.Diagnostic{types.NewGlobalError(types.DiagnosticDetails{
			Configuration: &types.ConfigurationDiagnostic{
				Kind:       types.KindModuleConfigNotFound,
				ModulePath: imp.ModulePath,
			},
		})}
	}

	if target.Config.IsRoot() && rootPolicy == types.RootModuleIgnore {
		return nil
	}

	return checkDependencies(file, imp, file.ModuleConfig, target.Config, layers, lines)
}

func checkDependencies(file *types.ProcessedFile, imp *types.NormalizedImport, source, target *types.ModuleConfig, layers []types.LayerConfig, lines LineResolver) []types.Diagnostic {
	if source == target || (source != nil && target != nil && source.Path == target.Path) {
		return nil
	}

	switch outcome, diag := checkLayers(imp, layers, source, target, file, lines); outcome {
	case layerOK:
		return nil
	case layerViolation, layerClosedViolation, layerUnknown:
		return []types.Diagnostic{diag}
	}

	if source == nil || !source.HasDependsOn {
		return nil // unrestricted
	}

	if target.Utility {
		return nil
	}

	for _, dep := range source.CannotDependOn {
		if dep.Path == target.Path {
			return []types.Diagnostic{locatedDependencyDiagnostic(
				types.SeverityError, types.KindForbiddenDependency, imp, file, source, target, lines,
			)}
		}
	}

	for _, dep := range source.DependsOn {
		if dep.Path != target.Path {
			continue
		}
		if dep.Deprecated {
			return []types.Diagnostic{locatedDependencyDiagnostic(
				types.SeverityWarning, types.KindDeprecatedDependency, imp, file, source, target, lines,
			)}
		}
		return nil
	}

	return []types.Diagnostic{locatedDependencyDiagnostic(
		types.SeverityError, types.KindUndeclaredDependency, imp, file, source, target, lines,
	)}
}

func locatedDependencyDiagnostic(sev types.Severity, kind types.CodeDiagnosticKind, imp *types.NormalizedImport, file *types.ProcessedFile, source, target *types.ModuleConfig, lines LineResolver) types.Diagnostic {
	d := types.Diagnostic{
		Severity:   sev,
		FilePath:   file.RelativeFilePath,
		LineNumber: lines.LineNumber(imp.AliasOffset),
		Details: types.DiagnosticDetails{
			Code: &types.CodeDiagnostic{
				Kind:             kind,
				ImportModulePath: imp.ModulePath,
				UsageModule:      source.Path,
				DefinitionModule: target.Path,
			},
		},
	}
	if importLine := lines.LineNumber(imp.ImportOffset); importLine != d.LineNumber {
		d.OriginalLineNumber = importLine
	}
	return d
}

func checkLayers(imp *types.NormalizedImport, layers []types.LayerConfig, source, target *types.ModuleConfig, file *types.ProcessedFile, lines LineResolver) (layerCheckOutcome, types.Diagnostic) {
	if source == nil || target == nil || source.Layer == "" || target.Layer == "" {
		return layerNotSpecified, types.Diagnostic{}
	}

	sourceIdx := layerIndex(layers, source.Layer)
	targetIdx := layerIndex(layers, target.Layer)

	if sourceIdx < 0 {
		return layerUnknown, types.NewGlobalError(types.DiagnosticDetails{
			Configuration: &types.ConfigurationDiagnostic{Kind: types.KindUnknownLayer, ModulePath: source.Path, Layer: source.Layer},
		})
	}
	if targetIdx < 0 {
		return layerUnknown, types.NewGlobalError(types.DiagnosticDetails{
			Configuration: &types.ConfigurationDiagnostic{Kind: types.KindUnknownLayer, ModulePath: target.Path, Layer: target.Layer},
		})
	}

	switch {
	case sourceIdx == targetIdx:
		return layerSame, types.Diagnostic{}
	case sourceIdx < targetIdx:
		if closed, closedLayer := closedLayerBetween(layers, sourceIdx, targetIdx); closed {
			return layerClosedViolation, layerViolationDiagnostic(imp, file, source, target, lines, closedLayer)
		}
		return layerOK, types.Diagnostic{}
	default:
		return layerViolation, layerViolationDiagnostic(imp, file, source, target, lines, "")
	}
}

// closedLayerBetween reports whether any layer strictly between the
// (lower-index) source and (higher-index) target is closed, which
// forbids the dependency even though the direction would otherwise be
// allowed.
func closedLayerBetween(layers []types.LayerConfig, sourceIdx, targetIdx int) (bool, string) {
	for i := sourceIdx + 1; i < targetIdx; i++ {
		if layers[i].Closed {
			return true, layers[i].Name
		}
	}
	return false, ""
}

func layerViolationDiagnostic(imp *types.NormalizedImport, file *types.ProcessedFile, source, target *types.ModuleConfig, lines LineResolver, _closedLayer string) types.Diagnostic {
	d := types.Diagnostic{
		Severity:   types.SeverityError,
		FilePath:   file.RelativeFilePath,
		LineNumber: lines.LineNumber(imp.AliasOffset),
		Details: types.DiagnosticDetails{
			Code: &types.CodeDiagnostic{
				Kind:             types.KindLayerViolation,
				ImportModulePath: imp.ModulePath,
				UsageModule:      source.Path,
				UsageLayer:       source.Layer,
				DefinitionModule: target.Path,
				DefinitionLayer:  target.Layer,
			},
		},
	}
	if importLine := lines.LineNumber(imp.ImportOffset); importLine != d.LineNumber {
		d.OriginalLineNumber = importLine
	}
	return d
}

func layerIndex(layers []types.LayerConfig, name string) int {
	for i, l := range layers {
		if l.Name == name {
			return i
		}
	}
	return -1
}
