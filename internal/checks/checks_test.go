package checks

import (
	"testing"

	"github.com/ingo-eichhorst/modguard/internal/discovery"
	"github.com/ingo-eichhorst/modguard/internal/modtree"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

type fixedLines struct{}

func (fixedLines) LineNumber(offset int) int { return offset }

func buildLayeredTree(t *testing.T) *modtree.Tree {
	t.Helper()
	tree := modtree.New()
	modules := []types.ModuleConfig{
		{Path: "top", Layer: "top"},
		{Path: "mid", Layer: "middle", HasDependsOn: true, DependsOn: []types.DependencyConfig{{Path: "bottom"}}},
		{Path: "bottom", Layer: "bottom"},
	}
	for _, m := range modules {
		if err := tree.Insert(m, m.Path, nil); err != nil {
			t.Fatal(err)
		}
	}
	return tree
}

func TestLayerViolationWhenLowerImportsHigher(t *testing.T) {
	tree := buildLayeredTree(t)
	layers := []types.LayerConfig{{Name: "top"}, {Name: "middle"}, {Name: "bottom"}}

	file := &types.ProcessedFile{
		RelativeFilePath: "bottom/mod.py",
		ModuleConfig:     &types.ModuleConfig{Path: "bottom", Layer: "bottom"},
		Imports:          []types.NormalizedImport{{ModulePath: "top.thing", AliasOffset: 10, ImportOffset: 10}},
	}

	diags := CheckInternalDependencies(tree, types.RootModuleAllow, layers, file, fixedLines{})
	if len(diags) != 1 || diags[0].Details.Code == nil || diags[0].Details.Code.Kind != types.KindLayerViolation {
		t.Fatalf("expected LayerViolation, got %+v", diags)
	}
}

func TestLayerOKWhenHigherImportsLower(t *testing.T) {
	tree := buildLayeredTree(t)
	layers := []types.LayerConfig{{Name: "top"}, {Name: "middle"}, {Name: "bottom"}}

	file := &types.ProcessedFile{
		RelativeFilePath: "top/mod.py",
		ModuleConfig:     &types.ModuleConfig{Path: "top", Layer: "top"},
		Imports:          []types.NormalizedImport{{ModulePath: "bottom.thing", AliasOffset: 10, ImportOffset: 10}},
	}

	diags := CheckInternalDependencies(tree, types.RootModuleAllow, layers, file, fixedLines{})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}
}

func TestClosedLayerBetweenBlocksOtherwiseOKDependency(t *testing.T) {
	tree := modtree.New()
	for _, m := range []types.ModuleConfig{
		{Path: "top", Layer: "top"},
		{Path: "bottom", Layer: "bottom"},
	} {
		_ = tree.Insert(m, m.Path, nil)
	}
	layers := []types.LayerConfig{{Name: "top"}, {Name: "middle", Closed: true}, {Name: "bottom"}}

	file := &types.ProcessedFile{
		RelativeFilePath: "top/mod.py",
		ModuleConfig:     &types.ModuleConfig{Path: "top", Layer: "top"},
		Imports:          []types.NormalizedImport{{ModulePath: "bottom.thing", AliasOffset: 5, ImportOffset: 5}},
	}

	diags := CheckInternalDependencies(tree, types.RootModuleAllow, layers, file, fixedLines{})
	if len(diags) != 1 || diags[0].Details.Code.Kind != types.KindLayerViolation {
		t.Fatalf("expected closed-layer violation, got %+v", diags)
	}
}

func TestUndeclaredForbiddenDeprecatedDependency(t *testing.T) {
	tree := modtree.New()
	for _, m := range []types.ModuleConfig{
		{Path: "a"}, {Path: "b"}, {Path: "c"}, {Path: "d"},
	} {
		_ = tree.Insert(m, m.Path, nil)
	}

	source := &types.ModuleConfig{
		Path:         "a",
		HasDependsOn: true,
		DependsOn:    []types.DependencyConfig{{Path: "b", Deprecated: true}},
		CannotDependOn: []types.DependencyConfig{{Path: "c"}},
	}

	file := &types.ProcessedFile{RelativeFilePath: "a/mod.py", ModuleConfig: source}

	file.Imports = []types.NormalizedImport{{ModulePath: "b", AliasOffset: 1, ImportOffset: 1}}
	diags := CheckInternalDependencies(tree, types.RootModuleAllow, nil, file, fixedLines{})
	if len(diags) != 1 || diags[0].Details.Code.Kind != types.KindDeprecatedDependency {
		t.Fatalf("expected DeprecatedDependency, got %+v", diags)
	}

	file.Imports = []types.NormalizedImport{{ModulePath: "c", AliasOffset: 1, ImportOffset: 1}}
	diags = CheckInternalDependencies(tree, types.RootModuleAllow, nil, file, fixedLines{})
	if len(diags) != 1 || diags[0].Details.Code.Kind != types.KindForbiddenDependency {
		t.Fatalf("expected ForbiddenDependency, got %+v", diags)
	}

	file.Imports = []types.NormalizedImport{{ModulePath: "d", AliasOffset: 1, ImportOffset: 1}}
	diags = CheckInternalDependencies(tree, types.RootModuleAllow, nil, file, fixedLines{})
	if len(diags) != 1 || diags[0].Details.Code.Kind != types.KindUndeclaredDependency {
		t.Fatalf("expected UndeclaredDependency, got %+v", diags)
	}
}

func TestExternalDependencyUndeclaredAndUnused(t *testing.T) {
	pkg := &discovery.Package{Name: "myapp", Dependencies: []string{"requests"}}
	file := &types.ProcessedFile{
		RelativeFilePath: "a/mod.py",
		ModuleConfig:     &types.ModuleConfig{Path: "a"},
		Imports: []types.NormalizedImport{
			{ModulePath: "flask.app", AliasOffset: 1, ImportOffset: 1},
		},
	}

	diags, used := CheckExternalDependencies(ExternalCheckConfig{Package: pkg}, file, fixedLines{})
	if len(diags) != 1 || diags[0].Details.Code.Kind != types.KindUndeclaredExternalDep {
		t.Fatalf("expected UndeclaredExternalDependency, got %+v", diags)
	}
	if len(used) != 0 {
		t.Fatalf("expected no dependency matched, got %v", used)
	}

	unused := UnusedExternalDependencies(pkg, used, types.RuleError)
	if len(unused) != 1 || unused[0].Details.Code.Dependency != "requests" {
		t.Fatalf("expected requests reported unused, got %+v", unused)
	}
}

func TestExternalDependencySkipsStdlib(t *testing.T) {
	pkg := &discovery.Package{Name: "myapp", Dependencies: []string{"requests"}}
	file := &types.ProcessedFile{
		RelativeFilePath: "a/mod.py",
		ModuleConfig:     &types.ModuleConfig{Path: "a"},
		Imports:          []types.NormalizedImport{{ModulePath: "os.path", AliasOffset: 1, ImportOffset: 1}},
	}
	diags, _ := CheckExternalDependencies(ExternalCheckConfig{Package: pkg}, file, fixedLines{})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics for stdlib import, got %+v", diags)
	}
}

func TestExternalDependencyForbiddenModuleOverrideWinsEvenIfDeclared(t *testing.T) {
	pkg := &discovery.Package{Name: "myapp", Dependencies: []string{"requests"}}
	file := &types.ProcessedFile{
		RelativeFilePath: "a/mod.py",
		ModuleConfig: &types.ModuleConfig{
			Path:                   "a",
			CannotDependOnExternal: []string{"requests"},
		},
		Imports: []types.NormalizedImport{{ModulePath: "requests", AliasOffset: 1, ImportOffset: 1}},
	}

	diags, used := CheckExternalDependencies(ExternalCheckConfig{Package: pkg}, file, fixedLines{})
	if len(diags) != 1 || diags[0].Details.Code.Kind != types.KindModuleForbiddenExtDep {
		t.Fatalf("expected ModuleForbiddenExtDep even though requests is declared, got %+v", diags)
	}
	if len(used) != 0 {
		t.Fatalf("expected forbidden import not marked as used, got %v", used)
	}
}

func TestExternalDependencyModuleAllowlistOverridesPackageDeclaration(t *testing.T) {
	pkg := &discovery.Package{Name: "myapp", Dependencies: []string{"requests"}}
	file := &types.ProcessedFile{
		RelativeFilePath: "a/mod.py",
		ModuleConfig: &types.ModuleConfig{
			Path:                 "a",
			HasDependsOnExternal: true,
			DependsOnExternal:    []string{"httpx"},
		},
		Imports: []types.NormalizedImport{{ModulePath: "requests", AliasOffset: 1, ImportOffset: 1}},
	}

	diags, _ := CheckExternalDependencies(ExternalCheckConfig{Package: pkg}, file, fixedLines{})
	if len(diags) != 1 || diags[0].Details.Code.Kind != types.KindModuleUndeclaredExtDep {
		t.Fatalf("expected ModuleUndeclaredExtDep for an import outside the module's external allowlist, got %+v", diags)
	}

	file.Imports = []types.NormalizedImport{{ModulePath: "httpx", AliasOffset: 1, ImportOffset: 1}}
	diags, _ = CheckExternalDependencies(ExternalCheckConfig{Package: pkg}, file, fixedLines{})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics for an import covered by the module's external allowlist, got %+v", diags)
	}
}

func TestSuppressionAndHygiene(t *testing.T) {
	directives := []types.IgnoreDirective{
		{Modules: nil, Reason: "legacy", LineNo: 4, IgnoredLineNo: 5},
	}
	diagnostics := []types.Diagnostic{
		{
			Severity:   types.SeverityError,
			FilePath:   "a.py",
			LineNumber: 5,
			Details:    types.DiagnosticDetails{Code: &types.CodeDiagnostic{Kind: types.KindUndeclaredDependency, ImportModulePath: "forbidden"}},
		},
	}

	surviving, used := ApplySuppression(diagnostics, directives)
	if len(surviving) != 0 {
		t.Fatalf("expected diagnostic to be suppressed, got %+v", surviving)
	}
	if !used[0] {
		t.Fatal("expected directive marked used")
	}

	hygiene := CheckIgnoreDirectiveHygiene(directives, used, types.RulesConfig{UnusedIgnoreDirectives: types.RuleError}, "a.py")
	if len(hygiene) != 0 {
		t.Fatalf("expected no hygiene diagnostics for a used, reasoned directive, got %+v", hygiene)
	}
}

func TestHygieneFlagsUnusedAndMissingReason(t *testing.T) {
	directives := []types.IgnoreDirective{
		{LineNo: 1, IgnoredLineNo: 2},
	}
	used := []bool{false}

	diags := CheckIgnoreDirectiveHygiene(directives, used, types.RulesConfig{
		UnusedIgnoreDirectives:        types.RuleError,
		RequireIgnoreDirectiveReasons: types.RuleWarn,
	}, "a.py")

	if len(diags) != 2 {
		t.Fatalf("expected unused + missing-reason diagnostics, got %+v", diags)
	}
}

func TestHygieneRedundantAlwaysUnused(t *testing.T) {
	directives := []types.IgnoreDirective{
		{LineNo: 1, IgnoredLineNo: 2, Reason: "x"},
		{LineNo: 2, IgnoredLineNo: 2, Reason: "y", Redundant: true},
	}
	used := []bool{true, true} // even if somehow marked used, redundant always reports

	diags := CheckIgnoreDirectiveHygiene(directives, used, types.RulesConfig{UnusedIgnoreDirectives: types.RuleError}, "a.py")
	if len(diags) != 1 || diags[0].LineNumber != 2 {
		t.Fatalf("expected one unused diagnostic for the redundant directive, got %+v", diags)
	}
}
