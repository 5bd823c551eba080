package modtree

import (
	"testing"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

func TestFindNearestReturnsDeepestTerminalAncestor(t *testing.T) {
	tree := New()
	if err := tree.Insert(types.ModuleConfig{Path: "a.b"}, "a.b", nil); err != nil {
		t.Fatal(err)
	}

	node := tree.FindNearest("a.b.c.d")
	if node == nil || node.FullPath != "a.b" {
		t.Fatalf("expected nearest ancestor a.b, got %+v", node)
	}
}

func TestFindNearestFallsBackToRoot(t *testing.T) {
	tree := New()
	node := tree.FindNearest("x.y.z")
	if node == nil || node.FullPath != types.RootModulePath {
		t.Fatalf("expected root fallback, got %+v", node)
	}
}

func TestInsertEmptyPathIsError(t *testing.T) {
	tree := New()
	if err := tree.Insert(types.ModuleConfig{}, "", nil); err == nil {
		t.Fatal("expected error inserting empty path")
	}
}

func TestGetExactMatchOnly(t *testing.T) {
	tree := New()
	_ = tree.Insert(types.ModuleConfig{Path: "a.b"}, "a.b", nil)

	if tree.Get("a.b") == nil {
		t.Fatal("expected exact match for a.b")
	}
	if tree.Get("a") != nil {
		t.Fatal("expected no match for prefix-only path a")
	}
}

func TestFindCyclesDetectsSCC(t *testing.T) {
	modules := []resolvedModule{
		{cfg: types.ModuleConfig{Path: "a", DependsOn: []types.DependencyConfig{{Path: "b"}}}},
		{cfg: types.ModuleConfig{Path: "b", DependsOn: []types.DependencyConfig{{Path: "a"}}}},
		{cfg: types.ModuleConfig{Path: "c"}},
	}
	cycles := findCycles(modules)
	if len(cycles) != 1 || len(cycles[0]) != 2 {
		t.Fatalf("expected one 2-node cycle, got %v", cycles)
	}
}

func TestFindCyclesNoneWhenAcyclic(t *testing.T) {
	modules := []resolvedModule{
		{cfg: types.ModuleConfig{Path: "a", DependsOn: []types.DependencyConfig{{Path: "b"}}}},
		{cfg: types.ModuleConfig{Path: "b"}},
	}
	if cycles := findCycles(modules); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %v", cycles)
	}
}

func TestResolveDuplicatesLiteralOverwritesGlob(t *testing.T) {
	modules := []resolvedModule{
		{cfg: types.ModuleConfig{Path: "a.b", Layer: "from-glob"}, fromGlob: true},
		{cfg: types.ModuleConfig{Path: "a.b", Layer: "literal"}, fromGlob: false},
	}
	resolved, err := resolveDuplicates(modules)
	if err != nil {
		t.Fatalf("resolveDuplicates: %v", err)
	}
	if len(resolved) != 1 || resolved[0].cfg.Layer != "literal" {
		t.Fatalf("expected literal to win, got %+v", resolved)
	}
}

func TestResolveDuplicatesTwoLiteralsIsError(t *testing.T) {
	modules := []resolvedModule{
		{cfg: types.ModuleConfig{Path: "a.b"}, fromGlob: false},
		{cfg: types.ModuleConfig{Path: "a.b"}, fromGlob: false},
	}
	if _, err := resolveDuplicates(modules); err == nil {
		t.Fatal("expected error for duplicate literal module paths")
	}
}

func TestCheckVisibilityBlocksDependentNotMatchingGlob(t *testing.T) {
	modules := []resolvedModule{
		{cfg: types.ModuleConfig{Path: "core.secret", Visibility: []string{"core.**"}}},
		{cfg: types.ModuleConfig{Path: "app", HasDependsOn: true, DependsOn: []types.DependencyConfig{{Path: "core.secret"}}}},
	}
	if err := checkVisibility(modules); err == nil {
		t.Fatal("expected visibility violation for a dependent not matching the visibility glob")
	}
}

func TestCheckVisibilityAllowsMatchingDependent(t *testing.T) {
	modules := []resolvedModule{
		{cfg: types.ModuleConfig{Path: "core.secret", Visibility: []string{"core.**"}}},
		{cfg: types.ModuleConfig{Path: "core.app", HasDependsOn: true, DependsOn: []types.DependencyConfig{{Path: "core.secret"}}}},
	}
	if err := checkVisibility(modules); err != nil {
		t.Fatalf("expected no violation for a dependent matching the visibility glob, got %v", err)
	}
}

func TestCheckVisibilityNoRestrictionAllowsAnyDependent(t *testing.T) {
	modules := []resolvedModule{
		{cfg: types.ModuleConfig{Path: "core.open"}},
		{cfg: types.ModuleConfig{Path: "app", HasDependsOn: true, DependsOn: []types.DependencyConfig{{Path: "core.open"}}}},
	}
	if err := checkVisibility(modules); err != nil {
		t.Fatalf("expected no violation when target has no visibility restriction, got %v", err)
	}
}

func TestCompileModuleGlobTrailingDoubleStarMatchesSelfAndDescendants(t *testing.T) {
	re, err := compileModuleGlob("a.b.**")
	if err != nil {
		t.Fatal(err)
	}
	for _, candidate := range []string{"a/b.py", "a/b/c.py", "a/b/c/d.py"} {
		if !re.MatchString(candidate) {
			t.Errorf("expected %q to match a.b.**", candidate)
		}
	}
	if re.MatchString("a/x.py") {
		t.Error("did not expect a/x.py to match a.b.**")
	}
}

func TestCompileModuleGlobSingleStarSegment(t *testing.T) {
	re, err := compileModuleGlob("a.*.c")
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("a/anything/c.py") {
		t.Error("expected a/anything/c.py to match a.*.c")
	}
	if re.MatchString("a/x/y/c.py") {
		t.Error("did not expect a/x/y/c.py to match a.*.c (single-segment wildcard)")
	}
}
