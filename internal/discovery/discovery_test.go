package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkPyFilesSkipsHiddenAndGitignored(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.py"), "")
	writeTestFile(t, filepath.Join(root, ".hidden", "b.py"), "")
	writeTestFile(t, filepath.Join(root, "skip_me.py"), "")
	writeTestFile(t, filepath.Join(root, ".gitignore"), "skip_me.py\n")
	writeTestFile(t, filepath.Join(root, "notpython.txt"), "")

	w := NewWalker()
	files, err := w.WalkPyFiles(root, WalkOptions{RespectGitignore: true})
	if err != nil {
		t.Fatalf("WalkPyFiles: %v", err)
	}

	if len(files) != 1 || files[0] != "a.py" {
		t.Fatalf("expected only a.py, got %v", files)
	}
}

func TestWalkPyFilesExcludeGlob(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "keep.py"), "")
	writeTestFile(t, filepath.Join(root, "tests", "test_a.py"), "")

	w := NewWalker()
	files, err := w.WalkPyFiles(root, WalkOptions{Excludes: []string{"tests"}})
	if err != nil {
		t.Fatalf("WalkPyFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "keep.py" {
		t.Fatalf("expected only keep.py, got %v", files)
	}
}

func TestModuleToFileInitPackage(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "pkg", "__init__.py"), "")
	writeTestFile(t, filepath.Join(root, "pkg", "sub.py"), "")

	res, ok := ModuleToFile([]string{root}, "pkg.sub")
	if !ok {
		t.Fatal("expected pkg.sub to resolve")
	}
	if res.MemberName != "" {
		t.Errorf("expected no member name for a real submodule, got %q", res.MemberName)
	}

	res2, ok := ModuleToFile([]string{root}, "pkg.sub.thing")
	if !ok {
		t.Fatal("expected pkg.sub.thing to resolve by stripping member")
	}
	if res2.MemberName != "thing" {
		t.Errorf("expected member_name=thing, got %q", res2.MemberName)
	}
}

func TestFileToModulePathInitMapsToDirectory(t *testing.T) {
	root := t.TempDir()
	mod, err := FileToModulePath([]string{root}, filepath.Join(root, "pkg", "__init__.py"))
	if err != nil {
		t.Fatalf("FileToModulePath: %v", err)
	}
	if mod != "pkg" {
		t.Errorf("expected 'pkg', got %q", mod)
	}
}

func TestFileToModulePathNotUnderRoot(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	if _, err := FileToModulePath([]string{root}, filepath.Join(other, "x.py")); err == nil {
		t.Fatal("expected error for file outside all source roots")
	}
}

func TestResolvePackagePyproject(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "pyproject.toml"), `
[project]
name = "My-Package"
dependencies = ["Requests>=2.0", "numpy"]
`)
	writeTestFile(t, filepath.Join(root, "src", "pkg", "mod.py"), "")

	pkg, err := ResolvePackage(root, filepath.Join(root, "src"))
	if err != nil {
		t.Fatalf("ResolvePackage: %v", err)
	}
	if pkg.Name != "my_package" {
		t.Errorf("expected normalized name my_package, got %q", pkg.Name)
	}
	if len(pkg.Dependencies) != 2 || pkg.Dependencies[0] != "requests" || pkg.Dependencies[1] != "numpy" {
		t.Errorf("unexpected dependencies: %v", pkg.Dependencies)
	}
}

func TestResolvePackageSetupPyUnsupported(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "setup.py"), "")

	_, err := ResolvePackage(root, root)
	if err != ErrSetupPyNotSupported {
		t.Fatalf("expected ErrSetupPyNotSupported, got %v", err)
	}
}

func TestExpandSourceRootsDedup(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a", "x.py"), "")
	writeTestFile(t, filepath.Join(root, "b", "x.py"), "")

	w := NewWalker()
	roots, err := ExpandSourceRoots(root, []string{".", "a", "*"}, w, WalkOptions{})
	if err != nil {
		t.Fatalf("ExpandSourceRoots: %v", err)
	}
	seen := map[string]bool{}
	for _, r := range roots {
		if seen[r] {
			t.Errorf("duplicate source root %q", r)
		}
		seen[r] = true
	}
	if !seen[root] {
		t.Errorf("expected project root itself to be included")
	}
}
