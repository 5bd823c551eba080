package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadStandalone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modguard.toml", `
source_roots = ["src"]
root_module = "forbid"
layers = ["top"]

[[modules]]
path = "a"
depends_on = []

[[modules]]
path = "b"
depends_on = ["a", {path = "a.sub", deprecated = true}]
layer = "top"
`)

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(cfg.Modules))
	}
	if cfg.RootModule != types.RootModuleForbid {
		t.Errorf("root_module = %q, want forbid", cfg.RootModule)
	}
	b := cfg.Modules[1]
	if len(b.DependsOn) != 2 || b.DependsOn[1].Path != "a.sub" || !b.DependsOn[1].Deprecated {
		t.Errorf("unexpected depends_on decoding: %+v", b.DependsOn)
	}
	if !b.HasDependsOn {
		t.Errorf("expected HasDependsOn=true for explicit empty-or-populated list")
	}
}

func TestLoadFromPyproject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", `
[project]
name = "demo"
dependencies = ["requests"]

[tool.modguard]
source_roots = ["."]

[[tool.modguard.modules]]
path = "svc"
utility = true
`)

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Modules) != 1 || cfg.Modules[0].Path != "svc" || !cfg.Modules[0].Utility {
		t.Fatalf("unexpected modules: %+v", cfg.Modules)
	}
}

func TestLoadMissingConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir, ""); err == nil {
		t.Fatal("expected error when no config file is present")
	}
}

func TestNormalizeRootSentinel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modguard.toml", `
[[modules]]
path = "."
`)
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Modules[0].Path != types.RootModulePath {
		t.Errorf("expected %q, got %q", types.RootModulePath, cfg.Modules[0].Path)
	}
}

func TestBulkPathsExpansion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modguard.toml", `
[[modules]]
paths = ["a", "b", "c"]
utility = true
`)
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Modules) != 3 {
		t.Fatalf("expected 3 expanded modules, got %d", len(cfg.Modules))
	}
	for _, m := range cfg.Modules {
		if !m.Utility {
			t.Errorf("expected bulk-expanded module %q to inherit utility=true", m.Path)
		}
		if m.GroupID == "" {
			t.Errorf("expected GroupID to be set on bulk-expanded module %q", m.Path)
		}
	}
}

func TestValidateUnknownLayer(t *testing.T) {
	cfg := &types.ProjectConfig{
		Modules: []types.ModuleConfig{{Path: "a", Layer: "missing"}},
	}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for module referencing unknown layer")
	}
}
