// Package config loads and validates modguard's project configuration:
// a standalone TOML file, or a [tool.modguard] table nested inside
// pyproject.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

const (
	standaloneFileName = "modguard.toml"
	pyprojectFileName  = "pyproject.toml"
)

// Load resolves and decodes the project configuration for dir.
// If explicitPath is set, that file is loaded verbatim (standalone
// shape). Otherwise Load looks for ./modguard.toml, then a
// [tool.modguard] table inside ./pyproject.toml. Returns an error if
// neither is found.
func Load(dir string, explicitPath string) (*types.ProjectConfig, error) {
	if explicitPath != "" {
		return loadStandalone(explicitPath)
	}

	standalonePath := filepath.Join(dir, standaloneFileName)
	if fileExists(standalonePath) {
		return loadStandalone(standalonePath)
	}

	pyprojectPath := filepath.Join(dir, pyprojectFileName)
	if fileExists(pyprojectPath) {
		cfg, found, err := loadFromPyproject(pyprojectPath)
		if err != nil {
			return nil, err
		}
		if found {
			return cfg, nil
		}
	}

	return nil, fmt.Errorf("no project configuration found: expected %s or a [tool.modguard] table in %s", standaloneFileName, pyprojectFileName)
}

func loadStandalone(path string) (*types.ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project config %s: %w", path, err)
	}

	cfg := newDefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", path, err)
	}

	normalize(cfg)
	return cfg, nil
}

func loadFromPyproject(path string) (*types.ProjectConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}

	tool, ok := doc["tool"].(map[string]any)
	if !ok {
		return nil, false, nil
	}
	section, ok := tool["modguard"]
	if !ok {
		return nil, false, nil
	}

	// Round-trip the extracted table through TOML so we can reuse the
	// same struct-tag decoding path as the standalone file.
	reencoded, err := toml.Marshal(section)
	if err != nil {
		return nil, false, fmt.Errorf("re-encode [tool.modguard] in %s: %w", path, err)
	}

	cfg := newDefaultConfig()
	if err := toml.Unmarshal(reencoded, cfg); err != nil {
		return nil, false, fmt.Errorf("parse [tool.modguard] in %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, false, fmt.Errorf("invalid [tool.modguard] in %s: %w", path, err)
	}

	normalize(cfg)
	return cfg, true, nil
}

// newDefaultConfig returns a ProjectConfig with its documented TOML
// defaults applied, before decoding overrides it.
func newDefaultConfig() *types.ProjectConfig {
	return &types.ProjectConfig{
		SourceRoots:               []string{"."},
		RootModule:                types.RootModuleAllow,
		IgnoreTypeCheckingImports: true,
		RespectGitignore:          true,
	}
}

// normalize applies the "." == "<root>" sentinel equivalence
// and expands any bulk "paths" form on a ModuleConfig into individual
// entries, preserving a shared GroupID so bulk-form modules round-trip
// through re-serialization as one table.
func normalize(cfg *types.ProjectConfig) {
	if cfg.RootModule == "" {
		cfg.RootModule = types.RootModuleAllow
	}

	expanded := make([]types.ModuleConfig, 0, len(cfg.Modules))
	for _, m := range cfg.Modules {
		if m.Path == "." {
			m.Path = types.RootModulePath
		}
		m.HasDependsOn = m.DependsOn != nil
		m.HasDependsOnExternal = m.DependsOnExternal != nil

		if len(m.RawPaths) == 0 {
			expanded = append(expanded, m)
			continue
		}

		groupID := m.Path
		if groupID == "" {
			groupID = m.RawPaths[0]
		}
		for _, p := range m.RawPaths {
			clone := m
			clone.Path = p
			clone.RawPaths = nil
			clone.GroupID = groupID
			if clone.Path == "." {
				clone.Path = types.RootModulePath
			}
			expanded = append(expanded, clone)
		}
	}
	cfg.Modules = expanded

	for i := range cfg.Interfaces {
		if cfg.Interfaces[i].DataTypes == "" {
			cfg.Interfaces[i].DataTypes = types.DataTypesAll
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
