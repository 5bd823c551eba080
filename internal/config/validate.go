package config

import (
	"fmt"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// Validate checks structural invariants of a decoded ProjectConfig that
// don't require filesystem or module-tree access: the root_module
// policy value, layer names (non-empty, unique), module layer
// references, interface expose/data_types entries, and rule-severity
// values. Duplicate module paths are not checked here.
func Validate(cfg *types.ProjectConfig) error {
	switch cfg.RootModule {
	case "", types.RootModuleAllow, types.RootModuleForbid, types.RootModuleIgnore, types.RootModuleDependenciesOnly:
	default:
		return fmt.Errorf("unknown root_module policy %q", cfg.RootModule)
	}

	layerNames := make(map[string]bool, len(cfg.Layers))
	for _, l := range cfg.Layers {
		if l.Name == "" {
			return fmt.Errorf("layer entries must have a non-empty name")
		}
		if layerNames[l.Name] {
			return fmt.Errorf("duplicate layer name %q", l.Name)
		}
		layerNames[l.Name] = true
	}

	for _, m := range cfg.Modules {
		if m.Layer != "" && !layerNames[m.Layer] {
			return fmt.Errorf("module %q declares unknown layer %q", m.Path, m.Layer)
		}
	}

	for _, iface := range cfg.Interfaces {
		if len(iface.Expose) == 0 {
			return fmt.Errorf("interface must declare at least one expose pattern")
		}
		switch iface.DataTypes {
		case "", types.DataTypesAll, types.DataTypesPrimitive:
		default:
			return fmt.Errorf("interface has unknown data_types %q", iface.DataTypes)
		}
	}

	for _, r := range []types.RuleSeverity{
		cfg.Rules.UnusedIgnoreDirectives,
		cfg.Rules.RequireIgnoreDirectiveReasons,
		cfg.Rules.UnusedExternalDependencies,
		cfg.Rules.LocalImports,
	} {
		switch r {
		case "", types.RuleError, types.RuleWarn, types.RuleOff:
		default:
			return fmt.Errorf("unknown rule severity %q", r)
		}
	}

	return nil
}
