package types

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// UnmarshalTOML accepts either a bare string ("other.module") or a
// table ({path = "other.module", deprecated = true}).
func (d *DependencyConfig) UnmarshalTOML(value any) error {
	switch v := value.(type) {
	case string:
		d.Path = v
		d.Deprecated = false
		return nil
	case map[string]any:
		if p, ok := v["path"].(string); ok {
			d.Path = p
		} else {
			return fmt.Errorf("dependency table missing string \"path\"")
		}
		if dep, ok := v["deprecated"].(bool); ok {
			d.Deprecated = dep
		}
		return nil
	default:
		return fmt.Errorf("dependency entry must be a string or table, got %T", value)
	}
}

// MarshalTOML renders a bare string when Deprecated is false, or a table
// otherwise — the inverse of UnmarshalTOML.
func (d DependencyConfig) MarshalTOML() ([]byte, error) {
	if !d.Deprecated {
		return toml.Marshal(d.Path)
	}
	return toml.Marshal(map[string]any{"path": d.Path, "deprecated": d.Deprecated})
}
