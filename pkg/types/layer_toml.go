package types

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// UnmarshalTOML accepts either a bare string ("service") or a table
// ({name = "service", closed = true}), the same bare-string-or-table
// shape as DependencyConfig.
func (l *LayerConfig) UnmarshalTOML(value any) error {
	switch v := value.(type) {
	case string:
		l.Name = v
		l.Closed = false
		return nil
	case map[string]any:
		name, ok := v["name"].(string)
		if !ok {
			return fmt.Errorf("layer table missing string \"name\"")
		}
		l.Name = name
		if closed, ok := v["closed"].(bool); ok {
			l.Closed = closed
		}
		return nil
	default:
		return fmt.Errorf("layer entry must be a string or table, got %T", value)
	}
}

// MarshalTOML renders a bare string when Closed is false, or a table
// otherwise — the inverse of UnmarshalTOML.
func (l LayerConfig) MarshalTOML() ([]byte, error) {
	if !l.Closed {
		return toml.Marshal(l.Name)
	}
	return toml.Marshal(map[string]any{"name": l.Name, "closed": l.Closed})
}
