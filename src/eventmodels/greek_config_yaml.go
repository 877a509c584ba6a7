package eventmodels

import "fmt"

// GreekConfigYAML is the on-disk enablement map. Names must belong to the
// closed greek enumeration; the protected minimum subset is enforced by the
// configuration layer regardless of what this file says.
type GreekConfigYAML struct {
	Enabled    []string `yaml:"enabled"`
	CrossCheck bool     `yaml:"cross_check"`
}

func (c *GreekConfigYAML) Kinds() ([]GreekKind, error) {
	out := make([]GreekKind, 0, len(c.Enabled))
	for _, name := range c.Enabled {
		kind := GreekKind(name)
		if err := kind.Validate(); err != nil {
			return nil, fmt.Errorf("GreekConfigYAML: Kinds: %w", err)
		}

		out = append(out, kind)
	}

	return out, nil
}
