package greeks

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// ProtectedKinds is the minimum greek subset that portfolio aggregation
// depends on. These stay enabled in both spaces regardless of any override.
func ProtectedKinds() []eventmodels.GreekKind {
	return []eventmodels.GreekKind{
		eventmodels.Delta,
		eventmodels.Gamma,
		eventmodels.Speed,
		eventmodels.Theta,
		eventmodels.Vega,
	}
}

// Configuration declares which greeks a batch computes. Disabled greeks are
// skipped entirely, not computed and discarded: for a large option book the
// saved stencils are the point. They surface as not-computed entries, never
// as zeros.
type Configuration struct {
	enabled map[eventmodels.GreekKind]bool

	// CrossCheck re-derives delta/gamma/vega/theta with the finite
	// difference engine on every row and logs disagreements.
	CrossCheck bool
}

// NewConfiguration enables the given kinds plus the protected subset.
func NewConfiguration(kinds []eventmodels.GreekKind, crossCheck bool) *Configuration {
	cfg := &Configuration{
		enabled:    make(map[eventmodels.GreekKind]bool),
		CrossCheck: crossCheck,
	}

	for _, kind := range kinds {
		cfg.enabled[kind] = true
	}

	for _, kind := range ProtectedKinds() {
		cfg.enabled[kind] = true
	}

	return cfg
}

// DefaultConfiguration enables the full enumeration.
func DefaultConfiguration() *Configuration {
	return NewConfiguration(eventmodels.AllGreekKinds(), false)
}

func LoadConfiguration(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("greeks.LoadConfiguration: read %s: %w", path, err)
	}

	var dto eventmodels.GreekConfigYAML
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("greeks.LoadConfiguration: unmarshal %s: %w", path, err)
	}

	kinds, err := dto.Kinds()
	if err != nil {
		return nil, fmt.Errorf("greeks.LoadConfiguration: %w", err)
	}

	return NewConfiguration(kinds, dto.CrossCheck), nil
}

func (c *Configuration) Enabled(kind eventmodels.GreekKind) bool {
	return c.enabled[kind]
}

func (c *Configuration) EnabledKinds() []eventmodels.GreekKind {
	out := make([]eventmodels.GreekKind, 0, len(c.enabled))
	for _, kind := range eventmodels.AllGreekKinds() {
		if c.enabled[kind] {
			out = append(out, kind)
		}
	}

	return out
}
