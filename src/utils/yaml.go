package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// LoadInstrumentConstants reads the per-underlying DV01/convexity map.
func LoadInstrumentConstants(path string) (eventmodels.InstrumentConstantsMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("utils.LoadInstrumentConstants: read %s: %w", path, err)
	}

	var dto eventmodels.InstrumentConstantsYAML
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("utils.LoadInstrumentConstants: unmarshal %s: %w", path, err)
	}

	constants, err := dto.ConstantsMap()
	if err != nil {
		return nil, fmt.Errorf("utils.LoadInstrumentConstants: %w", err)
	}

	return constants, nil
}
