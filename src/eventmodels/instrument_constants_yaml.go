package eventmodels

import "fmt"

type InstrumentConstantsYAML struct {
	Instruments []InstrumentYAML `yaml:"instruments"`
}

type InstrumentYAML struct {
	Symbol    string  `yaml:"symbol"`
	DV01      float64 `yaml:"dv01"`
	Convexity float64 `yaml:"convexity"`
}

func (c *InstrumentConstantsYAML) ConstantsMap() (InstrumentConstantsMap, error) {
	out := make(InstrumentConstantsMap, len(c.Instruments))
	for _, instr := range c.Instruments {
		if instr.Symbol == "" {
			return nil, fmt.Errorf("InstrumentConstantsYAML: ConstantsMap: instrument with empty symbol")
		}

		if instr.DV01 <= 0 {
			return nil, fmt.Errorf("InstrumentConstantsYAML: ConstantsMap: %s: dv01 must be positive, found %v", instr.Symbol, instr.DV01)
		}

		out[InstrumentID(instr.Symbol)] = InstrumentConstants{
			DV01:      instr.DV01,
			Convexity: instr.Convexity,
		}
	}

	return out, nil
}
