package eventmodels

import "fmt"

type InstrumentID string

// InstrumentConstants hold the per-underlying quantities used to convert
// future-space sensitivities into yield-space. They are read-only for the
// duration of a batch.
type InstrumentConstants struct {
	DV01      float64
	Convexity float64
}

type InstrumentConstantsMap map[InstrumentID]InstrumentConstants

// Get returns the constants for an underlying. A missing entry is a
// configuration error: the instrument -> future relationship is explicit and
// checked, never inferred from a substring match.
func (m InstrumentConstantsMap) Get(id InstrumentID) (InstrumentConstants, error) {
	c, ok := m[id]
	if !ok {
		return InstrumentConstants{}, fmt.Errorf("InstrumentConstantsMap.Get: %s: %w", id, UnknownInstrumentErr)
	}

	return c, nil
}
