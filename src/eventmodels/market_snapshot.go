package eventmodels

import (
	"fmt"
	"time"
)

// MarketSnapshot is one dated view of an option book.
type MarketSnapshot struct {
	Timestamp time.Time
	Rows      []OptionQuote
}

func (s MarketSnapshot) Validate() error {
	if len(s.Rows) == 0 {
		return fmt.Errorf("MarketSnapshot.Validate: snapshot has no rows")
	}

	return nil
}

// OptionsForUnderlying returns the call/put rows for one underlying, keyed by
// strike. Duplicate strikes per side are rejected: the strike universe must
// pair one to one across snapshots.
func (s MarketSnapshot) OptionsForUnderlying(id InstrumentID, typ OptionType) (map[float64]OptionQuote, error) {
	out := make(map[float64]OptionQuote)
	for _, row := range s.Rows {
		if row.Underlying != id || row.Type != typ {
			continue
		}

		if _, ok := out[row.Strike]; ok {
			return nil, fmt.Errorf("MarketSnapshot.OptionsForUnderlying: duplicate strike %v for %s %s", row.Strike, id, typ)
		}

		out[row.Strike] = row
	}

	return out, nil
}
