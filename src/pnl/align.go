package pnl

import (
	"fmt"
	"sort"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// PairedQuotes is one strike observed at both snapshot times.
type PairedQuotes struct {
	Strike float64
	Quote1 eventmodels.OptionQuote
	Quote2 eventmodels.OptionQuote
}

// AlignStrikes pairs two dated snapshots of one underlying and side on exact
// strike match and returns the pairs sorted ascending by strike. The two
// snapshots must share the same strike universe: any leftover strike on
// either side, or an empty intersection, is a structural error that aborts
// the whole pair rather than degrading row by row.
func AlignStrikes(snap1, snap2 eventmodels.MarketSnapshot, id eventmodels.InstrumentID, typ eventmodels.OptionType) ([]PairedQuotes, error) {
	side1, err := snap1.OptionsForUnderlying(id, typ)
	if err != nil {
		return nil, fmt.Errorf("pnl.AlignStrikes: snapshot %s: %w", snap1.Timestamp, err)
	}

	side2, err := snap2.OptionsForUnderlying(id, typ)
	if err != nil {
		return nil, fmt.Errorf("pnl.AlignStrikes: snapshot %s: %w", snap2.Timestamp, err)
	}

	pairs := make([]PairedQuotes, 0, len(side1))
	for strike, q1 := range side1 {
		q2, ok := side2[strike]
		if !ok {
			continue
		}

		pairs = append(pairs, PairedQuotes{Strike: strike, Quote1: q1, Quote2: q2})
	}

	if len(pairs) == 0 || len(pairs) != len(side1) || len(pairs) != len(side2) {
		return nil, fmt.Errorf("pnl.AlignStrikes: %s %s between %s and %s: %d vs %d strikes, %d shared: %w",
			id, typ, snap1.Timestamp, snap2.Timestamp, len(side1), len(side2), len(pairs), eventmodels.AttributionDataMismatchErr)
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Strike < pairs[j].Strike
	})

	return pairs, nil
}
