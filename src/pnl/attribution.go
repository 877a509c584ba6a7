package pnl

import (
	"fmt"
	"math"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// PriceFloor excludes strikes whose first-snapshot price is effectively zero:
// a percentage error against a near-zero denominator is meaningless noise.
const PriceFloor = 1e-4

// Attribute decomposes the realized price change of one paired strike into
// Taylor terms weighted by the greeks computed at the first state. All greeks
// enter raw: the display scaling never touches the expansion. The second
// return value is false when the row is excluded by the price floor.
func Attribute(pair eventmodels.PnLSnapshotPair) (eventmodels.PnLDecomposition, bool, error) {
	if pair.Greeks1 == nil {
		return eventmodels.PnLDecomposition{}, false, fmt.Errorf("pnl.Attribute: missing greeks for strike %v", pair.Quote1.Strike)
	}

	if pair.Quote1.Strike != pair.Quote2.Strike {
		return eventmodels.PnLDecomposition{}, false, fmt.Errorf("pnl.Attribute: strikes %v and %v are not a pair: %w",
			pair.Quote1.Strike, pair.Quote2.Strike, eventmodels.AttributionDataMismatchErr)
	}

	if pair.Quote1.MarketPrice <= PriceFloor {
		return eventmodels.PnLDecomposition{}, false, nil
	}

	raw := func(kind eventmodels.GreekKind) (float64, error) {
		v, ok := pair.Greeks1.Raw(kind, eventmodels.FutureSpace)
		if !ok {
			return 0, fmt.Errorf("pnl.Attribute: greek %s not computed for strike %v", kind, pair.Quote1.Strike)
		}

		return v, nil
	}

	var (
		delta, theta, vega, gamma, speed float64
		volga, vanna, veta, charm        float64
		err                              error
	)

	for kind, dst := range map[eventmodels.GreekKind]*float64{
		eventmodels.Delta: &delta,
		eventmodels.Theta: &theta,
		eventmodels.Vega:  &vega,
		eventmodels.Gamma: &gamma,
		eventmodels.Speed: &speed,
		eventmodels.Volga: &volga,
		eventmodels.Vanna: &vanna,
		eventmodels.Veta:  &veta,
		eventmodels.Charm: &charm,
	} {
		if *dst, err = raw(kind); err != nil {
			return eventmodels.PnLDecomposition{}, false, err
		}
	}

	dF := pair.Quote2.FuturePrice - pair.Quote1.FuturePrice
	dT := pair.Quote2.TimeToExpiry - pair.Quote1.TimeToExpiry
	dSigma := pair.Sigma2 - pair.Sigma1

	d := eventmodels.PnLDecomposition{
		Symbol: pair.Quote1.Symbol,
		Strike: pair.Quote1.Strike,

		ActualPnL: pair.Quote2.MarketPrice - pair.Quote1.MarketPrice,

		DeltaTerm: delta * dF,
		ThetaTerm: theta * dT,
		VegaTerm:  vega * dSigma,
		GammaTerm: 0.5 * gamma * dF * dF,
		SpeedTerm: speed * dF * dF * dF / 6,

		VolgaTerm: volga * dSigma * dSigma,
		VannaTerm: vanna * dF * dSigma,
		VetaTerm:  veta * dSigma * dT,
		CharmTerm: charm * dF * dT,
	}

	d.BaseExplained = d.DeltaTerm + d.ThetaTerm + d.VegaTerm + d.GammaTerm + d.SpeedTerm
	d.ExtendedExplained = d.BaseExplained + d.VolgaTerm + d.VannaTerm + d.VetaTerm + d.CharmTerm

	d.BaseErrorPct = errorPct(d.BaseExplained, d.ActualPnL)
	d.ExtendedErrorPct = errorPct(d.ExtendedExplained, d.ActualPnL)

	return d, true, nil
}

func errorPct(explained, actual float64) float64 {
	if actual == 0 {
		return math.Inf(1)
	}

	return math.Abs(explained/actual-1) * 100
}
