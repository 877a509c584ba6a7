package greeks

import (
	"fmt"
	"math"

	"github.com/jiaming2012/option-risk/src/eventmodels"
	"github.com/jiaming2012/option-risk/src/pricing"
)

// analyticalRaw returns the closed-form Bachelier partial for one greek in
// future space, unscaled, with d = (F-K)/(sigma*sqrt(T)).
//
// All greeks above first order are identical for calls and puts: the two
// differ only by the linear parity term F-K. Raw theta here is the plain
// partial dV/dT; the sign flip and annualization are display conventions
// applied by the scaling table.
func analyticalRaw(kind eventmodels.GreekKind, f, k, sigma, t float64, typ eventmodels.OptionType) float64 {
	sqrtT := math.Sqrt(t)
	vol := sigma * sqrtT
	d := (f - k) / vol
	pdf := pricing.NormPDF(d)

	switch kind {
	case eventmodels.Delta:
		delta := pricing.NormCDF(d)
		if typ == eventmodels.Put {
			delta -= 1
		}
		return delta
	case eventmodels.Vega:
		return sqrtT * pdf
	case eventmodels.Theta:
		return sigma * pdf / (2 * sqrtT)
	case eventmodels.Gamma:
		return pdf / vol
	case eventmodels.Vanna:
		return -d * pdf / sigma
	case eventmodels.Volga:
		return sqrtT * d * d * pdf / sigma
	case eventmodels.Charm:
		return -d * pdf / (2 * t)
	case eventmodels.Veta:
		return pdf * (1 + d*d) / (2 * sqrtT)
	case eventmodels.Speed:
		return -d * pdf / (vol * vol)
	case eventmodels.Color:
		return pdf * (d*d - 1) / (2 * t * vol)
	case eventmodels.Zomma:
		return pdf * (d*d - 1) / (sigma * vol)
	case eventmodels.Ultima:
		return sqrtT * pdf * d * d * (d*d - 3) / (sigma * sigma)
	}

	return math.NaN()
}

// futureRowVector is the degenerate greek set for a quote on the future
// itself: unit delta, everything else identically zero in future space. The
// yield transform still applies: d/dy = -DV01 and, because delta is nonzero,
// d2/dy2 picks up the convexity leg of the chain rule. The third order yield
// greeks keep no surviving term (their legs all carry gamma, vanna or charm,
// which are zero for a linear payoff).
func futureRowVector(constants eventmodels.InstrumentConstants) *eventmodels.GreekVector {
	vec := eventmodels.NewGreekVector()
	for _, kind := range eventmodels.AllGreekKinds() {
		vec.Set(kind, eventmodels.FutureSpace, 0)
		vec.Set(kind, eventmodels.YieldSpace, 0)
	}

	vec.Set(eventmodels.Delta, eventmodels.FutureSpace, 1)
	vec.Set(eventmodels.Delta, eventmodels.YieldSpace, -constants.DV01)
	vec.Set(eventmodels.Gamma, eventmodels.YieldSpace, constants.Convexity)

	return vec
}

// Analytical computes the full closed-form greek set in both spaces. Callers
// must exclude degenerate states first: sigma and T must both be positive for
// option rows.
func Analytical(f, k, sigma, t float64, typ eventmodels.OptionType, constants eventmodels.InstrumentConstants) (*eventmodels.GreekVector, error) {
	if err := typ.Validate(); err != nil {
		return nil, fmt.Errorf("greeks.Analytical: %w", err)
	}

	if typ == eventmodels.Future {
		return futureRowVector(constants), nil
	}

	if sigma <= 0 || t <= 0 {
		return nil, fmt.Errorf("greeks.Analytical: sigma=%v T=%v: %w", sigma, t, eventmodels.DegenerateInputsErr)
	}

	vec := eventmodels.NewGreekVector()
	for _, kind := range eventmodels.AllGreekKinds() {
		vec.Set(kind, eventmodels.FutureSpace, analyticalRaw(kind, f, k, sigma, t, typ))
		vec.Set(kind, eventmodels.YieldSpace, yieldRaw(kind, f, k, sigma, t, typ, constants))
	}

	return vec, nil
}
