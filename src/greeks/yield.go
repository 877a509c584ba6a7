package greeks

import (
	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// yieldRaw converts a future-space greek into yield space through the
// explicit chain rule F(y), using the instrument's checked constants:
// F'(y) = -DV01 (price falls as yield rises) and F''(y) = convexity.
//
// Pure sigma/time greeks carry no F partial and are identical in both
// spaces. The cross and higher terms pick up convexity corrections:
//
//	d/dy   = F' * d/dF
//	d2/dy2 = F'^2 * d2/dF2 + F'' * d/dF
//	d3/dy3 = F'^3 * d3/dF3 + 3*F'*F'' * d2/dF2   (F''' taken as zero)
func yieldRaw(kind eventmodels.GreekKind, f, k, sigma, t float64, typ eventmodels.OptionType, constants eventmodels.InstrumentConstants) float64 {
	if !kind.SpaceDependent() {
		return analyticalRaw(kind, f, k, sigma, t, typ)
	}

	fp := -constants.DV01
	fpp := constants.Convexity

	futureRaw := func(kind eventmodels.GreekKind) float64 {
		return analyticalRaw(kind, f, k, sigma, t, typ)
	}

	switch kind {
	case eventmodels.Delta:
		return futureRaw(eventmodels.Delta) * fp
	case eventmodels.Gamma:
		return futureRaw(eventmodels.Gamma)*fp*fp + futureRaw(eventmodels.Delta)*fpp
	case eventmodels.Vanna:
		return futureRaw(eventmodels.Vanna) * fp
	case eventmodels.Charm:
		return futureRaw(eventmodels.Charm) * fp
	case eventmodels.Speed:
		return futureRaw(eventmodels.Speed)*fp*fp*fp + 3*futureRaw(eventmodels.Gamma)*fp*fpp
	case eventmodels.Color:
		return futureRaw(eventmodels.Color)*fp*fp + futureRaw(eventmodels.Charm)*fpp
	case eventmodels.Zomma:
		return futureRaw(eventmodels.Zomma)*fp*fp + futureRaw(eventmodels.Vanna)*fpp
	}

	return futureRaw(kind)
}
