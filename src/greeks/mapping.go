package greeks

import (
	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// canonicalName is the single translation table from raw derivative keys to
// canonical greek names. The raw values already are plain partials, so the
// display conventions come from the same GreekKind scaling table the
// analytical engine uses, making the two engines directly comparable.
var canonicalName = map[RawKey]eventmodels.GreekKind{
	DF:       eventmodels.Delta,
	DSigma:   eventmodels.Vega,
	DT:       eventmodels.Theta,
	DF2:      eventmodels.Gamma,
	DSigma2:  eventmodels.Volga,
	DFDSigma: eventmodels.Vanna,
	DFDT:     eventmodels.Charm,
	DSigmaDT: eventmodels.Veta,
	DF3:      eventmodels.Speed,
	DSigma3:  eventmodels.Ultima,
	DF2DT:    eventmodels.Color,
	DF2DSig:  eventmodels.Zomma,
}

// ToGreekVector maps a differentiation run onto the canonical greek
// enumeration in future space. Failed stencils become not-computed entries,
// never zeros.
func (r RawDerivatives) ToGreekVector() *eventmodels.GreekVector {
	vec := eventmodels.NewGreekVector()
	for key, kind := range canonicalName {
		if v, ok := r.Values[key]; ok {
			vec.Set(kind, eventmodels.FutureSpace, v)
			continue
		}

		vec.SetNotComputed(kind, eventmodels.FutureSpace)
	}

	return vec
}
