package greeks

import (
	"fmt"
	"math"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// PricingFunc is the model being differentiated, as a function of the three
// state dimensions. Strike and option type are frozen into the closure.
type PricingFunc func(f, sigma, t float64) (float64, error)

// StepSizes are the per-dimension finite difference steps. F, sigma and T
// live on very different scales, so fixed steps fail; use AdaptiveSteps
// unless a caller has a specific reason to override.
type StepSizes struct {
	F     float64
	Sigma float64
	T     float64
}

const stepEpsilon = 1e-4

// AdaptiveSteps scales each step with its coordinate, with an absolute floor
// per dimension so near-zero states still get a usable step.
func AdaptiveSteps(f, sigma, t float64) StepSizes {
	return StepSizes{
		F:     math.Max(1e-5, math.Abs(f)*stepEpsilon),
		Sigma: math.Max(1e-5, math.Abs(sigma)*stepEpsilon),
		T:     math.Max(1e-6, math.Abs(t)*stepEpsilon),
	}
}

// RawKey names one raw derivative of the pricing function before canonical
// greek naming and scaling are applied.
type RawKey string

const (
	DF       RawKey = "dF"
	DSigma   RawKey = "dSigma"
	DT       RawKey = "dT"
	DF2      RawKey = "dF2"
	DSigma2  RawKey = "dSigma2"
	DFDSigma RawKey = "dFdSigma"
	DFDT     RawKey = "dFdT"
	DSigmaDT RawKey = "dSigmadT"
	DF3      RawKey = "dF3"
	DSigma3  RawKey = "dSigma3"
	DF2DT    RawKey = "dF2dT"
	DF2DSig  RawKey = "dF2dSigma"
)

// RawDerivatives holds the per-key outcome of one differentiation run. A key
// appears in exactly one of the two maps: a non-finite or failed stencil
// degrades only its own greek, siblings still compute.
type RawDerivatives struct {
	Values map[RawKey]float64
	Failed map[RawKey]error
}

// Numerical differentiates priceFn at (f, sigma, t) with central stencils:
// 3-point first order, 3-point pure second order, 4-point crosses, 5-point
// pure third order. The two mixed third-order keys are central differences of
// the already-differenced gamma and vanna stencils, which compounds
// truncation error but keeps per-key failure localized to one stencil.
func Numerical(priceFn PricingFunc, f, sigma, t float64, steps *StepSizes) RawDerivatives {
	h := AdaptiveSteps(f, sigma, t)
	if steps != nil {
		h = *steps
	}

	out := RawDerivatives{
		Values: make(map[RawKey]float64),
		Failed: make(map[RawKey]error),
	}

	eval := func(df, dsigma, dt float64) (float64, error) {
		v, err := priceFn(f+df, sigma+dsigma, t+dt)
		if err != nil {
			return 0, err
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("price at (%v, %v, %v) is not finite: %w", f+df, sigma+dsigma, t+dt, eventmodels.NumericDegeneracyErr)
		}

		return v, nil
	}

	record := func(key RawKey, compute func() (float64, error)) {
		v, err := compute()
		if err != nil {
			out.Failed[key] = fmt.Errorf("greeks.Numerical: %s: %w", key, err)
			return
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			out.Failed[key] = fmt.Errorf("greeks.Numerical: %s: %w", key, eventmodels.NumericDegeneracyErr)
			return
		}

		out.Values[key] = v
	}

	first := func(hx float64, dir func(s float64) (float64, error)) (float64, error) {
		up, err := dir(hx)
		if err != nil {
			return 0, err
		}
		dn, err := dir(-hx)
		if err != nil {
			return 0, err
		}

		return (up - dn) / (2 * hx), nil
	}

	record(DF, func() (float64, error) {
		return first(h.F, func(s float64) (float64, error) { return eval(s, 0, 0) })
	})
	record(DSigma, func() (float64, error) {
		return first(h.Sigma, func(s float64) (float64, error) { return eval(0, s, 0) })
	})
	record(DT, func() (float64, error) {
		return first(h.T, func(s float64) (float64, error) { return eval(0, 0, s) })
	})

	second := func(hx float64, dir func(s float64) (float64, error)) (float64, error) {
		up, err := dir(hx)
		if err != nil {
			return 0, err
		}
		mid, err := dir(0)
		if err != nil {
			return 0, err
		}
		dn, err := dir(-hx)
		if err != nil {
			return 0, err
		}

		return (up - 2*mid + dn) / (hx * hx), nil
	}

	record(DF2, func() (float64, error) {
		return second(h.F, func(s float64) (float64, error) { return eval(s, 0, 0) })
	})
	record(DSigma2, func() (float64, error) {
		return second(h.Sigma, func(s float64) (float64, error) { return eval(0, s, 0) })
	})

	// 4-point central cross stencil / (4*h1*h2).
	cross := func(h1, h2 float64, dir func(s1, s2 float64) (float64, error)) (float64, error) {
		pp, err := dir(h1, h2)
		if err != nil {
			return 0, err
		}
		pm, err := dir(h1, -h2)
		if err != nil {
			return 0, err
		}
		mp, err := dir(-h1, h2)
		if err != nil {
			return 0, err
		}
		mm, err := dir(-h1, -h2)
		if err != nil {
			return 0, err
		}

		return (pp - pm - mp + mm) / (4 * h1 * h2), nil
	}

	record(DFDSigma, func() (float64, error) {
		return cross(h.F, h.Sigma, func(s1, s2 float64) (float64, error) { return eval(s1, s2, 0) })
	})
	record(DFDT, func() (float64, error) {
		return cross(h.F, h.T, func(s1, s2 float64) (float64, error) { return eval(s1, 0, s2) })
	})
	record(DSigmaDT, func() (float64, error) {
		return cross(h.Sigma, h.T, func(s1, s2 float64) (float64, error) { return eval(0, s1, s2) })
	})

	// 5-point pure third order stencil / (2*h^3).
	third := func(hx float64, dir func(s float64) (float64, error)) (float64, error) {
		up2, err := dir(2 * hx)
		if err != nil {
			return 0, err
		}
		up, err := dir(hx)
		if err != nil {
			return 0, err
		}
		dn, err := dir(-hx)
		if err != nil {
			return 0, err
		}
		dn2, err := dir(-2 * hx)
		if err != nil {
			return 0, err
		}

		return (up2 - 2*up + 2*dn - dn2) / (2 * hx * hx * hx), nil
	}

	record(DF3, func() (float64, error) {
		return third(h.F, func(s float64) (float64, error) { return eval(s, 0, 0) })
	})
	record(DSigma3, func() (float64, error) {
		return third(h.Sigma, func(s float64) (float64, error) { return eval(0, s, 0) })
	})

	// Color: central difference in T of the gamma stencil.
	record(DF2DT, func() (float64, error) {
		gammaAt := func(dt float64) (float64, error) {
			return second(h.F, func(s float64) (float64, error) { return eval(s, 0, dt) })
		}

		up, err := gammaAt(h.T)
		if err != nil {
			return 0, err
		}
		dn, err := gammaAt(-h.T)
		if err != nil {
			return 0, err
		}

		return (up - dn) / (2 * h.T), nil
	})

	// Zomma: central difference in F of the vanna stencil, i.e. a difference
	// of an already-differenced quantity.
	record(DF2DSig, func() (float64, error) {
		vannaAt := func(df float64) (float64, error) {
			return cross(h.F, h.Sigma, func(s1, s2 float64) (float64, error) { return eval(df+s1, s2, 0) })
		}

		up, err := vannaAt(h.F)
		if err != nil {
			return 0, err
		}
		dn, err := vannaAt(-h.F)
		if err != nil {
			return 0, err
		}

		return (up - dn) / (2 * h.F), nil
	})

	return out
}
