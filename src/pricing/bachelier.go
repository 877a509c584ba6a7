package pricing

import (
	"fmt"
	"math"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// NormPDF is the standard normal density.
// f(x) = (1 / sqrt(2*pi)) * exp(-x^2 / 2)
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// NormCDF is the standard normal cumulative distribution.
// P(X <= x) = 0.5 * (1 + erf(x / sqrt(2)))
func NormCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// Price returns the Bachelier (arithmetic normal) model value of a bond
// future option.
//
// Call = (F-K)*N(d) + sigma*sqrt(T)*n(d), d = (F-K) / (sigma*sqrt(T))
// Put via parity: put = call - (F-K). A future is worth F.
//
// sigma*sqrt(T) -> 0 resolves to intrinsic value without dividing by zero.
// Market sanity of the inputs is the solver's responsibility, not ours; the
// only rejected inputs are negative expiry and unknown option types.
func Price(f, k, sigma, t float64, typ eventmodels.OptionType) (float64, error) {
	if t < 0 {
		return 0, fmt.Errorf("pricing.Price: time to expiry %v is negative", t)
	}

	switch typ {
	case eventmodels.Future:
		return f, nil
	case eventmodels.Call, eventmodels.Put:
	default:
		return 0, fmt.Errorf("pricing.Price: %w", typ.Validate())
	}

	moneyness := f - k
	vol := sigma * math.Sqrt(t)

	if vol <= 0 {
		if typ == eventmodels.Call {
			return math.Max(moneyness, 0), nil
		}

		return math.Max(-moneyness, 0), nil
	}

	d := moneyness / vol
	call := moneyness*NormCDF(d) + vol*NormPDF(d)

	if typ == eventmodels.Put {
		return call - moneyness, nil
	}

	return call, nil
}
