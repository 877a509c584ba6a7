package pricing

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

const (
	// bracketSeed is the initial upper bracket for sigma.
	bracketSeed = 1e-4

	// maxDoublings bounds the bracket expansion. Unbounded doubling on a
	// price the model can never reach would otherwise spin forever.
	maxDoublings = 64

	// bisectTol is the absolute interval / function tolerance for bisection.
	bisectTol = 1e-16

	// maxBisections bounds the bisection loop; on cap the best estimate is
	// returned with Converged=false instead of looping.
	maxBisections = 200
)

// SolveImpliedVol root-finds the Bachelier volatility that reproduces an
// observed market price, using the monotonicity of price in sigma for fixed
// (F, K, T): bracket by bounded doubling, then bisect.
//
// A negative market price is rejected outright with InvalidMarketPriceErr.
// A price below intrinsic is a data quality anomaly: it is flagged and
// logged, but the solve is still attempted.
func SolveImpliedVol(f, k, t, marketPrice float64, typ eventmodels.OptionType) (eventmodels.ImpliedVolResult, error) {
	if typ != eventmodels.Call && typ != eventmodels.Put {
		return eventmodels.ImpliedVolResult{}, fmt.Errorf("pricing.SolveImpliedVol: cannot solve implied vol for type %s", typ)
	}

	if math.IsNaN(marketPrice) || marketPrice < 0 {
		return eventmodels.ImpliedVolResult{}, fmt.Errorf("pricing.SolveImpliedVol: found %v: %w", marketPrice, eventmodels.InvalidMarketPriceErr)
	}

	intrinsicExceeds := math.Abs(f-k) > marketPrice
	if intrinsicExceeds {
		log.Warnf("pricing.SolveImpliedVol: intrinsic %v exceeds market price %v (F=%v K=%v)", math.Abs(f-k), marketPrice, f, k)
	}

	objective := func(sigma float64) (float64, error) {
		price, err := Price(f, k, sigma, t, typ)
		if err != nil {
			return 0, fmt.Errorf("pricing.SolveImpliedVol: price at sigma %v: %w", sigma, err)
		}

		return price - marketPrice, nil
	}

	lo := 0.0
	fLo, err := objective(lo)
	if err != nil {
		return eventmodels.ImpliedVolResult{}, err
	}

	// Price at zero vol is intrinsic; if that already meets or exceeds the
	// market price there is no positive root to find.
	if fLo >= 0 {
		return eventmodels.ImpliedVolResult{
			Sigma:                 0,
			ModelPrice:            fLo + marketPrice,
			Converged:             fLo <= bisectTol,
			IntrinsicExceedsPrice: intrinsicExceeds,
		}, nil
	}

	hi := bracketSeed
	fHi, err := objective(hi)
	if err != nil {
		return eventmodels.ImpliedVolResult{}, err
	}

	doublings := 0
	for fHi < 0 {
		if doublings >= maxDoublings {
			return eventmodels.ImpliedVolResult{}, fmt.Errorf("pricing.SolveImpliedVol: no bracket after %d doublings (F=%v K=%v T=%v price=%v): %w",
				maxDoublings, f, k, t, marketPrice, eventmodels.VolatilityBracketFailureErr)
		}

		hi *= 2
		doublings++

		if fHi, err = objective(hi); err != nil {
			return eventmodels.ImpliedVolResult{}, err
		}
	}

	var (
		mid       float64
		fMid      float64
		converged bool
		iters     int
	)

	for iters = 0; iters < maxBisections; iters++ {
		mid = 0.5 * (lo + hi)

		// Interval exhausted at floating point resolution.
		if mid <= lo || mid >= hi {
			converged = true
			break
		}

		if fMid, err = objective(mid); err != nil {
			return eventmodels.ImpliedVolResult{}, err
		}

		if math.Abs(fMid) <= bisectTol || hi-lo <= bisectTol {
			converged = true
			break
		}

		if fMid < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}

	modelPrice, err := Price(f, k, mid, t, typ)
	if err != nil {
		return eventmodels.ImpliedVolResult{}, err
	}

	if !converged {
		log.Warnf("pricing.SolveImpliedVol: bisection cap %d reached (F=%v K=%v T=%v price=%v), returning best estimate", maxBisections, f, k, t, marketPrice)
	}

	return eventmodels.ImpliedVolResult{
		Sigma:                 mid,
		ModelPrice:            modelPrice,
		Converged:             converged,
		Iterations:            iters,
		IntrinsicExceedsPrice: intrinsicExceeds,
	}, nil
}
