package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

const roundTripThreshold = 1e-8

func TestSolveImpliedVol(t *testing.T) {
	t.Run("round trip recovers sigma", func(t *testing.T) {
		// Wings are kept within a couple of standard deviations: further out
		// the quote collapses to intrinsic at double precision and no solver
		// can distinguish vols there.
		for _, sigma0 := range []float64{0.5, 1.0, 2.5} {
			for _, f := range []float64{109.5, 110, 110.75} {
				price, err := Price(f, 110, sigma0, 0.5, eventmodels.Call)
				require.NoError(t, err)

				result, err := SolveImpliedVol(f, 110, 0.5, price, eventmodels.Call)
				require.NoError(t, err)

				assert.True(t, result.Converged)
				assert.InDelta(t, price, result.ModelPrice, roundTripThreshold)
				assert.InDelta(t, sigma0, result.Sigma, 1e-6)
			}
		}
	})

	t.Run("scenario F=110.5 K=110 T=0.25 price=0.75 call", func(t *testing.T) {
		result, err := SolveImpliedVol(110.5, 110, 0.25, 0.75, eventmodels.Call)
		require.NoError(t, err)

		assert.True(t, result.Converged)
		assert.InDelta(t, 0.75, result.ModelPrice, roundTripThreshold)
		assert.Greater(t, result.Sigma, 0.0)
	})

	t.Run("negative market price rejected", func(t *testing.T) {
		_, err := SolveImpliedVol(110.5, 110, 0.25, -0.1, eventmodels.Call)
		require.Error(t, err)
		assert.ErrorIs(t, err, eventmodels.InvalidMarketPriceErr)
	})

	t.Run("nan market price rejected", func(t *testing.T) {
		_, err := SolveImpliedVol(110.5, 110, 0.25, math.NaN(), eventmodels.Call)
		require.Error(t, err)
		assert.ErrorIs(t, err, eventmodels.InvalidMarketPriceErr)
	})

	t.Run("future type rejected", func(t *testing.T) {
		_, err := SolveImpliedVol(110.5, 110, 0.25, 0.75, eventmodels.Future)
		assert.Error(t, err)
	})

	t.Run("price below intrinsic is flagged but attempted", func(t *testing.T) {
		// Intrinsic is 2.0 but the quote is 1.5: no non-negative vol can
		// reproduce it, so the solver pins sigma at zero and does not claim
		// convergence.
		result, err := SolveImpliedVol(112, 110, 0.25, 1.5, eventmodels.Call)
		require.NoError(t, err)

		assert.True(t, result.IntrinsicExceedsPrice)
		assert.Equal(t, 0.0, result.Sigma)
		assert.False(t, result.Converged)
	})

	t.Run("zero expiry above intrinsic fails to bracket", func(t *testing.T) {
		// With T=0 the model price is intrinsic for every sigma, so the
		// doubling can never bracket a quote above it and must stop at the
		// cap instead of spinning.
		_, err := SolveImpliedVol(110.5, 110, 0, 0.75, eventmodels.Call)
		require.Error(t, err)
		assert.ErrorIs(t, err, eventmodels.VolatilityBracketFailureErr)
	})

	t.Run("sigma is never negative", func(t *testing.T) {
		result, err := SolveImpliedVol(110, 110, 0.25, 0.0001, eventmodels.Put)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Sigma, 0.0)
	})
}
