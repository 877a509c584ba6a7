package pnl

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-risk/src/eventmodels"
	"github.com/jiaming2012/option-risk/src/greeks"
	"github.com/jiaming2012/option-risk/src/pricing"
)

const testUnderlying = eventmodels.InstrumentID("ZN")

var testConstants = eventmodels.InstrumentConstants{DV01: 0.065, Convexity: 0.0012}

func quoteAt(strike, f, sigma, t float64, typ eventmodels.OptionType) eventmodels.OptionQuote {
	price, err := pricing.Price(f, strike, sigma, t, typ)
	if err != nil {
		panic(err)
	}

	return eventmodels.OptionQuote{
		Symbol:       fmt.Sprintf("ZN %s %.2f", typ, strike),
		Underlying:   testUnderlying,
		Type:         typ,
		Strike:       strike,
		TimeToExpiry: t,
		FuturePrice:  f,
		MarketPrice:  price,
	}
}

func greeksAt(t *testing.T, f, k, sigma, expiry float64, typ eventmodels.OptionType) *eventmodels.GreekVector {
	t.Helper()

	vec, err := greeks.NewEngine(nil).Compute(f, k, sigma, expiry, typ, testConstants)
	require.NoError(t, err)

	return vec
}

func TestAttribute(t *testing.T) {
	t.Run("base explained is the exact sum of its five terms", func(t *testing.T) {
		q1 := quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call)
		q2 := quoteAt(110, 110.9, 1.35, 0.24, eventmodels.Call)

		d, included, err := Attribute(eventmodels.PnLSnapshotPair{
			Quote1:  q1,
			Quote2:  q2,
			Sigma1:  1.2,
			Sigma2:  1.35,
			Greeks1: greeksAt(t, 110.5, 110, 1.2, 0.25, eventmodels.Call),
		})
		require.NoError(t, err)
		require.True(t, included)

		assert.Equal(t, d.DeltaTerm+d.ThetaTerm+d.VegaTerm+d.GammaTerm+d.SpeedTerm, d.BaseExplained)
		assert.Equal(t, d.BaseExplained+d.VolgaTerm+d.VannaTerm+d.VetaTerm+d.CharmTerm, d.ExtendedExplained)
	})

	t.Run("rows at or under the price floor are excluded, not errored", func(t *testing.T) {
		q1 := quoteAt(120, 110.5, 1.2, 0.25, eventmodels.Call)
		q1.MarketPrice = PriceFloor
		q2 := quoteAt(120, 110.9, 1.2, 0.24, eventmodels.Call)

		_, included, err := Attribute(eventmodels.PnLSnapshotPair{
			Quote1:  q1,
			Quote2:  q2,
			Sigma1:  1.2,
			Sigma2:  1.2,
			Greeks1: greeksAt(t, 110.5, 120, 1.2, 0.25, eventmodels.Call),
		})
		require.NoError(t, err)
		assert.False(t, included)
	})

	t.Run("mismatched strikes are a structural error", func(t *testing.T) {
		q1 := quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call)
		q2 := quoteAt(111, 110.9, 1.2, 0.24, eventmodels.Call)

		_, _, err := Attribute(eventmodels.PnLSnapshotPair{
			Quote1:  q1,
			Quote2:  q2,
			Sigma1:  1.2,
			Sigma2:  1.2,
			Greeks1: greeksAt(t, 110.5, 110, 1.2, 0.25, eventmodels.Call),
		})
		require.ErrorIs(t, err, eventmodels.AttributionDataMismatchErr)
	})

	t.Run("missing term greek fails the row", func(t *testing.T) {
		q1 := quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call)
		q2 := quoteAt(110, 110.9, 1.2, 0.24, eventmodels.Call)

		vec := eventmodels.NewGreekVector()
		vec.Set(eventmodels.Delta, eventmodels.FutureSpace, 0.5)

		_, _, err := Attribute(eventmodels.PnLSnapshotPair{
			Quote1:  q1,
			Quote2:  q2,
			Sigma1:  1.2,
			Sigma2:  1.2,
			Greeks1: vec,
		})
		require.Error(t, err)
	})

	t.Run("explained error shrinks with the move", func(t *testing.T) {
		const (
			f1, t1, sigma = 110.0, 0.10, 1.2
			strike        = 110.0
		)

		var prevErrPct float64
		for i, scale := range []float64{1, 0.5, 0.25} {
			f2 := f1 + 0.25*scale
			t2 := t1 - 0.02*scale

			q1 := quoteAt(strike, f1, sigma, t1, eventmodels.Call)
			q2 := quoteAt(strike, f2, sigma, t2, eventmodels.Call)

			d, included, err := Attribute(eventmodels.PnLSnapshotPair{
				Quote1:  q1,
				Quote2:  q2,
				Sigma1:  sigma,
				Sigma2:  sigma,
				Greeks1: greeksAt(t, f1, strike, sigma, t1, eventmodels.Call),
			})
			require.NoError(t, err)
			require.True(t, included)

			if i > 0 {
				assert.Less(t, d.BaseErrorPct, prevErrPct, "scale %v", scale)
			}
			prevErrPct = d.BaseErrorPct
		}

		assert.Less(t, prevErrPct, 1.0)
	})
}

func snapshotAt(ts time.Time, rows ...eventmodels.OptionQuote) eventmodels.MarketSnapshot {
	return eventmodels.MarketSnapshot{Timestamp: ts, Rows: rows}
}

func TestAlignStrikes(t *testing.T) {
	ts1 := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	ts2 := ts1.Add(24 * time.Hour)

	t.Run("pairs sort ascending by strike", func(t *testing.T) {
		snap1 := snapshotAt(ts1,
			quoteAt(111, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call),
		)
		snap2 := snapshotAt(ts2,
			quoteAt(110, 110.9, 1.3, 0.24, eventmodels.Call),
			quoteAt(111, 110.9, 1.3, 0.24, eventmodels.Call),
			quoteAt(109, 110.9, 1.3, 0.24, eventmodels.Call),
		)

		pairs, err := AlignStrikes(snap1, snap2, testUnderlying, eventmodels.Call)
		require.NoError(t, err)
		require.Len(t, pairs, 3)

		assert.Equal(t, []float64{109, 110, 111}, []float64{pairs[0].Strike, pairs[1].Strike, pairs[2].Strike})
	})

	t.Run("leftover strike on either side aborts", func(t *testing.T) {
		snap1 := snapshotAt(ts1,
			quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call),
		)
		snap2 := snapshotAt(ts2,
			quoteAt(110, 110.9, 1.3, 0.24, eventmodels.Call),
		)

		_, err := AlignStrikes(snap1, snap2, testUnderlying, eventmodels.Call)
		require.ErrorIs(t, err, eventmodels.AttributionDataMismatchErr)
	})

	t.Run("empty intersection aborts", func(t *testing.T) {
		snap1 := snapshotAt(ts1, quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Call))
		snap2 := snapshotAt(ts2, quoteAt(111, 110.9, 1.3, 0.24, eventmodels.Call))

		_, err := AlignStrikes(snap1, snap2, testUnderlying, eventmodels.Call)
		require.ErrorIs(t, err, eventmodels.AttributionDataMismatchErr)
	})

	t.Run("other sides and underlyings are ignored", func(t *testing.T) {
		snap1 := snapshotAt(ts1,
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Put),
		)
		snap2 := snapshotAt(ts2,
			quoteAt(110, 110.9, 1.3, 0.24, eventmodels.Call),
			quoteAt(112, 110.9, 1.3, 0.24, eventmodels.Put),
		)

		pairs, err := AlignStrikes(snap1, snap2, testUnderlying, eventmodels.Call)
		require.NoError(t, err)
		require.Len(t, pairs, 1)
		assert.Equal(t, 110.0, pairs[0].Strike)
	})
}

func TestAttributeSnapshots(t *testing.T) {
	ts1 := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	ts2 := ts1.Add(24 * time.Hour)
	constants := eventmodels.InstrumentConstantsMap{testUnderlying: testConstants}

	t.Run("full pipeline over a small book", func(t *testing.T) {
		snap1 := snapshotAt(ts1,
			quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(111, 110.5, 1.2, 0.25, eventmodels.Call),
		)
		snap2 := snapshotAt(ts2,
			quoteAt(109, 110.75, 1.3, 0.246, eventmodels.Call),
			quoteAt(110, 110.75, 1.3, 0.246, eventmodels.Call),
			quoteAt(111, 110.75, 1.3, 0.246, eventmodels.Call),
		)

		report, err := AttributeSnapshots(context.Background(), snap1, snap2, testUnderlying, eventmodels.Call, constants, nil)
		require.NoError(t, err)

		require.Len(t, report.Rows, 3)
		assert.Equal(t, 3, report.Clean)
		assert.Zero(t, report.Skipped)
		assert.Zero(t, report.Degraded)

		for _, row := range report.Rows {
			// A quarter point move with a vol reprice: the extended expansion
			// should explain the change to within a few percent near the money.
			assert.Less(t, row.ExtendedErrorPct, 5.0, "strike %v", row.Strike)
		}
	})

	t.Run("floor rows counted as skipped", func(t *testing.T) {
		deepOTM1 := quoteAt(140, 110.5, 1.2, 0.25, eventmodels.Call)
		deepOTM2 := quoteAt(140, 110.75, 1.3, 0.246, eventmodels.Call)

		snap1 := snapshotAt(ts1, quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call), deepOTM1)
		snap2 := snapshotAt(ts2, quoteAt(110, 110.75, 1.3, 0.246, eventmodels.Call), deepOTM2)

		report, err := AttributeSnapshots(context.Background(), snap1, snap2, testUnderlying, eventmodels.Call, constants, nil)
		require.NoError(t, err)

		assert.Len(t, report.Rows, 1)
		assert.Equal(t, 1, report.Clean)
		assert.Equal(t, 1, report.Skipped)
	})

	t.Run("dropped solve counts skipped, never double counted", func(t *testing.T) {
		// The 108 strike is quoted below intrinsic at t1: the solver pins
		// sigma at zero and the pipeline drops the pair. The three counters
		// must partition the strike universe, with clean + degraded matching
		// the kept rows.
		belowIntrinsic := quoteAt(108, 110.5, 1.2, 0.25, eventmodels.Call)
		belowIntrinsic.MarketPrice = 2.0

		snap1 := snapshotAt(ts1, belowIntrinsic, quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call))
		snap2 := snapshotAt(ts2,
			quoteAt(108, 110.75, 1.3, 0.246, eventmodels.Call),
			quoteAt(110, 110.75, 1.3, 0.246, eventmodels.Call),
		)

		report, err := AttributeSnapshots(context.Background(), snap1, snap2, testUnderlying, eventmodels.Call, constants, nil)
		require.NoError(t, err)

		assert.Len(t, report.Rows, 1)
		assert.Equal(t, 1, report.Clean)
		assert.Equal(t, 1, report.Skipped)
		assert.Zero(t, report.Degraded)
		assert.Equal(t, report.Clean+report.Degraded, len(report.Rows))
	})

	t.Run("unknown underlying rejected", func(t *testing.T) {
		snap1 := snapshotAt(ts1, quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call))
		snap2 := snapshotAt(ts2, quoteAt(110, 110.75, 1.3, 0.246, eventmodels.Call))

		_, err := AttributeSnapshots(context.Background(), snap1, snap2, "ZB", eventmodels.Call, constants, nil)
		require.ErrorIs(t, err, eventmodels.UnknownInstrumentErr)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		snap1 := snapshotAt(ts1, quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call))
		snap2 := snapshotAt(ts2, quoteAt(110, 110.75, 1.3, 0.246, eventmodels.Call))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := AttributeSnapshots(ctx, snap1, snap2, testUnderlying, eventmodels.Call, constants, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}
