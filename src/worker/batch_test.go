package worker

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-risk/src/eventmodels"
	"github.com/jiaming2012/option-risk/src/greeks"
	"github.com/jiaming2012/option-risk/src/pricing"
)

const testUnderlying = eventmodels.InstrumentID("ZN")

var testConstantsMap = eventmodels.InstrumentConstantsMap{
	testUnderlying: {DV01: 0.065, Convexity: 0.0012},
}

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

func bookSnapshot(rows ...eventmodels.OptionQuote) eventmodels.MarketSnapshot {
	return eventmodels.MarketSnapshot{Rows: rows}
}

func TestBatchProcessorRun(t *testing.T) {
	t.Run("results preserve input order", func(t *testing.T) {
		snapshot := bookSnapshot(
			quoteAt(111, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Put),
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(110.5, 110.5, 1.2, 0.25, eventmodels.Put),
		)

		result, err := NewBatchProcessor(nil, testConstantsMap).Run(context.Background(), snapshot)
		require.NoError(t, err)

		require.Len(t, result.Rows, len(snapshot.Rows))
		for i, row := range result.Rows {
			assert.Equal(t, i, row.Index)
			assert.Equal(t, snapshot.Rows[i].Symbol, row.Quote.Symbol)
		}
	})

	t.Run("clean book counts clean", func(t *testing.T) {
		snapshot := bookSnapshot(
			quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(111, 110.5, 1.2, 0.25, eventmodels.Call),
		)

		result, err := NewBatchProcessor(nil, testConstantsMap).Run(context.Background(), snapshot)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Clean)
		assert.Zero(t, result.Degraded)
		assert.Zero(t, result.Skipped)
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", result.RunID.String())
	})

	t.Run("invalid row degrades itself, not the batch", func(t *testing.T) {
		bad := quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call)
		bad.MarketPrice = -0.5

		snapshot := bookSnapshot(
			quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Call),
			bad,
			quoteAt(111, 110.5, 1.2, 0.25, eventmodels.Call),
		)

		result, err := NewBatchProcessor(nil, testConstantsMap).Run(context.Background(), snapshot)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Clean)
		assert.Equal(t, 1, result.Skipped)

		require.ErrorIs(t, result.Rows[1].Err, eventmodels.InvalidMarketPriceErr)
		assert.Nil(t, result.Rows[1].Greeks)
		require.NotNil(t, result.Rows[0].Greeks)
		require.NotNil(t, result.Rows[2].Greeks)
	})

	t.Run("missing instrument constants abort the batch", func(t *testing.T) {
		row := quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call)
		row.Underlying = "ZB"

		_, err := NewBatchProcessor(nil, testConstantsMap).Run(context.Background(), bookSnapshot(row))
		require.ErrorIs(t, err, eventmodels.UnknownInstrumentErr)
	})

	t.Run("empty snapshot rejected", func(t *testing.T) {
		_, err := NewBatchProcessor(nil, testConstantsMap).Run(context.Background(), bookSnapshot())
		require.Error(t, err)
	})

	t.Run("aggregate sums computed entries across rows", func(t *testing.T) {
		snapshot := bookSnapshot(
			quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(111, 110.5, 1.2, 0.25, eventmodels.Put),
		)

		result, err := NewBatchProcessor(nil, testConstantsMap).Run(context.Background(), snapshot)
		require.NoError(t, err)

		var wantDelta float64
		for _, row := range result.Rows {
			delta, ok := row.Greeks.Raw(eventmodels.Delta, eventmodels.FutureSpace)
			require.True(t, ok)
			wantDelta += delta
		}

		gotDelta, ok := result.Aggregate.Raw(eventmodels.Delta, eventmodels.FutureSpace)
		require.True(t, ok)
		assert.InDelta(t, wantDelta, gotDelta, 1e-12)
	})

	t.Run("disabled greeks stay not computed through aggregation", func(t *testing.T) {
		cfg := greeks.NewConfiguration(nil, false)
		snapshot := bookSnapshot(
			quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call),
		)

		result, err := NewBatchProcessor(cfg, testConstantsMap).Run(context.Background(), snapshot)
		require.NoError(t, err)

		for _, kind := range []eventmodels.GreekKind{eventmodels.Vanna, eventmodels.Volga, eventmodels.Ultima} {
			val, ok := result.Aggregate.Get(kind, eventmodels.FutureSpace)
			require.True(t, ok)
			assert.False(t, val.Computed)
			assert.True(t, math.IsNaN(val.Display()))
		}

		delta, ok := result.Aggregate.Raw(eventmodels.Delta, eventmodels.FutureSpace)
		require.True(t, ok)
		assert.Greater(t, delta, 0.0)
	})

	t.Run("future rows contribute unit delta", func(t *testing.T) {
		future := eventmodels.OptionQuote{
			Symbol:      "ZN FUT",
			Underlying:  testUnderlying,
			Type:        eventmodels.Future,
			FuturePrice: 110.5,
			MarketPrice: 110.5,
		}

		result, err := NewBatchProcessor(nil, testConstantsMap).Run(context.Background(), bookSnapshot(future))
		require.NoError(t, err)

		require.Equal(t, 1, result.Clean)

		delta, ok := result.Rows[0].Greeks.Raw(eventmodels.Delta, eventmodels.FutureSpace)
		require.True(t, ok)
		assert.Equal(t, 1.0, delta)

		yieldDelta, ok := result.Rows[0].Greeks.Raw(eventmodels.Delta, eventmodels.YieldSpace)
		require.True(t, ok)
		assert.Equal(t, -0.065, yieldDelta)

		// A held future adds convexity to the book's yield gamma even though
		// its future-space gamma is zero.
		yieldGamma, ok := result.Aggregate.Raw(eventmodels.Gamma, eventmodels.YieldSpace)
		require.True(t, ok)
		assert.Equal(t, 0.0012, yieldGamma)
	})

	t.Run("cancelled context fails the run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		snapshot := bookSnapshot(
			quoteAt(109, 110.5, 1.2, 0.25, eventmodels.Call),
			quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call),
		)

		_, err := NewBatchProcessor(nil, testConstantsMap).Run(ctx, snapshot)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("worker count above row count is harmless", func(t *testing.T) {
		p := NewBatchProcessor(nil, testConstantsMap)
		p.NumWorkers = 64

		result, err := p.Run(context.Background(), bookSnapshot(quoteAt(110, 110.5, 1.2, 0.25, eventmodels.Call)))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Clean)
	})
}
