package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-risk/src/eventmodels"
	"github.com/jiaming2012/option-risk/src/greeks"
	"github.com/jiaming2012/option-risk/src/pricing"
)

// RowResult is the per-row output of a batch run: the solved vol and greek
// vector, or the row level failure that degraded it. Index is the position in
// the input snapshot; results are returned in input order.
type RowResult struct {
	Index      int
	Quote      eventmodels.OptionQuote
	ImpliedVol eventmodels.ImpliedVolResult
	Greeks     *eventmodels.GreekVector
	Err        error
}

// Degraded reports whether the row produced less than a full precision
// result while still being part of the batch.
func (r RowResult) Degraded() bool {
	return r.Err != nil || !r.ImpliedVol.Converged
}

type BatchResult struct {
	RunID uuid.UUID
	Rows  []RowResult

	// Aggregate sums the computed greek entries across all rows, excluding
	// not-computed values rather than treating them as zero.
	Aggregate *eventmodels.GreekVector

	Clean    int
	Degraded int
	Skipped  int
}

// BatchProcessor runs solve + greeks for every row of a snapshot over a
// bounded worker pool. Each row is a pure function of its own quote; the only
// shared state is the immutable configuration and constants, so rows are
// embarrassingly parallel. Cancellation is checked cooperatively between
// rows, never mid-stencil.
type BatchProcessor struct {
	Config     *greeks.Configuration
	Constants  eventmodels.InstrumentConstantsMap
	NumWorkers int
}

func NewBatchProcessor(cfg *greeks.Configuration, constants eventmodels.InstrumentConstantsMap) *BatchProcessor {
	return &BatchProcessor{
		Config:     cfg,
		Constants:  constants,
		NumWorkers: runtime.NumCPU(),
	}
}

// Run processes one snapshot. Structural problems (empty snapshot, an
// underlying with no constants) abort the whole batch; row level numeric
// failures degrade only their row.
func (p *BatchProcessor) Run(ctx context.Context, snapshot eventmodels.MarketSnapshot) (*BatchResult, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("BatchProcessor.Run: %w", err)
	}

	// Constants are validated up front: a missing instrument is a
	// configuration error for the batch, not a row failure.
	for _, row := range snapshot.Rows {
		if _, err := p.Constants.Get(row.Underlying); err != nil {
			return nil, fmt.Errorf("BatchProcessor.Run: row %s: %w", row.Symbol, err)
		}
	}

	numWorkers := p.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(snapshot.Rows) {
		numWorkers = len(snapshot.Rows)
	}

	engine := greeks.NewEngine(p.Config)

	result := &BatchResult{
		RunID: uuid.New(),
		Rows:  make([]RowResult, len(snapshot.Rows)),
	}

	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					result.Rows[idx] = RowResult{Index: idx, Quote: snapshot.Rows[idx], Err: ctx.Err()}
					continue
				default:
				}

				result.Rows[idx] = p.processRow(engine, idx, snapshot.Rows[idx])
			}
		}()
	}

	for idx := range snapshot.Rows {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("BatchProcessor.Run: %w", err)
	}

	result.Aggregate = eventmodels.NewGreekVector()
	for _, row := range result.Rows {
		switch {
		case row.Err != nil:
			result.Skipped++
		case row.Degraded():
			result.Degraded++
		default:
			result.Clean++
		}

		result.Aggregate.Accumulate(row.Greeks)
	}

	log.Debugf("BatchProcessor.Run: run %s: %d clean, %d degraded, %d skipped", result.RunID, result.Clean, result.Degraded, result.Skipped)

	return result, nil
}

// processRow is the per-row pure function: validate, solve, differentiate.
func (p *BatchProcessor) processRow(engine *greeks.Engine, idx int, quote eventmodels.OptionQuote) RowResult {
	out := RowResult{Index: idx, Quote: quote}

	if out.Err = quote.Validate(); out.Err != nil {
		log.Warnf("BatchProcessor.processRow: row %d (%s): %v", idx, quote.Symbol, out.Err)
		return out
	}

	constants, err := p.Constants.Get(quote.Underlying)
	if err != nil {
		out.Err = err
		return out
	}

	if quote.Type == eventmodels.Future {
		out.Greeks, out.Err = engine.Compute(quote.FuturePrice, 0, 0, 0, quote.Type, constants)
		out.ImpliedVol = eventmodels.ImpliedVolResult{Converged: true}
		return out
	}

	out.ImpliedVol, out.Err = pricing.SolveImpliedVol(quote.FuturePrice, quote.Strike, quote.TimeToExpiry, quote.MarketPrice, quote.Type)
	if out.Err != nil {
		log.Warnf("BatchProcessor.processRow: row %d (%s): %v", idx, quote.Symbol, out.Err)
		return out
	}

	if out.ImpliedVol.Sigma <= 0 || quote.TimeToExpiry <= 0 {
		out.Err = fmt.Errorf("BatchProcessor.processRow: row %d (%s): sigma=%v T=%v: %w",
			idx, quote.Symbol, out.ImpliedVol.Sigma, quote.TimeToExpiry, eventmodels.DegenerateInputsErr)
		return out
	}

	out.Greeks, out.Err = engine.Compute(quote.FuturePrice, quote.Strike, out.ImpliedVol.Sigma, quote.TimeToExpiry, quote.Type, constants)

	return out
}
