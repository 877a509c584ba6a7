package pnl

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-risk/src/eventmodels"
	"github.com/jiaming2012/option-risk/src/greeks"
	"github.com/jiaming2012/option-risk/src/pricing"
)

// AttributeSnapshots runs the full attribution pipeline for one underlying
// and side across two aligned snapshots: align on exact strike, re-solve
// implied vol at both states, compute greeks at state one, decompose each
// pair. Row level solve problems skip the row; a solve that returns a
// best-estimate vol without full convergence keeps its row but counts it as
// degraded rather than clean. Alignment problems abort the batch.
// Cancellation is checked between strikes, never mid computation.
func AttributeSnapshots(ctx context.Context, snap1, snap2 eventmodels.MarketSnapshot, id eventmodels.InstrumentID, typ eventmodels.OptionType, constants eventmodels.InstrumentConstantsMap, cfg *greeks.Configuration) (*Report, error) {
	if err := snap1.Validate(); err != nil {
		return nil, fmt.Errorf("pnl.AttributeSnapshots: first snapshot: %w", err)
	}

	if err := snap2.Validate(); err != nil {
		return nil, fmt.Errorf("pnl.AttributeSnapshots: second snapshot: %w", err)
	}

	instrConstants, err := constants.Get(id)
	if err != nil {
		return nil, fmt.Errorf("pnl.AttributeSnapshots: %w", err)
	}

	pairs, err := AlignStrikes(snap1, snap2, id, typ)
	if err != nil {
		return nil, err
	}

	// Attribution consumes all nine term greeks raw, so the enablement map is
	// widened beyond the protected subset when a narrower one is passed in.
	if cfg == nil {
		cfg = greeks.DefaultConfiguration()
	}
	cfg = greeks.NewConfiguration(append(cfg.EnabledKinds(),
		eventmodels.Volga, eventmodels.Vanna, eventmodels.Veta, eventmodels.Charm), cfg.CrossCheck)

	engine := greeks.NewEngine(cfg)

	report := &Report{
		Underlying: id,
		Side:       typ,
		From:       snap1.Timestamp,
		To:         snap2.Timestamp,
	}

	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("pnl.AttributeSnapshots: %w", ctx.Err())
		default:
		}

		if pair.Quote1.MarketPrice <= PriceFloor {
			report.Skipped++
			continue
		}

		q1 := pair.Quote1
		q2 := pair.Quote2

		iv1, err := pricing.SolveImpliedVol(q1.FuturePrice, q1.Strike, q1.TimeToExpiry, q1.MarketPrice, typ)
		if err != nil {
			log.Warnf("pnl.AttributeSnapshots: strike %v at t1: %v", pair.Strike, err)
			report.Skipped++
			continue
		}

		iv2, err := pricing.SolveImpliedVol(q2.FuturePrice, q2.Strike, q2.TimeToExpiry, q2.MarketPrice, typ)
		if err != nil {
			log.Warnf("pnl.AttributeSnapshots: strike %v at t2: %v", pair.Strike, err)
			report.Skipped++
			continue
		}

		if iv1.Sigma <= 0 || q1.TimeToExpiry <= 0 {
			log.Warnf("pnl.AttributeSnapshots: strike %v: degenerate state at t1 (sigma=%v T=%v)", pair.Strike, iv1.Sigma, q1.TimeToExpiry)
			report.Skipped++
			continue
		}

		vec, err := engine.Compute(q1.FuturePrice, q1.Strike, iv1.Sigma, q1.TimeToExpiry, typ, instrConstants)
		if err != nil {
			return nil, fmt.Errorf("pnl.AttributeSnapshots: strike %v: %w", pair.Strike, err)
		}

		decomposition, included, err := Attribute(eventmodels.PnLSnapshotPair{
			Quote1:  q1,
			Quote2:  q2,
			Sigma1:  iv1.Sigma,
			Sigma2:  iv2.Sigma,
			Greeks1: vec,
		})
		if err != nil {
			return nil, err
		}

		if !included {
			report.Skipped++
			continue
		}

		if !iv1.Converged || !iv2.Converged {
			report.Degraded++
		} else {
			report.Clean++
		}

		report.Rows = append(report.Rows, decomposition)
	}

	return report, nil
}
