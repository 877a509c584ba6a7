package greeks

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-risk/src/eventmodels"
	"github.com/jiaming2012/option-risk/src/pricing"
)

// crossCheckTolerance is the relative disagreement between the analytical and
// numerical engines above which a row is logged.
const crossCheckTolerance = 1e-3

// Engine combines the closed-form greeks with the enablement configuration.
// It is stateless apart from the immutable configuration and safe for
// concurrent use across batch workers.
type Engine struct {
	cfg *Configuration
}

func NewEngine(cfg *Configuration) *Engine {
	if cfg == nil {
		cfg = DefaultConfiguration()
	}

	return &Engine{cfg: cfg}
}

// Compute returns the greek vector for one row, with disabled kinds present
// as not-computed in both spaces. Option rows with sigma<=0 or T<=0 are
// rejected; callers are expected to have filtered degenerate solves already.
func (e *Engine) Compute(f, k, sigma, t float64, typ eventmodels.OptionType, constants eventmodels.InstrumentConstants) (*eventmodels.GreekVector, error) {
	if err := typ.Validate(); err != nil {
		return nil, fmt.Errorf("Engine.Compute: %w", err)
	}

	if typ == eventmodels.Future {
		return futureRowVector(constants), nil
	}

	if sigma <= 0 || t <= 0 {
		return nil, fmt.Errorf("Engine.Compute: sigma=%v T=%v: %w", sigma, t, eventmodels.DegenerateInputsErr)
	}

	vec := eventmodels.NewGreekVector()
	for _, kind := range eventmodels.AllGreekKinds() {
		if !e.cfg.Enabled(kind) {
			vec.SetNotComputed(kind, eventmodels.FutureSpace)
			vec.SetNotComputed(kind, eventmodels.YieldSpace)
			continue
		}

		vec.Set(kind, eventmodels.FutureSpace, analyticalRaw(kind, f, k, sigma, t, typ))
		vec.Set(kind, eventmodels.YieldSpace, yieldRaw(kind, f, k, sigma, t, typ, constants))
	}

	if e.cfg.CrossCheck {
		e.crossCheck(vec, f, k, sigma, t, typ)
	}

	return vec, nil
}

// crossCheck validates the closed forms against the finite difference engine
// on the first order set plus gamma. Disagreement is a warning, not a
// failure: the analytical value stays authoritative.
func (e *Engine) crossCheck(vec *eventmodels.GreekVector, f, k, sigma, t float64, typ eventmodels.OptionType) {
	priceFn := func(fv, sv, tv float64) (float64, error) {
		return pricing.Price(fv, k, sv, tv, typ)
	}

	numeric := Numerical(priceFn, f, sigma, t, nil).ToGreekVector()

	for _, kind := range []eventmodels.GreekKind{eventmodels.Delta, eventmodels.Gamma, eventmodels.Vega, eventmodels.Theta} {
		analytic, ok := vec.Raw(kind, eventmodels.FutureSpace)
		if !ok {
			continue
		}

		fd, ok := numeric.Raw(kind, eventmodels.FutureSpace)
		if !ok {
			log.Warnf("Engine.crossCheck: %s stencil degenerate at (F=%v K=%v sigma=%v T=%v)", kind, f, k, sigma, t)
			continue
		}

		denom := math.Max(math.Abs(analytic), math.Abs(fd))
		if denom == 0 {
			continue
		}

		if math.Abs(analytic-fd)/denom > crossCheckTolerance {
			log.Warnf("Engine.crossCheck: %s disagrees: analytical=%v numerical=%v (F=%v K=%v sigma=%v T=%v)", kind, analytic, fd, f, k, sigma, t)
		}
	}
}
