package eventmodels

import "fmt"

var InvalidMarketPriceErr = fmt.Errorf("market price is negative or not a number")
var VolatilityBracketFailureErr = fmt.Errorf("failed to bracket implied volatility root")
var NumericDegeneracyErr = fmt.Errorf("finite difference stencil produced a non-finite value")
var AttributionDataMismatchErr = fmt.Errorf("paired snapshots do not share a strike universe")
var UnknownInstrumentErr = fmt.Errorf("no instrument constants for underlying")
var DegenerateInputsErr = fmt.Errorf("inputs are degenerate: sigma and expiry must be positive")
