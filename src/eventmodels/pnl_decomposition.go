package eventmodels

// PnLSnapshotPair is the attribution input for one strike: the quote at both
// snapshot times, the implied vol solved at each, and the greeks computed at
// the first state.
type PnLSnapshotPair struct {
	Quote1  OptionQuote
	Quote2  OptionQuote
	Sigma1  float64
	Sigma2  float64
	Greeks1 *GreekVector
}

// PnLDecomposition reconciles the realized price change of one strike against
// its Taylor expansion in (F, sigma, T). The five base terms and four
// extended terms are stored individually so the explained sums are exactly
// additive.
type PnLDecomposition struct {
	Symbol string
	Strike float64

	ActualPnL float64

	DeltaTerm float64
	ThetaTerm float64
	VegaTerm  float64
	GammaTerm float64
	SpeedTerm float64

	VolgaTerm float64
	VannaTerm float64
	VetaTerm  float64
	CharmTerm float64

	BaseExplained     float64
	ExtendedExplained float64

	BaseErrorPct     float64
	ExtendedErrorPct float64
}

// BaseTerms returns the five first pass contributions in a fixed order.
func (d PnLDecomposition) BaseTerms() []float64 {
	return []float64{d.DeltaTerm, d.ThetaTerm, d.VegaTerm, d.GammaTerm, d.SpeedTerm}
}

// ExtendedTerms returns the four cross/volatility refinements in a fixed order.
func (d PnLDecomposition) ExtendedTerms() []float64 {
	return []float64{d.VolgaTerm, d.VannaTerm, d.VetaTerm, d.CharmTerm}
}
