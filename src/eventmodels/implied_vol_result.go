package eventmodels

// ImpliedVolResult is the outcome of one root finding run. Sigma is always
// non negative. When Converged is true the recomputed ModelPrice matches the
// observed market price within the solver tolerance; when false the row is
// kept but flagged as degraded precision.
type ImpliedVolResult struct {
	Sigma                 float64
	ModelPrice            float64
	Converged             bool
	Iterations            int
	IntrinsicExceedsPrice bool
}
