package rational

// Step is the history entry of one iteration.
type Step struct {
	Iter int
	// Fit is P a / Q b at the sample points.
	Fit  []complex128
	Cond float64
	// Residual is ‖y − Fit‖ in the configured norm.
	Residual float64
	// DeltaFit is ‖Fit − previous Fit‖; the first iteration compares with zero.
	DeltaFit float64
	// BestResidual is the smallest residual seen up to and including Iter.
	BestResidual float64
	// Denom is the denominator weight the iteration was built on.
	Denom []complex128
}

// BestResiduals returns the BestResidual column of h.
func BestResiduals(h []Step) []float64 {
	out := make([]float64, len(h))
	for i, s := range h {
		out[i] = s.BestResidual
	}
	return out
}

// Residuals returns the Residual column of h.
func Residuals(h []Step) []float64 {
	out := make([]float64, len(h))
	for i, s := range h {
		out[i] = s.Residual
	}
	return out
}

// DeltaFits returns the DeltaFit column of h.
func DeltaFits(h []Step) []float64 {
	out := make([]float64, len(h))
	for i, s := range h {
		out[i] = s.DeltaFit
	}
	return out
}
