// Package rational fits rational functions P(x)/Q(x) to samples with the
// Sanathanan–Koerner iteration.
//
// Each iteration linearizes y ≈ P/Q as
//
//	minimize ‖ (P a − y Q b) / denom ‖  over ‖[a; b]‖₂ = 1
//
// and replaces denom by the denominator just found. SKFit works on fixed
// basis matrices; SKFitRebase rebuilds a weighted Arnoldi basis every
// iteration, which keeps the linear systems well conditioned. Neither
// iteration is guaranteed to converge, so both return the iterate with the
// smallest residual.
package rational

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/pkg/log"
	"github.com/YuminosukeSato/ratfit/pnorm"
)

// Result is the outcome of SKFit.
type Result struct {
	// A and B are the numerator and denominator coefficients of the best
	// iterate, a unit vector when concatenated.
	A, B []complex128

	Residual      float64
	BestIteration int
	Iterations    int
	// Converged reports whether ‖fit − fit_prev‖ fell below the tolerance.
	Converged bool
	History   []Step
}

// Eval returns (P a) / (Q b) for basis matrices evaluated at any points.
func (r *Result) Eval(P, Q mat.CMatrix) (fit []complex128, err error) {
	defer errors.Recover(&err, "Result.Eval")
	return cmat.Divide(cmat.MulVec(P, r.A), cmat.MulVec(Q, r.B)), nil
}

// SKFit runs the Sanathanan–Koerner iteration on the numerator basis P
// (M×m) and denominator basis Q (M×n), both evaluated at the M samples of y.
// Failures of the linearized solver end the fit with an error. Non-finite
// fits are tolerated: they never become the best iterate.
func SKFit(y []complex128, P, Q mat.CMatrix, opts ...Option) (result *Result, err error) {
	defer errors.Recover(&err, "SKFit")

	cfg, err := newConfig("SKFit", opts)
	if err != nil {
		return nil, err
	}
	rp, m := P.Dims()
	rq, n := Q.Dims()
	M := len(y)
	if M == 0 || m == 0 || n == 0 {
		return nil, errors.NewModelError("SKFit", "empty data", errors.ErrEmptyData)
	}
	if rp != M {
		return nil, errors.NewDimensionError("SKFit", M, rp, 0)
	}
	if rq != M {
		return nil, errors.NewDimensionError("SKFit", M, rq, 0)
	}

	denom := make([]complex128, M)
	if cfg.denom0 != nil {
		if len(cfg.denom0) != M {
			return nil, errors.NewDimensionError("SKFit", M, len(cfg.denom0), 0)
		}
		copy(denom, cfg.denom0)
	} else {
		for i := range denom {
			denom[i] = 1
		}
	}

	logger := cfg.logger.With(log.OperationKey, "skfit", log.NormKey, cfg.norm.String())
	logger.Debug("starting SK iteration",
		log.SamplesKey, M,
		log.NumDegreeKey, m,
		log.DenomDegreeKey, n,
		log.ComplexKey, !cmat.IsReal(P) || !cmat.IsReal(Q) || !cmat.IsRealVec(y),
	)
	if cfg.reporter != nil {
		cfg.reporter.Header()
	}

	result = &Result{Residual: math.Inf(1), BestIteration: -1}
	fitOld := make([]complex128, M)
	negY := make([]complex128, M)
	inv := make([]complex128, M)

	for it := 0; it < cfg.iterations(); it++ {
		for i := range y {
			inv[i] = 1 / denom[i]
			negY[i] = -y[i] / denom[i]
		}
		A := cmat.HStack(cmat.ScaleRows(inv, P), cmat.ScaleRows(negY, Q))

		x, cond, err := pnorm.Minimize(A, cfg.norm, cfg.minimizeOptions()...)
		if err != nil {
			logger.Error("linearized solve failed", err, log.IterationKey, it)
			return nil, errors.NewNumericalError("SKFit", it, err)
		}
		a := x[:m]
		b := x[m:]
		Qb := cmat.MulVec(Q, b)
		fit := cmat.Divide(cmat.MulVec(P, a), Qb)

		res := cfg.norm.Of(sub(y, fit))
		if res < result.Residual {
			result.A = append([]complex128(nil), a...)
			result.B = append([]complex128(nil), b...)
			result.Residual = res
			result.BestIteration = it
		}
		delta := cfg.norm.Of(sub(fit, fitOld))
		result.Iterations = it + 1

		if cfg.history {
			result.History = append(result.History, Step{
				Iter:         it,
				Fit:          fit,
				Cond:         cond,
				Residual:     res,
				DeltaFit:     delta,
				BestResidual: result.Residual,
				Denom:        append([]complex128(nil), denom...),
			})
		}
		if cfg.reporter != nil {
			cfg.reporter.Report(Record{Iter: it, Residual: res, DeltaFit: delta, Cond: cond})
		}
		logger.Debug("iteration",
			log.IterationKey, it,
			log.ResidualKey, res,
			log.DeltaFitKey, delta,
			log.CondKey, cond,
			log.BestResidualKey, result.Residual,
		)

		if delta < cfg.tol {
			result.Converged = true
			break
		}
		denom = Qb
		fitOld = fit
	}

	if result.BestIteration < 0 {
		return nil, errors.NewNumericalError("SKFit", result.Iterations-1, errors.ErrNoSolution)
	}
	finish(logger, cfg, "SKFit", result.Iterations, result.Residual, result.Converged)
	return result, nil
}

// finish logs the outcome and warns when the iteration budget ran out.
func finish(logger log.Logger, cfg *config, algorithm string, iterations int, residual float64, converged bool) {
	logger.Debug("SK iteration finished",
		log.IterationKey, iterations,
		log.BestResidualKey, residual,
		log.ConvergedKey, converged,
	)
	if converged || cfg.maxIter == 0 {
		return
	}
	errors.Warn(errors.NewConvergenceWarning(algorithm, iterations, residual,
		"fit did not settle within the iteration budget; returning the best iterate"))
}

func sub(u, v []complex128) []complex128 {
	out := make([]complex128, len(u))
	for i := range u {
		out[i] = u[i] - v[i]
	}
	return out
}
