package rational

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/basis"
	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/pkg/log"
	"github.com/YuminosukeSato/ratfit/pnorm"
	"github.com/YuminosukeSato/ratfit/polynomial"
)

// RebaseResult is the outcome of SKFitRebase.
type RebaseResult struct {
	// Numerator and Denominator own copies of the bases they were fitted
	// in; Numerator.Eval(X) / Denominator.Eval(X) is the rational fit.
	Numerator   *polynomial.Polynomial
	Denominator *polynomial.Polynomial

	Residual      float64
	BestIteration int
	Iterations    int
	Converged     bool
	History       []Step

	// Interrupted is the basis or solver failure that ended the loop early,
	// or nil.
	Interrupted error
}

// Eval evaluates the rational fit at the rows of X.
func (r *RebaseResult) Eval(X mat.CMatrix) ([]complex128, error) {
	p, err := r.Numerator.Eval(X)
	if err != nil {
		return nil, err
	}
	q, err := r.Denominator.Eval(X)
	if err != nil {
		return nil, err
	}
	return cmat.Divide(p, q), nil
}

// Poles returns the zeros of the denominator. One-dimensional fits only.
func (r *RebaseResult) Poles() ([]complex128, error) {
	return r.Denominator.Roots()
}

// Zeros returns the zeros of the numerator. One-dimensional fits only.
func (r *RebaseResult) Zeros() ([]complex128, error) {
	return r.Numerator.Roots()
}

// SKFitRebase runs the Sanathanan–Koerner iteration on the rows of X,
// building at every step Arnoldi bases of degrees num and denom orthonormal
// under the weight 1/denom. The weight stays real and positive:
//
//	denom ← |denom · Q b|, with exact zeros reset to 1.
//
// A failure in basis construction or in the linearized solve stops the
// loop; the best iterate so far is returned with Interrupted set. A failure
// in the first iteration is returned as an error.
func SKFitRebase(X mat.CMatrix, y []complex128, num, denom basis.Degree, opts ...Option) (result *RebaseResult, err error) {
	defer errors.Recover(&err, "SKFitRebase")

	cfg, err := newConfig("SKFitRebase", opts)
	if err != nil {
		return nil, err
	}
	M, dim := X.Dims()
	if M == 0 || dim == 0 || len(y) == 0 {
		return nil, errors.NewModelError("SKFitRebase", "empty data", errors.ErrEmptyData)
	}
	if len(y) != M {
		return nil, errors.NewDimensionError("SKFitRebase", M, len(y), 0)
	}

	weight := make([]float64, M)
	if cfg.denom0 != nil {
		if len(cfg.denom0) != M {
			return nil, errors.NewDimensionError("SKFitRebase", M, len(cfg.denom0), 0)
		}
		for i, d := range cfg.denom0 {
			if imag(d) != 0 || !(real(d) > 0) || math.IsInf(real(d), 0) {
				return nil, errors.NewValidationError("denom0", "entries must be real, finite and positive", d)
			}
			weight[i] = real(d)
		}
	} else {
		for i := range weight {
			weight[i] = 1
		}
	}

	logger := cfg.logger.With(log.OperationKey, "skfit_rebase", log.NormKey, cfg.norm.String())
	logger.Debug("starting SK iteration with rebasing",
		log.SamplesKey, M,
		log.DimKey, dim,
		log.NumDegreeKey, num.String(),
		log.DenomDegreeKey, denom.String(),
	)
	if cfg.reporter != nil {
		cfg.reporter.Header()
	}

	result = &RebaseResult{Residual: math.Inf(1), BestIteration: -1}
	fitOld := make([]complex128, M)
	negY := make([]complex128, M)
	for i, v := range y {
		negY[i] = -v
	}
	inv := make([]float64, M)

	for it := 0; it < cfg.iterations(); it++ {
		for i, d := range weight {
			inv[i] = 1 / d
		}
		st, err := rebaseStep(X, negY, inv, num, denom, cfg)
		if err != nil {
			if it == 0 {
				logger.Error("first iteration failed", err)
				return nil, errors.NewNumericalError("SKFitRebase", it, err)
			}
			result.Interrupted = errors.NewNumericalError("SKFitRebase", it, err)
			if cfg.verbose {
				logger.Warn("iteration interrupted", err, log.IterationKey, it)
			}
			break
		}

		res := cfg.norm.Of(sub(st.fit, y))
		delta := cfg.norm.Of(sub(st.fit, fitOld))
		if res < result.Residual {
			numPoly, err := polynomial.New(st.numBasis, st.a)
			if err != nil {
				return nil, err
			}
			denPoly, err := polynomial.New(st.denBasis, st.b)
			if err != nil {
				return nil, err
			}
			result.Numerator, result.Denominator = numPoly, denPoly
			result.Residual = res
			result.BestIteration = it
		}
		result.Iterations = it + 1

		if cfg.history {
			d := make([]complex128, M)
			for i, w := range weight {
				d[i] = complex(w, 0)
			}
			result.History = append(result.History, Step{
				Iter:         it,
				Fit:          st.fit,
				Cond:         st.cond,
				Residual:     res,
				DeltaFit:     delta,
				BestResidual: result.Residual,
				Denom:        d,
			})
		}
		if cfg.reporter != nil {
			cfg.reporter.Report(Record{Iter: it, Residual: res, DeltaFit: delta, Cond: st.cond})
		}
		logger.Debug("iteration",
			log.IterationKey, it,
			log.ResidualKey, res,
			log.DeltaFitKey, delta,
			log.CondKey, st.cond,
			log.BestResidualKey, result.Residual,
		)

		if delta < cfg.tol {
			result.Converged = true
			break
		}
		for i := range weight {
			weight[i] = cmplx.Abs(complex(weight[i], 0) * st.qb[i])
			if weight[i] == 0 {
				weight[i] = 1
			}
		}
		fitOld = st.fit
	}

	if result.BestIteration < 0 {
		if result.Interrupted != nil {
			return nil, result.Interrupted
		}
		return nil, errors.NewNumericalError("SKFitRebase", result.Iterations-1, errors.ErrNoSolution)
	}
	finish(logger, cfg, "SKFitRebase", result.Iterations, result.Residual, result.Converged && result.Interrupted == nil)
	return result, nil
}

type step struct {
	numBasis, denBasis basis.Basis
	a, b               []complex128
	qb                 []complex128
	fit                []complex128
	cond               float64
}

func rebaseStep(X mat.CMatrix, negY []complex128, inv []float64, num, denom basis.Degree, cfg *config) (*step, error) {
	numBasis, err := basis.NewArnoldi(X, num, basis.WithWeight(inv))
	if err != nil {
		return nil, errors.Wrap(err, "numerator basis")
	}
	denBasis, err := basis.NewArnoldi(X, denom, basis.WithWeight(inv))
	if err != nil {
		return nil, errors.Wrap(err, "denominator basis")
	}
	P, Q := numBasis.Basis(), denBasis.Basis()
	_, m := P.Dims()

	A := cmat.HStack(P, cmat.ScaleRows(negY, Q))
	x, cond, err := pnorm.Minimize(A, cfg.norm, cfg.minimizeOptions()...)
	if err != nil {
		return nil, err
	}
	a, b := x[:m], x[m:]
	qb := cmat.MulVec(Q, b)
	return &step{
		numBasis: numBasis,
		denBasis: denBasis,
		a:        a,
		b:        b,
		qb:       qb,
		fit:      cmat.Divide(cmat.MulVec(P, a), qb),
		cond:     cond,
	}, nil
}
