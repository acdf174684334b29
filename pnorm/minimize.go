package pnorm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// Minimize returns a unit vector x minimizing ‖A x‖_norm together with a
// conditioning estimate of the 2-norm problem,
//
//	cond = s₀·√2 / (s_{n−2} − s_{n−1}),
//
// which may be +Inf or NaN when the trailing singular values coincide. Only
// the 2- and ∞-norms are supported.
func Minimize(A mat.CMatrix, norm Norm, opts ...Option) (x []complex128, cond float64, err error) {
	defer errors.Recover(&err, "pnorm.Minimize")

	if err := norm.Validate("pnorm.Minimize"); err != nil {
		return nil, 0, err
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, 0, err
	}
	r, c := A.Dims()
	if r == 0 || c == 0 {
		return nil, 0, errors.NewModelError("pnorm.Minimize", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckCMatrix("pnorm.Minimize", A, -1); err != nil {
		return nil, 0, errors.NewNumericalError("pnorm.Minimize", -1, err)
	}

	x, cond, err = minimize2(A)
	if err != nil || norm == Two {
		return x, cond, err
	}
	x, _, err = minimizeInf(A, x, cfg)
	if err != nil {
		return nil, cond, err
	}
	return x, cond, nil
}

func minimize2(A mat.CMatrix) ([]complex128, float64, error) {
	r, c := A.Dims()
	k := min(r, c)
	if cmat.IsReal(A) {
		v, s, err := trailingRightSingular(cmat.RealPart(A))
		if err != nil {
			return nil, 0, err
		}
		x := make([]complex128, c)
		for i, vi := range v {
			x[i] = complex(vi, 0)
		}
		return x, condition(s[:k]), nil
	}

	// The embedding repeats every singular value of A twice and its trailing
	// right singular vectors [u; w] give A (u + i·w) ≈ 0.
	v, sB, err := trailingRightSingular(cmat.Embed(A))
	if err != nil {
		return nil, 0, err
	}
	s := make([]float64, k)
	for i := range s {
		s[i] = sB[2*i]
	}
	x := make([]complex128, c)
	for i := range x {
		x[i] = complex(v[i], v[i+c])
	}
	normalize(x)
	return x, condition(s), nil
}

// trailingRightSingular returns the right singular vector of the smallest
// singular value of B, taken from the full V so that wide matrices yield a
// null vector, and the singular values in decreasing order.
func trailingRightSingular(B *mat.Dense) ([]float64, []float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(B, mat.SVDFullV); !ok {
		return nil, nil, errors.NewNumericalError("svd", -1, errors.New("singular value decomposition did not converge"))
	}
	s := svd.Values(nil)
	var V mat.Dense
	svd.VTo(&V)
	_, n := V.Dims()
	v := mat.Col(nil, n-1, &V)
	if nrm := floats.Norm(v, 2); nrm > 0 {
		floats.Scale(1/nrm, v)
	}
	return v, s, nil
}

func condition(s []float64) float64 {
	n := len(s)
	if n < 2 {
		return math.Inf(1)
	}
	return s[0] * math.Sqrt2 / (s[n-2] - s[n-1])
}

func normalize(x []complex128) {
	var nrm float64
	for _, z := range x {
		nrm = math.Hypot(nrm, math.Hypot(real(z), imag(z)))
	}
	if nrm == 0 || math.IsNaN(nrm) || math.IsInf(nrm, 0) {
		return
	}
	for i := range x {
		x[i] /= complex(nrm, 0)
	}
}
