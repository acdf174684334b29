package pnorm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// FitLeastSquares returns the minimum-norm a minimizing ‖P a − y‖₂. The
// solve goes through a thin SVD truncated at the numerical rank, so P may be
// rank deficient or wide.
func FitLeastSquares(P mat.CMatrix, y []complex128) (a []complex128, err error) {
	defer errors.Recover(&err, "pnorm.FitLeastSquares")

	r, c := P.Dims()
	if err := checkFit("pnorm.FitLeastSquares", r, c, y); err != nil {
		return nil, err
	}
	if cmat.IsReal(P) && cmat.IsRealVec(y) {
		b := make([]float64, r)
		for i, v := range y {
			b[i] = real(v)
		}
		sol, err := solveSVD(cmat.RealPart(P), b)
		if err != nil {
			return nil, err
		}
		a = make([]complex128, c)
		for j := range a {
			a[j] = complex(sol.AtVec(j), 0)
		}
		return a, nil
	}

	// The embedding has twice the rank of P; its minimum-norm solution is
	// the embedding of the complex minimum-norm solution.
	b := make([]float64, 2*r)
	for i, v := range y {
		b[i], b[r+i] = real(v), imag(v)
	}
	sol, err := solveSVD(cmat.Embed(P), b)
	if err != nil {
		return nil, err
	}
	a = make([]complex128, c)
	for j := range a {
		a[j] = complex(sol.AtVec(j), sol.AtVec(c+j))
	}
	return a, nil
}

// eps is the float64 machine epsilon.
const eps = 0x1p-52

// solveSVD は特異値が s0·max(m,n)·eps 以下の成分を捨てた最小ノルム解を返します。
func solveSVD(A *mat.Dense, b []float64) (*mat.VecDense, error) {
	m, n := A.Dims()
	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDThin) {
		return nil, errors.NewNumericalError("least squares", -1, errors.New("svd failed to converge"))
	}
	sol := mat.NewVecDense(n, nil)
	rank := svd.Rank(float64(max(m, n)) * eps)
	if rank == 0 {
		// P = 0: every a is optimal and zero has the least norm.
		return sol, nil
	}
	svd.SolveVecTo(sol, mat.NewVecDense(m, b), rank)
	return sol, nil
}

// FitInf returns a minimizing ‖P a − y‖_∞ by linear programming. For complex
// data the modulus bound uses the same polygon as Minimize.
func FitInf(P mat.CMatrix, y []complex128, opts ...Option) (a []complex128, err error) {
	defer errors.Recover(&err, "pnorm.FitInf")

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	r, c := P.Dims()
	if err := checkFit("pnorm.FitInf", r, c, y); err != nil {
		return nil, err
	}

	if cmat.IsReal(P) && cmat.IsRealVec(y) {
		nz := c + 1
		cost := make([]float64, nz)
		cost[c] = 1
		G := mat.NewDense(2*r, nz, nil)
		h := make([]float64, 2*r)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				p := real(P.At(i, j))
				G.Set(i, j, p)
				G.Set(r+i, j, -p)
			}
			G.Set(i, c, -1)
			G.Set(r+i, c, -1)
			h[i], h[r+i] = real(y[i]), -real(y[i])
		}
		z, err := solveGeneral(cost, G, h, nil, nil, cfg.lpTol)
		if err != nil {
			return nil, err
		}
		a = make([]complex128, c)
		for j := range a {
			a[j] = complex(z[j], 0)
		}
		return a, nil
	}

	Pr, Pi := cmat.Parts(P)
	nz := 2*c + 3
	tr, ti, t := 2*c, 2*c+1, 2*c+2
	cost := make([]float64, nz)
	cost[t] = 1
	nIneq := 4*r + cfg.samples
	G := mat.NewDense(nIneq, nz, nil)
	h := make([]float64, nIneq)
	for i := 0; i < r; i++ {
		re, im, nre, nim := 4*i, 4*i+1, 4*i+2, 4*i+3
		for j := 0; j < c; j++ {
			pr, pi := Pr.At(i, j), Pi.At(i, j)
			G.Set(re, j, pr)
			G.Set(re, c+j, -pi)
			G.Set(im, j, pi)
			G.Set(im, c+j, pr)
			G.Set(nre, j, -pr)
			G.Set(nre, c+j, pi)
			G.Set(nim, j, -pi)
			G.Set(nim, c+j, -pr)
		}
		G.Set(re, tr, -1)
		G.Set(nre, tr, -1)
		G.Set(im, ti, -1)
		G.Set(nim, ti, -1)
		h[re], h[nre] = real(y[i]), -real(y[i])
		h[im], h[nim] = imag(y[i]), -imag(y[i])
	}
	for k := 0; k < cfg.samples; k++ {
		row := 4*r + k
		theta := 2 * math.Pi * float64(k) / float64(cfg.samples)
		G.Set(row, tr, math.Cos(theta))
		G.Set(row, ti, math.Sin(theta))
		G.Set(row, t, -1)
	}
	z, err := solveGeneral(cost, G, h, nil, nil, cfg.lpTol)
	if err != nil {
		return nil, err
	}
	a = make([]complex128, c)
	for j := range a {
		a[j] = complex(z[j], z[c+j])
	}
	return a, nil
}

// Fit dispatches to FitLeastSquares or FitInf.
func Fit(P mat.CMatrix, y []complex128, norm Norm, opts ...Option) ([]complex128, error) {
	if err := norm.Validate("pnorm.Fit"); err != nil {
		return nil, err
	}
	if norm == Two {
		return FitLeastSquares(P, y)
	}
	return FitInf(P, y, opts...)
}

func checkFit(op string, r, c int, y []complex128) error {
	if r == 0 || c == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if len(y) != r {
		return errors.NewDimensionError(op, r, len(y), 0)
	}
	return nil
}
