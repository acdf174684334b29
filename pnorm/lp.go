package pnorm

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// minimizeInf solves min ‖A x‖_∞ over the hyperplane Re(x₂ᴴ x) = 1, where x₂
// is the 2-norm solution, and returns the renormalized x together with the
// optimal bound t of the program.
func minimizeInf(A mat.CMatrix, x2 []complex128, cfg *config) ([]complex128, float64, error) {
	if cmat.IsReal(A) && cmat.IsRealVec(x2) {
		return minimizeInfReal(cmat.RealPart(A), x2, cfg)
	}
	return minimizeInfComplex(A, x2, cfg)
}

// Variables z = [x, t]:
//
//	minimize t  s.t.  A x − t ≤ 0,  −A x − t ≤ 0,  x₂ᵀ x = 1.
func minimizeInfReal(A *mat.Dense, x2 []complex128, cfg *config) ([]complex128, float64, error) {
	r, c := A.Dims()
	nz := c + 1

	cost := make([]float64, nz)
	cost[c] = 1

	G := mat.NewDense(2*r, nz, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a := A.At(i, j)
			G.Set(i, j, a)
			G.Set(r+i, j, -a)
		}
		G.Set(i, c, -1)
		G.Set(r+i, c, -1)
	}
	h := make([]float64, 2*r)

	Aeq := mat.NewDense(1, nz, nil)
	for j := 0; j < c; j++ {
		Aeq.Set(0, j, real(x2[j]))
	}

	z, err := solveGeneral(cost, G, h, Aeq, []float64{1}, cfg.lpTol)
	if err != nil {
		return nil, 0, err
	}
	x := make([]complex128, c)
	for j := range x {
		x[j] = complex(z[j], 0)
	}
	normalize(x)
	return x, z[c], nil
}

// Variables z = [xr, xi, tr, ti, t]. tr and ti bound the real and imaginary
// parts of every entry of A x, and t ≥ tr·cosθ + ti·sinθ on cfg.samples
// angles replaces t ≥ |(tr, ti)|.
func minimizeInfComplex(A mat.CMatrix, x2 []complex128, cfg *config) ([]complex128, float64, error) {
	r, c := A.Dims()
	Ar, Ai := cmat.Parts(A)
	nz := 2*c + 3
	tr, ti, t := 2*c, 2*c+1, 2*c+2

	cost := make([]float64, nz)
	cost[t] = 1

	nIneq := 4*r + cfg.samples
	G := mat.NewDense(nIneq, nz, nil)
	for i := 0; i < r; i++ {
		re, im, nre, nim := 4*i, 4*i+1, 4*i+2, 4*i+3
		for j := 0; j < c; j++ {
			ar, ai := Ar.At(i, j), Ai.At(i, j)
			// Re(Ax)_i = Ar xr − Ai xi, Im(Ax)_i = Ai xr + Ar xi
			G.Set(re, j, ar)
			G.Set(re, c+j, -ai)
			G.Set(im, j, ai)
			G.Set(im, c+j, ar)
			G.Set(nre, j, -ar)
			G.Set(nre, c+j, ai)
			G.Set(nim, j, -ai)
			G.Set(nim, c+j, -ar)
		}
		G.Set(re, tr, -1)
		G.Set(nre, tr, -1)
		G.Set(im, ti, -1)
		G.Set(nim, ti, -1)
	}
	for k := 0; k < cfg.samples; k++ {
		row := 4*r + k
		theta := 2 * math.Pi * float64(k) / float64(cfg.samples)
		G.Set(row, tr, math.Cos(theta))
		G.Set(row, ti, math.Sin(theta))
		G.Set(row, t, -1)
	}
	h := make([]float64, nIneq)

	Aeq := mat.NewDense(1, nz, nil)
	for j := 0; j < c; j++ {
		Aeq.Set(0, j, real(x2[j]))
		Aeq.Set(0, c+j, imag(x2[j]))
	}

	z, err := solveGeneral(cost, G, h, Aeq, []float64{1}, cfg.lpTol)
	if err != nil {
		return nil, 0, err
	}
	x := make([]complex128, c)
	for j := range x {
		x[j] = complex(z[j], z[c+j])
	}
	normalize(x)
	return x, z[t], nil
}

// solveGeneral solves
//
//	minimize costᵀ z  s.t.  G z ≤ h,  Aeq z = beq
//
// with free z by converting to standard form and running the simplex
// method. Aeq may be nil.
func solveGeneral(cost []float64, G mat.Matrix, h []float64, Aeq mat.Matrix, beq []float64, tol float64) ([]float64, error) {
	cNew, aNew, bNew := lp.Convert(cost, G, h, Aeq, beq)
	_, zNew, err := lp.Simplex(cNew, aNew, bNew, tol, nil)
	if err != nil {
		return nil, errors.NewNumericalError("simplex", -1, err)
	}
	nz := len(cost)
	z := make([]float64, nz)
	for j := range z {
		z[j] = zNew[j] - zNew[nz+j]
	}
	return z, nil
}
