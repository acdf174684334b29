package basis

import (
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

func trimTrailingZeros(coef []complex128) []complex128 {
	n := len(coef)
	for n > 0 && coef[n-1] == 0 {
		n--
	}
	return coef[:n]
}

// comradeRoots returns the eigenvalues of the comrade matrix of the
// polynomial Σ c_k φ_k, where the basis satisfies x φ_j = Σ_i H[i][j] φ_i.
// At a zero of the polynomial φ_d = −Σ_{i<d} (c_i / c_d) φ_i, which folds
// the last recurrence column back into the first d functions.
func comradeRoots(H [][]complex128, c []complex128) (roots []complex128, err error) {
	defer errors.Recover(&err, "roots")

	d := len(c) - 1
	C := mat.NewCDense(d, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < d-1; j++ {
			C.Set(i, j, H[i][j])
		}
		C.Set(i, d-1, H[i][d-1]-H[d][d-1]*c[i]/c[d])
	}
	if err := errors.CheckCMatrix("comrade matrix", C, -1); err != nil {
		return nil, err
	}
	return eigenvalues(C)
}

// eigenvalues of a square complex matrix. gonum only factorizes real
// matrices, so a complex C is embedded as B = [[Cr, −Ci], [Ci, Cr]]. B has
// the eigenvalues of C and of conj(C). For an eigenvector [u; w] of B,
// u + i·w is an eigenvector of C and u − i·w one of conj(C); the d
// eigenpairs leaning most towards C are kept.
func eigenvalues(C *mat.CDense) ([]complex128, error) {
	d, _ := C.Dims()
	if cmat.IsReal(C) {
		var eig mat.Eigen
		if ok := eig.Factorize(cmat.RealPart(C), mat.EigenNone); !ok {
			return nil, errors.NewNumericalError("eigen", -1, errors.New("eigenvalue decomposition did not converge"))
		}
		return eig.Values(nil), nil
	}

	var eig mat.Eigen
	if ok := eig.Factorize(cmat.Embed(C), mat.EigenRight); !ok {
		return nil, errors.NewNumericalError("eigen", -1, errors.New("eigenvalue decomposition did not converge"))
	}
	values := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	type candidate struct {
		value complex128
		score float64
	}
	cands := make([]candidate, len(values))
	for k, mu := range values {
		var plus, minus float64
		for i := 0; i < d; i++ {
			u, w := vecs.At(i, k), vecs.At(i+d, k)
			a := cmplx.Abs(u + 1i*w)
			b := cmplx.Abs(u - 1i*w)
			plus += a * a
			minus += b * b
		}
		score := 0.5
		if plus+minus > 0 {
			score = plus / (plus + minus)
		}
		cands[k] = candidate{value: mu, score: score}
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].score > cands[b].score })

	out := make([]complex128, d)
	for k := range out {
		out[k] = cands[k].value
	}
	return out, nil
}
