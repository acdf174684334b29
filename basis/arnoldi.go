package basis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/core/model"
	"github.com/YuminosukeSato/ratfit/core/parallel"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// arnoldiBasis is the Vandermonde-with-Arnoldi basis. Column k is
//
//	q_k = (x_dir[k] ⊙ q_parent[k] − Σ_{i<k} R[i,k] q_i) / R[k,k],
//
// with q_0 = weight / ‖weight‖. At the construction points the columns are
// orthonormal in the plain inner product; elsewhere the same recurrence is
// replayed without the weight. Max-degree index sets are kept in lexOrder
// so that every x_dir q_i with i ≤ parent[k] stays inside the set.
type arnoldiBasis struct {
	dim     int
	indices [][]int
	parent  []int
	dir     []int
	R       *mat.CDense
	Q       *mat.CDense
	cfg     *config
}

// NewArnoldi builds a Vandermonde-with-Arnoldi basis at the rows of X,
// orthogonalized with classical Gram-Schmidt applied twice. A column that
// vanishes or becomes non-finite fails construction with ErrRankDeficient.
func NewArnoldi(X mat.CMatrix, degree Degree, opts ...Option) (b Basis, err error) {
	defer errors.Recover(&err, "arnoldi")

	cfg := newConfig(opts)
	rows, err := checkPoints("NewArnoldi", X, 0)
	if err != nil {
		return nil, err
	}
	_, dim := X.Dims()
	indices, err := degree.Indices(dim)
	if err != nil {
		return nil, err
	}
	// x_dir q_parent must stay inside the index set: graded order does
	// that for total degree, max degree needs lexOrder.
	if !degree.IsTotal() {
		indices = lexOrder(indices)
	}
	weight := cfg.weight
	if weight == nil {
		weight = make([]float64, rows)
		for i := range weight {
			weight[i] = 1
		}
	}
	if err := checkWeight(weight, rows); err != nil {
		return nil, err
	}

	n := len(indices)
	parent, dir := parentOf(indices)
	Q := make([][]complex128, n) // columns
	R := mat.NewCDense(n, n, nil)

	q0 := make([]complex128, rows)
	var wnorm float64
	for _, w := range weight {
		wnorm = math.Hypot(wnorm, w)
	}
	if wnorm == 0 || math.IsInf(wnorm, 0) || math.IsNaN(wnorm) {
		return nil, errors.NewNumericalError("arnoldi", -1, errors.ErrRankDeficient)
	}
	for i, w := range weight {
		q0[i] = complex(w/wnorm, 0)
	}
	Q[0] = q0
	R.Set(0, 0, complex(wnorm, 0))

	for k := 1; k < n; k++ {
		p, j := parent[k], dir[k]
		v := make([]complex128, rows)
		for i := range v {
			v[i] = X.At(i, j) * Q[p][i]
		}
		s := make([]complex128, k)
		// CGS twice
		for pass := 0; pass < 2; pass++ {
			for l := 0; l < k; l++ {
				var h complex128
				for i := range v {
					h += cmplx.Conj(Q[l][i]) * v[i]
				}
				s[l] += h
				sub(v, Q[l], h)
			}
		}
		norm := norm2(v)
		if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
			return nil, errors.NewNumericalError("arnoldi", -1,
				errors.Wrapf(errors.ErrRankDeficient, "column %d (index %v)", k, indices[k]))
		}
		for l := 0; l < k; l++ {
			R.Set(l, k, s[l])
		}
		R.Set(k, k, complex(norm, 0))
		for i := range v {
			v[i] /= complex(norm, 0)
		}
		Q[k] = v
	}

	Qm := mat.NewCDense(rows, n, nil)
	for k, col := range Q {
		for i, z := range col {
			Qm.Set(i, k, z)
		}
	}
	return &arnoldiBasis{
		dim:     dim,
		indices: indices,
		parent:  parent,
		dir:     dir,
		R:       R,
		Q:       Qm,
		cfg:     cfg,
	}, nil
}

func arnoldiFromSpec(spec Spec, cfg *config) (*arnoldiBasis, error) {
	n := len(spec.Indices)
	if len(spec.R) != n {
		return nil, errors.NewDimensionError("basis.FromSpec", n, len(spec.R), 0)
	}
	R := mat.NewCDense(n, n, nil)
	for i, row := range spec.R {
		if len(row) != n {
			return nil, errors.NewDimensionError("basis.FromSpec", n, len(row), 1)
		}
		for j, z := range model.UnpackComplex(row) {
			R.Set(i, j, z)
		}
	}
	for k := 0; k < n; k++ {
		if d := R.At(k, k); d == 0 || !isFinite(d) {
			return nil, errors.NewNumericalError("basis.FromSpec", -1, errors.ErrRankDeficient)
		}
	}
	indices := cloneIndices(spec.Indices)
	parent, dir := parentOf(indices)
	return &arnoldiBasis{
		dim:     spec.Dim,
		indices: indices,
		parent:  parent,
		dir:     dir,
		R:       R,
		cfg:     cfg,
	}, nil
}

func sub(v, q []complex128, h complex128) {
	for i := range v {
		v[i] -= h * q[i]
	}
}

func norm2(v []complex128) float64 {
	var s float64
	for _, z := range v {
		s = math.Hypot(s, cmplx.Abs(z))
	}
	return s
}

func (b *arnoldiBasis) Basis() *mat.CDense { return b.Q }
func (b *arnoldiBasis) Dim() int           { return b.dim }
func (b *arnoldiBasis) Size() int          { return len(b.indices) }
func (b *arnoldiBasis) Indices() [][]int   { return cloneIndices(b.indices) }
func (b *arnoldiBasis) Kind() Kind         { return Arnoldi }

// Scale is the identity: the Arnoldi recurrence conditions itself.
func (b *arnoldiBasis) Scale(X mat.CMatrix) (*mat.CDense, error) {
	if _, err := checkPoints("Scale", X, b.dim); err != nil {
		return nil, err
	}
	return cmat.Clone(X), nil
}

func (b *arnoldiBasis) InverseScale(X mat.CMatrix) (*mat.CDense, error) {
	return b.Scale(X)
}

func (b *arnoldiBasis) Vandermonde(X mat.CMatrix) (*mat.CDense, error) {
	rows, err := checkPoints("Vandermonde", X, b.dim)
	if err != nil {
		return nil, err
	}
	n := len(b.indices)
	V := mat.NewCDense(rows, n, nil)
	r0 := b.R.At(0, 0)
	parallel.ParallelizeWithThreshold(rows, b.cfg.threshold, func(start, end int) {
		row := make([]complex128, n)
		for i := start; i < end; i++ {
			row[0] = 1 / r0
			for k := 1; k < n; k++ {
				v := X.At(i, b.dir[k]) * row[b.parent[k]]
				for l := 0; l < k; l++ {
					v -= b.R.At(l, k) * row[l]
				}
				row[k] = v / b.R.At(k, k)
			}
			for k, v := range row {
				V.Set(i, k, v)
			}
		}
	})
	return V, nil
}

func (b *arnoldiBasis) VandermondeDerivative(X mat.CMatrix) ([]*mat.CDense, error) {
	V, err := b.Vandermonde(X)
	if err != nil {
		return nil, err
	}
	rows, n := V.Dims()
	DV := make([]*mat.CDense, b.dim)
	for d := range DV {
		DV[d] = mat.NewCDense(rows, n, nil)
	}
	parallel.ParallelizeWithThreshold(rows, b.cfg.threshold, func(start, end int) {
		row := make([]complex128, n)
		for i := start; i < end; i++ {
			for d := 0; d < b.dim; d++ {
				row[0] = 0
				for k := 1; k < n; k++ {
					p, j := b.parent[k], b.dir[k]
					v := X.At(i, j) * row[p]
					if j == d {
						v += V.At(i, p)
					}
					for l := 0; l < k; l++ {
						v -= b.R.At(l, k) * row[l]
					}
					row[k] = v / b.R.At(k, k)
				}
				for k, v := range row {
					DV[d].Set(i, k, v)
				}
			}
		}
	})
	return DV, nil
}

func (b *arnoldiBasis) Roots(coef []complex128) ([]complex128, error) {
	if b.dim != 1 {
		return nil, errors.NewValueError("Roots", "roots are only defined for one-dimensional bases")
	}
	if len(coef) != len(b.indices) {
		return nil, errors.NewDimensionError("Roots", len(b.indices), len(coef), 0)
	}
	c := trimTrailingZeros(coef)
	if len(c) <= 1 {
		return []complex128{}, nil
	}
	d := len(c) - 1
	// x q_j = Σ_{i<=j+1} R[i, j+1] q_i
	H := make([][]complex128, d+1)
	for i := range H {
		H[i] = make([]complex128, d)
		for j := 0; j < d; j++ {
			if i <= j+1 {
				H[i][j] = b.R.At(i, j+1)
			}
		}
	}
	return comradeRoots(H, c)
}

func (b *arnoldiBasis) Spec() Spec {
	n := len(b.indices)
	R := make([][]model.Complex, n)
	for i := range R {
		row := make([]complex128, n)
		for j := range row {
			row[j] = b.R.At(i, j)
		}
		R[i] = model.PackComplex(row)
	}
	return Spec{
		Kind:    Arnoldi,
		Dim:     b.dim,
		Indices: cloneIndices(b.indices),
		R:       R,
	}
}

func (b *arnoldiBasis) Clone() Basis {
	cfg := *b.cfg
	cfg.weight = append([]float64(nil), b.cfg.weight...)
	return &arnoldiBasis{
		dim:     b.dim,
		indices: cloneIndices(b.indices),
		parent:  append([]int(nil), b.parent...),
		dir:     append([]int(nil), b.dir...),
		R:       cloneDense(b.R),
		Q:       cloneDense(b.Q),
		cfg:     &cfg,
	}
}
