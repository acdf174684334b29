package basis

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/core/parallel"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/preprocessing"
)

// tensorBasis is a tensor product of one-dimensional recurrence families.
type tensorBasis struct {
	kind    Kind
	rec     recurrence
	dim     int
	indices [][]int
	maxDeg  []int
	scaler  preprocessing.AffineScaler
	basis   *mat.CDense
	cfg     *config
}

func scalerFor(k Kind) preprocessing.AffineScaler {
	switch k {
	case Hermite:
		return preprocessing.NewStandardScaler()
	case Laguerre:
		return preprocessing.NewLowerBoundScaler()
	default:
		return preprocessing.NewMinMaxScaler()
	}
}

func newTensor(kind Kind, X mat.CMatrix, degree Degree, cfg *config) (*tensorBasis, error) {
	rows, err := checkPoints("basis.New", X, 0)
	if err != nil {
		return nil, err
	}
	_, dim := X.Dims()
	indices, err := degree.Indices(dim)
	if err != nil {
		return nil, err
	}
	if err := checkWeight(cfg.weight, rows); err != nil {
		return nil, err
	}

	scaler := scalerFor(kind)
	if err := scaler.Fit(X); err != nil {
		return nil, err
	}

	b := &tensorBasis{
		kind:    kind,
		rec:     recurrenceFor(kind),
		dim:     dim,
		indices: indices,
		maxDeg:  maxPerDim(indices, dim),
		scaler:  scaler,
		cfg:     cfg,
	}
	V, err := b.Vandermonde(X)
	if err != nil {
		return nil, err
	}
	b.basis = weightRows(cfg.weight, V)
	return b, nil
}

func tensorFromSpec(spec Spec, cfg *config) (*tensorBasis, error) {
	if spec.Scaler == nil {
		return nil, errors.NewValueError("basis.FromSpec", "tensor basis requires a scaler")
	}
	scaler, err := preprocessing.FromSpec(*spec.Scaler)
	if err != nil {
		return nil, err
	}
	if shift, _ := scaler.Params(); len(shift) != spec.Dim {
		return nil, errors.NewDimensionError("basis.FromSpec", spec.Dim, len(shift), 1)
	}
	indices := cloneIndices(spec.Indices)
	return &tensorBasis{
		kind:    spec.Kind,
		rec:     recurrenceFor(spec.Kind),
		dim:     spec.Dim,
		indices: indices,
		maxDeg:  maxPerDim(indices, spec.Dim),
		scaler:  scaler,
		cfg:     cfg,
	}, nil
}

func (b *tensorBasis) Basis() *mat.CDense { return b.basis }
func (b *tensorBasis) Dim() int           { return b.dim }
func (b *tensorBasis) Size() int          { return len(b.indices) }
func (b *tensorBasis) Indices() [][]int   { return cloneIndices(b.indices) }
func (b *tensorBasis) Kind() Kind         { return b.kind }

func (b *tensorBasis) Scale(X mat.CMatrix) (*mat.CDense, error) {
	return b.scaler.Transform(X)
}

func (b *tensorBasis) InverseScale(X mat.CMatrix) (*mat.CDense, error) {
	return b.scaler.InverseTransform(X)
}

func (b *tensorBasis) Vandermonde(X mat.CMatrix) (*mat.CDense, error) {
	rows, err := checkPoints("Vandermonde", X, b.dim)
	if err != nil {
		return nil, err
	}
	Y, err := b.scaler.Transform(X)
	if err != nil {
		return nil, err
	}

	V := mat.NewCDense(rows, len(b.indices), nil)
	parallel.ParallelizeWithThreshold(rows, b.cfg.threshold, func(start, end int) {
		vals := b.buffers()
		for i := start; i < end; i++ {
			for j := 0; j < b.dim; j++ {
				eval1D(b.rec, Y.At(i, j), vals[j], nil)
			}
			for k, idx := range b.indices {
				v := complex(1, 0)
				for j, d := range idx {
					v *= vals[j][d]
				}
				V.Set(i, k, v)
			}
		}
	})
	return V, nil
}

func (b *tensorBasis) VandermondeDerivative(X mat.CMatrix) ([]*mat.CDense, error) {
	rows, err := checkPoints("VandermondeDerivative", X, b.dim)
	if err != nil {
		return nil, err
	}
	Y, err := b.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	_, scale := b.scaler.Params()

	DV := make([]*mat.CDense, b.dim)
	for j := range DV {
		DV[j] = mat.NewCDense(rows, len(b.indices), nil)
	}
	parallel.ParallelizeWithThreshold(rows, b.cfg.threshold, func(start, end int) {
		vals, ders := b.buffers(), b.buffers()
		for i := start; i < end; i++ {
			for j := 0; j < b.dim; j++ {
				eval1D(b.rec, Y.At(i, j), vals[j], ders[j])
			}
			for k, idx := range b.indices {
				for d := 0; d < b.dim; d++ {
					// chain rule through the affine input map
					v := ders[d][idx[d]] / complex(scale[d], 0)
					for j, e := range idx {
						if j != d {
							v *= vals[j][e]
						}
					}
					DV[d].Set(i, k, v)
				}
			}
		}
	})
	return DV, nil
}

func (b *tensorBasis) buffers() [][]complex128 {
	out := make([][]complex128, b.dim)
	for j := range out {
		out[j] = make([]complex128, b.maxDeg[j]+1)
	}
	return out
}

func (b *tensorBasis) Roots(coef []complex128) ([]complex128, error) {
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
	roots, err := comradeRoots(hessenberg(b.rec, len(c)-1), c)
	if err != nil {
		return nil, err
	}
	shift, scale := b.scaler.Params()
	for i := range roots {
		roots[i] = roots[i]*complex(scale[0], 0) + shift[0]
	}
	return roots, nil
}

func (b *tensorBasis) Spec() Spec {
	s := b.scaler.Spec()
	return Spec{
		Kind:    b.kind,
		Dim:     b.dim,
		Indices: cloneIndices(b.indices),
		Scaler:  &s,
	}
}

func (b *tensorBasis) Clone() Basis {
	s := b.scaler.Spec()
	scaler, err := preprocessing.FromSpec(s)
	if err != nil {
		// a fitted scaler always round-trips
		panic(err)
	}
	cfg := *b.cfg
	cfg.weight = append([]float64(nil), b.cfg.weight...)
	return &tensorBasis{
		kind:    b.kind,
		rec:     b.rec,
		dim:     b.dim,
		indices: cloneIndices(b.indices),
		maxDeg:  append([]int(nil), b.maxDeg...),
		scaler:  scaler,
		basis:   cloneDense(b.basis),
		cfg:     &cfg,
	}
}
