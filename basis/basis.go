// Package basis builds polynomial bases over (possibly multivariate,
// possibly complex) sample points.
//
// A Basis fixes a multi-index set and an evaluation rule. Basis() returns the
// (weighted) basis matrix at the points it was built from; Vandermonde
// evaluates the unweighted basis at new points. Tensor-product families
// (Monomial, Legendre, Chebyshev, Hermite, Laguerre) rescale inputs with an
// affine scaler from package preprocessing before applying their
// three-term recurrence. The Arnoldi family orthogonalizes the columns
// against the weighted sample inner product while it is built and replays
// the recorded recurrence at new points.
package basis

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/core/model"
	"github.com/YuminosukeSato/ratfit/core/parallel"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/preprocessing"
)

// Basis is a polynomial basis bound to a multi-index set.
type Basis interface {
	// Basis returns the weighted basis matrix at the construction points.
	// It is nil for a basis restored with FromSpec. Callers must not mutate it.
	Basis() *mat.CDense

	// Vandermonde evaluates the unweighted basis at the rows of X.
	Vandermonde(X mat.CMatrix) (*mat.CDense, error)

	// VandermondeDerivative returns one M×N matrix per input dimension
	// holding the partial derivatives of the basis at the rows of X.
	VandermondeDerivative(X mat.CMatrix) ([]*mat.CDense, error)

	// Roots returns the zeros of the polynomial with coefficients coef.
	// Only one-dimensional bases support it.
	Roots(coef []complex128) ([]complex128, error)

	// Scale and InverseScale apply the affine input map used by the family.
	Scale(X mat.CMatrix) (*mat.CDense, error)
	InverseScale(X mat.CMatrix) (*mat.CDense, error)

	Dim() int
	Size() int
	Indices() [][]int
	Kind() Kind

	// Spec returns a serializable description sufficient for FromSpec.
	Spec() Spec

	// Clone returns a deep copy.
	Clone() Basis
}

// Option configures basis construction.
type Option func(*config)

type config struct {
	weight    []float64
	threshold int
}

// WithWeight multiplies row i of Basis() by w[i]. Arnoldi orthogonalizes
// with respect to this weight.
func WithWeight(w []float64) Option {
	return func(c *config) {
		c.weight = append([]float64(nil), w...)
	}
}

// WithParallelThreshold sets the row count above which Vandermonde
// evaluation is spread over goroutines.
func WithParallelThreshold(rows int) Option {
	return func(c *config) {
		c.threshold = rows
	}
}

func newConfig(opts []Option) *config {
	c := &config{threshold: parallel.DefaultRowThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New builds a basis of the given family at the rows of X.
func New(kind Kind, X mat.CMatrix, degree Degree, opts ...Option) (Basis, error) {
	switch kind {
	case Arnoldi:
		return NewArnoldi(X, degree, opts...)
	case Monomial, Legendre, Chebyshev, Hermite, Laguerre:
		b, err := newTensor(kind, X, degree, newConfig(opts))
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, errors.NewValidationError("kind", "unknown basis kind", int(kind))
	}
}

// Spec is the serializable state of a basis.
type Spec struct {
	Kind    Kind                `json:"kind"`
	Dim     int                 `json:"dim"`
	Indices [][]int             `json:"indices"`
	Scaler  *preprocessing.Spec `json:"scaler,omitempty"`
	// R holds the Arnoldi recurrence coefficients, row-major.
	R [][]model.Complex `json:"r,omitempty"`
}

// MarshalSpec encodes b as JSON.
func MarshalSpec(b Basis) (json.RawMessage, error) {
	data, err := json.Marshal(b.Spec())
	if err != nil {
		return nil, errors.Wrap(err, "encode basis")
	}
	return data, nil
}

// UnmarshalSpec decodes a basis written by MarshalSpec.
func UnmarshalSpec(data json.RawMessage) (Basis, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrap(err, "decode basis")
	}
	return FromSpec(spec)
}

// FromSpec restores a basis that can evaluate, differentiate and find roots
// but has no construction points.
func FromSpec(spec Spec) (Basis, error) {
	if spec.Dim <= 0 || len(spec.Indices) == 0 {
		return nil, errors.NewValueError("basis.FromSpec", "empty basis spec")
	}
	for _, idx := range spec.Indices {
		if len(idx) != spec.Dim {
			return nil, errors.NewDimensionError("basis.FromSpec", spec.Dim, len(idx), 1)
		}
	}
	cfg := newConfig(nil)
	switch spec.Kind {
	case Arnoldi:
		b, err := arnoldiFromSpec(spec, cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	case Monomial, Legendre, Chebyshev, Hermite, Laguerre:
		b, err := tensorFromSpec(spec, cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, errors.NewValidationError("kind", "unknown basis kind", int(spec.Kind))
	}
}

func checkPoints(op string, X mat.CMatrix, dim int) (int, error) {
	r, c := X.Dims()
	if dim > 0 && c != dim {
		return 0, errors.NewDimensionError(op, dim, c, 1)
	}
	if r == 0 || c == 0 {
		return 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	return r, nil
}

func checkWeight(w []float64, rows int) error {
	if w == nil {
		return nil
	}
	if len(w) != rows {
		return errors.NewDimensionError("basis weight", rows, len(w), 0)
	}
	if err := errors.CheckNumericalStability("basis weight", w, -1); err != nil {
		return err
	}
	return nil
}

func weightRows(w []float64, V *mat.CDense) *mat.CDense {
	if w == nil {
		return V
	}
	cw := make([]complex128, len(w))
	for i, v := range w {
		cw[i] = complex(v, 0)
	}
	return cmat.ScaleRows(cw, V)
}

func cloneIndices(indices [][]int) [][]int {
	out := make([][]int, len(indices))
	for i, idx := range indices {
		out[i] = append([]int(nil), idx...)
	}
	return out
}

func cloneDense(m *mat.CDense) *mat.CDense {
	if m == nil {
		return nil
	}
	return cmat.Clone(m)
}

func isFinite(z complex128) bool {
	return !math.IsNaN(real(z)) && !math.IsNaN(imag(z)) &&
		!math.IsInf(real(z), 0) && !math.IsInf(imag(z), 0)
}
