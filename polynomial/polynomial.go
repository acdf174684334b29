// Package polynomial holds polynomials expressed in a basis from package
// basis, and a polynomial approximation estimator built on them.
package polynomial

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/basis"
	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/core/model"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// Polynomial is Σ coef[k] φ_k for the basis functions φ_k of its basis.
// It owns deep copies of both, so later changes by the caller do not leak in.
type Polynomial struct {
	basis basis.Basis
	coef  []complex128
}

// New copies b and coef into a Polynomial.
func New(b basis.Basis, coef []complex128) (*Polynomial, error) {
	if b == nil {
		return nil, errors.NewValueError("polynomial.New", "nil basis")
	}
	if len(coef) != b.Size() {
		return nil, errors.NewDimensionError("polynomial.New", b.Size(), len(coef), 0)
	}
	return &Polynomial{
		basis: b.Clone(),
		coef:  append([]complex128(nil), coef...),
	}, nil
}

// Eval evaluates the polynomial at the rows of X.
func (p *Polynomial) Eval(X mat.CMatrix) ([]complex128, error) {
	V, err := p.basis.Vandermonde(X)
	if err != nil {
		return nil, err
	}
	return cmat.MulVec(V, p.coef), nil
}

// Gradient returns the partial derivatives of the polynomial at the rows of
// X, one slice per input dimension.
func (p *Polynomial) Gradient(X mat.CMatrix) ([][]complex128, error) {
	DV, err := p.basis.VandermondeDerivative(X)
	if err != nil {
		return nil, err
	}
	out := make([][]complex128, len(DV))
	for d, D := range DV {
		out[d] = cmat.MulVec(D, p.coef)
	}
	return out, nil
}

// Roots returns the zeros of a one-dimensional polynomial.
func (p *Polynomial) Roots() ([]complex128, error) {
	return p.basis.Roots(p.coef)
}

// Coef returns a copy of the coefficients.
func (p *Polynomial) Coef() []complex128 {
	return append([]complex128(nil), p.coef...)
}

// Basis returns the basis the polynomial owns. Callers must not mutate it.
func (p *Polynomial) Basis() basis.Basis {
	return p.basis
}

// Degree is the largest total degree among the basis indices.
func (p *Polynomial) Degree() int {
	d := 0
	for _, idx := range p.basis.Indices() {
		s := 0
		for _, v := range idx {
			s += v
		}
		if s > d {
			d = s
		}
	}
	return d
}

// Weights returns the serializable form of p.
func (p *Polynomial) Weights() (*model.PolynomialWeights, error) {
	spec, err := basis.MarshalSpec(p.basis)
	if err != nil {
		return nil, err
	}
	return &model.PolynomialWeights{
		Basis:        spec,
		Coefficients: model.PackComplex(p.coef),
	}, nil
}

// FromWeights restores a polynomial written by Weights. The restored basis
// evaluates anywhere but has no construction points.
func FromWeights(w *model.PolynomialWeights) (*Polynomial, error) {
	if w == nil {
		return nil, errors.NewValueError("polynomial.FromWeights", "nil weights")
	}
	b, err := basis.UnmarshalSpec(w.Basis)
	if err != nil {
		return nil, err
	}
	return New(b, model.UnpackComplex(w.Coefficients))
}
