package polynomial

import (
	"bytes"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/basis"
	"github.com/YuminosukeSato/ratfit/core/model"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/pnorm"
)

func grid(lo, hi float64, n int) *mat.CDense {
	X := mat.NewCDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, complex(lo+(hi-lo)*float64(i)/float64(n-1), 0))
	}
	return X
}

func evalFunc(X mat.CMatrix, f func(x complex128) complex128) []complex128 {
	r, _ := X.Dims()
	y := make([]complex128, r)
	for i := range y {
		y[i] = f(X.At(i, 0))
	}
	return y
}

func assertClose(t *testing.T, want, got []complex128, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, 0, cmplx.Abs(want[i]-got[i]), tol*(1+cmplx.Abs(want[i])), "index %d", i)
	}
}

func monomialBasis(t *testing.T, degree int) basis.Basis {
	t.Helper()
	b, err := basis.New(basis.Monomial, grid(-1, 1, 11), basis.TotalDegree(degree))
	require.NoError(t, err)
	return b
}

func TestPolynomialEval(t *testing.T) {
	p, err := New(monomialBasis(t, 2), []complex128{1, 2, 3})
	require.NoError(t, err)

	X := grid(-2, 2, 7)
	got, err := p.Eval(X)
	require.NoError(t, err)
	want := evalFunc(X, func(x complex128) complex128 { return 1 + 2*x + 3*x*x })
	assertClose(t, want, got, 1e-13)

	grad, err := p.Gradient(X)
	require.NoError(t, err)
	require.Len(t, grad, 1)
	assertClose(t, evalFunc(X, func(x complex128) complex128 { return 2 + 6*x }), grad[0], 1e-13)

	assert.Equal(t, 2, p.Degree())
}

func TestPolynomialCopiesInputs(t *testing.T) {
	b := monomialBasis(t, 1)
	coef := []complex128{1, 1}
	p, err := New(b, coef)
	require.NoError(t, err)

	coef[0] = 100
	assert.Equal(t, []complex128{1, 1}, p.Coef())
	assert.NotSame(t, b, p.Basis())

	c := p.Coef()
	c[1] = 7
	assert.Equal(t, []complex128{1, 1}, p.Coef())
}

func TestPolynomialRoots(t *testing.T) {
	p, err := New(monomialBasis(t, 3), []complex128{1, -2.5, 0.5, 1})
	require.NoError(t, err)
	roots, err := p.Roots()
	require.NoError(t, err)
	require.Len(t, roots, 3)
	vals, err := p.Eval(mat.NewCDense(3, 1, roots))
	require.NoError(t, err)
	for _, v := range vals {
		assert.InDelta(t, 0, cmplx.Abs(v), 1e-10)
	}
}

func TestPolynomialValidation(t *testing.T) {
	_, err := New(monomialBasis(t, 2), []complex128{1})
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = New(nil, nil)
	assert.Error(t, err)
}

func TestPolynomialWeightsRoundTrip(t *testing.T) {
	X := grid(-1, 3, 30)
	for _, kind := range []basis.Kind{basis.Arnoldi, basis.Chebyshev, basis.Laguerre} {
		b, err := basis.New(kind, X, basis.TotalDegree(3))
		require.NoError(t, err)
		p, err := New(b, []complex128{1, -1i, 0.5, 2})
		require.NoError(t, err)

		w, err := p.Weights()
		require.NoError(t, err)
		q, err := FromWeights(w)
		require.NoError(t, err)

		Xnew := grid(-2, 4, 9)
		want, err := p.Eval(Xnew)
		require.NoError(t, err)
		got, err := q.Eval(Xnew)
		require.NoError(t, err)
		assertClose(t, want, got, 1e-12)
	}
}

func TestApproximationExactPolynomial(t *testing.T) {
	f := func(x complex128) complex128 { return 1 + x - 2*x*x*x }
	X := grid(-1, 1, 40)
	y := evalFunc(X, f)
	Xtest := grid(-0.9, 0.9, 13)

	tests := []struct {
		name string
		opts []Option
	}{
		{"arnoldi 2-norm", nil},
		{"legendre 2-norm", []Option{WithKind(basis.Legendre)}},
		{"chebyshev inf-norm", []Option{WithKind(basis.Chebyshev), WithNorm(pnorm.Inf)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewApproximation(basis.TotalDegree(3), tt.opts...)
			require.NoError(t, a.Fit(X, y))
			assert.True(t, a.IsFitted())

			pred, err := a.Predict(Xtest)
			require.NoError(t, err)
			assertClose(t, evalFunc(Xtest, f), pred, 1e-8)

			score, err := a.Score(X, y)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, score, 1e-10)
		})
	}
}

func TestApproximationComplex(t *testing.T) {
	X := mat.NewCDense(24, 1, nil)
	for i := 0; i < 24; i++ {
		X.Set(i, 0, cmplx.Exp(complex(0, 2*math.Pi*float64(i)/24)))
	}
	f := func(x complex128) complex128 { return x*x + 1i }
	a := NewApproximation(basis.TotalDegree(2))
	require.NoError(t, a.Fit(X, evalFunc(X, f)))

	Xtest := mat.NewCDense(2, 1, []complex128{0.5, 0.1 - 0.3i})
	pred, err := a.Predict(Xtest)
	require.NoError(t, err)
	assertClose(t, evalFunc(Xtest, f), pred, 1e-10)
}

func TestApproximationErrors(t *testing.T) {
	a := NewApproximation(basis.TotalDegree(2))
	_, err := a.Predict(grid(0, 1, 3))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	_, err = a.ExportWeights()
	assert.True(t, errors.As(err, &nf))

	X := grid(-1, 1, 10)
	y := evalFunc(X, func(x complex128) complex128 { return x })
	assert.Error(t, a.Fit(X, y[:5]))

	bad := NewApproximation(basis.TotalDegree(2), WithNorm(1))
	err = bad.Fit(X, y)
	var normErr *errors.UnsupportedNormError
	assert.True(t, errors.As(err, &normErr))

	require.NoError(t, a.Fit(X, y))
	_, err = a.Predict(mat.NewCDense(3, 2, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestApproximationExportImport(t *testing.T) {
	X := grid(-1, 1, 25)
	y := evalFunc(X, func(x complex128) complex128 { return cmplx.Exp(x) })
	a := NewApproximation(basis.TotalDegree(6), WithKind(basis.Hermite))
	require.NoError(t, a.Fit(X, y))

	w, err := a.ExportWeights()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, model.WriteWeights(w, &buf))
	loaded, err := model.ReadWeights(&buf)
	require.NoError(t, err)

	b := NewApproximation(basis.TotalDegree(6))
	require.NoError(t, b.ImportWeights(loaded))
	assert.True(t, b.IsFitted())
	assert.Equal(t, "hermite", b.GetParams()["basis"])

	Xtest := grid(-0.8, 0.8, 5)
	want, err := a.Predict(Xtest)
	require.NoError(t, err)
	got, err := b.Predict(Xtest)
	require.NoError(t, err)
	assertClose(t, want, got, 1e-12)

	loaded.ModelType = "Other"
	assert.Error(t, b.ImportWeights(loaded))
}
