package pnorm

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

func randomComplex(rng *rand.Rand, r, c int) *mat.CDense {
	A := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			A.Set(i, j, complex(rng.NormFloat64(), rng.NormFloat64()))
		}
	}
	return A
}

func randomReal(rng *rand.Rand, r, c int) *mat.CDense {
	A := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			A.Set(i, j, complex(rng.NormFloat64(), 0))
		}
	}
	return A
}

func norm2(x []complex128) float64 {
	var s float64
	for _, z := range x {
		s = math.Hypot(s, cmplx.Abs(z))
	}
	return s
}

// gram returns Aᴴ A x.
func gram(A mat.CMatrix, x []complex128) []complex128 {
	Ax := cmat.MulVec(A, x)
	r, c := A.Dims()
	out := make([]complex128, c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			out[j] += cmplx.Conj(A.At(i, j)) * Ax[i]
		}
	}
	return out
}

func TestParseNorm(t *testing.T) {
	tests := []struct {
		in   string
		want Norm
	}{
		{"2", Two},
		{"inf", Inf},
		{"∞", Inf},
		{"Inf", Inf},
		{"1", 1},
	}
	for _, tt := range tests {
		got, err := ParseNorm(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseNorm("two")
	assert.Error(t, err)

	assert.Equal(t, "inf", Inf.String())
	assert.Equal(t, "2", Two.String())
}

func TestValidateRejectsOtherNorms(t *testing.T) {
	assert.NoError(t, Two.Validate("test"))
	assert.NoError(t, Inf.Validate("test"))
	for _, p := range []Norm{1, 3, 0.5} {
		err := p.Validate("test")
		var normErr *errors.UnsupportedNormError
		require.True(t, errors.As(err, &normErr), "norm %v", p)
		assert.Equal(t, float64(p), normErr.Norm)
	}
}

func TestMinimizeRejectsOneNorm(t *testing.T) {
	A := randomReal(rand.New(rand.NewSource(0)), 5, 2)
	x, _, err := Minimize(A, 1)
	assert.Nil(t, x)
	var normErr *errors.UnsupportedNormError
	assert.True(t, errors.As(err, &normErr))
}

func TestMinimizeTwoNorm(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := map[string]*mat.CDense{
		"real":    randomReal(rng, 20, 5),
		"complex": randomComplex(rng, 15, 4),
		"tall":    randomComplex(rng, 60, 7),
	}
	for name, A := range cases {
		t.Run(name, func(t *testing.T) {
			x, cond, err := Minimize(A, Two)
			require.NoError(t, err)
			assert.InDelta(t, 1, norm2(x), 1e-12)
			assert.False(t, math.IsNaN(cond))
			assert.Greater(t, cond, 0.0)

			// x is a right singular vector: Aᴴ A x = σ² x with σ = ‖A x‖
			sigma := norm2(cmat.MulVec(A, x))
			g := gram(A, x)
			for j := range g {
				assert.InDelta(t, 0, cmplx.Abs(g[j]-complex(sigma*sigma, 0)*x[j]), 1e-10)
			}

			// and the smallest one
			_, c := A.Dims()
			for trial := 0; trial < 50; trial++ {
				v := make([]complex128, c)
				for j := range v {
					v[j] = complex(rng.NormFloat64(), rng.NormFloat64())
				}
				if cmat.IsReal(A) {
					for j := range v {
						v[j] = complex(real(v[j]), 0)
					}
				}
				s := norm2(v)
				assert.LessOrEqual(t, sigma, norm2(cmat.MulVec(A, v))/s+1e-12)
			}
		})
	}
}

func TestMinimizeTwoNormRealStaysReal(t *testing.T) {
	A := randomReal(rand.New(rand.NewSource(2)), 10, 3)
	x, _, err := Minimize(A, Two)
	require.NoError(t, err)
	assert.True(t, cmat.IsRealVec(x))
}

func TestMinimizeWideMatrixFindsNullVector(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, A := range []*mat.CDense{randomReal(rng, 2, 4), randomComplex(rng, 2, 4)} {
		x, _, err := Minimize(A, Two)
		require.NoError(t, err)
		assert.InDelta(t, 0, norm2(cmat.MulVec(A, x)), 1e-12)
	}
}

func TestConditionEstimate(t *testing.T) {
	assert.True(t, math.IsInf(condition([]float64{3}), 1))
	assert.True(t, math.IsInf(condition(nil), 1))
	assert.InDelta(t, 4*math.Sqrt2/3, condition([]float64{4, 3, 0}), 1e-15)

	_, cond, err := Minimize(cmat.Column([]complex128{1, 2, 3}), Two)
	require.NoError(t, err)
	assert.True(t, math.IsInf(cond, 1))

	// repeated trailing singular values are not an error
	I := cmat.FromReal(mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}))
	_, cond, err = Minimize(I, Two)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(cond) || cond > 1e12)
}

func TestMinimizeNonFinite(t *testing.T) {
	A := cmat.FromReal(mat.NewDense(2, 2, []float64{1, math.NaN(), 0, 1}))
	_, _, err := Minimize(A, Two)
	var numErr *errors.NumericalError
	assert.True(t, errors.As(err, &numErr))
}

func TestMinimizeInfRealMatchesAngularSearch(t *testing.T) {
	A := cmat.FromReal(mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	}))
	x, _, err := Minimize(A, Inf)
	require.NoError(t, err)
	assert.InDelta(t, 1, norm2(x), 1e-12)
	assert.True(t, cmat.IsRealVec(x))

	infNorm := func(x0, x1 float64) float64 {
		return math.Max(math.Abs(x0), math.Max(math.Abs(x1), math.Abs(x0+x1)))
	}
	best := math.Inf(1)
	for k := 0; k < 200000; k++ {
		phi := math.Pi * float64(k) / 200000
		best = math.Min(best, infNorm(math.Cos(phi), math.Sin(phi)))
	}
	got := infNorm(real(x[0]), real(x[1]))
	assert.InDelta(t, best, got, 1e-3)
	assert.InDelta(t, 1/math.Sqrt2, got, 1e-6)
}

func TestMinimizeInfComplexPolygonTightens(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	A := randomComplex(rng, 6, 3)
	x2, _, err := minimize2(A)
	require.NoError(t, err)

	solve := func(n int) float64 {
		cfg, err := newConfig([]Option{WithSamples(n)})
		require.NoError(t, err)
		x, tn, err := minimizeInfComplex(A, x2, cfg)
		require.NoError(t, err)
		assert.InDelta(t, 1, norm2(x), 1e-12)
		return tn
	}

	// each angle set contains the previous one, so the feasible set shrinks
	const ref = 2880
	tRef := solve(ref)
	limit := tRef / math.Cos(math.Pi/ref)
	prev := 0.0
	for _, n := range []int{8, 24, 72, 360} {
		tn := solve(n)
		assert.Greater(t, tn, 0.0)
		assert.GreaterOrEqual(t, tn, prev-1e-9, "n=%d", n)
		assert.LessOrEqual(t, tn, tRef+1e-9, "n=%d", n)
		// the polygon is inscribed within a factor cos(π/n) of the disc
		bound := limit * (1 - math.Cos(math.Pi/float64(n)))
		assert.LessOrEqual(t, tRef-tn, bound+1e-9, "n=%d", n)
		assert.LessOrEqual(t, bound, limit*math.Pi*math.Pi/(2*float64(n*n)))
		prev = tn
	}
}

func TestMinimizeInfComplex(t *testing.T) {
	A := randomComplex(rand.New(rand.NewSource(5)), 5, 2)
	x, _, err := Minimize(A, Inf, WithSamples(16))
	require.NoError(t, err)
	assert.InDelta(t, 1, norm2(x), 1e-12)
	assert.False(t, cmat.IsRealVec(x))
}

func TestOptionValidation(t *testing.T) {
	A := randomReal(rand.New(rand.NewSource(6)), 4, 2)
	_, _, err := Minimize(A, Inf, WithSamples(2))
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	_, _, err = Minimize(A, Inf, WithLPTol(-1))
	assert.True(t, errors.As(err, &valErr))
}

func TestFitLeastSquares(t *testing.T) {
	x := []float64{-1, -0.5, 0, 0.25, 0.5, 1}
	P := mat.NewCDense(len(x), 3, nil)
	y := make([]complex128, len(x))
	for i, v := range x {
		P.Set(i, 0, 1)
		P.Set(i, 1, complex(v, 0))
		P.Set(i, 2, complex(v*v, 0))
		y[i] = complex(1+2*v-v*v, 0)
	}
	a, err := FitLeastSquares(P, y)
	require.NoError(t, err)
	for j, want := range []float64{1, 2, -1} {
		assert.InDelta(t, 0, cmplx.Abs(a[j]-complex(want, 0)), 1e-12)
	}

	rng := rand.New(rand.NewSource(7))
	Pc := randomComplex(rng, 10, 3)
	want := []complex128{1 - 1i, 0.5i, 2}
	a, err = FitLeastSquares(Pc, cmat.MulVec(Pc, want))
	require.NoError(t, err)
	for j := range want {
		assert.InDelta(t, 0, cmplx.Abs(a[j]-want[j]), 1e-12)
	}

	_, err = FitLeastSquares(Pc, want)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestFitLeastSquaresRankDeficient(t *testing.T) {
	// duplicated columns: the minimum-norm solution splits the mean evenly
	P := mat.NewCDense(4, 2, nil)
	for i := 0; i < 4; i++ {
		P.Set(i, 0, 1)
		P.Set(i, 1, 1)
	}
	a, err := FitLeastSquares(P, []complex128{1, 2, 3, 4})
	require.NoError(t, err)
	require.Len(t, a, 2)
	assert.InDelta(t, 0, cmplx.Abs(a[0]-1.25), 1e-12)
	assert.InDelta(t, 0, cmplx.Abs(a[1]-1.25), 1e-12)

	a, err = FitLeastSquares(P, []complex128{1 + 1i, 2 + 1i, 3 + 1i, 4 + 1i})
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(a[0]-(1.25+0.5i)), 1e-12)
	assert.InDelta(t, 0, cmplx.Abs(a[1]-(1.25+0.5i)), 1e-12)

	// wide system
	W := mat.NewCDense(1, 2, []complex128{3, 4})
	a, err = FitLeastSquares(W, []complex128{25})
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(a[0]-3), 1e-12)
	assert.InDelta(t, 0, cmplx.Abs(a[1]-4), 1e-12)

	a, err = FitLeastSquares(mat.NewCDense(3, 2, nil), []complex128{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []complex128{0, 0}, a)
}

func TestFitInfReal(t *testing.T) {
	// best constant approximation is the midrange
	a, err := FitInf(cmat.Column([]complex128{1, 1, 1}), []complex128{0, 1, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, real(a[0]), 1e-9)

	// best line to |x| on a symmetric grid is the constant 1/2
	x := []float64{-1, -0.5, 0, 0.5, 1}
	P := mat.NewCDense(len(x), 2, nil)
	y := make([]complex128, len(x))
	for i, v := range x {
		P.Set(i, 0, 1)
		P.Set(i, 1, complex(v, 0))
		y[i] = complex(math.Abs(v), 0)
	}
	a, err = Fit(P, y, Inf)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, real(a[0]), 1e-9)
	assert.InDelta(t, 0, real(a[1]), 1e-9)
}

func TestFitInfComplexCentresCircle(t *testing.T) {
	center := 0.3 + 0.2i
	y := make([]complex128, 8)
	ones := make([]complex128, 8)
	for k := range y {
		y[k] = center + cmplx.Exp(complex(0, 2*math.Pi*float64(k)/8))
		ones[k] = 1
	}
	a, err := FitInf(cmat.Column(ones), y, WithSamples(36))
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(a[0]-center), 1e-8)
}

func TestFitRejectsOneNorm(t *testing.T) {
	_, err := Fit(cmat.Column([]complex128{1, 1}), []complex128{1, 2}, 1)
	var normErr *errors.UnsupportedNormError
	assert.True(t, errors.As(err, &normErr))
}
