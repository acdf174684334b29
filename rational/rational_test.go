package rational

import (
	"bytes"
	"math"
	"math/cmplx"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/basis"
	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/pkg/log"
	"github.com/YuminosukeSato/ratfit/pnorm"
)

// cellMidpoints returns n points uniformly spaced in [lo, hi] at the centres
// of n equal cells, so the end points are never sampled.
func cellMidpoints(lo, hi float64, n int) *mat.CDense {
	X := mat.NewCDense(n, 1, nil)
	h := (hi - lo) / float64(n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, complex(lo+(float64(i)+0.5)*h, 0))
	}
	return X
}

func apply(X mat.CMatrix, f func(x complex128) complex128) []complex128 {
	r, _ := X.Dims()
	y := make([]complex128, r)
	for i := range y {
		y[i] = f(X.At(i, 0))
	}
	return y
}

func inverseShift(x complex128) complex128 { return 1 / (1 + x) }

// monomials returns the M×(d+1) matrix [1, x, …, x^d].
func monomials(X mat.CMatrix, d int) *mat.CDense {
	r, _ := X.Dims()
	V := mat.NewCDense(r, d+1, nil)
	for i := 0; i < r; i++ {
		x := X.At(i, 0)
		v := complex(1, 0)
		for k := 0; k <= d; k++ {
			V.Set(i, k, v)
			v *= x
		}
	}
	return V
}

func captureWarnings(t *testing.T) func() []error {
	t.Helper()
	var (
		mu       sync.Mutex
		warnings []error
	)
	errors.SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, w)
	})
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })
	return func() []error {
		mu.Lock()
		defer mu.Unlock()
		return append([]error(nil), warnings...)
	}
}

func quiet() Option {
	l, _ := log.NewTestLogger(log.LevelError)
	return WithLogger(l)
}

func TestSKFitRebaseEndToEnd(t *testing.T) {
	X := cellMidpoints(-1, 1, 50)
	y := apply(X, inverseShift)

	res, err := SKFitRebase(X, y, basis.TotalDegree(1), basis.TotalDegree(1), WithMaxIter(20), quiet())
	require.NoError(t, err)
	assert.Less(t, res.Residual, 1e-6)
	assert.True(t, res.Converged)
	assert.Nil(t, res.Interrupted)
	assert.LessOrEqual(t, res.Iterations, 20)

	fit, err := res.Eval(X)
	require.NoError(t, err)
	for i := range y {
		assert.InDelta(t, 0, cmplx.Abs(fit[i]-y[i]), 1e-6)
	}

	Xnew := cellMidpoints(-0.5, 2, 7)
	pred, err := res.Eval(Xnew)
	require.NoError(t, err)
	want := apply(Xnew, inverseShift)
	for i := range want {
		assert.InDelta(t, 0, cmplx.Abs(pred[i]-want[i]), 1e-8)
	}

	poles, err := res.Poles()
	require.NoError(t, err)
	require.Len(t, poles, 1)
	assert.InDelta(t, 0, cmplx.Abs(poles[0]+1), 1e-8)

	// the numerator is constant up to rounding
	zeros, err := res.Zeros()
	require.NoError(t, err)
	for _, z := range zeros {
		assert.Greater(t, cmplx.Abs(z), 1e6)
	}
}

func TestSKFitEndToEnd(t *testing.T) {
	X := cellMidpoints(-1, 1, 50)
	y := apply(X, inverseShift)
	P, Q := monomials(X, 1), monomials(X, 1)

	res, err := SKFit(y, P, Q, quiet())
	require.NoError(t, err)
	assert.Less(t, res.Residual, 1e-6)
	assert.True(t, res.Converged)

	// b ∝ (1, 1) and a ∝ (1, 0)
	assert.InDelta(t, 0, cmplx.Abs(res.A[1]/res.A[0]), 1e-8)
	assert.InDelta(t, 0, cmplx.Abs(res.B[1]/res.B[0]-1), 1e-8)

	fit, err := res.Eval(P, Q)
	require.NoError(t, err)
	for i := range y {
		assert.InDelta(t, 0, cmplx.Abs(fit[i]-y[i]), 1e-6)
	}
}

func TestSKFitInfNorm(t *testing.T) {
	X := cellMidpoints(-1, 1, 20)
	y := apply(X, inverseShift)

	res, err := SKFitRebase(X, y, basis.TotalDegree(1), basis.TotalDegree(1), WithNorm(pnorm.Inf), quiet())
	require.NoError(t, err)
	assert.Less(t, res.Residual, 1e-6)

	fixed, err := SKFit(y, monomials(X, 1), monomials(X, 1), WithNorm(pnorm.Inf), quiet())
	require.NoError(t, err)
	assert.Less(t, fixed.Residual, 1e-6)
}

func TestSKFitComplexData(t *testing.T) {
	// frequency response of 1/(1+s) on the imaginary axis
	X := mat.NewCDense(30, 1, nil)
	for i := 0; i < 30; i++ {
		X.Set(i, 0, complex(0, math.Pow(10, -2+4*float64(i)/29)))
	}
	y := apply(X, inverseShift)

	res, err := SKFitRebase(X, y, basis.TotalDegree(1), basis.TotalDegree(1), quiet())
	require.NoError(t, err)
	assert.Less(t, res.Residual, 1e-8)

	poles, err := res.Poles()
	require.NoError(t, err)
	require.Len(t, poles, 1)
	assert.InDelta(t, 0, cmplx.Abs(poles[0]+1), 1e-6)
}

func TestSKFitMultivariate(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	X := mat.NewCDense(100, 2, nil)
	y := make([]complex128, 100)
	for i := 0; i < 100; i++ {
		x1, x2 := rng.Float64(), rng.Float64()
		X.Set(i, 0, complex(x1, 0))
		X.Set(i, 1, complex(x2, 0))
		y[i] = complex(1/(1+x1+0.5*x2*x2), 0)
	}
	res, err := SKFitRebase(X, y, basis.TotalDegree(0), basis.TotalDegree(2), quiet())
	require.NoError(t, err)
	assert.Less(t, res.Residual, 1e-8)

	_, err = res.Poles()
	assert.Error(t, err)
}

func TestSKFitRebaseMaxDegree(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	X := mat.NewCDense(200, 2, nil)
	y := make([]complex128, 200)
	for i := 0; i < 200; i++ {
		x1, x2 := rng.Float64(), rng.Float64()
		X.Set(i, 0, complex(x1, 0))
		X.Set(i, 1, complex(x2, 0))
		y[i] = complex((1+x1*x2)/(2+x1), 0)
	}
	res, err := SKFitRebase(X, y, basis.MaxDegree(1, 1), basis.MaxDegree(1, 1), quiet())
	require.NoError(t, err)
	assert.Less(t, res.Residual, 1e-8)

	pred, err := res.Eval(mat.NewCDense(1, 2, []complex128{0.5, 0.25}))
	require.NoError(t, err)
	assert.InDelta(t, (1+0.125)/2.5, real(pred[0]), 1e-8)
}

func TestSKFitBestResidualNeverExceedsFirst(t *testing.T) {
	X := cellMidpoints(-1, 1, 60)
	y := apply(X, func(x complex128) complex128 { return cmplx.Exp(x) * cmplx.Sin(3*x) / (1.2 + x) })
	captureWarnings(t)

	tests := []struct {
		name string
		run  func() ([]Step, float64, error)
	}{
		{"fixed basis", func() ([]Step, float64, error) {
			res, err := SKFit(y, monomials(X, 3), monomials(X, 3), WithHistory(true), WithTol(0), WithMaxIter(8), quiet())
			if err != nil {
				return nil, 0, err
			}
			return res.History, res.Residual, nil
		}},
		{"rebase", func() ([]Step, float64, error) {
			res, err := SKFitRebase(X, y, basis.TotalDegree(3), basis.TotalDegree(3), WithHistory(true), WithTol(0), WithMaxIter(8), quiet())
			if err != nil {
				return nil, 0, err
			}
			return res.History, res.Residual, nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist, best, err := tt.run()
			require.NoError(t, err)
			require.NotEmpty(t, hist)
			assert.LessOrEqual(t, best, hist[0].Residual)

			bests := BestResiduals(hist)
			for i := 1; i < len(bests); i++ {
				assert.LessOrEqual(t, bests[i], bests[i-1])
			}
			assert.Equal(t, best, bests[len(bests)-1])

			minRes := math.Inf(1)
			for _, r := range Residuals(hist) {
				if !math.IsNaN(r) {
					minRes = math.Min(minRes, r)
				}
			}
			assert.Equal(t, minRes, best)
			assert.Len(t, DeltaFits(hist), len(hist))
		})
	}
}

func TestSKFitZeroIterationsSolvesOnce(t *testing.T) {
	X := cellMidpoints(-1, 1, 20)
	y := apply(X, func(x complex128) complex128 { return cmplx.Cos(2 * x) })
	P, Q := monomials(X, 2), monomials(X, 2)
	warnings := captureWarnings(t)

	res, err := SKFit(y, P, Q, WithMaxIter(0), quiet())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 0, res.BestIteration)
	assert.Empty(t, warnings())

	negY := make([]complex128, len(y))
	for i, v := range y {
		negY[i] = -v
	}
	x, _, err := pnorm.Minimize(cmat.HStack(P, cmat.ScaleRows(negY, Q)), pnorm.Two)
	require.NoError(t, err)
	assert.Equal(t, x[:3], res.A)
	assert.Equal(t, x[3:], res.B)

	// a tolerance met on the first pass gives the same answer
	loose, err := SKFit(y, P, Q, WithTol(math.Inf(1)), quiet())
	require.NoError(t, err)
	assert.Equal(t, 1, loose.Iterations)
	assert.True(t, loose.Converged)
	assert.Equal(t, res.A, loose.A)
	assert.Equal(t, res.B, loose.B)
}

func TestSKFitRebaseDenominatorStaysPositive(t *testing.T) {
	X := cellMidpoints(-1, 1, 80)
	y := apply(X, func(x complex128) complex128 { return cmplx.Tanh(4 * x) })
	captureWarnings(t)

	res, err := SKFitRebase(X, y, basis.TotalDegree(5), basis.TotalDegree(5),
		WithHistory(true), WithTol(0), WithMaxIter(6), quiet())
	require.NoError(t, err)
	require.NotEmpty(t, res.History)
	for _, st := range res.History {
		require.Len(t, st.Denom, 80)
		for _, d := range st.Denom {
			assert.Zero(t, imag(d))
			assert.Greater(t, real(d), 0.0)
		}
	}
}

func TestConvergenceWarning(t *testing.T) {
	warnings := captureWarnings(t)
	X := cellMidpoints(-1, 1, 30)
	y := apply(X, func(x complex128) complex128 { return complex(cmplx.Abs(x), 0) })

	res, err := SKFit(y, monomials(X, 2), monomials(X, 2), WithMaxIter(3), WithTol(0), quiet())
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 3, res.Iterations)

	got := warnings()
	require.Len(t, got, 1)
	var cw *errors.ConvergenceWarning
	require.True(t, errors.As(got[0], &cw))
	assert.Equal(t, "SKFit", cw.Algorithm)
	assert.Equal(t, 3, cw.Iterations)
	assert.Equal(t, res.Residual, cw.Residual)
}

func TestUnsupportedNorm(t *testing.T) {
	X := cellMidpoints(-1, 1, 10)
	y := apply(X, inverseShift)
	var normErr *errors.UnsupportedNormError

	res, err := SKFit(y, monomials(X, 1), monomials(X, 1), WithNorm(1))
	assert.Nil(t, res)
	assert.True(t, errors.As(err, &normErr))

	rres, err := SKFitRebase(X, y, basis.TotalDegree(1), basis.TotalDegree(1), WithNorm(1))
	assert.Nil(t, rres)
	assert.True(t, errors.As(err, &normErr))
}

func TestInputValidation(t *testing.T) {
	X := cellMidpoints(-1, 1, 10)
	y := apply(X, inverseShift)
	P := monomials(X, 1)
	var dimErr *errors.DimensionError
	var valErr *errors.ValidationError

	_, err := SKFit(y[:9], P, P)
	assert.True(t, errors.As(err, &dimErr))

	_, err = SKFit(y, P, monomials(cellMidpoints(-1, 1, 9), 1))
	assert.True(t, errors.As(err, &dimErr))

	_, err = SKFit(y, P, P, WithDenom0(make([]complex128, 3)))
	assert.True(t, errors.As(err, &dimErr))

	_, err = SKFit(y, P, P, WithMaxIter(-1))
	assert.True(t, errors.As(err, &valErr))

	_, err = SKFit(y, P, P, WithTol(-1))
	assert.True(t, errors.As(err, &valErr))

	_, err = SKFitRebase(X, y[:5], basis.TotalDegree(1), basis.TotalDegree(1))
	assert.True(t, errors.As(err, &dimErr))

	neg := make([]complex128, 10)
	for i := range neg {
		neg[i] = -1
	}
	_, err = SKFitRebase(X, y, basis.TotalDegree(1), basis.TotalDegree(1), WithDenom0(neg))
	assert.True(t, errors.As(err, &valErr))

	_, err = SKFit(nil, mat.NewCDense(1, 1, nil), mat.NewCDense(1, 1, nil))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestSKFitWithDenom0(t *testing.T) {
	X := cellMidpoints(-1, 1, 40)
	y := apply(X, inverseShift)
	denom := make([]complex128, 40)
	for i := range denom {
		denom[i] = 1 + X.At(i, 0)
	}
	res, err := SKFit(y, monomials(X, 1), monomials(X, 1), WithDenom0(denom), WithHistory(true), quiet())
	require.NoError(t, err)
	assert.Less(t, res.Residual, 1e-6)
	assert.Equal(t, denom, res.History[0].Denom)

	rres, err := SKFitRebase(X, y, basis.TotalDegree(1), basis.TotalDegree(1), WithDenom0(denom), quiet())
	require.NoError(t, err)
	assert.Less(t, rres.Residual, 1e-6)
}

func TestSKFitRebaseFirstIterationFailure(t *testing.T) {
	X := mat.NewCDense(10, 1, nil) // every point at the origin
	y := make([]complex128, 10)
	for i := range y {
		y[i] = 1
	}
	res, err := SKFitRebase(X, y, basis.TotalDegree(1), basis.TotalDegree(1), quiet())
	assert.Nil(t, res)
	var numErr *errors.NumericalError
	require.True(t, errors.As(err, &numErr))
	assert.Equal(t, 0, numErr.Iteration)
	assert.True(t, errors.Is(err, errors.ErrRankDeficient))
}

func TestReporters(t *testing.T) {
	X := cellMidpoints(-1, 1, 30)
	y := apply(X, inverseShift)

	rec := &Recorder{}
	res, err := SKFitRebase(X, y, basis.TotalDegree(1), basis.TotalDegree(1), WithReporter(rec), quiet())
	require.NoError(t, err)
	require.Len(t, rec.Records, res.Iterations)
	for i, r := range rec.Records {
		assert.Equal(t, i, r.Iter)
	}

	var buf bytes.Buffer
	_, err = SKFit(y, monomials(X, 1), monomials(X, 1), WithReporter(NewTableReporter(&buf)), quiet())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "iter")
	assert.Contains(t, lines[0], "residual norm")
	assert.Contains(t, lines[0], "delta fit")
	assert.Contains(t, lines[0], "cond")
	assert.True(t, strings.HasPrefix(lines[2], "   0 "), lines[2])
	assert.Regexp(t, `^\s+0 \d\.\d{15}e[+-]\d{2} `, lines[2])

	var calls int
	_, err = SKFit(y, monomials(X, 1), monomials(X, 1), WithReporter(ReporterFunc(func(Record) { calls++ })), quiet())
	require.NoError(t, err)
	assert.Greater(t, calls, 0)

	logger, logBuf := log.NewTestLogger(log.LevelDebug)
	_, err = SKFit(y, monomials(X, 1), monomials(X, 1), WithReporter(NewLogReporter(logger)), quiet())
	require.NoError(t, err)
	assert.Contains(t, logBuf.String(), "sk iteration")
	assert.True(t, logger.ContainsField(log.IterationKey, float64(0)))
}

func TestSKFitRebaseLogsProgress(t *testing.T) {
	logger, buf := log.NewTestLogger(log.LevelDebug)
	X := cellMidpoints(-1, 1, 20)
	y := apply(X, inverseShift)
	_, err := SKFitRebase(X, y, basis.TotalDegree(1), basis.TotalDegree(1), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "starting SK iteration with rebasing")
	assert.True(t, logger.ContainsField(log.ConvergedKey, true))
}
