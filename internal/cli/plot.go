package cli

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/plotting"
	"github.com/YuminosukeSato/ratfit/rational"
)

// curvePoints is the resolution of the fitted curve.
const curvePoints = 400

// axisOf projects one dimensional inputs to a plot axis: the real line, or
// the imaginary axis when every input is purely imaginary.
func axisOf(X mat.CMatrix) (t []float64, imaginary bool, err error) {
	rows, dims := X.Dims()
	if dims != 1 {
		return nil, false, errors.NewValueError("plot", "fit plots need one dimensional inputs")
	}
	col := cmat.Col(X, 0)
	if !cmat.IsRealVec(col) {
		for _, z := range col {
			if real(z) != 0 {
				return nil, false, errors.NewValueError("plot", "inputs must lie on the real or the imaginary axis")
			}
		}
		imaginary = true
	}
	t = make([]float64, rows)
	for i, z := range col {
		if imaginary {
			t[i] = imag(z)
		} else {
			t[i] = real(z)
		}
	}
	return t, imaginary, nil
}

func plotFit(file, component string, s *Samples, est *rational.Estimator) error {
	c, err := plotting.ParseComponent(component)
	if err != nil {
		return err
	}
	t, imaginary, err := axisOf(s.X)
	if err != nil {
		return err
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range t {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	ts := make([]float64, curvePoints)
	grid := mat.NewCDense(curvePoints, 1, nil)
	for i := range ts {
		ts[i] = lo + (hi-lo)*float64(i)/float64(curvePoints-1)
		if imaginary {
			grid.Set(i, 0, complex(0, ts[i]))
		} else {
			grid.Set(i, 0, complex(ts[i], 0))
		}
	}
	ys, err := est.Predict(grid)
	if err != nil {
		return err
	}

	p, err := plotting.Fit(t, s.Y, ts, ys, c)
	if err != nil {
		return err
	}
	if imaginary {
		p.X.Label.Text = "Im x"
	}
	return plotting.Save(p, file)
}

func plotHistory(file string, h []rational.Step) error {
	p, err := plotting.History(h)
	if err != nil {
		return err
	}
	return plotting.Save(p, file)
}
