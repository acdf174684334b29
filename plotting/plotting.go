// Package plotting renders iteration histories and fitted curves with gonum/plot.
package plotting

import (
	"io"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/rational"
)

// Default image size.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// Component は複素数値から描画する実数成分を取り出します。
type Component func(complex128) float64

var (
	Real Component = func(z complex128) float64 { return real(z) }
	Imag Component = func(z complex128) float64 { return imag(z) }
	Abs  Component = cmplx.Abs
)

// ParseComponent maps "real", "imag" and "abs" to a Component.
func ParseComponent(s string) (Component, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "real", "re":
		return Real, nil
	case "imag", "im":
		return Imag, nil
	case "abs", "mag":
		return Abs, nil
	}
	return nil, errors.NewValidationError("component", "must be real, imag or abs", s)
}

// History は反復ごとの残差・最良残差・フィット変化量を対数軸で描画します。
// 正でない値と非有限値は対数軸に載らないため除外されます。
func History(h []rational.Step) (*plot.Plot, error) {
	if len(h) == 0 {
		return nil, errors.ErrEmptyData
	}

	p := plot.New()
	p.Title.Text = "Sanathanan-Koerner iteration"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "norm"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	iters := make([]float64, len(h))
	for i, s := range h {
		iters[i] = float64(s.Iter)
	}

	series := []interface{}{}
	for _, c := range []struct {
		name string
		v    []float64
	}{
		{"residual", rational.Residuals(h)},
		{"best residual", rational.BestResiduals(h)},
		{"delta fit", rational.DeltaFits(h)},
	} {
		xys := positiveXYs(iters, c.v)
		if len(xys) == 0 {
			continue
		}
		series = append(series, c.name, xys)
	}
	if len(series) == 0 {
		return nil, errors.NewValueError("plotting.History", "no positive finite values to plot")
	}
	if err := plotutil.AddLinePoints(p, series...); err != nil {
		return nil, errors.Wrap(err, "plotting.History")
	}
	return p, nil
}

// Fit plots the samples (x, y) as points and the curve (xs, ys) as a line,
// both reduced to the component c.
func Fit(x []float64, y []complex128, xs []float64, ys []complex128, c Component) (*plot.Plot, error) {
	if len(x) != len(y) {
		return nil, errors.NewDimensionError("plotting.Fit", len(x), len(y), 0)
	}
	if len(xs) != len(ys) {
		return nil, errors.NewDimensionError("plotting.Fit", len(xs), len(ys), 0)
	}
	if len(x) == 0 && len(xs) == 0 {
		return nil, errors.ErrEmptyData
	}
	if c == nil {
		c = Real
	}

	p := plot.New()
	p.Title.Text = "rational approximation"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	if len(x) > 0 {
		s, err := plotter.NewScatter(finiteXYs(x, y, c))
		if err != nil {
			return nil, errors.Wrap(err, "plotting.Fit")
		}
		s.GlyphStyle.Color = plotutil.Color(0)
		p.Add(s)
		p.Legend.Add("data", s)
	}
	if len(xs) > 0 {
		l, err := plotter.NewLine(finiteXYs(xs, ys, c))
		if err != nil {
			return nil, errors.Wrap(err, "plotting.Fit")
		}
		l.Color = plotutil.Color(1)
		p.Add(l)
		p.Legend.Add("fit", l)
	}
	return p, nil
}

// Save writes p to file; the image format follows the file extension.
func Save(p *plot.Plot, file string) error {
	if err := p.Save(DefaultWidth, DefaultHeight, file); err != nil {
		return errors.Wrapf(err, "save plot %s", file)
	}
	return nil
}

// Write renders p in format ("png", "svg", "pdf", ...) to w.
func Write(p *plot.Plot, w io.Writer, format string) error {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return errors.Wrapf(err, "render plot as %s", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write plot")
	}
	return nil
}

func positiveXYs(x, v []float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(v))
	for i, y := range v {
		if y > 0 && !math.IsInf(y, 0) {
			out = append(out, plotter.XY{X: x[i], Y: y})
		}
	}
	return out
}

func finiteXYs(x []float64, y []complex128, c Component) plotter.XYs {
	out := make(plotter.XYs, 0, len(x))
	for i := range x {
		v := c(y[i])
		if math.IsNaN(v) || math.IsInf(v, 0) || math.IsNaN(x[i]) {
			continue
		}
		out = append(out, plotter.XY{X: x[i], Y: v})
	}
	return out
}
