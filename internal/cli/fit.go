package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/basis"
	"github.com/YuminosukeSato/ratfit/core/model"
	"github.com/YuminosukeSato/ratfit/pkg/log"
	"github.com/YuminosukeSato/ratfit/pnorm"
	"github.com/YuminosukeSato/ratfit/rational"
)

// FitParameters are the settings of one fit, resolved from flags, env and
// config file.
type FitParameters struct {
	Title       string
	Input       string
	Dims        int
	Numerator   basis.Degree
	Denominator basis.Degree
	Basis       basis.Kind
	Norm        pnorm.Norm
	MaxIter     int
	Tol         float64
	Samples     int
	Output      string
	Report      string
	Plot        string
	HistoryPlot string
	Component   string
	Verbose     bool
	Profile     string
	ProfileDir  string
}

func newFitCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit DATA",
		Short: "Fit a rational function to CSV samples",
		Long: `Fit a rational function to the samples in DATA ("-" for stdin).

Each CSV row holds the inputs followed by the value; cells may be complex,
written as 1+2i. With the arnoldi basis the denominator is re-orthogonalized
every iteration, other bases use a fixed Vandermonde matrix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := a.fitParameters(args[0])
			if err != nil {
				return err
			}
			stop, err := startProfile(fp.Profile, fp.ProfileDir)
			if err != nil {
				return err
			}
			defer stop()
			return runFit(cmd, a.logger, fp)
		},
	}

	f := cmd.Flags()
	f.String("title", "", "title stored in the report")
	f.Int("dims", 1, "number of input columns")
	f.String("num", "2", `numerator degree: total degree "3" or per-dimension "2,3"`)
	f.String("denom", "2", "denominator degree, same format as --num")
	f.String("basis", "arnoldi", "polynomial basis: monomial, legendre, chebyshev, hermite, laguerre or arnoldi")
	f.String("norm", "2", `residual norm: "2" or "inf"`)
	f.Int("maxiter", 20, "maximum number of iterations")
	f.Float64("tol", 1e-7, "stop when the fit changes by less than this")
	f.Int("samples", pnorm.DefaultSamples, "polygon sides for complex inf-norm problems")
	f.StringP("output", "o", "", "write the fitted model as JSON")
	f.String("report", "", `write a YAML summary ("-" for stdout)`)
	f.String("plot", "", "plot data and fit (one dimensional inputs); format from extension")
	f.String("history-plot", "", "plot the iteration history")
	f.String("component", "real", "plotted component: real, imag or abs")
	f.BoolP("verbose", "v", false, "print the iteration table")
	f.String("profile", "", "profile the fit: cpu, mem, block, mutex or trace")
	f.String("profile-dir", ".", "directory for profile output")
	return cmd
}

func (a *app) fitParameters(input string) (*FitParameters, error) {
	v := a.v
	fp := &FitParameters{
		Title:       v.GetString("title"),
		Input:       input,
		Dims:        v.GetInt("dims"),
		MaxIter:     v.GetInt("maxiter"),
		Tol:         v.GetFloat64("tol"),
		Samples:     v.GetInt("samples"),
		Output:      v.GetString("output"),
		Report:      v.GetString("report"),
		Plot:        v.GetString("plot"),
		HistoryPlot: v.GetString("history-plot"),
		Component:   v.GetString("component"),
		Verbose:     v.GetBool("verbose"),
		Profile:     v.GetString("profile"),
		ProfileDir:  v.GetString("profile-dir"),
	}
	var err error
	if fp.Numerator, err = basis.ParseDegree(v.GetString("num")); err != nil {
		return nil, err
	}
	if fp.Denominator, err = basis.ParseDegree(v.GetString("denom")); err != nil {
		return nil, err
	}
	if fp.Basis, err = basis.ParseKind(v.GetString("basis")); err != nil {
		return nil, err
	}
	if fp.Norm, err = pnorm.ParseNorm(v.GetString("norm")); err != nil {
		return nil, err
	}
	return fp, nil
}

// Options returns the estimator options of fp.
func (fp *FitParameters) Options(l log.Logger) []rational.Option {
	return []rational.Option{
		rational.WithBasis(fp.Basis),
		rational.WithNorm(fp.Norm),
		rational.WithMaxIter(fp.MaxIter),
		rational.WithTol(fp.Tol),
		rational.WithSamples(fp.Samples),
		rational.WithHistory(fp.HistoryPlot != ""),
		rational.WithLogger(l),
	}
}

func runFit(cmd *cobra.Command, logger log.Logger, fp *FitParameters) error {
	start := time.Now()
	s, err := ReadSamplesFile(fp.Input, fp.Dims, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if s.Y == nil {
		return fmt.Errorf("%s has no value column", fp.Input)
	}

	opts := fp.Options(log.GetLoggerWithName("rational"))
	if fp.Verbose {
		opts = append(opts, rational.WithReporter(rational.NewTableReporter(cmd.OutOrStdout())))
	}
	est := rational.NewEstimator(fp.Numerator, fp.Denominator, opts...)
	if err := est.Fit(s.X, s.Y); err != nil {
		return err
	}
	if err := est.Interrupted(); err != nil {
		logger.Warn("iteration interrupted, keeping best iterate", err)
	}

	if fp.Output != "" {
		w, err := est.ExportWeights()
		if err != nil {
			return err
		}
		if err := model.SaveWeights(w, fp.Output); err != nil {
			return err
		}
		logger.Info("model saved", "file", fp.Output)
	}
	if fp.Report != "" {
		if err := writeReport(cmd, fp.Report, newFitReport(fp, s, est)); err != nil {
			return err
		}
	}
	if fp.Plot != "" {
		if err := plotFit(fp.Plot, fp.Component, s, est); err != nil {
			return err
		}
	}
	if fp.HistoryPlot != "" {
		if err := plotHistory(fp.HistoryPlot, est.History()); err != nil {
			return err
		}
	}

	logger.Info("fit finished",
		log.SamplesKey, s.Len(),
		log.BestResidualKey, est.Residual(),
		log.IterationKey, est.Iterations(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// finite returns a pointer to v, or nil when v cannot be encoded.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func score(est *rational.Estimator, X mat.CMatrix, y []complex128) *float64 {
	r2, err := est.Score(X, y)
	if err != nil {
		return nil
	}
	return finite(r2)
}
