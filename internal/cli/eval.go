package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/ratfit/basis"
	"github.com/YuminosukeSato/ratfit/core/model"
	"github.com/YuminosukeSato/ratfit/rational"
)

func loadEstimator(file string) (*rational.Estimator, error) {
	w, err := model.LoadWeights(file)
	if err != nil {
		return nil, err
	}
	est := rational.NewEstimator(basis.Degree{}, basis.Degree{})
	if err := est.ImportWeights(w); err != nil {
		return nil, err
	}
	return est, nil
}

func newEvalCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval MODEL DATA",
		Short: "Evaluate a fitted model at the inputs in DATA",
		Long: `Evaluate a model written by "ratfit fit -o" at the inputs in DATA ("-"
for stdin) and print CSV with the real and imaginary parts of the result.
If DATA also carries a value column the R2 score goes to stderr.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := loadEstimator(args[0])
			if err != nil {
				return err
			}
			s, err := ReadSamplesFile(args[1], est.Numerator().Basis().Dim(), cmd.InOrStdin())
			if err != nil {
				return err
			}
			yhat, err := est.Predict(s.X)
			if err != nil {
				return err
			}
			if err := WritePredictions(cmd.OutOrStdout(), s.Header, s.X, yhat); err != nil {
				return err
			}
			if s.Y != nil {
				if r2 := score(est, s.X, s.Y); r2 != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "R2 %.10g\n", *r2)
				}
			}
			a.logger.Debug("evaluated model", "model", args[0], "rows", s.Len())
			return nil
		},
	}
}

func newPolesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "poles MODEL",
		Short: "Print the poles and zeros of a univariate model as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := loadEstimator(args[0])
			if err != nil {
				return err
			}
			poles, err := est.Poles()
			if err != nil {
				return err
			}
			zeros, err := est.Zeros()
			if err != nil {
				return err
			}
			a.logger.Debug("computed roots", "poles", len(poles), "zeros", len(zeros))
			return writeReport(cmd, "-", &RootsReport{Poles: formatAll(poles), Zeros: formatAll(zeros)})
		},
	}
}
