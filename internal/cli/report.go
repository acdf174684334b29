package cli

import (
	"os"
	"strconv"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/rational"
)

// FitReport summarizes a fit. It is written as YAML; complex numbers are
// rendered as strings like "(1-2i)".
type FitReport struct {
	Title       string   `json:"title,omitempty"`
	ID          string   `json:"id"`
	Input       string   `json:"input"`
	Samples     int      `json:"samples"`
	Dims        int      `json:"dims"`
	Basis       string   `json:"basis"`
	Norm        string   `json:"norm"`
	Numerator   string   `json:"numerator"`
	Denominator string   `json:"denominator"`
	Residual    *float64 `json:"residual"`
	R2          *float64 `json:"r2,omitempty"`
	Iterations  int      `json:"iterations"`
	Converged   bool     `json:"converged"`
	Interrupted string   `json:"interrupted,omitempty"`
	Poles       []string `json:"poles,omitempty"`
	Zeros       []string `json:"zeros,omitempty"`
	Model       string   `json:"model,omitempty"`
}

// RootsReport lists the poles and zeros of a univariate model.
type RootsReport struct {
	Poles []string `json:"poles"`
	Zeros []string `json:"zeros"`
}

func newFitReport(fp *FitParameters, s *Samples, est *rational.Estimator) *FitReport {
	r := &FitReport{
		Title:       fp.Title,
		ID:          est.ID(),
		Input:       fp.Input,
		Samples:     s.Len(),
		Dims:        fp.Dims,
		Basis:       fp.Basis.String(),
		Norm:        fp.Norm.String(),
		Numerator:   fp.Numerator.String(),
		Denominator: fp.Denominator.String(),
		Residual:    finite(est.Residual()),
		R2:          score(est, s.X, s.Y),
		Iterations:  est.Iterations(),
		Converged:   est.Converged(),
		Model:       fp.Output,
	}
	if err := est.Interrupted(); err != nil {
		r.Interrupted = err.Error()
	}
	if fp.Dims == 1 {
		if poles, err := est.Poles(); err == nil {
			r.Poles = formatAll(poles)
		}
		if zeros, err := est.Zeros(); err == nil {
			r.Zeros = formatAll(zeros)
		}
	}
	return r
}

func formatAll(z []complex128) []string {
	out := make([]string, len(z))
	for i, v := range z {
		out[i] = strconv.FormatComplex(v, 'g', 12, 128)
	}
	return out
}

// writeReport marshals v as YAML to file, or to the command output for "-".
func writeReport(cmd *cobra.Command, file string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	if file == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return errors.Wrapf(err, "write report %s", file)
	}
	return nil
}

// ReadFitReport parses a report written by the fit command.
func ReadFitReport(data []byte) (*FitReport, error) {
	r := &FitReport{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, errors.Wrap(err, "parse report")
	}
	return r, nil
}
