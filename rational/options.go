package rational

import (
	"io"
	"math"
	"os"

	"github.com/YuminosukeSato/ratfit/basis"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/pkg/log"
	"github.com/YuminosukeSato/ratfit/pnorm"
)

const (
	// DefaultMaxIter is the default iteration budget.
	DefaultMaxIter = 20
	// DefaultTol is the default threshold on the change of the fit between
	// successive iterations.
	DefaultTol = 1e-7
)

// Option configures SKFit, SKFitRebase and Estimator.
type Option func(*config)

type config struct {
	maxIter  int
	tol      float64
	norm     pnorm.Norm
	denom0   []complex128
	history  bool
	verbose  bool
	reporter Reporter
	logger   log.Logger
	samples  int
	kind     basis.Kind
	stdout   io.Writer
}

// WithMaxIter sets the iteration budget. Zero still performs the single
// linearized solve on the initial denominator.
func WithMaxIter(n int) Option {
	return func(c *config) {
		c.maxIter = n
	}
}

// WithTol sets the stopping threshold on ‖fit − fit_prev‖.
func WithTol(tol float64) Option {
	return func(c *config) {
		c.tol = tol
	}
}

// WithNorm selects the norm for the residual and the linearized problem.
func WithNorm(norm pnorm.Norm) Option {
	return func(c *config) {
		c.norm = norm
	}
}

// WithDenom0 sets the initial denominator weight. SKFitRebase requires
// every entry to be real and positive.
func WithDenom0(denom []complex128) Option {
	return func(c *config) {
		c.denom0 = append([]complex128(nil), denom...)
	}
}

// WithHistory records one Step per iteration in the result.
func WithHistory(enabled bool) Option {
	return func(c *config) {
		c.history = enabled
	}
}

// WithVerbose prints the iteration table. Without WithReporter the table
// goes to standard output.
func WithVerbose(enabled bool) Option {
	return func(c *config) {
		c.verbose = enabled
	}
}

// WithReporter sets the sink for per-iteration records. It implies verbose.
func WithReporter(r Reporter) Option {
	return func(c *config) {
		c.reporter = r
		c.verbose = r != nil
	}
}

// WithLogger replaces the package logger.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithSamples sets the polygon size of the complex ∞-norm program.
func WithSamples(n int) Option {
	return func(c *config) {
		c.samples = n
	}
}

// WithBasis selects the basis family used by Estimator. Arnoldi uses the
// basis-rebuilding iteration, every other family the fixed-basis one.
func WithBasis(kind basis.Kind) Option {
	return func(c *config) {
		c.kind = kind
	}
}

func newConfig(op string, opts []Option) (*config, error) {
	c := &config{
		maxIter: DefaultMaxIter,
		tol:     DefaultTol,
		norm:    pnorm.Two,
		samples: pnorm.DefaultSamples,
		kind:    basis.Arnoldi,
		stdout:  os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.norm.Validate(op); err != nil {
		return nil, err
	}
	if c.maxIter < 0 {
		return nil, errors.NewValidationError("maxiter", "must be non-negative", c.maxIter)
	}
	if c.tol < 0 || math.IsNaN(c.tol) {
		return nil, errors.NewValidationError("xtol", "must be non-negative", c.tol)
	}
	if c.samples < 3 {
		return nil, errors.NewValidationError("samples", "at least three angles are required", c.samples)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("rational")
	}
	if c.verbose && c.reporter == nil {
		c.reporter = NewTableReporter(c.stdout)
	}
	return c, nil
}

// iterations is the number of passes the loop may make.
func (c *config) iterations() int {
	return max(c.maxIter, 1)
}

func (c *config) minimizeOptions() []pnorm.Option {
	return []pnorm.Option{pnorm.WithSamples(c.samples)}
}
