package pnorm

import "github.com/YuminosukeSato/ratfit/pkg/errors"

const (
	// DefaultSamples is the number of half-planes approximating the complex
	// modulus bound in the ∞-norm linear program.
	DefaultSamples = 360
	// DefaultLPTol is the tolerance passed to the simplex solver.
	DefaultLPTol = 1e-10
)

// Option configures Minimize and the polynomial fits.
type Option func(*config)

type config struct {
	samples int
	lpTol   float64
}

// WithSamples sets the number of angles used to approximate |z| ≤ t by a
// polygon in the complex ∞-norm program.
func WithSamples(n int) Option {
	return func(c *config) {
		c.samples = n
	}
}

// WithLPTol sets the simplex tolerance.
func WithLPTol(tol float64) Option {
	return func(c *config) {
		c.lpTol = tol
	}
}

func newConfig(opts []Option) (*config, error) {
	c := &config{samples: DefaultSamples, lpTol: DefaultLPTol}
	for _, opt := range opts {
		opt(c)
	}
	if c.samples < 3 {
		return nil, errors.NewValidationError("samples", "at least three angles are required", c.samples)
	}
	if c.lpTol < 0 {
		return nil, errors.NewValidationError("lpTol", "must be non-negative", c.lpTol)
	}
	return c, nil
}
