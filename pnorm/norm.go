// Package pnorm solves the linearized subproblem of rational fitting:
//
//	minimize ‖A x‖_p  subject to  ‖x‖₂ = 1
//
// for p = 2 (closed form through the SVD) and p = ∞ (a linear program
// normalized against the 2-norm solution). Complex matrices are handled by
// real embeddings because gonum factorizes real matrices only.
package pnorm

import (
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/ratfit/metrics"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// Norm is the order p of a vector norm.
type Norm float64

const (
	// Two is the Euclidean norm.
	Two Norm = 2
)

// Inf is the maximum-modulus norm.
var Inf = Norm(math.Inf(1))

// ParseNorm accepts "2", "inf", "∞" and any float literal.
func ParseNorm(s string) (Norm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inf", "∞", "+inf", "infinity", "max":
		return Inf, nil
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.NewValidationError("norm", "not a number", s)
	}
	return Norm(p), nil
}

func (p Norm) String() string {
	if math.IsInf(float64(p), 1) {
		return "inf"
	}
	return strconv.FormatFloat(float64(p), 'g', -1, 64)
}

// IsInf reports whether p is the ∞-norm.
func (p Norm) IsInf() bool {
	return math.IsInf(float64(p), 1)
}

// Validate fails with UnsupportedNormError unless p is 2 or ∞.
func (p Norm) Validate(op string) error {
	if p == Two || p.IsInf() {
		return nil
	}
	return errors.NewUnsupportedNormError(op, float64(p))
}

// Of returns ‖v‖_p. NaN entries make the result NaN.
func (p Norm) Of(v []complex128) float64 {
	return metrics.Norm(v, float64(p))
}
