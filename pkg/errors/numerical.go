package errors

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// NumericalInstabilityError reports NaN or Inf values found where finite
// values are required (for example a basis weight).
type NumericalInstabilityError struct {
	Operation string
	Values    []complex128
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += formatComplex(v)
	}
	return fmt.Sprintf("ratfit: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a stack trace.
func NewNumericalInstabilityError(operation string, values []complex128, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return WithStack(err)
}

// CheckNumericalStability checks if real values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	var bad []complex128
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, complex(v, 0))
			if len(bad) >= 10 {
				break
			}
		}
	}
	if len(bad) > 0 {
		return NewNumericalInstabilityError(operation, bad, iteration)
	}
	return nil
}

// CheckComplex is the complex counterpart of CheckNumericalStability.
func CheckComplex(operation string, values []complex128, iteration int) error {
	var bad []complex128
	for _, v := range values {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			bad = append(bad, v)
			if len(bad) >= 10 {
				// Limit the number of collected values for error message
				break
			}
		}
	}
	if len(bad) > 0 {
		return NewNumericalInstabilityError(operation, bad, iteration)
	}
	return nil
}

// CheckCMatrix checks all entries of a complex matrix for NaN or Inf.
func CheckCMatrix(operation string, m mat.CMatrix, iteration int) error {
	rows, cols := m.Dims()
	var bad []complex128
	for i := 0; i < rows && len(bad) == 0; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if cmplx.IsNaN(v) || cmplx.IsInf(v) {
				bad = append(bad, v)
				if len(bad) >= 10 {
					break
				}
			}
		}
	}
	if len(bad) > 0 {
		return NewNumericalInstabilityError(operation, bad, iteration)
	}
	return nil
}

func formatComplex(v complex128) string {
	if imag(v) == 0 {
		return fmt.Sprintf("%.6g", real(v))
	}
	return fmt.Sprintf("%.6g", v)
}
