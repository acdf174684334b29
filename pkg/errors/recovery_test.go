package errors

import (
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "arnoldi")
		panic("test panic message")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "arnoldi" {
		t.Errorf("Expected operation 'arnoldi', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if err.Error() != "panic in arnoldi: test panic message" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "arnoldi")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "svd")
		err = ErrSingularMatrix
		panic("panic after error")
	}

	err := testFunc()
	if !Is(err, ErrSingularMatrix) {
		t.Errorf("original error should be preserved, got %v", err)
	}
	if !strings.Contains(err.Error(), "singular matrix") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

// gonum panics with mat.ErrShape on dimension mismatch; the recovered error
// must unwrap to it.
func TestSafeExecute_GonumShapePanic(t *testing.T) {
	err := SafeExecute("vandermonde", func() error {
		a := mat.NewDense(2, 3, nil)
		b := mat.NewDense(2, 3, nil)
		var c mat.Dense
		c.Mul(a, b)
		return nil
	})
	if err == nil {
		t.Fatal("expected error from shape panic")
	}
	if !errors.Is(err, mat.ErrShape) {
		t.Errorf("expected errors.Is(err, mat.ErrShape), got %v", err)
	}
}

func TestSafeExecute_PassThrough(t *testing.T) {
	err := SafeExecute("simplex", func() error { return ErrNoSolution })
	if !Is(err, ErrNoSolution) {
		t.Errorf("expected pass-through error, got %v", err)
	}
}
