// Package ratfit fits rational functions p(x)/q(x) to sampled data with the
// Sanathanan-Koerner (SK) iteration.
//
// Inputs may be real or complex, of any dimension, and the residual may be
// minimized in the 2-norm or the ∞-norm. The API follows the estimator shape
// of scikit-learn: construct, Fit, then Predict and Score.
//
// # Installation
//
//	go get github.com/YuminosukeSato/ratfit
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/ratfit/basis"
//	    "github.com/YuminosukeSato/ratfit/core/cmat"
//	    "github.com/YuminosukeSato/ratfit/rational"
//	)
//
//	func main() {
//	    x := []float64{-0.9, -0.5, 0, 0.5, 0.9}
//	    y := make([]complex128, len(x))
//	    for i, v := range x {
//	        y[i] = complex(1/(1+25*v*v), 0)
//	    }
//	    X := cmat.FromRealSlice(len(x), 1, x)
//
//	    est := rational.NewEstimator(basis.TotalDegree(2), basis.TotalDegree(2))
//	    if err := est.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    poles, _ := est.Poles()
//	    fmt.Println("poles:", poles)
//	}
//
// # Packages
//
//   - rational: SKFit on fixed bases, SKFitRebase with per-iteration Arnoldi
//     bases, and the Estimator wrapping both
//   - pnorm: 2-norm and ∞-norm minimization of ‖A x‖ subject to ‖x‖ = 1
//   - basis: monomial, Legendre, Chebyshev, Hermite, Laguerre and Vandermonde
//     with Arnoldi bases, with derivatives and roots
//   - polynomial: polynomials in a basis and least-norm polynomial fits
//   - metrics: norms and regression errors for complex data
//   - plotting: iteration histories and fitted curves
//   - core/model: estimator interfaces, fitted state and weight persistence
//   - core/cmat: complex matrix helpers
//   - core/parallel: parallel loops over rows
//
// The ratfit command (cmd/ratfit) fits CSV data from the command line.
//
// # Errors and Logging
//
// Errors are typed (pkg/errors) and wrap with stack traces. Iterations log
// through pkg/log, which speaks slog and zerolog; a run that exhausts its
// iteration budget emits a ConvergenceWarning instead of failing.
//
// # License
//
// ratfit is released under the MIT License.
package ratfit
