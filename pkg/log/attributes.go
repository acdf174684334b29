// Standard attribute keys for fitting operations.
//
// Keys follow a hierarchical naming convention ("sk.residual",
// "data.samples") so that log lines from the engines, the estimator and the
// CLI can be filtered together.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "RationalApproximation".
	ModelNameKey = "model.name"

	// EstimatorIDKey is the unique id of an estimator instance (a UUID).
	EstimatorIDKey = "estimator.id"

	// OperationKey is the operation being performed: "fit", "predict", "score".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package doing the work: "rational", "pnorm", "basis".
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of sample points M.
	SamplesKey = "data.samples"

	// DimKey is the input dimension of the sample points.
	DimKey = "data.dim"

	// ComplexKey is true when the linear system is complex.
	ComplexKey = "data.complex"
)

// SK iteration diagnostics.
const (
	// IterationKey is the zero-based iteration index.
	IterationKey = "sk.iteration"

	// ResidualKey is the residual norm of the current iterate.
	ResidualKey = "sk.residual"

	// BestResidualKey is the smallest residual seen so far.
	BestResidualKey = "sk.best_residual"

	// DeltaFitKey is the norm of the change in fitted values.
	DeltaFitKey = "sk.delta_fit"

	// CondKey is the condition estimate reported by the subproblem solver.
	CondKey = "sk.cond"

	// NormKey is the norm ("2" or "inf") used for the linearized problem.
	NormKey = "sk.norm"

	// NumDegreeKey and DenomDegreeKey describe the fitted degrees.
	NumDegreeKey   = "sk.num_degree"
	DenomDegreeKey = "sk.denom_degree"

	// ConvergedKey is true when the tolerance was met.
	ConvergedKey = "sk.converged"
)

// Basis construction.
const (
	BasisKindKey = "basis.kind"
	BasisSizeKey = "basis.size"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records the coefficient of determination of a fit.
	R2ScoreKey = "metrics.r2_score"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorUnsupportedNorm   = "UNSUPPORTED_NORM"
	ErrorNumerical         = "NUMERICAL_FAILURE"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
)
