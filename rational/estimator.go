package rational

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/basis"
	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/core/model"
	"github.com/YuminosukeSato/ratfit/metrics"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/pkg/log"
	"github.com/YuminosukeSato/ratfit/polynomial"
)

const modelType = "RationalApproximation"

// Estimator は SK 反復による有理関数近似 P(x)/Q(x)
//
// Arnoldi 基底（デフォルト）では反復ごとに基底を作り直す SKFitRebase を、
// それ以外の基底では固定基底の SKFit を使う。
type Estimator struct {
	state *model.StateManager
	id    string

	numDegree   basis.Degree
	denomDegree basis.Degree
	opts        []Option
	cfg         *config

	numerator   *polynomial.Polynomial
	denominator *polynomial.Polynomial
	residual    float64
	iterations  int
	converged   bool
	history     []Step
	interrupted error

	logger log.Logger
}

// NewEstimator は分子・分母の次数を指定して推定器を作成する
func NewEstimator(num, denom basis.Degree, opts ...Option) *Estimator {
	return &Estimator{
		state:       model.NewStateManager(),
		id:          uuid.New().String(),
		numDegree:   num,
		denomDegree: denom,
		opts:        append([]Option(nil), opts...),
		logger:      log.GetLoggerWithName(modelType),
	}
}

// ID は推定器インスタンスの識別子を返す
func (e *Estimator) ID() string {
	return e.id
}

// Fit は点 X（M×dim）と値 y に有理関数を当てはめる
func (e *Estimator) Fit(X mat.CMatrix, y []complex128) error {
	start := time.Now()
	cfg, err := newConfig("RationalApproximation.Fit", e.opts)
	if err != nil {
		return err
	}
	M, dim := X.Dims()
	logger := e.logger.With(log.EstimatorIDKey, e.id)

	var (
		num, den    *polynomial.Polynomial
		residual    float64
		iterations  int
		converged   bool
		history     []Step
		interrupted error
	)
	if cfg.kind == basis.Arnoldi {
		res, err := SKFitRebase(X, y, e.numDegree, e.denomDegree, e.opts...)
		if err != nil {
			logger.Error("fit failed", err, log.OperationKey, log.OperationFit)
			return err
		}
		num, den = res.Numerator, res.Denominator
		residual, iterations, converged = res.Residual, res.Iterations, res.Converged
		history, interrupted = res.History, res.Interrupted
	} else {
		numBasis, err := basis.New(cfg.kind, X, e.numDegree)
		if err != nil {
			return err
		}
		denBasis, err := basis.New(cfg.kind, X, e.denomDegree)
		if err != nil {
			return err
		}
		res, err := SKFit(y, numBasis.Basis(), denBasis.Basis(), e.opts...)
		if err != nil {
			logger.Error("fit failed", err, log.OperationKey, log.OperationFit)
			return err
		}
		if num, err = polynomial.New(numBasis, res.A); err != nil {
			return err
		}
		if den, err = polynomial.New(denBasis, res.B); err != nil {
			return err
		}
		residual, iterations, converged = res.Residual, res.Iterations, res.Converged
		history = res.History
	}

	return e.state.WithStateMut(func() error {
		e.cfg = cfg
		e.numerator, e.denominator = num, den
		e.residual, e.iterations, e.converged = residual, iterations, converged
		e.history, e.interrupted = history, interrupted
		e.state.Fitted = true
		e.state.NDim = dim
		e.state.NSamples = M

		logger.Info("rational fit complete",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, M,
			log.DimKey, dim,
			log.BasisKindKey, cfg.kind.String(),
			log.NumDegreeKey, e.numDegree.String(),
			log.DenomDegreeKey, e.denomDegree.String(),
			log.BestResidualKey, residual,
			log.IterationKey, iterations,
			log.ConvergedKey, converged,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
		return nil
	})
}

// Predict は学習済みの有理関数を X で評価する
func (e *Estimator) Predict(X mat.CMatrix) ([]complex128, error) {
	if err := e.state.RequireFitted(modelType, "Predict"); err != nil {
		return nil, err
	}
	_, dim := X.Dims()
	if err := e.state.RequireDim("RationalApproximation.Predict", dim); err != nil {
		return nil, err
	}
	p, err := e.numerator.Eval(X)
	if err != nil {
		return nil, err
	}
	q, err := e.denominator.Eval(X)
	if err != nil {
		return nil, err
	}
	return cmat.Divide(p, q), nil
}

// Score は決定係数 R² を返す
func (e *Estimator) Score(X mat.CMatrix, y []complex128) (float64, error) {
	pred, err := e.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, pred)
}

// Poles は分母の零点を返す（1次元入力のみ）
func (e *Estimator) Poles() ([]complex128, error) {
	if err := e.state.RequireFitted(modelType, "Poles"); err != nil {
		return nil, err
	}
	return e.denominator.Roots()
}

// Zeros は分子の零点を返す（1次元入力のみ）
func (e *Estimator) Zeros() ([]complex128, error) {
	if err := e.state.RequireFitted(modelType, "Zeros"); err != nil {
		return nil, err
	}
	return e.numerator.Roots()
}

// Numerator は学習済みの分子多項式を返す
func (e *Estimator) Numerator() *polynomial.Polynomial { return e.numerator }

// Denominator は学習済みの分母多項式を返す
func (e *Estimator) Denominator() *polynomial.Polynomial { return e.denominator }

// Residual は最良反復の残差ノルム
func (e *Estimator) Residual() float64 { return e.residual }

// Iterations は実行した反復回数
func (e *Estimator) Iterations() int { return e.iterations }

// Converged は許容誤差に到達したかどうか
func (e *Estimator) Converged() bool { return e.converged }

// History は WithHistory(true) のときの反復履歴
func (e *Estimator) History() []Step { return e.history }

// Interrupted は反復を途中で打ち切った数値エラー（なければ nil）
func (e *Estimator) Interrupted() error { return e.interrupted }

// IsFitted は学習済みかどうかを返す
func (e *Estimator) IsFitted() bool {
	return e.state.IsFitted()
}

// GetParams はハイパーパラメータを返す
func (e *Estimator) GetParams() map[string]interface{} {
	cfg := e.cfg
	if cfg == nil {
		var err error
		if cfg, err = newConfig("RationalApproximation.GetParams", e.opts); err != nil {
			return map[string]interface{}{
				"num_degree":   e.numDegree.String(),
				"denom_degree": e.denomDegree.String(),
			}
		}
	}
	return map[string]interface{}{
		"num_degree":   e.numDegree.String(),
		"denom_degree": e.denomDegree.String(),
		"basis":        cfg.kind.String(),
		"norm":         cfg.norm.String(),
		"maxiter":      cfg.maxIter,
		"xtol":         cfg.tol,
	}
}

// ExportWeights は学習済みの分子・分母をエクスポートする
func (e *Estimator) ExportWeights() (*model.Weights, error) {
	if err := e.state.RequireFitted(modelType, "ExportWeights"); err != nil {
		return nil, err
	}
	num, err := e.numerator.Weights()
	if err != nil {
		return nil, err
	}
	den, err := e.denominator.Weights()
	if err != nil {
		return nil, err
	}
	nDim, nSamples := e.state.GetDimensions()
	return &model.Weights{
		ModelType:       modelType,
		Version:         "1.0.0",
		ID:              e.id,
		Numerator:       num,
		Denominator:     den,
		Hyperparameters: e.GetParams(),
		Metadata: map[string]interface{}{
			"residual":   e.residual,
			"iterations": e.iterations,
			"converged":  e.converged,
			"n_dim":      nDim,
			"n_samples":  nSamples,
		},
		IsFitted: true,
	}, nil
}

// ImportWeights はエクスポートされた重みから推定器を復元する
func (e *Estimator) ImportWeights(w *model.Weights) error {
	if w == nil {
		return errors.NewValueError("RationalApproximation.ImportWeights", "nil weights")
	}
	if w.ModelType != modelType {
		return errors.NewValueError("RationalApproximation.ImportWeights", "model type mismatch: "+w.ModelType)
	}
	if err := w.Validate(); err != nil {
		return errors.Wrap(err, "invalid weights")
	}
	if w.Denominator == nil {
		return errors.NewValueError("RationalApproximation.ImportWeights", "missing denominator")
	}
	num, err := polynomial.FromWeights(w.Numerator)
	if err != nil {
		return err
	}
	den, err := polynomial.FromWeights(w.Denominator)
	if err != nil {
		return err
	}
	if num.Basis().Dim() != den.Basis().Dim() {
		return errors.NewDimensionError("RationalApproximation.ImportWeights", num.Basis().Dim(), den.Basis().Dim(), 1)
	}

	return e.state.WithStateMut(func() error {
		if w.ID != "" {
			e.id = w.ID
		}
		e.numerator, e.denominator = num, den
		e.residual = metadataFloat(w.Metadata, "residual")
		e.iterations = int(metadataFloat(w.Metadata, "iterations"))
		e.converged, _ = w.Metadata["converged"].(bool)
		e.history, e.interrupted = nil, nil
		e.state.Fitted = true
		e.state.NDim = num.Basis().Dim()
		e.state.NSamples = int(metadataFloat(w.Metadata, "n_samples"))
		return nil
	})
}

func metadataFloat(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
