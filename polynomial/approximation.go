package polynomial

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/basis"
	"github.com/YuminosukeSato/ratfit/core/cmat"
	"github.com/YuminosukeSato/ratfit/core/model"
	"github.com/YuminosukeSato/ratfit/metrics"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/pkg/log"
	"github.com/YuminosukeSato/ratfit/pnorm"
)

const modelType = "PolynomialApproximation"

// Option は Approximation を設定する関数
type Option func(*Approximation)

// WithKind は基底の種類を設定する（デフォルトは Arnoldi）
func WithKind(kind basis.Kind) Option {
	return func(a *Approximation) {
		a.kind = kind
	}
}

// WithNorm は近似に用いるノルムを設定する（2 または ∞）
func WithNorm(norm pnorm.Norm) Option {
	return func(a *Approximation) {
		a.norm = norm
	}
}

// WithSamples は複素 ∞-ノルムの線形計画で使う角度の数を設定する
func WithSamples(n int) Option {
	return func(a *Approximation) {
		a.samples = n
	}
}

// Approximation は min ‖P a − y‖ を解く多項式近似
type Approximation struct {
	state *model.StateManager

	degree  basis.Degree
	kind    basis.Kind
	norm    pnorm.Norm
	samples int

	poly   *Polynomial
	logger log.Logger
}

// NewApproximation は新しい多項式近似を作成する
func NewApproximation(degree basis.Degree, opts ...Option) *Approximation {
	a := &Approximation{
		state:   model.NewStateManager(),
		degree:  degree,
		kind:    basis.Arnoldi,
		norm:    pnorm.Two,
		samples: pnorm.DefaultSamples,
		logger:  log.GetLoggerWithName(modelType),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fit は点 X と値 y に多項式を当てはめる
func (a *Approximation) Fit(X mat.CMatrix, y []complex128) error {
	start := time.Now()
	if err := a.norm.Validate("PolynomialApproximation.Fit"); err != nil {
		return err
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PolynomialApproximation.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != r {
		return errors.NewDimensionError("PolynomialApproximation.Fit", r, len(y), 0)
	}

	b, err := basis.New(a.kind, X, a.degree)
	if err != nil {
		return err
	}
	coef, err := pnorm.Fit(b.Basis(), y, a.norm, pnorm.WithSamples(a.samples))
	if err != nil {
		return err
	}
	poly, err := New(b, coef)
	if err != nil {
		return err
	}

	return a.state.WithStateMut(func() error {
		a.poly = poly
		a.state.Fitted = true
		a.state.NDim = c
		a.state.NSamples = r
		a.logger.Debug("polynomial fit complete",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, r,
			log.DimKey, c,
			log.ComplexKey, !cmat.IsReal(X) || !cmat.IsRealVec(y),
			log.BasisKindKey, a.kind.String(),
			log.BasisSizeKey, b.Size(),
			log.NormKey, a.norm.String(),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
		return nil
	})
}

// Predict は学習済みの多項式を X で評価する
func (a *Approximation) Predict(X mat.CMatrix) ([]complex128, error) {
	if err := a.state.RequireFitted(modelType, "Predict"); err != nil {
		return nil, err
	}
	_, c := X.Dims()
	if err := a.state.RequireDim("PolynomialApproximation.Predict", c); err != nil {
		return nil, err
	}
	return a.poly.Eval(X)
}

// Score は決定係数 R² を返す
func (a *Approximation) Score(X mat.CMatrix, y []complex128) (float64, error) {
	pred, err := a.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, pred)
}

// Polynomial は学習済みの多項式を返す
func (a *Approximation) Polynomial() (*Polynomial, error) {
	if err := a.state.RequireFitted(modelType, "Polynomial"); err != nil {
		return nil, err
	}
	return a.poly, nil
}

// IsFitted は学習済みかどうかを返す
func (a *Approximation) IsFitted() bool {
	return a.state.IsFitted()
}

// GetParams はハイパーパラメータを返す
func (a *Approximation) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"degree":  a.degree.String(),
		"basis":   a.kind.String(),
		"norm":    a.norm.String(),
		"samples": a.samples,
	}
}

// ExportWeights は学習済みの係数と基底をエクスポートする
func (a *Approximation) ExportWeights() (*model.Weights, error) {
	if err := a.state.RequireFitted(modelType, "ExportWeights"); err != nil {
		return nil, err
	}
	num, err := a.poly.Weights()
	if err != nil {
		return nil, err
	}
	nDim, nSamples := a.state.GetDimensions()
	return &model.Weights{
		ModelType:       modelType,
		Version:         "1.0.0",
		Numerator:       num,
		Hyperparameters: a.GetParams(),
		Metadata: map[string]interface{}{
			"n_dim":     nDim,
			"n_samples": nSamples,
		},
		IsFitted: true,
	}, nil
}

// ImportWeights はエクスポートされた重みを読み込む
func (a *Approximation) ImportWeights(w *model.Weights) error {
	if w == nil {
		return errors.NewValueError("PolynomialApproximation.ImportWeights", "nil weights")
	}
	if w.ModelType != modelType {
		return errors.NewValueError("PolynomialApproximation.ImportWeights", "model type mismatch: "+w.ModelType)
	}
	if err := w.Validate(); err != nil {
		return errors.Wrap(err, "invalid weights")
	}
	poly, err := FromWeights(w.Numerator)
	if err != nil {
		return err
	}
	return a.state.WithStateMut(func() error {
		a.poly = poly
		a.kind = poly.Basis().Kind()
		a.state.Fitted = true
		a.state.NDim = poly.Basis().Dim()
		a.state.NSamples = metadataInt(w.Metadata, "n_samples")
		return nil
	})
}

// metadataInt reads an integer that may have passed through JSON.
func metadataInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
