// Package model defines the estimator interfaces shared by the fitted
// approximations and scalers, along with their fitted-state bookkeeping and
// weight serialization.
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
// X は M×dim のサンプル点、y は長さ M の目的値
type Fitter interface {
	Fit(X mat.CMatrix, y []complex128) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	Predict(X mat.CMatrix) ([]complex128, error)
}

// Scorer はモデルの評価を行うインターフェース
type Scorer interface {
	// Score は決定係数 R² を返す
	Score(X mat.CMatrix, y []complex128) (float64, error)
}

// Regressor は回帰モデルのインターフェース
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.CMatrix) error

	// Transform はデータを変換する
	Transform(X mat.CMatrix) (*mat.CDense, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.CMatrix) (*mat.CDense, error)

	// InverseTransform は変換を元に戻す
	InverseTransform(X mat.CMatrix) (*mat.CDense, error)
}

// ParameterGetter はハイパーパラメータを取得するインターフェース
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// Persistable は重みのエクスポート/インポートに対応したモデル
type Persistable interface {
	ExportWeights() (*Weights, error)
	ImportWeights(w *Weights) error
}
