package model

import (
	"encoding/json"
	"fmt"
)

// Complex は JSON で [実部, 虚部] として表現される複素数
type Complex [2]float64

// PackComplex は複素数スライスをシリアライズ用の形式に変換する
func PackComplex(v []complex128) []Complex {
	out := make([]Complex, len(v))
	for i, z := range v {
		out[i] = Complex{real(z), imag(z)}
	}
	return out
}

// UnpackComplex は PackComplex の逆変換
func UnpackComplex(v []Complex) []complex128 {
	out := make([]complex128, len(v))
	for i, z := range v {
		out[i] = complex(z[0], z[1])
	}
	return out
}

// PolynomialWeights は多項式一つ分の重み
type PolynomialWeights struct {
	// Basis は基底の状態（basis パッケージの Spec を JSON 化したもの）
	Basis json.RawMessage `json:"basis"`

	// Coefficients は基底に対する係数
	Coefficients []Complex `json:"coefficients"`
}

// Weights は有理関数近似の重みを表す構造体（シリアライゼーション用）
type Weights struct {
	// ModelType はモデルの種類（RationalApproximation, PolynomialApproximation）
	ModelType string `json:"model_type"`

	// Version はモデルのバージョン（互換性チェック用）
	Version string `json:"version"`

	// ID は推定器インスタンスの識別子
	ID string `json:"id,omitempty"`

	Numerator   *PolynomialWeights `json:"numerator,omitempty"`
	Denominator *PolynomialWeights `json:"denominator,omitempty"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Metadata は追加のメタデータ（学習時の残差等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はWeightsをJSON形式にシリアライズ
func (w *Weights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(w, "", "  ")
}

// FromJSON はJSON形式からWeightsをデシリアライズ
func (w *Weights) FromJSON(data []byte) error {
	return json.Unmarshal(data, w)
}

// Validate はWeightsの妥当性を検証
// 分母を持たないモデル（多項式近似）では Denominator は nil でよい
func (w *Weights) Validate() error {
	if w.ModelType == "" {
		return fmt.Errorf("model_type is required")
	}
	if w.Version == "" {
		return fmt.Errorf("version is required")
	}
	if !w.IsFitted {
		if w.Numerator != nil || w.Denominator != nil {
			return fmt.Errorf("unfitted model should not have coefficients")
		}
		return nil
	}
	if w.Numerator == nil || len(w.Numerator.Coefficients) == 0 {
		return fmt.Errorf("fitted model must have numerator coefficients")
	}
	if len(w.Numerator.Basis) == 0 {
		return fmt.Errorf("fitted model must have a numerator basis")
	}
	if w.Denominator != nil && (len(w.Denominator.Coefficients) == 0 || len(w.Denominator.Basis) == 0) {
		return fmt.Errorf("denominator must have a basis and coefficients")
	}
	return nil
}

// Clone はWeightsのディープコピーを作成
func (w *Weights) Clone() *Weights {
	clone := &Weights{
		ModelType:       w.ModelType,
		Version:         w.Version,
		ID:              w.ID,
		IsFitted:        w.IsFitted,
		Numerator:       w.Numerator.clone(),
		Denominator:     w.Denominator.clone(),
		Hyperparameters: make(map[string]interface{}, len(w.Hyperparameters)),
		Metadata:        make(map[string]interface{}, len(w.Metadata)),
	}
	for k, v := range w.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range w.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

func (p *PolynomialWeights) clone() *PolynomialWeights {
	if p == nil {
		return nil
	}
	out := &PolynomialWeights{
		Basis:        append(json.RawMessage(nil), p.Basis...),
		Coefficients: append([]Complex(nil), p.Coefficients...),
	}
	return out
}
