// Package preprocessing は多項式基底の条件数を改善するための
// アフィン変換スケーラーを提供する。
//
// すべてのスケーラーは各列 j を x' = (x − Shift[j]) / Scale[j] に写す。
// 複素数の点に対しては実部・虚部を同時に扱う。
package preprocessing

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/YuminosukeSato/ratfit/core/model"
	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// AffineScaler はシフトとスケールで表されるスケーラー
type AffineScaler interface {
	model.Transformer

	// Params は学習済みのシフトとスケールを返す（コピー）
	Params() (shift []complex128, scale []float64)

	// Spec はシリアライズ用の表現を返す
	Spec() Spec
}

// Spec はスケーラーの学習済み状態のシリアライズ表現
type Spec struct {
	Kind  string          `json:"kind"`
	Shift []model.Complex `json:"shift"`
	Scale []float64       `json:"scale"`
}

// 定数列とみなすスケールの下限
const minScale = 1e-8

// affineMap は全スケーラーに共通の変換部分
type affineMap struct {
	state *model.StateManager
	name  string

	// Shift は各列のシフト量
	Shift []complex128

	// Scale は各列のスケール（常に正）
	Scale []float64
}

func newAffineMap(name string) affineMap {
	return affineMap{state: model.NewStateManager(), name: name}
}

func (a *affineMap) set(shift []complex128, scale []float64, nSamples int) {
	for j := range scale {
		if !(scale[j] >= minScale) {
			scale[j] = 1.0
		}
	}
	a.Shift = shift
	a.Scale = scale
	a.state.SetDimensions(len(shift), nSamples)
	a.state.SetFitted()
}

// IsFitted は学習済みかどうかを返す
func (a *affineMap) IsFitted() bool {
	return a.state.IsFitted()
}

// Transform は学習済みのパラメータを使ってデータを変換する
func (a *affineMap) Transform(X mat.CMatrix) (*mat.CDense, error) {
	if err := a.check(X, "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	result := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-a.Shift[j])/complex(a.Scale[j], 0))
		}
	}
	return result, nil
}

// InverseTransform は変換されたデータを元のスケールに戻す
func (a *affineMap) InverseTransform(X mat.CMatrix) (*mat.CDense, error) {
	if err := a.check(X, "InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	result := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*complex(a.Scale[j], 0)+a.Shift[j])
		}
	}
	return result, nil
}

// InverseValue は一次元のスケーリング済みの値を元に戻す（根の逆変換用）
func (a *affineMap) InverseValue(j int, v complex128) complex128 {
	return v*complex(a.Scale[j], 0) + a.Shift[j]
}

// Params は学習済みのシフトとスケールのコピーを返す
func (a *affineMap) Params() ([]complex128, []float64) {
	return append([]complex128(nil), a.Shift...), append([]float64(nil), a.Scale...)
}

// Spec はシリアライズ用の表現を返す
func (a *affineMap) Spec() Spec {
	return Spec{
		Kind:  a.name,
		Shift: model.PackComplex(a.Shift),
		Scale: append([]float64(nil), a.Scale...),
	}
}

func (a *affineMap) check(X mat.CMatrix, method string) error {
	if err := a.state.RequireFitted(a.name, method); err != nil {
		return err
	}
	_, c := X.Dims()
	return a.state.RequireDim(a.name+"."+method, c)
}

func checkFitInput(op string, X mat.CMatrix) (int, int, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if z := X.At(i, j); cmplx.IsNaN(z) || cmplx.IsInf(z) {
				return 0, 0, errors.NewValueError(op, fmt.Sprintf("non-finite value %v at (%d, %d)", z, i, j))
			}
		}
	}
	return r, c, nil
}

// MinMaxScaler はデータの外接矩形の中心を原点に、最大距離を 1 に写すスケーラー
// 実数データでは各列を [-1, 1] に写す（多項式基底の標準区間）
type MinMaxScaler struct {
	affineMap
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewMinMaxScaler()
//	XScaled, err := scaler.FitTransform(X)
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{affineMap: newAffineMap("MinMaxScaler")}
}

// Fit は各列の実部・虚部の範囲から中心と半径を計算する
func (m *MinMaxScaler) Fit(X mat.CMatrix) error {
	r, c, err := checkFitInput("MinMaxScaler.Fit", X)
	if err != nil {
		return err
	}

	shift := make([]complex128, c)
	scale := make([]float64, c)
	for j := 0; j < c; j++ {
		loR, hiR := math.Inf(1), math.Inf(-1)
		loI, hiI := math.Inf(1), math.Inf(-1)
		for i := 0; i < r; i++ {
			z := X.At(i, j)
			loR, hiR = math.Min(loR, real(z)), math.Max(hiR, real(z))
			loI, hiI = math.Min(loI, imag(z)), math.Max(hiI, imag(z))
		}
		center := complex((loR+hiR)/2, (loI+hiI)/2)
		var radius float64
		for i := 0; i < r; i++ {
			radius = math.Max(radius, cmplx.Abs(X.At(i, j)-center))
		}
		shift[j] = center
		scale[j] = radius
	}
	m.set(shift, scale, r)
	return nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (m *MinMaxScaler) FitTransform(X mat.CMatrix) (*mat.CDense, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// String はスケーラーの文字列表現を返す
func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return "MinMaxScaler(feature_range=[-1, 1])"
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[-1, 1], n_dim=%d)", len(m.Shift))
}

// StandardScaler はデータを平均0、標準偏差1に変換する
// 複素数の場合、標準偏差は sqrt(mean |x − μ|²)
type StandardScaler struct {
	affineMap
}

// NewStandardScaler は新しいStandardScalerを作成する
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{affineMap: newAffineMap("StandardScaler")}
}

// Fit は訓練データから平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.CMatrix) error {
	r, c, err := checkFitInput("StandardScaler.Fit", X)
	if err != nil {
		return err
	}

	shift := make([]complex128, c)
	scale := make([]float64, c)
	for j := 0; j < c; j++ {
		var mean complex128
		for i := 0; i < r; i++ {
			mean += X.At(i, j)
		}
		mean /= complex(float64(r), 0)

		var ss float64
		for i := 0; i < r; i++ {
			d := cmplx.Abs(X.At(i, j) - mean)
			ss += d * d
		}
		shift[j] = mean
		scale[j] = math.Sqrt(ss / float64(r))
	}
	s.set(shift, scale, r)
	return nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.CMatrix) (*mat.CDense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_dim=%d)", len(s.Shift))
}

// LowerBoundScaler は各列の下限を原点に、最大距離を 1 に写す
// Laguerre 多項式のように [0, ∞) 上で定義される基底に使う
type LowerBoundScaler struct {
	affineMap
}

// NewLowerBoundScaler は新しいLowerBoundScalerを作成する
func NewLowerBoundScaler() *LowerBoundScaler {
	return &LowerBoundScaler{affineMap: newAffineMap("LowerBoundScaler")}
}

// Fit は各列の実部・虚部の下限と、そこからの最大距離を計算する
func (l *LowerBoundScaler) Fit(X mat.CMatrix) error {
	r, c, err := checkFitInput("LowerBoundScaler.Fit", X)
	if err != nil {
		return err
	}

	shift := make([]complex128, c)
	scale := make([]float64, c)
	for j := 0; j < c; j++ {
		loR, loI := math.Inf(1), math.Inf(1)
		for i := 0; i < r; i++ {
			z := X.At(i, j)
			loR, loI = math.Min(loR, real(z)), math.Min(loI, imag(z))
		}
		lb := complex(loR, loI)
		var spread float64
		for i := 0; i < r; i++ {
			spread = math.Max(spread, cmplx.Abs(X.At(i, j)-lb))
		}
		shift[j] = lb
		scale[j] = spread
	}
	l.set(shift, scale, r)
	return nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (l *LowerBoundScaler) FitTransform(X mat.CMatrix) (*mat.CDense, error) {
	if err := l.Fit(X); err != nil {
		return nil, err
	}
	return l.Transform(X)
}

// IdentityScaler は恒等変換（Arnoldi 基底のように自前で条件付けを行う基底用）
type IdentityScaler struct {
	affineMap
}

// NewIdentityScaler は新しいIdentityScalerを作成する
func NewIdentityScaler() *IdentityScaler {
	return &IdentityScaler{affineMap: newAffineMap("IdentityScaler")}
}

// Fit は次元だけを記録する
func (s *IdentityScaler) Fit(X mat.CMatrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("IdentityScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	scale := make([]float64, c)
	for j := range scale {
		scale[j] = 1
	}
	s.set(make([]complex128, c), scale, r)
	return nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *IdentityScaler) FitTransform(X mat.CMatrix) (*mat.CDense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// FromSpec は Spec から学習済みのスケーラーを復元する
func FromSpec(spec Spec) (AffineScaler, error) {
	if len(spec.Shift) != len(spec.Scale) || len(spec.Shift) == 0 {
		return nil, errors.NewValueError("preprocessing.FromSpec", "shift and scale must be non-empty and of equal length")
	}
	var (
		scaler AffineScaler
		m      *affineMap
	)
	switch spec.Kind {
	case "MinMaxScaler":
		s := NewMinMaxScaler()
		scaler, m = s, &s.affineMap
	case "StandardScaler":
		s := NewStandardScaler()
		scaler, m = s, &s.affineMap
	case "LowerBoundScaler":
		s := NewLowerBoundScaler()
		scaler, m = s, &s.affineMap
	case "IdentityScaler":
		s := NewIdentityScaler()
		scaler, m = s, &s.affineMap
	default:
		return nil, errors.NewValueError("preprocessing.FromSpec", fmt.Sprintf("unknown scaler kind %q", spec.Kind))
	}
	m.set(model.UnpackComplex(spec.Shift), append([]float64(nil), spec.Scale...), 0)
	return scaler, nil
}
