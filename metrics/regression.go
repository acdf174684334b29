package metrics

import (
	"math"
	"math/cmplx"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"gonum.org/v1/gonum/cmplxs"
)

// Norm は複素ベクトルの p-ノルムを計算する
// NaN を含む場合は NaN を返す（反復中の発散を最良解の選択から除外するため）
func Norm(v []complex128, p float64) float64 {
	for _, x := range v {
		if cmplx.IsNaN(x) {
			return math.NaN()
		}
	}
	if len(v) == 0 {
		return 0
	}
	return cmplxs.Norm(v, p)
}

// ResidualNorm は ‖yTrue − yPred‖_p を計算する
func ResidualNorm(yTrue, yPred []complex128, p float64) (float64, error) {
	if err := checkPair("ResidualNorm", yTrue, yPred); err != nil {
		return 0, err
	}
	diff := make([]complex128, len(yTrue))
	cmplxs.SubTo(diff, yTrue, yPred)
	return Norm(diff, p), nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
// 複素数の場合は |yTrue − yPred|² の平均
func MSE(yTrue, yPred []complex128) (float64, error) {
	if err := checkPair("MSE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	for i := range yTrue {
		d := cmplx.Abs(yTrue[i] - yPred[i])
		sum += d * d
	}
	return sum / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []complex128) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []complex128) (float64, error) {
	if err := checkPair("MAE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	for i := range yTrue {
		sum += cmplx.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}

// MaxError は最大絶対誤差（∞-ノルムの残差）を計算する
func MaxError(yTrue, yPred []complex128) (float64, error) {
	return ResidualNorm(yTrue, yPred, math.Inf(1))
}

// R2Score は決定係数（R²）を計算する
// TSS = Σ|yTrue − mean|², RSS = Σ|yTrue − yPred|²
func R2Score(yTrue, yPred []complex128) (float64, error) {
	if err := checkPair("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	n := len(yTrue)
	mean := cmplxs.Sum(yTrue) / complex(float64(n), 0)

	var tss, rss float64
	for i := 0; i < n; i++ {
		dt := cmplx.Abs(yTrue[i] - mean)
		dr := cmplx.Abs(yTrue[i] - yPred[i])
		tss += dt * dt
		rss += dr * dr
	}

	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}

	return 1 - rss/tss, nil
}

// MAPE は平均絶対パーセンテージ誤差を計算する
func MAPE(yTrue, yPred []complex128) (float64, error) {
	if err := checkPair("MAPE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	validCount := 0
	for i := range yTrue {
		if yTrue[i] != 0 { // ゼロ除算を避ける
			sum += cmplx.Abs(yTrue[i]-yPred[i]) / cmplx.Abs(yTrue[i])
			validCount++
		}
	}

	if validCount == 0 {
		return 0, errors.Newf("MAPE: all yTrue values are zero")
	}
	return (sum / float64(validCount)) * 100, nil
}

func checkPair(op string, yTrue, yPred []complex128) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}
