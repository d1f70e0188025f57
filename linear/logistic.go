package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sigmoid はロジスティック関数 σ(t) = 1/(1+exp(−t))
// 大きな |t| でもオーバーフローしないよう符号で分岐する
func Sigmoid(t float64) float64 {
	if t >= 0 {
		return 1 / (1 + math.Exp(-t))
	}
	e := math.Exp(t)
	return e / (1 + e)
}

// Softplus は log(1+exp(t)) を数値的に安定に計算する
func Softplus(t float64) float64 {
	if t > 0 {
		return t + math.Log1p(math.Exp(-t))
	}
	return math.Log1p(math.Exp(t))
}

// Margins は各サンプルの wᵗz_i を返す（Z は p×M）
func Margins(w *mat.VecDense, Z mat.Matrix) *mat.VecDense {
	_, m := Z.Dims()
	z := mat.NewVecDense(m, nil)
	z.MulVec(Z.T(), w)
	return z
}

// LogisticLoss は (1/M) Σ log(1+exp(−y_i wᵗz_i))
//
// Z は p×M の特徴行列（線形モデルでは X、カーネルモデルでは K(X,X)）。
// 形状の検証は呼び出し側で行うこと。
func LogisticLoss(w *mat.VecDense, Z mat.Matrix, y *mat.VecDense) float64 {
	z := Margins(w, Z)
	m := z.Len()
	var sum float64
	for i := 0; i < m; i++ {
		sum += Softplus(-y.AtVec(i) * z.AtVec(i))
	}
	return sum / float64(m)
}

// LogisticGradient は (1/M) Σ −y_i z_i σ(−y_i wᵗz_i)
func LogisticGradient(w *mat.VecDense, Z mat.Matrix, y *mat.VecDense) *mat.VecDense {
	z := Margins(w, Z)
	p, m := Z.Dims()
	coef := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		yi := y.AtVec(i)
		coef.SetVec(i, -yi*Sigmoid(-yi*z.AtVec(i))/float64(m))
	}
	g := mat.NewVecDense(p, nil)
	g.MulVec(Z, coef)
	return g
}

// Probabilities は各サンプルの σ(wᵗz_i)（ラベル +1 の確率）を返す
func Probabilities(w *mat.VecDense, Z mat.Matrix) *mat.VecDense {
	z := Margins(w, Z)
	for i := 0; i < z.Len(); i++ {
		z.SetVec(i, Sigmoid(z.AtVec(i)))
	}
	return z
}

// AddRidge は loss に (λ/2)‖w‖² を、grad に λw を加える。λ = 0 なら何もしない
func AddRidge(lambda float64, w *mat.VecDense, loss float64, grad *mat.VecDense) float64 {
	if lambda == 0 {
		return loss
	}
	if grad != nil {
		grad.AddScaledVec(grad, lambda, w)
	}
	return loss + 0.5*lambda*mat.Dot(w, w)
}
