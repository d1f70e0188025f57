package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// logLossEpsilon は log(0) を避けるためのクリップ幅
const logLossEpsilon = 1e-15

// positives はラベルを正例かどうかに変換する。
// 1 が正例、0 と -1 が負例で、それ以外はエラー。
func positives(op string, labels []float64) ([]bool, error) {
	pos := make([]bool, len(labels))
	for i, v := range labels {
		switch v {
		case 1:
			pos[i] = true
		case 0, -1:
		default:
			return nil, errors.NewValueError(op, "labels must be binary (0/1 or -1/+1)")
		}
	}
	return pos, nil
}

// AUC はROC曲線下面積を計算する。
// 同順位のスコアには平均順位を与える（Mann-Whitney U統計量）。
// 片方のクラスしか存在しない場合は 0.5 を返す。
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	t, s, err := pair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	pos, err := positives("AUC", t)
	if err != nil {
		return 0, err
	}

	inds := make([]int, len(s))
	floats.Argsort(s, inds)

	// 平均順位で正例の順位和を求める
	var rankSum float64
	nPos := 0
	for i := 0; i < len(s); {
		j := i
		for j+1 < len(s) && s[j+1] == s[i] {
			j++
		}
		rank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if pos[inds[k]] {
				rankSum += rank
				nPos++
			}
		}
		i = j + 1
	}

	nNeg := len(s) - nPos
	if nPos == 0 || nNeg == 0 {
		return 0.5, nil
	}
	u := rankSum - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), nil
}

// AUCMatrix は行列の第1列に対してAUCを計算する
func AUCMatrix(yTrue, yScore mat.Matrix) (float64, error) {
	t, s, err := firstColumns("AUCMatrix", yTrue, yScore, false)
	if err != nil {
		return 0, err
	}
	return AUC(t, s)
}

// BinaryLogLoss は二値交差エントロピーを計算する。yProb は正例の確率。
func BinaryLogLoss(yTrue, yProb *mat.VecDense) (float64, error) {
	t, p, err := pair("BinaryLogLoss", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	pos, err := positives("BinaryLogLoss", t)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i, prob := range p {
		prob = math.Min(math.Max(prob, logLossEpsilon), 1-logLossEpsilon)
		if pos[i] {
			sum -= math.Log(prob)
		} else {
			sum -= math.Log1p(-prob)
		}
	}
	return sum / float64(len(p)), nil
}

// ClassificationError は予測ラベルが一致しない割合
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, errors.Wrap(err, "ClassificationError")
	}
	return 1 - acc, nil
}

// Accuracy は予測ラベルが完全一致する割合
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := range t {
		if t[i] == p[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(t)), nil
}

// BinaryAccuracy は確率を threshold で二値化したときの正解率。
// 確率が threshold 以上なら正例と判定する。
func BinaryAccuracy(yTrue, yProb *mat.VecDense, threshold float64) (float64, error) {
	t, p, err := pair("BinaryAccuracy", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	if threshold <= 0 || threshold >= 1 || math.IsNaN(threshold) {
		return 0, errors.NewValidationError("threshold", "must be in (0, 1)", threshold)
	}
	pos, err := positives("BinaryAccuracy", t)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i, prob := range p {
		if (prob >= threshold) == pos[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(p)), nil
}
