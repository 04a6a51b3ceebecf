package training

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/torqcare/torqcare-diagnosis/internal/features"
	"github.com/torqcare/torqcare-diagnosis/internal/models"
	"github.com/torqcare/torqcare-diagnosis/internal/predictors"
)

// fitLogistic trains a binary logistic regression with full-batch gradient
// descent. Inputs must already be standardized.
func fitLogistic(x [][]float64, y []float64, learningRate float64, epochs int) *predictors.LogisticModel {
	n := len(x)
	d := len(x[0])
	weights := make([]float64, d)
	bias := 0.0

	for epoch := 0; epoch < epochs; epoch++ {
		gradW := make([]float64, d)
		gradB := 0.0
		for i := 0; i < n; i++ {
			z := bias
			for j := 0; j < d; j++ {
				z += weights[j] * x[i][j]
			}
			err := 1/(1+math.Exp(-z)) - y[i]
			for j := 0; j < d; j++ {
				gradW[j] += err * x[i][j]
			}
			gradB += err
		}
		for j := 0; j < d; j++ {
			weights[j] -= learningRate * gradW[j] / float64(n)
		}
		bias -= learningRate * gradB / float64(n)
	}

	return &predictors.LogisticModel{
		SchemaVersion: features.SchemaVersion,
		Weights:       weights,
		Bias:          bias,
	}
}

// fitSoftmax trains a multinomial logistic classifier with full-batch
// gradient descent over the fixed component class order.
func fitSoftmax(x [][]float64, labels []models.Component, learningRate float64, epochs int) *predictors.SoftmaxModel {
	classes := models.Components()
	classIndex := make(map[models.Component]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	n := len(x)
	d := len(x[0])
	k := len(classes)
	weights := make([][]float64, k)
	for c := range weights {
		weights[c] = make([]float64, d)
	}
	biases := make([]float64, k)

	probs := make([]float64, k)
	for epoch := 0; epoch < epochs; epoch++ {
		gradW := make([][]float64, k)
		for c := range gradW {
			gradW[c] = make([]float64, d)
		}
		gradB := make([]float64, k)

		for i := 0; i < n; i++ {
			maxLogit := math.Inf(-1)
			for c := 0; c < k; c++ {
				z := biases[c]
				for j := 0; j < d; j++ {
					z += weights[c][j] * x[i][j]
				}
				probs[c] = z
				if z > maxLogit {
					maxLogit = z
				}
			}
			sum := 0.0
			for c := 0; c < k; c++ {
				probs[c] = math.Exp(probs[c] - maxLogit)
				sum += probs[c]
			}
			target := classIndex[labels[i]]
			for c := 0; c < k; c++ {
				err := probs[c]/sum - indicator(c == target)
				for j := 0; j < d; j++ {
					gradW[c][j] += err * x[i][j]
				}
				gradB[c] += err
			}
		}

		for c := 0; c < k; c++ {
			for j := 0; j < d; j++ {
				weights[c][j] -= learningRate * gradW[c][j] / float64(n)
			}
			biases[c] -= learningRate * gradB[c] / float64(n)
		}
	}

	return &predictors.SoftmaxModel{
		SchemaVersion: features.SchemaVersion,
		Classes:       classes,
		Weights:       weights,
		Biases:        biases,
	}
}

// fitLinear solves the least-squares regression through the normal equations
// with a small ridge term, which keeps the system solvable even when a
// feature column is constant across the training set.
func fitLinear(x [][]float64, y []float64) (*predictors.LinearModel, error) {
	n := len(x)
	d := len(x[0])
	const ridge = 1e-6

	// Design matrix with a leading intercept column.
	a := mat.NewDense(n, d+1, nil)
	for i := 0; i < n; i++ {
		a.Set(i, 0, 1)
		for j := 0; j < d; j++ {
			a.Set(i, j+1, x[i][j])
		}
	}
	b := mat.NewDense(n, 1, y)

	var gram mat.Dense
	gram.Mul(a.T(), a)
	for j := 0; j <= d; j++ {
		gram.Set(j, j, gram.At(j, j)+ridge)
	}
	var rhs mat.Dense
	rhs.Mul(a.T(), b)

	var coef mat.Dense
	if err := coef.Solve(&gram, &rhs); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	weights := make([]float64, d)
	for j := 0; j < d; j++ {
		weights[j] = coef.At(j+1, 0)
	}
	return &predictors.LinearModel{
		SchemaVersion: features.SchemaVersion,
		Weights:       weights,
		Bias:          coef.At(0, 0),
	}, nil
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
