package predictors

import (
	"fmt"
	"math"

	"github.com/torqcare/torqcare-diagnosis/internal/models"
)

// LogisticModel is a binary classifier over standardized features.
type LogisticModel struct {
	SchemaVersion string    `json:"schema_version"`
	Weights       []float64 `json:"weights"`
	Bias          float64   `json:"bias"`
}

// Probability returns P(positive class) for the standardized vector x.
func (m *LogisticModel) Probability(x []float64) (float64, error) {
	z, err := dot(m.Weights, x)
	if err != nil {
		return 0, err
	}
	return sigmoid(z + m.Bias), nil
}

// SoftmaxModel is a multinomial logistic classifier over standardized
// features. Classes holds the label order the weight rows were trained in.
type SoftmaxModel struct {
	SchemaVersion string             `json:"schema_version"`
	Classes       []models.Component `json:"classes"`
	Weights       [][]float64        `json:"weights"`
	Biases        []float64          `json:"biases"`
}

// Probabilities returns the per-class probability distribution for x.
func (m *SoftmaxModel) Probabilities(x []float64) ([]float64, error) {
	if len(m.Weights) != len(m.Classes) || len(m.Biases) != len(m.Classes) {
		return nil, fmt.Errorf("softmax model has %d classes, %d weight rows, %d biases",
			len(m.Classes), len(m.Weights), len(m.Biases))
	}
	logits := make([]float64, len(m.Classes))
	maxLogit := math.Inf(-1)
	for i, row := range m.Weights {
		z, err := dot(row, x)
		if err != nil {
			return nil, err
		}
		logits[i] = z + m.Biases[i]
		if logits[i] > maxLogit {
			maxLogit = logits[i]
		}
	}

	sum := 0.0
	probs := make([]float64, len(logits))
	for i, z := range logits {
		probs[i] = math.Exp(z - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

// LinearModel is a least-squares regressor over standardized features.
type LinearModel struct {
	SchemaVersion string    `json:"schema_version"`
	Weights       []float64 `json:"weights"`
	Bias          float64   `json:"bias"`
}

// Predict returns the regression output for x. The output is not clamped;
// interpreting out-of-distribution values is the caller's concern.
func (m *LinearModel) Predict(x []float64) (float64, error) {
	z, err := dot(m.Weights, x)
	if err != nil {
		return 0, err
	}
	return z + m.Bias, nil
}

func dot(w, x []float64) (float64, error) {
	if len(w) != len(x) {
		return 0, fmt.Errorf("model expects %d features, got %d", len(w), len(x))
	}
	sum := 0.0
	for i := range w {
		sum += w[i] * x[i]
	}
	return sum, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
