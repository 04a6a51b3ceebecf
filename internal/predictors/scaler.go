package predictors

import "fmt"

// Scaler standardizes feature vectors with the per-field mean and standard
// deviation captured during training.
type Scaler struct {
	SchemaVersion string    `json:"schema_version"`
	Means         []float64 `json:"means"`
	StdDevs       []float64 `json:"std_devs"`
}

// Transform returns the standardized copy of values.
func (s *Scaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.Means) {
		return nil, fmt.Errorf("scaler fitted on %d features, got %d", len(s.Means), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		std := s.StdDevs[i]
		if std == 0 {
			std = 1
		}
		out[i] = (v - s.Means[i]) / std
	}
	return out, nil
}
