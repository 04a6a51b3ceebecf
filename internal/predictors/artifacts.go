package predictors

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/torqcare/torqcare-diagnosis/internal/features"
)

// Artifacts is the full set a training run emits: the frozen feature schema
// and the three fitted predictors with their scaler. Serving replaces the set
// wholesale; there is no incremental update.
type Artifacts struct {
	Schema    features.Schema
	Scaler    *Scaler
	Failure   *LogisticModel
	Component *SoftmaxModel
	RUL       *LinearModel
}

// Save persists every artifact as JSON under dir, creating it if needed.
func (a *Artifacts) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	files := map[string]any{
		FeatureSchemaFile:       a.Schema,
		ScalerFile:              a.Scaler,
		FailureClassifierFile:   a.Failure,
		ComponentClassifierFile: a.Component,
		RULRegressorFile:        a.RUL,
	}
	for name, artifact := range files {
		data, err := json.MarshalIndent(artifact, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
