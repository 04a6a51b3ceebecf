package predictors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/torqcare/torqcare-diagnosis/internal/features"
	"github.com/torqcare/torqcare-diagnosis/internal/models"
)

// Artifact file names inside the artifact directory. The set mirrors what the
// training pipeline persists; all five are required for serving.
const (
	FeatureSchemaFile       = "feature_schema.json"
	ScalerFile              = "scaler.json"
	FailureClassifierFile   = "failure_classifier.json"
	ComponentClassifierFile = "component_classifier.json"
	RULRegressorFile        = "rul_regressor.json"
)

// ComponentPrediction is the component classifier output: the winning class
// and the full per-class distribution.
type ComponentPrediction struct {
	Component     models.Component
	Confidence    float64
	Probabilities map[models.Component]float64
}

// Bank owns the three fitted predictors and their shared scaler. It is
// immutable after Load and safe for concurrent reads; swapping models
// requires a restart.
type Bank struct {
	logger    *slog.Logger
	schema    features.Schema
	scaler    *Scaler
	failure   *LogisticModel
	component *SoftmaxModel
	rul       *LinearModel
}

// Load reads all model artifacts from dir and verifies every one against the
// compiled-in feature schema version before the bank becomes usable.
func Load(dir string, logger *slog.Logger) (*Bank, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var schema features.Schema
	if err := readArtifact(filepath.Join(dir, FeatureSchemaFile), &schema); err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	var scaler Scaler
	if err := readArtifact(filepath.Join(dir, ScalerFile), &scaler); err != nil {
		return nil, err
	}
	var failure LogisticModel
	if err := readArtifact(filepath.Join(dir, FailureClassifierFile), &failure); err != nil {
		return nil, err
	}
	var component SoftmaxModel
	if err := readArtifact(filepath.Join(dir, ComponentClassifierFile), &component); err != nil {
		return nil, err
	}
	var rul LinearModel
	if err := readArtifact(filepath.Join(dir, RULRegressorFile), &rul); err != nil {
		return nil, err
	}

	// Checked in a fixed order so a mismatch always reports the same
	// artifact.
	versions := []struct {
		name    string
		version string
	}{
		{ScalerFile, scaler.SchemaVersion},
		{FailureClassifierFile, failure.SchemaVersion},
		{ComponentClassifierFile, component.SchemaVersion},
		{RULRegressorFile, rul.SchemaVersion},
	}
	for _, artifact := range versions {
		name, version := artifact.name, artifact.version
		if version != features.SchemaVersion {
			logger.Error("artifact trained against a different feature schema",
				slog.String("artifact", name), slog.String("version", version))
			return nil, &features.SchemaMismatchError{Got: version, Want: features.SchemaVersion, Detail: name}
		}
	}

	if err := validateClasses(component.Classes); err != nil {
		return nil, &ArtifactLoadError{Path: filepath.Join(dir, ComponentClassifierFile), Err: err}
	}

	logger.Info("model bank loaded",
		slog.String("dir", dir),
		slog.String("schema_version", schema.Version),
		slog.Int("features", len(schema.FieldNames)))

	return &Bank{
		logger:    logger,
		schema:    schema,
		scaler:    &scaler,
		failure:   &failure,
		component: &component,
		rul:       &rul,
	}, nil
}

// NewBank assembles a bank from in-memory parts, bypassing artifact loading.
// Any predictor may be nil; calls against it then fail with
// ModelUnavailableError.
func NewBank(schema features.Schema, scaler *Scaler, failure *LogisticModel, component *SoftmaxModel, rul *LinearModel) *Bank {
	return &Bank{
		logger:    slog.Default(),
		schema:    schema,
		scaler:    scaler,
		failure:   failure,
		component: component,
		rul:       rul,
	}
}

// Schema returns the feature schema the bank was trained against.
func (b *Bank) Schema() features.Schema {
	return b.schema
}

// PredictFailure returns the failure probability in [0,1] for the vector.
func (b *Bank) PredictFailure(vec features.Vector) (float64, error) {
	if b.failure == nil {
		return 0, &ModelUnavailableError{Model: "failure_classifier"}
	}
	x, err := b.scale(vec)
	if err != nil {
		return 0, err
	}
	return b.failure.Probability(x)
}

// PredictComponent returns the most likely failing component with the full
// class distribution. Ties resolve to the earlier class in training order so
// repeated calls stay deterministic.
func (b *Bank) PredictComponent(vec features.Vector) (ComponentPrediction, error) {
	if b.component == nil {
		return ComponentPrediction{}, &ModelUnavailableError{Model: "component_classifier"}
	}
	x, err := b.scale(vec)
	if err != nil {
		return ComponentPrediction{}, err
	}
	probs, err := b.component.Probabilities(x)
	if err != nil {
		return ComponentPrediction{}, err
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	dist := make(map[models.Component]float64, len(probs))
	for i, class := range b.component.Classes {
		dist[class] = probs[i]
	}
	return ComponentPrediction{
		Component:     b.component.Classes[best],
		Confidence:    probs[best],
		Probabilities: dist,
	}, nil
}

// PredictRUL returns the estimated remaining useful life in days. The raw
// regressor output is returned as-is; a badly out-of-distribution input can
// yield a negative value, which the diagnosis composer clamps and flags.
func (b *Bank) PredictRUL(vec features.Vector) (float64, error) {
	if b.rul == nil {
		return 0, &ModelUnavailableError{Model: "rul_regressor"}
	}
	x, err := b.scale(vec)
	if err != nil {
		return 0, err
	}
	return b.rul.Predict(x)
}

func (b *Bank) scale(vec features.Vector) ([]float64, error) {
	if b.scaler == nil {
		return nil, &ModelUnavailableError{Model: "scaler"}
	}
	return b.scaler.Transform(vec.Values)
}

func readArtifact(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ArtifactLoadError{Path: path, Err: err}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &ArtifactLoadError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	return nil
}

func validateClasses(classes []models.Component) error {
	want := models.Components()
	if len(classes) != len(want) {
		return fmt.Errorf("classifier has %d classes, expected %d", len(classes), len(want))
	}
	known := make(map[models.Component]struct{}, len(want))
	for _, c := range want {
		known[c] = struct{}{}
	}
	for _, c := range classes {
		if _, ok := known[c]; !ok {
			return fmt.Errorf("unknown component class %q", c)
		}
		delete(known, c)
	}
	return nil
}
