package training

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/torqcare/torqcare-diagnosis/internal/features"
	"github.com/torqcare/torqcare-diagnosis/internal/models"
	"github.com/torqcare/torqcare-diagnosis/internal/predictors"
)

// Record is one labelled training sample: the raw reading plus the outcome
// labels derived from the fleet history.
type Record struct {
	Reading models.SensorReading
	// Failed is true when the vehicle went on to fail within the labelling
	// horizon of this reading.
	Failed bool
	// RULHours is the observed remaining useful life at reading time.
	RULHours float64
	// Component is the failed subsystem from the maintenance record, or
	// empty when no record exists; empty labels fall back to the rule
	// table in labels.go.
	Component models.Component
}

// Options tune the gradient-descent fits. Zero values take defaults.
type Options struct {
	Epochs       int
	LearningRate float64
}

// Report summarises a completed training run.
type Report struct {
	Samples           int
	FailureAccuracy   float64
	ComponentAccuracy float64
	RULRMSEDays       float64
}

// Pipeline fits the three predictors and freezes the feature schema from one
// historical dataset. It runs offline, never concurrently with serving.
type Pipeline struct {
	logger *slog.Logger
	opts   Options
}

// NewPipeline constructs a training pipeline.
func NewPipeline(logger *slog.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Epochs <= 0 {
		opts.Epochs = 400
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.5
	}
	return &Pipeline{logger: logger, opts: opts}
}

// Train fits all models and returns the artifact set tagged with the
// compiled-in schema version, along with a quality report computed on the
// training set.
func (p *Pipeline) Train(records []Record) (*predictors.Artifacts, Report, error) {
	if len(records) < 10 {
		return nil, Report{}, fmt.Errorf("need at least 10 records, got %d", len(records))
	}

	fields := features.Fields()
	names := features.FieldNames()

	// Per-field defaults: the mean of the values actually reported. These
	// are frozen into the schema so the extractor fills gaps with the same
	// constants at inference time.
	raw, defaults, err := buildMatrix(records, fields)
	if err != nil {
		return nil, Report{}, err
	}

	mean := make([]float64, len(fields))
	std := make([]float64, len(fields))
	col := make([]float64, len(records))
	for j := range fields {
		for i := range raw {
			col[i] = raw[i][j]
		}
		mean[j] = stat.Mean(col, nil)
		std[j] = stat.StdDev(col, nil)
		if std[j] == 0 || math.IsNaN(std[j]) {
			std[j] = 1
		}
	}

	scaled := make([][]float64, len(raw))
	for i, row := range raw {
		scaled[i] = make([]float64, len(row))
		for j, v := range row {
			scaled[i][j] = (v - mean[j]) / std[j]
		}
	}

	yFailure := make([]float64, len(records))
	yRULDays := make([]float64, len(records))
	yComponent := make([]models.Component, len(records))
	for i, rec := range records {
		if rec.Failed {
			yFailure[i] = 1
		}
		yRULDays[i] = rec.RULHours / 24
		yComponent[i] = p.componentLabel(rec, raw[i], names)
	}

	p.logger.Info("fitting failure classifier", slog.Int("samples", len(records)))
	failure := fitLogistic(scaled, yFailure, p.opts.LearningRate, p.opts.Epochs)

	p.logger.Info("fitting component classifier")
	component := fitSoftmax(scaled, yComponent, p.opts.LearningRate, p.opts.Epochs)

	p.logger.Info("fitting rul regressor")
	rul, err := fitLinear(scaled, yRULDays)
	if err != nil {
		return nil, Report{}, fmt.Errorf("fit rul regressor: %w", err)
	}

	artifacts := &predictors.Artifacts{
		Schema: features.Schema{
			Version:    features.SchemaVersion,
			FieldNames: names,
			Defaults:   defaults,
		},
		Scaler: &predictors.Scaler{
			SchemaVersion: features.SchemaVersion,
			Means:         mean,
			StdDevs:       std,
		},
		Failure:   failure,
		Component: component,
		RUL:       rul,
	}

	report := p.evaluate(artifacts, scaled, yFailure, yComponent, yRULDays)
	p.logger.Info("training complete",
		slog.Int("samples", report.Samples),
		slog.Float64("failure_accuracy", report.FailureAccuracy),
		slog.Float64("component_accuracy", report.ComponentAccuracy),
		slog.Float64("rul_rmse_days", report.RULRMSEDays))
	return artifacts, report, nil
}

// componentLabel prefers the maintenance-record label and falls back to the
// rule table. Healthy readings always label as "none".
func (p *Pipeline) componentLabel(rec Record, row []float64, names []string) models.Component {
	if !rec.Failed {
		return models.ComponentNone
	}
	if rec.Component != "" {
		return rec.Component
	}
	values := make(map[string]float64, len(names))
	for j, name := range names {
		values[name] = row[j]
	}
	return labelComponent(values)
}

// buildMatrix assembles the raw feature matrix in schema order, filling
// missing fields with the per-field mean of the reported values. Returns the
// filled matrix and the fill constants. A field with zero observations is an
// error: there is no honest constant to freeze for it, and an arbitrary one
// would be imputed on every serving request.
func buildMatrix(records []Record, fields []features.Field) ([][]float64, []float64, error) {
	raw := make([][]float64, len(records))
	present := make([][]bool, len(records))
	sums := make([]float64, len(fields))
	counts := make([]int, len(fields))

	for i := range records {
		raw[i] = make([]float64, len(fields))
		present[i] = make([]bool, len(fields))
		reading := records[i].Reading
		for j, field := range fields {
			if v := field.Value(&reading); v != nil {
				raw[i][j] = *v
				present[i][j] = true
				sums[j] += *v
				counts[j]++
			}
		}
	}

	defaults := make([]float64, len(fields))
	for j, field := range fields {
		if counts[j] == 0 {
			return nil, nil, fmt.Errorf("field %s has no observations in the training data", field.Name)
		}
		defaults[j] = sums[j] / float64(counts[j])
	}
	for i := range raw {
		for j := range fields {
			if !present[i][j] {
				raw[i][j] = defaults[j]
			}
		}
	}
	return raw, defaults, nil
}

func (p *Pipeline) evaluate(artifacts *predictors.Artifacts, scaled [][]float64, yFailure []float64, yComponent []models.Component, yRULDays []float64) Report {
	report := Report{Samples: len(scaled)}

	failureHits, componentHits := 0, 0
	sqErr := 0.0
	for i, x := range scaled {
		if prob, err := artifacts.Failure.Probability(x); err == nil {
			predicted := 0.0
			if prob >= 0.5 {
				predicted = 1
			}
			if predicted == yFailure[i] {
				failureHits++
			}
		}
		if probs, err := artifacts.Component.Probabilities(x); err == nil {
			best := 0
			for c, p := range probs {
				if p > probs[best] {
					best = c
				}
			}
			if artifacts.Component.Classes[best] == yComponent[i] {
				componentHits++
			}
		}
		if est, err := artifacts.RUL.Predict(x); err == nil {
			diff := est - yRULDays[i]
			sqErr += diff * diff
		}
	}

	n := float64(len(scaled))
	report.FailureAccuracy = float64(failureHits) / n
	report.ComponentAccuracy = float64(componentHits) / n
	report.RULRMSEDays = math.Sqrt(sqErr / n)
	return report
}
