package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/torqcare/torqcare-diagnosis/internal/features"
	"github.com/torqcare/torqcare-diagnosis/internal/models"
	"github.com/torqcare/torqcare-diagnosis/internal/predictors"
)

// ModelBank defines the predictor operations the composer needs. The
// concrete *predictors.Bank satisfies it; tests substitute fakes.
type ModelBank interface {
	PredictFailure(vec features.Vector) (float64, error)
	PredictComponent(vec features.Vector) (predictors.ComponentPrediction, error)
	PredictRUL(vec features.Vector) (float64, error)
}

// Composer turns one sensor reading into a composed diagnosis: extract
// features once, query the three predictors on that same vector, and fold the
// outputs through the severity policy.
type Composer struct {
	logger    *slog.Logger
	extractor *features.Extractor
	bank      ModelBank
	policy    Policy
}

// NewComposer constructs a diagnosis composer.
func NewComposer(logger *slog.Logger, extractor *features.Extractor, bank ModelBank, policy Policy) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		logger:    logger,
		extractor: extractor,
		bank:      bank,
		policy:    policy,
	}
}

// Diagnose produces the verdict for one reading. Identity and model errors
// surface to the caller; a failed diagnosis never degrades into a guessed
// healthy result.
func (c *Composer) Diagnose(reading models.SensorReading) (models.DiagnosisResult, error) {
	vec, err := c.extractor.Extract(reading)
	if err != nil {
		return models.DiagnosisResult{}, err
	}

	probability, err := c.bank.PredictFailure(vec)
	if err != nil {
		return models.DiagnosisResult{}, fmt.Errorf("predict failure: %w", err)
	}

	result := models.DiagnosisResult{
		VehicleID:          reading.VehicleID,
		FailureProbability: probability,
		ImputedFields:      vec.Imputed,
		OutOfRangeFields:   vec.OutOfRange,
	}

	if probability < c.policy.ReportingThreshold {
		result.Severity = models.SeverityNormal
		result.Component = models.ComponentNone
		result.RecommendedAction = Action(models.SeverityNormal)
		result.Summary = fmt.Sprintf("Vehicle %s: no anomalies detected (failure probability %.2f).",
			reading.VehicleID, probability)
		return result, nil
	}

	component, err := c.bank.PredictComponent(vec)
	if err != nil {
		return models.DiagnosisResult{}, fmt.Errorf("predict component: %w", err)
	}
	rulDays, err := c.bank.PredictRUL(vec)
	if err != nil {
		return models.DiagnosisResult{}, fmt.Errorf("predict rul: %w", err)
	}

	if rulDays < 0 {
		// A negative lifetime means the regressor saw something far outside
		// its training distribution. Report zero and flag it.
		c.logger.Warn("rul regressor emitted negative output",
			slog.String("vehicle_id", reading.VehicleID),
			slog.Float64("rul_days", rulDays))
		rulDays = 0
		result.LowConfidence = true
	}

	result.Component = component.Component
	result.ComponentProbs = component.Probabilities
	result.RULDays = &rulDays
	result.Severity = c.policy.Severity(probability, rulDays)
	result.RecommendedAction = Action(result.Severity)
	result.Summary = c.summarize(reading.VehicleID, probability, component, rulDays, result)
	return result, nil
}

func (c *Composer) summarize(vehicleID string, probability float64, component predictors.ComponentPrediction, rulDays float64, result models.DiagnosisResult) string {
	var b strings.Builder

	if component.Component == models.ComponentNone {
		// High failure probability with no dominant component is a valid but
		// low-information outcome; severity still comes from probability.
		fmt.Fprintf(&b, "Vehicle %s: failure predicted (p=%.2f, %s severity) with no dominant component",
			vehicleID, probability, result.Severity)
	} else {
		fmt.Fprintf(&b, "Vehicle %s: %s failure predicted (p=%.2f, %s severity)",
			vehicleID, component.Component, probability, result.Severity)
	}

	fmt.Fprintf(&b, "; estimated remaining useful life %.1f days", rulDays)
	if result.LowConfidence {
		b.WriteString(" (low confidence)")
	}

	switch result.RecommendedAction {
	case models.ActionImmediate:
		b.WriteString("; immediate attention required.")
	case models.ActionScheduleSoon:
		b.WriteString("; schedule maintenance soon.")
	default:
		b.WriteString("; continue monitoring.")
	}
	return b.String()
}
