package models

import "time"

// Component enumerates the diagnosable vehicle subsystems.
type Component string

const (
	ComponentBattery    Component = "battery"
	ComponentMotor      Component = "motor"
	ComponentBrake      Component = "brake"
	ComponentTire       Component = "tire"
	ComponentSuspension Component = "suspension"
	ComponentNone       Component = "none"
)

// Components lists every class the component classifier can emit, in the
// label order the classifier was trained against.
func Components() []Component {
	return []Component{
		ComponentBattery,
		ComponentMotor,
		ComponentBrake,
		ComponentTire,
		ComponentSuspension,
		ComponentNone,
	}
}

// Severity captures maintenance urgency tiers.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from Normal (0) to Critical (4).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// RecommendedAction tells the owner how soon to act on a diagnosis.
type RecommendedAction string

const (
	ActionImmediate    RecommendedAction = "immediate"
	ActionScheduleSoon RecommendedAction = "schedule_soon"
	ActionMonitor      RecommendedAction = "monitor"
)

// DiagnosisResult is the composed verdict for one sensor reading. It is
// created fresh per request and never read back for decisions.
type DiagnosisResult struct {
	DiagnosisID        string            `json:"diagnosis_id"`
	VehicleID          string            `json:"vehicle_id"`
	FailureProbability float64           `json:"failure_probability"`
	Component          Component         `json:"component"`
	ComponentProbs     map[Component]float64 `json:"component_probabilities,omitempty"`
	// RULDays is nil when failure probability is below the reporting
	// threshold; otherwise the estimated remaining useful life in days.
	RULDays           *float64          `json:"rul_days"`
	Severity          Severity          `json:"severity"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
	LowConfidence     bool              `json:"low_confidence"`
	ImputedFields     []string          `json:"imputed_fields,omitempty"`
	OutOfRangeFields  []string          `json:"out_of_range_fields,omitempty"`
	Summary           string            `json:"summary"`
	CreatedAt         time.Time         `json:"created_at"`
}
