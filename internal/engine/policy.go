package engine

import (
	"fmt"

	"github.com/torqcare/torqcare-diagnosis/internal/models"
)

// TierThreshold admits a reading into a severity tier when the failure
// probability is at least MinProbability or the remaining useful life is at
// most MaxRULDays.
type TierThreshold struct {
	MinProbability float64 `yaml:"minProbability"`
	MaxRULDays     float64 `yaml:"maxRULDays"`
}

// Policy holds the reporting threshold and the ordered severity table. The
// literal numbers are operator policy, not model output, so they live in
// configuration; DefaultPolicy supplies the shipped values.
type Policy struct {
	ReportingThreshold float64       `yaml:"reportingThreshold"`
	Critical           TierThreshold `yaml:"critical"`
	High               TierThreshold `yaml:"high"`
	Medium             TierThreshold `yaml:"medium"`
}

// DefaultPolicy returns the shipped severity thresholds.
func DefaultPolicy() Policy {
	return Policy{
		ReportingThreshold: 0.3,
		Critical:           TierThreshold{MinProbability: 0.85, MaxRULDays: 3},
		High:               TierThreshold{MinProbability: 0.65, MaxRULDays: 14},
		Medium:             TierThreshold{MinProbability: 0.45, MaxRULDays: 30},
	}
}

// Validate rejects threshold tables that are not ordered from most to least
// severe; an unordered table would make severity non-monotonic in p.
func (p Policy) Validate() error {
	if p.ReportingThreshold <= 0 || p.ReportingThreshold >= 1 {
		return fmt.Errorf("reporting threshold %.2f outside (0,1)", p.ReportingThreshold)
	}
	if p.Critical.MinProbability < p.High.MinProbability || p.High.MinProbability < p.Medium.MinProbability {
		return fmt.Errorf("tier probability thresholds must not increase toward lower tiers")
	}
	if p.Medium.MinProbability < p.ReportingThreshold {
		return fmt.Errorf("medium tier threshold %.2f below reporting threshold %.2f",
			p.Medium.MinProbability, p.ReportingThreshold)
	}
	if p.Critical.MaxRULDays > p.High.MaxRULDays || p.High.MaxRULDays > p.Medium.MaxRULDays {
		return fmt.Errorf("tier RUL thresholds must not decrease toward lower tiers")
	}
	return nil
}

// Severity maps a failure probability and RUL onto a tier. Tiers are checked
// from most severe down, so anything qualifying for two tiers lands in the
// worse one: maintenance warnings over-warn rather than under-warn.
func (p Policy) Severity(probability, rulDays float64) models.Severity {
	switch {
	case probability >= p.Critical.MinProbability || rulDays <= p.Critical.MaxRULDays:
		return models.SeverityCritical
	case probability >= p.High.MinProbability || rulDays <= p.High.MaxRULDays:
		return models.SeverityHigh
	case probability >= p.Medium.MinProbability || rulDays <= p.Medium.MaxRULDays:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Action maps a severity tier to the recommended owner action.
func Action(severity models.Severity) models.RecommendedAction {
	switch severity {
	case models.SeverityCritical:
		return models.ActionImmediate
	case models.SeverityHigh, models.SeverityMedium:
		return models.ActionScheduleSoon
	default:
		return models.ActionMonitor
	}
}
