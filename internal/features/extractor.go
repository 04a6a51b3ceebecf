package features

import (
	"github.com/torqcare/torqcare-diagnosis/internal/models"
)

// Vector is a feature vector in the contract-fixed field order, plus
// provenance about how it was produced. Provenance never feeds the models;
// it only annotates the diagnosis for the caller.
type Vector struct {
	Values []float64
	// Imputed lists fields that were absent from the reading and filled
	// with the training-time default.
	Imputed []string
	// OutOfRange lists fields whose value fell outside the documented
	// physical range. The value is kept as reported.
	OutOfRange []string
}

// Extractor converts sensor readings into fixed-order feature vectors using
// the default-fill constants frozen into the training-time schema. It holds
// no mutable state and is safe for concurrent use.
type Extractor struct {
	fields   []Field
	defaults []float64
}

// NewExtractor builds an extractor from a persisted schema. The schema must
// match the compiled-in field order and version.
func NewExtractor(schema Schema) (*Extractor, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		fields:   Fields(),
		defaults: append([]float64(nil), schema.Defaults...),
	}, nil
}

// Extract produces the feature vector for one reading. Present fields are
// copied as reported; absent fields take the per-field training-time default.
func (e *Extractor) Extract(reading models.SensorReading) (Vector, error) {
	if reading.VehicleID == "" {
		return Vector{}, &InvalidReadingError{Reason: "missing vehicle_id"}
	}
	if reading.Timestamp.IsZero() {
		return Vector{}, &InvalidReadingError{Reason: "missing timestamp"}
	}

	vec := Vector{Values: make([]float64, len(e.fields))}
	for i, field := range e.fields {
		value := field.value(&reading)
		if value == nil {
			vec.Values[i] = e.defaults[i]
			vec.Imputed = append(vec.Imputed, field.Name)
			continue
		}
		vec.Values[i] = *value
		if *value < field.Min || *value > field.Max {
			vec.OutOfRange = append(vec.OutOfRange, field.Name)
		}
	}
	return vec, nil
}
