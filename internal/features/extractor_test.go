package features

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/torqcare/torqcare-diagnosis/internal/models"
)

func testSchema() Schema {
	names := FieldNames()
	defaults := make([]float64, len(names))
	for i := range defaults {
		// Distinct per-field defaults so substitution picks the right one.
		defaults[i] = float64(i) + 0.5
	}
	return Schema{Version: SchemaVersion, FieldNames: names, Defaults: defaults}
}

func fullReading() models.SensorReading {
	return models.SensorReading{
		VehicleID:        "EV-00001",
		Timestamp:        time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		SoC:              models.Float(75),
		SoH:              models.Float(95),
		BatteryVoltage:   models.Float(400),
		BatteryCurrent:   models.Float(50),
		BatteryTemp:      models.Float(25),
		ChargeCycles:     models.Float(120),
		MotorTemp:        models.Float(65),
		MotorVibration:   models.Float(0.5),
		MotorTorque:      models.Float(250),
		MotorRPM:         models.Float(3000),
		PowerConsumption: models.Float(45),
		BrakePadWear:     models.Float(8),
		BrakePressure:    models.Float(100),
		RegenEfficiency:  models.Float(85),
		TirePressureFL:   models.Float(35),
		TirePressureFR:   models.Float(35),
		TirePressureRL:   models.Float(35),
		TirePressureRR:   models.Float(35),
		TireTempAvg:      models.Float(30),
		SuspensionLoad:   models.Float(500),
		AmbientTemp:      models.Float(22),
		AmbientHumidity:  models.Float(60),
		LoadWeight:       models.Float(200),
		DrivingSpeed:     models.Float(60),
		RouteRoughness:   models.Float(1),
	}
}

func fieldIndex(t *testing.T, name string) int {
	t.Helper()
	for i, n := range FieldNames() {
		if n == name {
			return i
		}
	}
	t.Fatalf("unknown field %q", name)
	return -1
}

func TestExtractFixedLengthAndOrder(t *testing.T) {
	extractor, err := NewExtractor(testSchema())
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	vec, err := extractor.Extract(fullReading())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(vec.Values) != len(FieldNames()) {
		t.Fatalf("expected %d features, got %d", len(FieldNames()), len(vec.Values))
	}
	if got := vec.Values[fieldIndex(t, "battery_temp")]; got != 25 {
		t.Fatalf("battery_temp at wrong position: got %f", got)
	}
	if got := vec.Values[fieldIndex(t, "route_roughness")]; got != 1 {
		t.Fatalf("route_roughness at wrong position: got %f", got)
	}
	if len(vec.Imputed) != 0 || len(vec.OutOfRange) != 0 {
		t.Fatalf("full in-range reading should carry no provenance flags: %+v", vec)
	}
}

func TestExtractSubstitutesFrozenDefault(t *testing.T) {
	schema := testSchema()
	extractor, err := NewExtractor(schema)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	reading := fullReading()
	reading.TirePressureFL = nil

	vec, err := extractor.Extract(reading)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	idx := fieldIndex(t, "tire_pressure_fl")
	if vec.Values[idx] != schema.Defaults[idx] {
		t.Fatalf("expected default %f, got %f", schema.Defaults[idx], vec.Values[idx])
	}
	if !reflect.DeepEqual(vec.Imputed, []string{"tire_pressure_fl"}) {
		t.Fatalf("expected tire_pressure_fl imputed, got %v", vec.Imputed)
	}

	// All other fields must be untouched.
	full, err := extractor.Extract(fullReading())
	if err != nil {
		t.Fatalf("extract full: %v", err)
	}
	for i := range full.Values {
		if i == idx {
			continue
		}
		if vec.Values[i] != full.Values[i] {
			t.Fatalf("field %s changed by imputation: %f vs %f",
				FieldNames()[i], vec.Values[i], full.Values[i])
		}
	}
}

func TestExtractMissingFieldMatchesExplicitDefault(t *testing.T) {
	schema := testSchema()
	extractor, err := NewExtractor(schema)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	idx := fieldIndex(t, "tire_pressure_fl")

	missing := fullReading()
	missing.TirePressureFL = nil
	explicit := fullReading()
	explicit.TirePressureFL = models.Float(schema.Defaults[idx])

	vecMissing, err := extractor.Extract(missing)
	if err != nil {
		t.Fatalf("extract missing: %v", err)
	}
	vecExplicit, err := extractor.Extract(explicit)
	if err != nil {
		t.Fatalf("extract explicit: %v", err)
	}

	// Same numbers, different provenance.
	if !reflect.DeepEqual(vecMissing.Values, vecExplicit.Values) {
		t.Fatalf("vectors differ beyond provenance")
	}
	if len(vecMissing.Imputed) != 1 || len(vecExplicit.Imputed) != 0 {
		t.Fatalf("provenance mismatch: %v vs %v", vecMissing.Imputed, vecExplicit.Imputed)
	}
}

func TestExtractFlagsOutOfRange(t *testing.T) {
	extractor, err := NewExtractor(testSchema())
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	reading := fullReading()
	reading.BatteryTemp = models.Float(150) // beyond physical range

	vec, err := extractor.Extract(reading)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if vec.Values[fieldIndex(t, "battery_temp")] != 150 {
		t.Fatalf("out-of-range value must be kept as reported")
	}
	if !reflect.DeepEqual(vec.OutOfRange, []string{"battery_temp"}) {
		t.Fatalf("expected battery_temp flagged, got %v", vec.OutOfRange)
	}
}

func TestExtractRejectsMissingIdentity(t *testing.T) {
	extractor, err := NewExtractor(testSchema())
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	reading := fullReading()
	reading.VehicleID = ""
	var invalid *InvalidReadingError
	if _, err := extractor.Extract(reading); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidReadingError, got %v", err)
	}

	reading = fullReading()
	reading.Timestamp = time.Time{}
	if _, err := extractor.Extract(reading); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidReadingError for missing timestamp, got %v", err)
	}
}

func TestSchemaValidate(t *testing.T) {
	schema := testSchema()
	if err := schema.Validate(); err != nil {
		t.Fatalf("valid schema rejected: %v", err)
	}

	var mismatch *SchemaMismatchError

	wrongVersion := testSchema()
	wrongVersion.Version = "torqcare.features.v0"
	if err := wrongVersion.Validate(); !errors.As(err, &mismatch) {
		t.Fatalf("expected SchemaMismatchError for version, got %v", err)
	}

	reordered := testSchema()
	reordered.FieldNames[0], reordered.FieldNames[1] = reordered.FieldNames[1], reordered.FieldNames[0]
	if err := reordered.Validate(); !errors.As(err, &mismatch) {
		t.Fatalf("expected SchemaMismatchError for field order, got %v", err)
	}

	short := testSchema()
	short.Defaults = short.Defaults[:3]
	if err := short.Validate(); !errors.As(err, &mismatch) {
		t.Fatalf("expected SchemaMismatchError for defaults length, got %v", err)
	}
}

func TestFieldRangesAreSane(t *testing.T) {
	for _, field := range Fields() {
		if math.IsNaN(field.Min) || math.IsNaN(field.Max) || field.Min >= field.Max {
			t.Fatalf("field %s has invalid range [%f, %f]", field.Name, field.Min, field.Max)
		}
	}
}
