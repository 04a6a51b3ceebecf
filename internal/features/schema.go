package features

import (
	"fmt"

	"github.com/torqcare/torqcare-diagnosis/internal/models"
)

// SchemaVersion tags the compiled-in field order. Model artifacts carry the
// version they were trained against; a mismatch at load time is fatal.
const SchemaVersion = "torqcare.features.v1"

// Field describes one position in the feature vector: its wire name, the
// physical range its values are expected to fall in, and how to read it off
// a SensorReading.
type Field struct {
	Name string
	Min  float64
	Max  float64

	value func(*models.SensorReading) *float64
}

// Value reads the field off a reading; nil means the sensor did not report.
func (f Field) Value(r *models.SensorReading) *float64 {
	return f.value(r)
}

// Fields returns the feature field table. The slice order IS the feature
// vector order shared by the training pipeline and the model bank; reordering
// entries is a breaking change and requires bumping SchemaVersion.
func Fields() []Field {
	return []Field{
		{Name: "soc", Min: 0, Max: 100, value: func(r *models.SensorReading) *float64 { return r.SoC }},
		{Name: "soh", Min: 0, Max: 100, value: func(r *models.SensorReading) *float64 { return r.SoH }},
		{Name: "battery_voltage", Min: 250, Max: 500, value: func(r *models.SensorReading) *float64 { return r.BatteryVoltage }},
		{Name: "battery_current", Min: -200, Max: 300, value: func(r *models.SensorReading) *float64 { return r.BatteryCurrent }},
		{Name: "battery_temp", Min: -20, Max: 90, value: func(r *models.SensorReading) *float64 { return r.BatteryTemp }},
		{Name: "charge_cycles", Min: 0, Max: 5000, value: func(r *models.SensorReading) *float64 { return r.ChargeCycles }},
		{Name: "motor_temp", Min: -20, Max: 160, value: func(r *models.SensorReading) *float64 { return r.MotorTemp }},
		{Name: "motor_vibration", Min: 0, Max: 10, value: func(r *models.SensorReading) *float64 { return r.MotorVibration }},
		{Name: "motor_torque", Min: -100, Max: 600, value: func(r *models.SensorReading) *float64 { return r.MotorTorque }},
		{Name: "motor_rpm", Min: 0, Max: 12000, value: func(r *models.SensorReading) *float64 { return r.MotorRPM }},
		{Name: "power_consumption", Min: 0, Max: 200, value: func(r *models.SensorReading) *float64 { return r.PowerConsumption }},
		{Name: "brake_pad_wear", Min: 0, Max: 15, value: func(r *models.SensorReading) *float64 { return r.BrakePadWear }},
		{Name: "brake_pressure", Min: 0, Max: 200, value: func(r *models.SensorReading) *float64 { return r.BrakePressure }},
		{Name: "regen_efficiency", Min: 0, Max: 100, value: func(r *models.SensorReading) *float64 { return r.RegenEfficiency }},
		{Name: "tire_pressure_fl", Min: 15, Max: 50, value: func(r *models.SensorReading) *float64 { return r.TirePressureFL }},
		{Name: "tire_pressure_fr", Min: 15, Max: 50, value: func(r *models.SensorReading) *float64 { return r.TirePressureFR }},
		{Name: "tire_pressure_rl", Min: 15, Max: 50, value: func(r *models.SensorReading) *float64 { return r.TirePressureRL }},
		{Name: "tire_pressure_rr", Min: 15, Max: 50, value: func(r *models.SensorReading) *float64 { return r.TirePressureRR }},
		{Name: "tire_temp_avg", Min: -20, Max: 90, value: func(r *models.SensorReading) *float64 { return r.TireTempAvg }},
		{Name: "suspension_load", Min: 0, Max: 1500, value: func(r *models.SensorReading) *float64 { return r.SuspensionLoad }},
		{Name: "ambient_temp", Min: -40, Max: 55, value: func(r *models.SensorReading) *float64 { return r.AmbientTemp }},
		{Name: "ambient_humidity", Min: 0, Max: 100, value: func(r *models.SensorReading) *float64 { return r.AmbientHumidity }},
		{Name: "load_weight", Min: 0, Max: 1200, value: func(r *models.SensorReading) *float64 { return r.LoadWeight }},
		{Name: "driving_speed", Min: 0, Max: 220, value: func(r *models.SensorReading) *float64 { return r.DrivingSpeed }},
		{Name: "route_roughness", Min: 0, Max: 3, value: func(r *models.SensorReading) *float64 { return r.RouteRoughness }},
	}
}

// FieldNames returns the feature names in vector order.
func FieldNames() []string {
	fields := Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Schema binds a field order to the default-fill constants frozen at training
// time. It is persisted alongside the model artifacts and loaded back by the
// serving process.
type Schema struct {
	Version    string    `json:"version"`
	FieldNames []string  `json:"field_names"`
	Defaults   []float64 `json:"defaults"`
}

// Validate checks the schema against the compiled-in field table.
func (s Schema) Validate() error {
	if s.Version != SchemaVersion {
		return &SchemaMismatchError{Got: s.Version, Want: SchemaVersion}
	}
	names := FieldNames()
	if len(s.FieldNames) != len(names) {
		return &SchemaMismatchError{
			Got:  s.Version,
			Want: SchemaVersion,
			Detail: fmt.Sprintf("schema has %d fields, extractor expects %d",
				len(s.FieldNames), len(names)),
		}
	}
	for i, name := range names {
		if s.FieldNames[i] != name {
			return &SchemaMismatchError{
				Got:    s.Version,
				Want:   SchemaVersion,
				Detail: fmt.Sprintf("field %d is %q, extractor expects %q", i, s.FieldNames[i], name),
			}
		}
	}
	if len(s.Defaults) != len(names) {
		return &SchemaMismatchError{
			Got:  s.Version,
			Want: SchemaVersion,
			Detail: fmt.Sprintf("schema carries %d defaults for %d fields",
				len(s.Defaults), len(names)),
		}
	}
	return nil
}
