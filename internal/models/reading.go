package models

import "time"

// SensorReading is one telemetry sample for one vehicle at one timestamp.
// Sensor fields are pointers: a nil field means the sensor did not report,
// which is distinct from a reported zero.
type SensorReading struct {
	VehicleID string    `json:"vehicle_id"`
	Timestamp time.Time `json:"timestamp"`

	SoC              *float64 `json:"soc,omitempty"`
	SoH              *float64 `json:"soh,omitempty"`
	BatteryVoltage   *float64 `json:"battery_voltage,omitempty"`
	BatteryCurrent   *float64 `json:"battery_current,omitempty"`
	BatteryTemp      *float64 `json:"battery_temp,omitempty"`
	ChargeCycles     *float64 `json:"charge_cycles,omitempty"`
	MotorTemp        *float64 `json:"motor_temp,omitempty"`
	MotorVibration   *float64 `json:"motor_vibration,omitempty"`
	MotorTorque      *float64 `json:"motor_torque,omitempty"`
	MotorRPM         *float64 `json:"motor_rpm,omitempty"`
	PowerConsumption *float64 `json:"power_consumption,omitempty"`
	BrakePadWear     *float64 `json:"brake_pad_wear,omitempty"`
	BrakePressure    *float64 `json:"brake_pressure,omitempty"`
	RegenEfficiency  *float64 `json:"regen_efficiency,omitempty"`
	TirePressureFL   *float64 `json:"tire_pressure_fl,omitempty"`
	TirePressureFR   *float64 `json:"tire_pressure_fr,omitempty"`
	TirePressureRL   *float64 `json:"tire_pressure_rl,omitempty"`
	TirePressureRR   *float64 `json:"tire_pressure_rr,omitempty"`
	TireTempAvg      *float64 `json:"tire_temp_avg,omitempty"`
	SuspensionLoad   *float64 `json:"suspension_load,omitempty"`
	AmbientTemp      *float64 `json:"ambient_temp,omitempty"`
	AmbientHumidity  *float64 `json:"ambient_humidity,omitempty"`
	LoadWeight       *float64 `json:"load_weight,omitempty"`
	DrivingSpeed     *float64 `json:"driving_speed,omitempty"`
	RouteRoughness   *float64 `json:"route_roughness,omitempty"`
}

// Float returns a pointer to v, for building readings field by field.
func Float(v float64) *float64 {
	return &v
}
