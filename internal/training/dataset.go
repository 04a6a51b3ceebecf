package training

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/torqcare/torqcare-diagnosis/internal/models"
)

// LoadCSV reads a labelled telemetry dataset. The file must carry a header
// row; feature columns are matched by the schema field names, label columns
// are failed, rul_hours, and an optional component. Rows that fail to parse
// are skipped with a warning rather than aborting the run.
func LoadCSV(path string, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	indices := make(map[string]int, len(header))
	for i, h := range header {
		indices[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := indices["vehicle_id"]; !ok {
		return nil, fmt.Errorf("dataset missing vehicle_id column")
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, fmt.Errorf("read line %d: %w", line+1, err)
		}
		line++

		rec, err := rowToRecord(row, indices)
		if err != nil {
			logger.Warn("skipping dataset row", slog.Int("line", line), slog.Any("error", err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func rowToRecord(row []string, indices map[string]int) (Record, error) {
	get := func(key string) string {
		if idx, ok := indices[key]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rec Record
	rec.Reading.VehicleID = get("vehicle_id")
	if rec.Reading.VehicleID == "" {
		return rec, fmt.Errorf("missing vehicle_id")
	}
	if ts := get("timestamp"); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return rec, fmt.Errorf("invalid timestamp: %w", err)
		}
		rec.Reading.Timestamp = parsed
	}

	for name, set := range readingSetters {
		raw := get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, fmt.Errorf("invalid %s: %w", name, err)
		}
		set(&rec.Reading, v)
	}

	switch strings.ToLower(get("failed")) {
	case "1", "true", "yes":
		rec.Failed = true
	}
	if raw := get("rul_hours"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, fmt.Errorf("invalid rul_hours: %w", err)
		}
		rec.RULHours = v
	}
	if comp := strings.ToLower(get("component")); comp != "" {
		rec.Component = models.Component(comp)
	}
	return rec, nil
}

// readingSetters maps CSV column names onto SensorReading fields. Column
// names follow the feature schema names.
var readingSetters = map[string]func(*models.SensorReading, float64){
	"soc":               func(r *models.SensorReading, v float64) { r.SoC = &v },
	"soh":               func(r *models.SensorReading, v float64) { r.SoH = &v },
	"battery_voltage":   func(r *models.SensorReading, v float64) { r.BatteryVoltage = &v },
	"battery_current":   func(r *models.SensorReading, v float64) { r.BatteryCurrent = &v },
	"battery_temp":      func(r *models.SensorReading, v float64) { r.BatteryTemp = &v },
	"charge_cycles":     func(r *models.SensorReading, v float64) { r.ChargeCycles = &v },
	"motor_temp":        func(r *models.SensorReading, v float64) { r.MotorTemp = &v },
	"motor_vibration":   func(r *models.SensorReading, v float64) { r.MotorVibration = &v },
	"motor_torque":      func(r *models.SensorReading, v float64) { r.MotorTorque = &v },
	"motor_rpm":         func(r *models.SensorReading, v float64) { r.MotorRPM = &v },
	"power_consumption": func(r *models.SensorReading, v float64) { r.PowerConsumption = &v },
	"brake_pad_wear":    func(r *models.SensorReading, v float64) { r.BrakePadWear = &v },
	"brake_pressure":    func(r *models.SensorReading, v float64) { r.BrakePressure = &v },
	"regen_efficiency":  func(r *models.SensorReading, v float64) { r.RegenEfficiency = &v },
	"tire_pressure_fl":  func(r *models.SensorReading, v float64) { r.TirePressureFL = &v },
	"tire_pressure_fr":  func(r *models.SensorReading, v float64) { r.TirePressureFR = &v },
	"tire_pressure_rl":  func(r *models.SensorReading, v float64) { r.TirePressureRL = &v },
	"tire_pressure_rr":  func(r *models.SensorReading, v float64) { r.TirePressureRR = &v },
	"tire_temp_avg":     func(r *models.SensorReading, v float64) { r.TireTempAvg = &v },
	"suspension_load":   func(r *models.SensorReading, v float64) { r.SuspensionLoad = &v },
	"ambient_temp":      func(r *models.SensorReading, v float64) { r.AmbientTemp = &v },
	"ambient_humidity":  func(r *models.SensorReading, v float64) { r.AmbientHumidity = &v },
	"load_weight":       func(r *models.SensorReading, v float64) { r.LoadWeight = &v },
	"driving_speed":     func(r *models.SensorReading, v float64) { r.DrivingSpeed = &v },
	"route_roughness":   func(r *models.SensorReading, v float64) { r.RouteRoughness = &v },
}
