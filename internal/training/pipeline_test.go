package training

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/torqcare/torqcare-diagnosis/internal/features"
	"github.com/torqcare/torqcare-diagnosis/internal/models"
	"github.com/torqcare/torqcare-diagnosis/internal/predictors"
)

// healthyReading fills every sensor with mid-range values; the small
// per-sample offset keeps feature columns from collapsing to constants.
func healthyReading(i int) models.SensorReading {
	jitter := float64(i%5) * 0.1
	return models.SensorReading{
		VehicleID:        "EV-00001",
		Timestamp:        time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		SoC:              models.Float(70 + jitter),
		SoH:              models.Float(95 + jitter),
		BatteryVoltage:   models.Float(400 + jitter),
		BatteryCurrent:   models.Float(50 + jitter),
		BatteryTemp:      models.Float(30 + jitter),
		ChargeCycles:     models.Float(200 + jitter),
		MotorTemp:        models.Float(60 + jitter),
		MotorVibration:   models.Float(0.5 + jitter),
		MotorTorque:      models.Float(150 + jitter),
		MotorRPM:         models.Float(3000 + jitter),
		PowerConsumption: models.Float(18 + jitter),
		BrakePadWear:     models.Float(8 + jitter),
		BrakePressure:    models.Float(95 + jitter),
		RegenEfficiency:  models.Float(85 + jitter),
		TirePressureFL:   models.Float(33 + jitter),
		TirePressureFR:   models.Float(33 + jitter),
		TirePressureRL:   models.Float(33 + jitter),
		TirePressureRR:   models.Float(33 + jitter),
		TireTempAvg:      models.Float(30 + jitter),
		SuspensionLoad:   models.Float(450 + jitter),
		AmbientTemp:      models.Float(20 + jitter),
		AmbientHumidity:  models.Float(50 + jitter),
		LoadWeight:       models.Float(300 + jitter),
		DrivingSpeed:     models.Float(60 + jitter),
		RouteRoughness:   models.Float(0),
	}
}

// batteryFailureReading degrades the battery signature: low state of health,
// overheating pack, sagging voltage.
func batteryFailureReading(i int) models.SensorReading {
	r := healthyReading(i)
	r.VehicleID = "EV-00002"
	r.SoH = models.Float(60 + float64(i%5)*0.1)
	r.BatteryTemp = models.Float(70 + float64(i%5)*0.1)
	r.BatteryVoltage = models.Float(330 + float64(i%5)*0.1)
	return r
}

func trainingRecords() []Record {
	records := make([]Record, 0, 80)
	for i := 0; i < 40; i++ {
		records = append(records, Record{
			Reading:  healthyReading(i),
			Failed:   false,
			RULHours: 1200,
		})
	}
	for i := 0; i < 40; i++ {
		records = append(records, Record{
			Reading:  batteryFailureReading(i),
			Failed:   true,
			RULHours: 48,
		})
	}
	return records
}

func TestTrainSeparatesFailures(t *testing.T) {
	pipeline := NewPipeline(nil, Options{})

	artifacts, report, err := pipeline.Train(trainingRecords())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if report.Samples != 80 {
		t.Fatalf("expected 80 samples, got %d", report.Samples)
	}
	if report.FailureAccuracy < 0.9 {
		t.Fatalf("failure accuracy %.2f below 0.9 on separable data", report.FailureAccuracy)
	}
	// Every failing record matches the battery rule signature.
	if report.ComponentAccuracy < 0.9 {
		t.Fatalf("component accuracy %.2f below 0.9", report.ComponentAccuracy)
	}
	if report.RULRMSEDays > 10 {
		t.Fatalf("rul rmse %.1f days too large for a two-cluster dataset", report.RULRMSEDays)
	}
	if artifacts.Schema.Version != features.SchemaVersion {
		t.Fatalf("schema version %q, want %q", artifacts.Schema.Version, features.SchemaVersion)
	}
}

func TestTrainRejectsUnobservedField(t *testing.T) {
	records := trainingRecords()
	// A dataset that never reports a sensor leaves nothing to freeze a
	// default from; zero would fabricate a reading at serving time.
	for i := range records {
		records[i].Reading.BatteryTemp = nil
	}

	pipeline := NewPipeline(nil, Options{Epochs: 10})
	_, _, err := pipeline.Train(records)
	if err == nil {
		t.Fatalf("expected error for a field with no observations")
	}
	if !strings.Contains(err.Error(), "battery_temp") {
		t.Fatalf("error should name the field: %v", err)
	}
}

func TestTrainRejectsTinyDatasets(t *testing.T) {
	pipeline := NewPipeline(nil, Options{})
	records := trainingRecords()[:5]
	if _, _, err := pipeline.Train(records); err == nil {
		t.Fatalf("expected error for undersized dataset")
	}
}

func TestTrainFreezesDefaultsFromObservedMeans(t *testing.T) {
	records := trainingRecords()
	// Drop ambient humidity from half the samples; the frozen default must be
	// the mean of the values that were reported, not of the filled column.
	for i := range records {
		if i%2 == 0 {
			records[i].Reading.AmbientHumidity = nil
		} else {
			records[i].Reading.AmbientHumidity = models.Float(40 + float64(i))
		}
	}

	pipeline := NewPipeline(nil, Options{Epochs: 10})
	artifacts, _, err := pipeline.Train(records)
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	sum, n := 0.0, 0
	for i := range records {
		if v := records[i].Reading.AmbientHumidity; v != nil {
			sum += *v
			n++
		}
	}
	want := sum / float64(n)

	idx := fieldIndex(t, artifacts.Schema.FieldNames, "ambient_humidity")
	if got := artifacts.Schema.Defaults[idx]; math.Abs(got-want) > 1e-9 {
		t.Fatalf("default for ambient_humidity = %.4f, want %.4f", got, want)
	}
}

func TestTrainedArtifactsRoundTrip(t *testing.T) {
	pipeline := NewPipeline(nil, Options{})
	artifacts, _, err := pipeline.Train(trainingRecords())
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	dir := t.TempDir()
	if err := artifacts.Save(dir); err != nil {
		t.Fatalf("save artifacts: %v", err)
	}
	bank, err := predictors.Load(dir, nil)
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	extractor, err := features.NewExtractor(bank.Schema())
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	healthyVec, err := extractor.Extract(healthyReading(0))
	if err != nil {
		t.Fatalf("extract healthy: %v", err)
	}
	failingVec, err := extractor.Extract(batteryFailureReading(0))
	if err != nil {
		t.Fatalf("extract failing: %v", err)
	}

	healthyP, err := bank.PredictFailure(healthyVec)
	if err != nil {
		t.Fatalf("predict healthy: %v", err)
	}
	failingP, err := bank.PredictFailure(failingVec)
	if err != nil {
		t.Fatalf("predict failing: %v", err)
	}
	if failingP <= healthyP {
		t.Fatalf("failing reading scored %.3f, healthy %.3f; expected failing to score higher",
			failingP, healthyP)
	}

	component, err := bank.PredictComponent(failingVec)
	if err != nil {
		t.Fatalf("predict component: %v", err)
	}
	if component.Component != models.ComponentBattery {
		t.Fatalf("expected battery component for failing reading, got %s", component.Component)
	}
}

func TestLabelComponent(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]float64
		want   models.Component
	}{
		{
			name:   "battery signature",
			values: map[string]float64{"soh": 60, "battery_temp": 70, "battery_voltage": 400},
			want:   models.ComponentBattery,
		},
		{
			name:   "motor signature",
			values: map[string]float64{"motor_temp": 110, "motor_vibration": 2.2},
			want:   models.ComponentMotor,
		},
		{
			name:   "brake signature",
			values: map[string]float64{"brake_pad_wear": 1.5, "brake_pressure": 50, "regen_efficiency": 40},
			want:   models.ComponentBrake,
		},
		{
			name:   "tire signature",
			values: map[string]float64{"tire_pressure_fl": 22, "tire_temp_avg": 55},
			want:   models.ComponentTire,
		},
		{
			name:   "suspension signature",
			values: map[string]float64{"suspension_load": 850, "route_roughness": 3},
			want:   models.ComponentSuspension,
		},
		{
			name:   "healthy values trigger nothing",
			values: map[string]float64{"soh": 95, "battery_temp": 30, "motor_temp": 60},
			want:   models.ComponentNone,
		},
		{
			// Two battery matches (0.6) outrank two motor matches (0.5).
			name: "weights break ties",
			values: map[string]float64{
				"soh": 60, "battery_temp": 70,
				"motor_temp": 110, "motor_vibration": 2.2,
			},
			want: models.ComponentBattery,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := labelComponent(tc.values); got != tc.want {
				t.Fatalf("labelComponent = %s, want %s", got, tc.want)
			}
		})
	}
}

func fieldIndex(t *testing.T, names []string, name string) int {
	t.Helper()
	for i, n := range names {
		if n == name {
			return i
		}
	}
	t.Fatalf("field %q not in schema", name)
	return -1
}
