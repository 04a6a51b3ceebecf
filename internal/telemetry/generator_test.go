package telemetry

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/torqcare/torqcare-diagnosis/internal/features"
	"github.com/torqcare/torqcare-diagnosis/internal/models"
	"github.com/torqcare/torqcare-diagnosis/internal/training"
)

func TestGenerateShape(t *testing.T) {
	gen := NewGenerator(30, 50, 7)
	records := gen.Generate()

	if len(records) != 30*50 {
		t.Fatalf("expected %d records, got %d", 30*50, len(records))
	}

	vehicles := make(map[string]bool)
	failed := 0
	for _, rec := range records {
		vehicles[rec.Reading.VehicleID] = true
		if rec.Reading.VehicleID == "" || rec.Reading.Timestamp.IsZero() {
			t.Fatalf("record missing identity: %+v", rec.Reading)
		}
		for _, f := range features.Fields() {
			if f.Value(&rec.Reading) == nil {
				t.Fatalf("generated reading missing %s", f.Name)
			}
		}
		if rec.Failed {
			failed++
			if rec.Component == models.ComponentNone || rec.Component == "" {
				t.Fatalf("failed record must carry a component label")
			}
			if rec.RULHours > 1000 {
				t.Fatalf("failed record has rul %.0f hours", rec.RULHours)
			}
		}
	}
	if len(vehicles) != 30 {
		t.Fatalf("expected 30 vehicles, got %d", len(vehicles))
	}
	// 30% of vehicles fail, and only the tail of a failing window is labelled.
	if failed == 0 {
		t.Fatalf("expected some failed records at this fleet size")
	}
	if failed > len(records)/2 {
		t.Fatalf("%d of %d records failed, far above the injection rate", failed, len(records))
	}
}

func TestGenerateTinyPerVehicleWindows(t *testing.T) {
	// Per-vehicle counts too small for the failure ramp windows must still
	// generate, with every sensor value finite.
	for _, perVehicle := range []int{1, 2, 3, 5} {
		records := NewGenerator(20, perVehicle, 42).Generate()
		if len(records) != 20*perVehicle {
			t.Fatalf("perVehicle=%d: expected %d records, got %d",
				perVehicle, 20*perVehicle, len(records))
		}
		for i, rec := range records {
			for _, f := range features.Fields() {
				v := f.Value(&rec.Reading)
				if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
					t.Fatalf("perVehicle=%d record %d field %s: %v", perVehicle, i, f.Name, v)
				}
			}
		}
	}
}

func TestGenerateDeterministicPerSeed(t *testing.T) {
	first := NewGenerator(10, 40, 99).Generate()
	second := NewGenerator(10, 40, 99).Generate()

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Reading.VehicleID != b.Reading.VehicleID || a.Failed != b.Failed ||
			a.Component != b.Component || a.RULHours != b.RULHours {
			t.Fatalf("record %d differs between runs with the same seed", i)
		}
		if *a.Reading.SoH != *b.Reading.SoH || *a.Reading.MotorTemp != *b.Reading.MotorTemp {
			t.Fatalf("record %d sensor values differ between runs with the same seed", i)
		}
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	records := NewGenerator(5, 20, 3).Generate()
	path := filepath.Join(t.TempDir(), "fleet.csv")

	if err := WriteCSV(path, records); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	loaded, err := training.LoadCSV(path, nil)
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("expected %d records back, got %d", len(records), len(loaded))
	}

	for i := range records {
		want, got := records[i], loaded[i]
		if got.Reading.VehicleID != want.Reading.VehicleID {
			t.Fatalf("record %d vehicle %q, want %q", i, got.Reading.VehicleID, want.Reading.VehicleID)
		}
		if got.Failed != want.Failed || got.Component != want.Component {
			t.Fatalf("record %d labels differ: %+v vs %+v", i, got, want)
		}
		if math.Abs(got.RULHours-want.RULHours) > 0.1 {
			t.Fatalf("record %d rul %.1f, want %.1f", i, got.RULHours, want.RULHours)
		}
		// Values are written with four decimals.
		for _, f := range features.Fields() {
			w := f.Value(&want.Reading)
			g := f.Value(&got.Reading)
			if g == nil {
				t.Fatalf("record %d lost field %s", i, f.Name)
			}
			if math.Abs(*g-*w) > 1e-3 {
				t.Fatalf("record %d field %s: %.4f vs %.4f", i, f.Name, *g, *w)
			}
		}
	}
}

func TestGeneratedFleetTrains(t *testing.T) {
	records := NewGenerator(40, 60, 11).Generate()

	pipeline := training.NewPipeline(nil, training.Options{Epochs: 120})
	_, report, err := pipeline.Train(records)
	if err != nil {
		t.Fatalf("train on generated fleet: %v", err)
	}
	if report.Samples != len(records) {
		t.Fatalf("report samples %d, want %d", report.Samples, len(records))
	}
	// Injected faults are noisy, so this only guards against a fit that
	// collapsed entirely.
	if report.FailureAccuracy < 0.8 {
		t.Fatalf("failure accuracy %.2f on generated fleet", report.FailureAccuracy)
	}
}
