package telemetry

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/torqcare/torqcare-diagnosis/internal/models"
	"github.com/torqcare/torqcare-diagnosis/internal/training"
)

// scenario is one injected failure mode: the failing component plus how its
// symptoms drift as the fault develops.
type scenario struct {
	component models.Component
	inject    func(r *models.SensorReading, intensity float64, rng *rand.Rand)
}

var scenarios = []scenario{
	{
		component: models.ComponentBattery,
		inject: func(r *models.SensorReading, intensity float64, rng *rand.Rand) {
			*r.SoH -= intensity * 20
			*r.BatteryTemp += intensity * 30
			*r.BatteryVoltage += (rng.Float64()*100 - 50) * intensity
		},
	},
	{
		component: models.ComponentMotor,
		inject: func(r *models.SensorReading, intensity float64, rng *rand.Rand) {
			*r.MotorTemp += intensity * 40
			*r.MotorVibration += intensity * 2.5
			*r.MotorTorque *= 1 + (rng.Float64()*0.6-0.3)*intensity
		},
	},
	{
		component: models.ComponentBrake,
		inject: func(r *models.SensorReading, intensity float64, rng *rand.Rand) {
			*r.BrakePadWear = max(*r.BrakePadWear-intensity*6, 0.5)
			*r.BrakePressure -= intensity * 50
			*r.RegenEfficiency = max(*r.RegenEfficiency-intensity*40, 30)
		},
	},
	{
		component: models.ComponentTire,
		inject: func(r *models.SensorReading, intensity float64, rng *rand.Rand) {
			*r.TirePressureFL = max(*r.TirePressureFL-intensity*10, 20)
			*r.TireTempAvg += intensity * 20
		},
	},
	{
		component: models.ComponentSuspension,
		inject: func(r *models.SensorReading, intensity float64, rng *rand.Rand) {
			*r.SuspensionLoad += intensity * 300
			*r.RouteRoughness = min(*r.RouteRoughness+2, 3)
		},
	},
}

// Generator synthesizes fleet telemetry with gradually developing faults.
// The same seed reproduces the same dataset.
type Generator struct {
	vehicles    int
	perVehicle  int
	failureRate float64
	rng         *rand.Rand
}

// NewGenerator builds a generator for the given fleet size.
func NewGenerator(vehicles, readingsPerVehicle int, seed int64) *Generator {
	if vehicles <= 0 {
		vehicles = 20
	}
	if readingsPerVehicle <= 0 {
		readingsPerVehicle = 100
	}
	return &Generator{
		vehicles:    vehicles,
		perVehicle:  readingsPerVehicle,
		failureRate: 0.3,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Generate produces the labelled training records for the whole fleet.
func (g *Generator) Generate() []training.Record {
	records := make([]training.Record, 0, g.vehicles*g.perVehicle)
	base := time.Now().UTC().Add(-30 * 24 * time.Hour)

	for v := 1; v <= g.vehicles; v++ {
		vehicleID := fmt.Sprintf("EV-%05d", v)
		failing := g.rng.Float64() < g.failureRate
		var fault scenario
		failureStart := -1
		if failing {
			fault = scenarios[g.rng.Intn(len(scenarios))]
			// The jitter and ramp windows collapse to zero for tiny
			// per-vehicle counts; keep them at least one reading wide.
			failureStart = g.perVehicle*6/10 + g.rng.Intn(max(1, g.perVehicle*3/10))
		}
		ramp := max(1, g.perVehicle/10)

		for i := 0; i < g.perVehicle; i++ {
			reading := g.nominalReading(vehicleID, base.Add(time.Duration(i)*10*time.Second))
			rec := training.Record{
				Reading:  reading,
				RULHours: 500 + float64(g.rng.Intn(1500)),
			}

			if failing && i >= failureStart {
				intensity := min(float64(i-failureStart)/float64(ramp), 1)
				fault.inject(&rec.Reading, intensity, g.rng)
				rec.RULHours = max(10, 1000-intensity*900)
				if i >= failureStart+g.perVehicle/20 {
					rec.Failed = true
					rec.Component = fault.component
				}
			}
			records = append(records, rec)
		}
	}
	return records
}

func (g *Generator) nominalReading(vehicleID string, ts time.Time) models.SensorReading {
	return models.SensorReading{
		VehicleID:        vehicleID,
		Timestamp:        ts,
		SoC:              g.gauss(75, 15, 20, 100),
		SoH:              g.gauss(95, 3, 70, 100),
		BatteryVoltage:   g.gauss(400, 10, 250, 500),
		BatteryCurrent:   g.gauss(50, 20, -200, 300),
		BatteryTemp:      g.gauss(25, 5, -20, 90),
		ChargeCycles:     models.Float(float64(50 + g.rng.Intn(450))),
		MotorTemp:        g.gauss(65, 10, -20, 160),
		MotorVibration:   g.gauss(0.5, 0.2, 0, 10),
		MotorTorque:      g.gauss(250, 50, -100, 600),
		MotorRPM:         g.gauss(3000, 500, 0, 12000),
		PowerConsumption: g.gauss(45, 15, 0, 200),
		BrakePadWear:     g.gauss(8, 2, 1, 12),
		BrakePressure:    g.gauss(100, 20, 0, 200),
		RegenEfficiency:  g.gauss(85, 10, 50, 95),
		TirePressureFL:   g.gauss(35, 2, 15, 50),
		TirePressureFR:   g.gauss(35, 2, 15, 50),
		TirePressureRL:   g.gauss(35, 2, 15, 50),
		TirePressureRR:   g.gauss(35, 2, 15, 50),
		TireTempAvg:      g.gauss(30, 5, -20, 90),
		SuspensionLoad:   g.gauss(500, 100, 0, 1500),
		AmbientTemp:      g.gauss(22, 8, -40, 55),
		AmbientHumidity:  g.gauss(60, 15, 0, 100),
		LoadWeight:       g.gauss(200, 100, 0, 1200),
		DrivingSpeed:     g.gauss(60, 20, 0, 120),
		RouteRoughness:   models.Float(g.roughness()),
	}
}

// roughness draws the route roughness ordinal, mostly smooth roads.
func (g *Generator) roughness() float64 {
	switch r := g.rng.Float64(); {
	case r < 0.5:
		return 0
	case r < 0.8:
		return 1
	case r < 0.95:
		return 2
	default:
		return 3
	}
}

func (g *Generator) gauss(mean, stddev, lo, hi float64) *float64 {
	v := g.rng.NormFloat64()*stddev + mean
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return &v
}
