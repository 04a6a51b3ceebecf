package training

import "github.com/torqcare/torqcare-diagnosis/internal/models"

type ruleCondition struct {
	field string
	op    string // "<", ">", ">=", "outside"
	lo    float64
	hi    float64
}

type componentRule struct {
	component  models.Component
	weight     float64
	conditions []ruleCondition
}

// componentRules encode the per-subsystem failure signatures used to derive
// component labels for readings without a maintenance record.
var componentRules = []componentRule{
	{
		component: models.ComponentBattery,
		weight:    0.3,
		conditions: []ruleCondition{
			{field: "soh", op: "<", lo: 75},
			{field: "battery_temp", op: ">", lo: 50},
			{field: "battery_voltage", op: "outside", lo: 350, hi: 450},
		},
	},
	{
		component: models.ComponentMotor,
		weight:    0.25,
		conditions: []ruleCondition{
			{field: "motor_temp", op: ">", lo: 90},
			{field: "motor_vibration", op: ">", lo: 1.5},
		},
	},
	{
		component: models.ComponentBrake,
		weight:    0.2,
		conditions: []ruleCondition{
			{field: "brake_pad_wear", op: "<", lo: 3},
			{field: "brake_pressure", op: "<", lo: 70},
			{field: "regen_efficiency", op: "<", lo: 60},
		},
	},
	{
		component: models.ComponentTire,
		weight:    0.15,
		conditions: []ruleCondition{
			{field: "tire_pressure_fl", op: "<", lo: 28},
			{field: "tire_temp_avg", op: ">", lo: 45},
		},
	},
	{
		component: models.ComponentSuspension,
		weight:    0.1,
		conditions: []ruleCondition{
			{field: "suspension_load", op: ">", lo: 700},
			{field: "route_roughness", op: ">=", lo: 2},
		},
	},
}

// labelComponent scores each subsystem's failure signature against a filled
// feature row and returns the best match, or ComponentNone when nothing
// triggers. Rules are checked in fixed order so equal scores resolve the
// same way every run.
func labelComponent(values map[string]float64) models.Component {
	best := models.ComponentNone
	bestScore := 0.0

	for _, rule := range componentRules {
		matches := 0
		for _, cond := range rule.conditions {
			v, ok := values[cond.field]
			if !ok {
				continue
			}
			switch cond.op {
			case "<":
				if v < cond.lo {
					matches++
				}
			case ">":
				if v > cond.lo {
					matches++
				}
			case ">=":
				if v >= cond.lo {
					matches++
				}
			case "outside":
				if v < cond.lo || v > cond.hi {
					matches++
				}
			}
		}
		score := float64(matches) * rule.weight
		if score > bestScore {
			bestScore = score
			best = rule.component
		}
	}
	return best
}
