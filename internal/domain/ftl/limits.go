// Package ftl implements the flight time limitation rules: rolling flight-hour
// windows, the daily duty ceiling, minimum rest and the risk tier derived from
// them. Every function is a pure computation over its arguments.
package ftl

import (
	"math"
	"time"
)

// Regulatory ceilings, in hours.
const (
	DefaultDailyFlightHours = 8.0
	DefaultDailyDutyHours   = 13.0
	DefaultMinRestHours     = 10.0
	DefaultFlightHours7d    = 60.0
	DefaultFlightHours28d   = 190.0
)

// Default usage ratios for the risk tiers.
const (
	DefaultWarningRatio  = 0.75
	DefaultCriticalRatio = 0.90
)

const (
	window7Days  = 7
	window28Days = 28
)

// Limits are the ceilings and the usage ratios that split ok/warning/critical.
// A ratio at or above WarningRatio is a warning, at or above CriticalRatio critical.
type Limits struct {
	DailyFlightHours float64 `yaml:"daily_flight_hours" env:"FTL_DAILY_FLIGHT_HOURS" env-default:"8"`
	DailyDutyHours   float64 `yaml:"daily_duty_hours" env:"FTL_DAILY_DUTY_HOURS" env-default:"13"`
	MinRestHours     float64 `yaml:"min_rest_hours" env:"FTL_MIN_REST_HOURS" env-default:"10"`
	FlightHours7d    float64 `yaml:"flight_hours_7d" env:"FTL_FLIGHT_HOURS_7D" env-default:"60"`
	FlightHours28d   float64 `yaml:"flight_hours_28d" env:"FTL_FLIGHT_HOURS_28D" env-default:"190"`
	WarningRatio     float64 `yaml:"warning_ratio" env:"FTL_WARNING_RATIO" env-default:"0.75"`
	CriticalRatio    float64 `yaml:"critical_ratio" env:"FTL_CRITICAL_RATIO" env-default:"0.9"`
}

func DefaultLimits() Limits {
	return Limits{
		DailyFlightHours: DefaultDailyFlightHours,
		DailyDutyHours:   DefaultDailyDutyHours,
		MinRestHours:     DefaultMinRestHours,
		FlightHours7d:    DefaultFlightHours7d,
		FlightHours28d:   DefaultFlightHours28d,
		WarningRatio:     DefaultWarningRatio,
		CriticalRatio:    DefaultCriticalRatio,
	}
}

// Validate checks that every ceiling is positive and the ratios are ordered.
func (l Limits) Validate() error {
	ceilings := []struct {
		field string
		value float64
	}{
		{"daily_flight_hours", l.DailyFlightHours},
		{"daily_duty_hours", l.DailyDutyHours},
		{"min_rest_hours", l.MinRestHours},
		{"flight_hours_7d", l.FlightHours7d},
		{"flight_hours_28d", l.FlightHours28d},
	}
	for _, c := range ceilings {
		if !(c.value > 0) || math.IsInf(c.value, 0) {
			return preconditionf(c.field, "must be a positive number, got %v", c.value)
		}
	}
	if !(l.WarningRatio > 0) || !(l.CriticalRatio > l.WarningRatio) {
		return preconditionf("warning_ratio", "need 0 < warning_ratio < critical_ratio, got %v/%v", l.WarningRatio, l.CriticalRatio)
	}
	return nil
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
