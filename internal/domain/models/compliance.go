package models

import "time"

type RiskLevel string

const (
	RiskOK        RiskLevel = "ok"
	RiskWarning   RiskLevel = "warning"
	RiskCritical  RiskLevel = "critical"
	RiskViolation RiskLevel = "violation"
)

// Counters are cumulative flight hours, candidate included.
type Counters struct {
	FlightHoursToday float64 `json:"flight_hours_today"`
	FlightHours7d    float64 `json:"flight_hours_7d"`
	FlightHours28d   float64 `json:"flight_hours_28d"`
}

// Margins are remaining hours per ceiling. Negative once a ceiling is exceeded.
// DutyHours and RestHours are nil when no duty window was evaluated.
type Margins struct {
	DailyFlightHours float64  `json:"daily_flight_hours"`
	FlightHours7d    float64  `json:"flight_hours_7d"`
	FlightHours28d   float64  `json:"flight_hours_28d"`
	DutyHours        *float64 `json:"duty_hours,omitempty"`
	RestHours        *float64 `json:"rest_hours,omitempty"`
}

// DutyWindowResult is the outcome of the duty ceiling and minimum rest checks.
type DutyWindowResult struct {
	DutyStartUTC  time.Time `json:"duty_start_utc"`
	DutyEndUTC    time.Time `json:"duty_end_utc"`
	DutyHours     float64   `json:"duty_hours"`
	DutyCompliant bool      `json:"duty_compliant"`
	HasPriorDuty  bool      `json:"has_prior_duty"`
	RestHours     float64   `json:"rest_hours"`
	RestCompliant bool      `json:"rest_compliant"`
}

type ComplianceResult struct {
	Compliant  bool              `json:"compliant"`
	RiskLevel  RiskLevel         `json:"risk_level"`
	Reason     string            `json:"reason,omitempty"`
	UsageRatio float64           `json:"usage_ratio"`
	Counters   Counters          `json:"counters"`
	Margins    Margins           `json:"margins"`
	DutyWindow *DutyWindowResult `json:"duty_window,omitempty"`
}
