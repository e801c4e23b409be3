package models

import "time"

// FlightCandidate is the flight under evaluation. DutyStart/DutyEnd are set
// only when a full duty period is being checked.
type FlightCandidate struct {
	FlightID      string     `json:"flight_id"`
	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   time.Time  `json:"arrival_time"`
	AircraftType  string     `json:"aircraft_type"`
	DutyStart     *time.Time `json:"duty_start,omitempty"`
	DutyEnd       *time.Time `json:"duty_end,omitempty"`
}

// FlightMinutes is arrival minus departure, in minutes.
func (f FlightCandidate) FlightMinutes() float64 {
	return f.ArrivalTime.Sub(f.DepartureTime).Minutes()
}

type EligibilityResult struct {
	Valid    bool     `json:"valid"`
	Blockers []string `json:"blockers"`
	Warnings []string `json:"warnings"`
}

// EligibilityReport is what the host service returns for one crew/flight pair.
type EligibilityReport struct {
	CrewID         string            `json:"crew_id"`
	FlightID       string            `json:"flight_id"`
	Reference      time.Time         `json:"reference_time"`
	Eligibility    EligibilityResult `json:"eligibility"`
	Compliance     *ComplianceResult `json:"compliance,omitempty"`
	Status         CrewStatus        `json:"status"`
	Qualifications *Qualifications   `json:"qualifications,omitempty"`
}

// Assignment is a planned crew/flight pairing read by the fleet scan.
type Assignment struct {
	CrewID string
	Flight FlightCandidate
}
