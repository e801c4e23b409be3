package main

import (
	"fmt"
	"io"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/eligibility"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/ftl"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"gopkg.in/yaml.v3"
)

// scenario is one offline eligibility question. Absent member or
// qualifications sections are passed on as missing records.
type scenario struct {
	ReferenceTime  time.Time           `yaml:"reference_time"`
	Member         *memberDoc          `yaml:"member"`
	Qualifications *qualificationsDoc  `yaml:"qualifications"`
	Flight         flightDoc           `yaml:"flight"`
	DutyLogs       []dutyLogDoc        `yaml:"duty_logs"`
	Limits         *ftl.Limits         `yaml:"limits"`
	Policy         *eligibility.Policy `yaml:"policy"`
}

type memberDoc struct {
	ID     string `yaml:"id"`
	Active bool   `yaml:"active"`
	Role   string `yaml:"role"`
	Name   string `yaml:"name"`
}

type qualificationsDoc struct {
	MedicalExpiry string   `yaml:"medical_expiry"`
	LicenseExpiry string   `yaml:"license_expiry"`
	LastSimCheck  string   `yaml:"last_sim_check"`
	TypeRatings   []string `yaml:"type_ratings"`
}

type flightDoc struct {
	FlightID      string     `yaml:"flight_id"`
	DepartureTime time.Time  `yaml:"departure_time"`
	ArrivalTime   time.Time  `yaml:"arrival_time"`
	AircraftType  string     `yaml:"aircraft_type"`
	DutyStart     *time.Time `yaml:"duty_start"`
	DutyEnd       *time.Time `yaml:"duty_end"`
}

type dutyLogDoc struct {
	CrewID        string     `yaml:"crew_id"`
	FlightID      string     `yaml:"flight_id"`
	Date          string     `yaml:"date"`
	DutyStart     *time.Time `yaml:"duty_start"`
	DutyEnd       *time.Time `yaml:"duty_end"`
	FlightMinutes float64    `yaml:"flight_minutes"`
}

func decodeScenario(r io.Reader) (scenario, error) {
	var sc scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if sc.ReferenceTime.IsZero() {
		return scenario{}, fmt.Errorf("decode scenario: reference_time is required")
	}
	if sc.Flight.FlightID == "" || sc.Flight.DepartureTime.IsZero() || sc.Flight.ArrivalTime.IsZero() {
		return scenario{}, fmt.Errorf("decode scenario: flight needs flight_id, departure_time and arrival_time")
	}
	return sc, nil
}

func (sc scenario) validator() (*eligibility.Validator, error) {
	limits := ftl.DefaultLimits()
	if sc.Limits != nil {
		limits = *sc.Limits
	}
	evaluator, err := ftl.NewEvaluator(limits)
	if err != nil {
		return nil, err
	}

	policy := eligibility.DefaultPolicy()
	if sc.Policy != nil {
		policy = *sc.Policy
	}
	return eligibility.NewValidator(policy, evaluator)
}

func (sc scenario) member() *models.CrewMember {
	if sc.Member == nil {
		return nil
	}
	return &models.CrewMember{ID: sc.Member.ID, Active: sc.Member.Active, Role: sc.Member.Role, Name: sc.Member.Name}
}

func (sc scenario) qualifications() *models.Qualifications {
	if sc.Qualifications == nil {
		return nil
	}
	q := &models.Qualifications{
		MedicalExpiry: sc.Qualifications.MedicalExpiry,
		LicenseExpiry: sc.Qualifications.LicenseExpiry,
		LastSimCheck:  sc.Qualifications.LastSimCheck,
		TypeRatings:   sc.Qualifications.TypeRatings,
	}
	if sc.Member != nil {
		q.CrewID = sc.Member.ID
	}
	return q
}

func (sc scenario) flight() *models.FlightCandidate {
	return &models.FlightCandidate{
		FlightID:      sc.Flight.FlightID,
		DepartureTime: sc.Flight.DepartureTime.UTC(),
		ArrivalTime:   sc.Flight.ArrivalTime.UTC(),
		AircraftType:  sc.Flight.AircraftType,
		DutyStart:     utcPtr(sc.Flight.DutyStart),
		DutyEnd:       utcPtr(sc.Flight.DutyEnd),
	}
}

// dutyLogs fills a missing crew_id with the scenario member's id.
func (sc scenario) dutyLogs() []models.DutyLog {
	logs := make([]models.DutyLog, 0, len(sc.DutyLogs))
	for _, d := range sc.DutyLogs {
		crewID := d.CrewID
		if crewID == "" && sc.Member != nil {
			crewID = sc.Member.ID
		}
		l := models.DutyLog{
			CrewID:        crewID,
			FlightID:      d.FlightID,
			Date:          d.Date,
			FlightMinutes: d.FlightMinutes,
		}
		if d.DutyStart != nil && d.DutyEnd != nil {
			l.DutyStartUTC = d.DutyStart.UTC()
			l.DutyEndUTC = d.DutyEnd.UTC()
		}
		logs = append(logs, l)
	}
	return logs
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
