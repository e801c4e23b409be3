package models

import "strings"

type CrewMember struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

// Qualifications holds currency dates as calendar strings; an empty value
// means the date is unknown.
type Qualifications struct {
	CrewID        string   `json:"crew_id"`
	MedicalExpiry string   `json:"medical_expiry,omitempty"`
	LicenseExpiry string   `json:"license_expiry,omitempty"`
	LastSimCheck  string   `json:"last_sim_check,omitempty"`
	TypeRatings   []string `json:"type_ratings"`
}

// HasTypeRating matches aircraft types case-insensitively, ignoring
// surrounding spaces.
func (q Qualifications) HasTypeRating(aircraftType string) bool {
	want := strings.TrimSpace(aircraftType)
	for _, r := range q.TypeRatings {
		if strings.EqualFold(strings.TrimSpace(r), want) {
			return true
		}
	}
	return false
}

type QualificationStatus string

const (
	QualificationValid    QualificationStatus = "valid"
	QualificationExpiring QualificationStatus = "expiring"
	QualificationExpired  QualificationStatus = "expired"
)

type CrewStatus string

const (
	CrewStatusOK       CrewStatus = "ok"
	CrewStatusWarning  CrewStatus = "warning"
	CrewStatusCritical CrewStatus = "critical"
	CrewStatusInactive CrewStatus = "inactive"
)
