package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

const maxBodyBytes = 1 << 16

type flightRequest struct {
	FlightID      string     `json:"flight_id"`
	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   time.Time  `json:"arrival_time"`
	AircraftType  string     `json:"aircraft_type"`
	DutyStart     *time.Time `json:"duty_start,omitempty"`
	DutyEnd       *time.Time `json:"duty_end,omitempty"`
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
}

func (r flightRequest) validate() string {
	switch {
	case strings.TrimSpace(r.FlightID) == "":
		return "flight_id is required"
	case strings.TrimSpace(r.AircraftType) == "":
		return "aircraft_type is required"
	case r.DepartureTime.IsZero():
		return "departure_time is required"
	case r.ArrivalTime.IsZero():
		return "arrival_time is required"
	case r.ArrivalTime.Before(r.DepartureTime):
		return "arrival_time must not be before departure_time"
	}
	return ""
}

func (r flightRequest) candidate() models.FlightCandidate {
	c := models.FlightCandidate{
		FlightID:      strings.TrimSpace(r.FlightID),
		DepartureTime: r.DepartureTime.UTC(),
		ArrivalTime:   r.ArrivalTime.UTC(),
		AircraftType:  strings.ToUpper(strings.TrimSpace(r.AircraftType)),
	}
	if r.DutyStart != nil {
		start := r.DutyStart.UTC()
		c.DutyStart = &start
	}
	if r.DutyEnd != nil {
		end := r.DutyEnd.UTC()
		c.DutyEnd = &end
	}
	return c
}

// parseCrewIDFromPath extracts {id} from /v1/crew/{id}<suffix>.
func parseCrewIDFromPath(path, suffix string) (string, bool) {
	const prefix = "/v1/crew/"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}

	idPart := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	idPart = strings.Trim(idPart, "/")
	if idPart == "" || strings.Contains(idPart, "/") {
		return "", false
	}
	return idPart, true
}

// parseReferenceQuery reads ?reference_time= as RFC 3339 or a calendar date.
// Absent means now.
func parseReferenceQuery(r *http.Request, now func() time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("reference_time"))
	if raw == "" {
		return now().UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	return models.ParseDate(raw)
}
