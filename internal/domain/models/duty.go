package models

import "time"

// DutyLog is one completed duty period of a crew member.
type DutyLog struct {
	CrewID        string    `json:"crew_id"`
	FlightID      string    `json:"flight_id"`
	Date          string    `json:"date"`
	DutyStartUTC  time.Time `json:"duty_start_utc"`
	DutyEndUTC    time.Time `json:"duty_end_utc"`
	FlightMinutes float64   `json:"flight_minutes"`
}

// HasDutyWindow reports whether both duty instants are set and ordered.
func (l DutyLog) HasDutyWindow() bool {
	return !l.DutyStartUTC.IsZero() && !l.DutyEndUTC.IsZero() && !l.DutyEndUTC.Before(l.DutyStartUTC)
}

// FilterByCrew returns the logs that belong to crewID, preserving order.
func FilterByCrew(logs []DutyLog, crewID string) []DutyLog {
	out := make([]DutyLog, 0, len(logs))
	for _, l := range logs {
		if l.CrewID == crewID {
			out = append(out, l)
		}
	}
	return out
}

const dateLayout = "2006-01-02"

// ParseDate parses a calendar date ("2006-01-02") or an RFC 3339 instant and
// returns midnight UTC of that day.
func ParseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return Day(t), true
	}
	return time.Time{}, false
}

// FormatDate renders t as a calendar date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from -> to (negative if to is earlier).
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}
