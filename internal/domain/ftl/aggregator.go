package ftl

import (
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

// Candidate is the flight time that would be added on Date.
type Candidate struct {
	Date    time.Time
	Minutes float64
}

// Aggregate rolls logs into flight-hour totals for the day of reference and the
// trailing 7 and 28 calendar days (reference day included). Logs with an empty
// or unparsable date, and logs dated after the reference day, do not count.
// The candidate is added to every window its date falls into.
func Aggregate(logs []models.DutyLog, reference time.Time, candidate Candidate) models.Counters {
	var today, last7, last28 float64

	add := func(daysAgo int, minutes float64) {
		if minutes <= 0 || daysAgo < 0 {
			return
		}
		if daysAgo == 0 {
			today += minutes
		}
		if daysAgo < window7Days {
			last7 += minutes
		}
		if daysAgo < window28Days {
			last28 += minutes
		}
	}

	for _, l := range logs {
		day, ok := models.ParseDate(l.Date)
		if !ok {
			continue
		}
		add(models.DaysBetween(day, reference), l.FlightMinutes)
	}
	if !candidate.Date.IsZero() {
		add(models.DaysBetween(candidate.Date, reference), candidate.Minutes)
	}

	return models.Counters{
		FlightHoursToday: today / 60,
		FlightHours7d:    last7 / 60,
		FlightHours28d:   last28 / 60,
	}
}
