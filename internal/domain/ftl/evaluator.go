package ftl

import (
	"fmt"
	"math"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

// Evaluator applies one set of Limits. The zero value is not usable; build it
// with NewEvaluator.
type Evaluator struct {
	limits Limits
}

func NewEvaluator(limits Limits) (*Evaluator, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{limits: limits}, nil
}

var defaultEvaluator = &Evaluator{limits: DefaultLimits()}

// Evaluate runs the default regulatory limits. See Evaluator.Evaluate.
func Evaluate(logs []models.DutyLog, reference time.Time, candidateMinutes float64, dutyStart, dutyEnd *time.Time) (models.ComplianceResult, error) {
	return defaultEvaluator.Evaluate(logs, reference, candidateMinutes, dutyStart, dutyEnd)
}

func (e *Evaluator) Limits() Limits {
	return e.limits
}

// Evaluate decides whether candidateMinutes of flight on the reference day fit
// the limits given the crew member's logs. dutyStart and dutyEnd are both set
// or both nil; when set the duty ceiling and minimum rest are checked too.
//
// Limits are checked in order daily flight, duty, rest, 7 days, 28 days and
// the first one strictly exceeded is reported. A returned error always means a
// malformed call, never a non-compliant crew member.
func (e *Evaluator) Evaluate(logs []models.DutyLog, reference time.Time, candidateMinutes float64, dutyStart, dutyEnd *time.Time) (models.ComplianceResult, error) {
	if reference.IsZero() {
		return models.ComplianceResult{}, preconditionf("reference", "must be set")
	}
	if math.IsNaN(candidateMinutes) || math.IsInf(candidateMinutes, 0) || candidateMinutes < 0 {
		return models.ComplianceResult{}, preconditionf("candidate_minutes", "must be a non-negative number, got %v", candidateMinutes)
	}
	if (dutyStart == nil) != (dutyEnd == nil) {
		return models.ComplianceResult{}, preconditionf("duty_window", "duty_start and duty_end must be given together")
	}
	if dutyStart != nil && dutyEnd.Before(*dutyStart) {
		return models.ComplianceResult{}, preconditionf("duty_window", "duty_end %s is before duty_start %s", dutyEnd.Format(time.RFC3339), dutyStart.Format(time.RFC3339))
	}

	l := e.limits
	counters := Aggregate(logs, reference, Candidate{Date: reference, Minutes: candidateMinutes})

	res := models.ComplianceResult{
		Compliant: true,
		RiskLevel: models.RiskOK,
		Counters:  counters,
		Margins: models.Margins{
			DailyFlightHours: l.DailyFlightHours - counters.FlightHoursToday,
			FlightHours7d:    l.FlightHours7d - counters.FlightHours7d,
			FlightHours28d:   l.FlightHours28d - counters.FlightHours28d,
		},
	}

	ratio := math.Max(
		counters.FlightHoursToday/l.DailyFlightHours,
		math.Max(counters.FlightHours7d/l.FlightHours7d, counters.FlightHours28d/l.FlightHours28d),
	)

	if dutyStart != nil {
		dw := ValidateDutyWindow(logs, *dutyStart, *dutyEnd, l)
		res.DutyWindow = &dw

		dutyMargin := l.DailyDutyHours - dw.DutyHours
		res.Margins.DutyHours = &dutyMargin
		if dw.HasPriorDuty {
			restMargin := dw.RestHours - l.MinRestHours
			res.Margins.RestHours = &restMargin
		}
		ratio = math.Max(ratio, dw.DutyHours/l.DailyDutyHours)
	}
	res.UsageRatio = ratio

	if reason := e.firstViolation(counters, res.DutyWindow); reason != "" {
		res.Compliant = false
		res.RiskLevel = models.RiskViolation
		res.Reason = reason
		return res, nil
	}

	res.RiskLevel = e.classify(ratio)
	return res, nil
}

func (e *Evaluator) firstViolation(c models.Counters, dw *models.DutyWindowResult) string {
	l := e.limits
	switch {
	case c.FlightHoursToday > l.DailyFlightHours:
		return fmt.Sprintf("Limite de vol journalier dépassée: %.2fh / %gh", c.FlightHoursToday, l.DailyFlightHours)
	case dw != nil && !dw.DutyCompliant:
		return fmt.Sprintf("Amplitude de service (Duty) dépassée: %.2fh / %gh", dw.DutyHours, l.DailyDutyHours)
	case dw != nil && !dw.RestCompliant:
		return fmt.Sprintf("Repos insuffisant: %.2fh / %gh minimum", dw.RestHours, l.MinRestHours)
	case c.FlightHours7d > l.FlightHours7d:
		return fmt.Sprintf("Limite 7j dépassée: %.2fh / %gh", c.FlightHours7d, l.FlightHours7d)
	case c.FlightHours28d > l.FlightHours28d:
		return fmt.Sprintf("Limite 28j dépassée: %.2fh / %gh", c.FlightHours28d, l.FlightHours28d)
	}
	return ""
}

func (e *Evaluator) classify(ratio float64) models.RiskLevel {
	switch {
	case ratio >= e.limits.CriticalRatio:
		return models.RiskCritical
	case ratio >= e.limits.WarningRatio:
		return models.RiskWarning
	default:
		return models.RiskOK
	}
}
