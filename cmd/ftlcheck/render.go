package main

import (
	"fmt"
	"io"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/eligibility"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"github.com/fatih/color"
)

type outcome struct {
	crewID    string
	flight    *models.FlightCandidate
	reference time.Time
	verdict   eligibility.Verdict
	status    models.CrewStatus
}

func evaluate(sc scenario) (outcome, error) {
	v, err := sc.validator()
	if err != nil {
		return outcome{}, err
	}

	member, quals, flight := sc.member(), sc.qualifications(), sc.flight()
	verdict, err := v.Assess(sc.ReferenceTime, member, quals, sc.dutyLogs(), flight)
	if err != nil {
		return outcome{}, err
	}

	out := outcome{
		flight:    flight,
		reference: sc.ReferenceTime.UTC(),
		verdict:   verdict,
		status:    v.Policy().CrewMemberStatus(member, quals, verdict.Compliance, sc.ReferenceTime),
	}
	if member != nil {
		out.crewID = member.ID
	}
	return out, nil
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	badColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func riskColor(r models.RiskLevel) *color.Color {
	switch r {
	case models.RiskViolation, models.RiskCritical:
		return badColor
	case models.RiskWarning:
		return warnColor
	default:
		return okColor
	}
}

func render(w io.Writer, out outcome) {
	crew := out.crewID
	if crew == "" {
		crew = "?"
	}
	fmt.Fprintf(w, "crew %s  flight %s (%s)  reference %s\n",
		crew, out.flight.FlightID, out.flight.AircraftType, out.reference.Format(time.RFC3339))

	e := out.verdict.Eligibility
	if e.Valid {
		okColor.Fprintln(w, "ELIGIBLE")
	} else {
		badColor.Fprintln(w, "NOT ELIGIBLE")
	}
	for _, b := range e.Blockers {
		badColor.Fprintf(w, "  x %s\n", b)
	}
	for _, m := range e.Warnings {
		warnColor.Fprintf(w, "  ! %s\n", m)
	}
	fmt.Fprintf(w, "status: %s\n", out.status)

	c := out.verdict.Compliance
	if c == nil {
		return
	}
	fmt.Fprint(w, "ftl: ")
	riskColor(c.RiskLevel).Fprintf(w, "%s", c.RiskLevel)
	dimColor.Fprintf(w, " (usage %.0f%%)\n", c.UsageRatio*100)
	fmt.Fprintf(w, "  today %6.2fh  margin %6.2fh\n", c.Counters.FlightHoursToday, c.Margins.DailyFlightHours)
	fmt.Fprintf(w, "  7d    %6.2fh  margin %6.2fh\n", c.Counters.FlightHours7d, c.Margins.FlightHours7d)
	fmt.Fprintf(w, "  28d   %6.2fh  margin %6.2fh\n", c.Counters.FlightHours28d, c.Margins.FlightHours28d)
	if dw := c.DutyWindow; dw != nil {
		fmt.Fprintf(w, "  duty  %6.2fh  margin %6.2fh\n", dw.DutyHours, deref(c.Margins.DutyHours))
		if dw.HasPriorDuty {
			fmt.Fprintf(w, "  rest  %6.2fh  margin %6.2fh\n", dw.RestHours, deref(c.Margins.RestHours))
		}
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
