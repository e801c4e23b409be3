// Package alerts turns compliance and currency verdicts into alert drafts.
package alerts

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/eligibility"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

const (
	TypeFTL      = "ftl"
	TypeCurrency = "currency"
)

const (
	SubtypeDaily    = "daily"
	SubtypeDuty     = "duty"
	SubtypeRest     = "rest"
	Subtype7d       = "7d"
	Subtype28d      = "28d"
	SubtypeMedical  = "medical"
	SubtypeLicense  = "license"
	SubtypeSimCheck = "sim_check"
)

// DefaultUtilizationHoursPerDay is the assumed flying rate used to turn a
// margin in hours into a time before the crew member is blocked.
const DefaultUtilizationHoursPerDay = 6.0

func DedupKey(alertType, entityID, subtype string) string {
	return strings.Join([]string{alertType, entityID, subtype}, "__")
}

// CriticalityFor maps a risk tier to an alert criticality. ok raises nothing.
func CriticalityFor(risk models.RiskLevel) (models.Criticality, bool) {
	switch risk {
	case models.RiskViolation, models.RiskCritical:
		return models.CriticalityCritical, true
	case models.RiskWarning:
		return models.CriticalityWarning, true
	default:
		return "", false
	}
}

// TimeToBlockMinutes converts a margin in hours into minutes of calendar time
// at the given utilization. Exhausted margins give 0.
func TimeToBlockMinutes(marginHours, utilizationHoursPerDay float64) int {
	if marginHours <= 0 || utilizationHoursPerDay <= 0 {
		return 0
	}
	return int(math.Floor(marginHours / utilizationHoursPerDay * 24 * 60))
}

type Input struct {
	CrewID                 string
	FlightID               string
	DetectedAt             time.Time
	Qualifications         *models.Qualifications
	Compliance             *models.ComplianceResult
	Policy                 eligibility.Policy
	UtilizationHoursPerDay float64
}

// Draft returns the alerts raised by one crew member's verdicts: at most one
// FTL alert and one per qualification that is expired or expiring.
func Draft(in Input) []models.Alert {
	var out []models.Alert
	if a, ok := draftFTL(in); ok {
		out = append(out, a)
	}
	return append(out, draftCurrency(in)...)
}

type margin struct {
	subtype string
	hours   float64
}

func draftFTL(in Input) (models.Alert, bool) {
	if in.Compliance == nil {
		return models.Alert{}, false
	}
	crit, ok := CriticalityFor(in.Compliance.RiskLevel)
	if !ok {
		return models.Alert{}, false
	}

	m := in.Compliance.Margins
	margins := []margin{{SubtypeDaily, m.DailyFlightHours}}
	if m.DutyHours != nil {
		margins = append(margins, margin{SubtypeDuty, *m.DutyHours})
	}
	if m.RestHours != nil {
		margins = append(margins, margin{SubtypeRest, *m.RestHours})
	}
	margins = append(margins, margin{Subtype7d, m.FlightHours7d}, margin{Subtype28d, m.FlightHours28d})

	// violations report the first exhausted limit in rule order, otherwise the tightest one
	tightest := margins[0]
	for _, mg := range margins {
		if in.Compliance.RiskLevel == models.RiskViolation {
			if mg.hours < 0 {
				tightest = mg
				break
			}
			continue
		}
		if mg.subtype != SubtypeRest && mg.hours < tightest.hours {
			tightest = mg
		}
	}

	utilization := in.UtilizationHoursPerDay
	if utilization <= 0 {
		utilization = DefaultUtilizationHoursPerDay
	}
	ttb := TimeToBlockMinutes(tightest.hours, utilization)

	msg := in.Compliance.Reason
	if msg == "" {
		msg = fmt.Sprintf("Marge FTL faible (%s): %.1fh restantes", tightest.subtype, tightest.hours)
	}

	return models.Alert{
		DedupKey:           DedupKey(TypeFTL, in.CrewID, tightest.subtype),
		Type:               TypeFTL,
		EntityID:           in.CrewID,
		Subtype:            tightest.subtype,
		Criticality:        crit,
		Message:            msg,
		FlightID:           in.FlightID,
		TimeToBlockMinutes: &ttb,
		DetectedAt:         in.DetectedAt,
	}, true
}

func draftCurrency(in Input) []models.Alert {
	if in.Qualifications == nil {
		return nil
	}
	q := in.Qualifications
	policy := in.Policy
	if policy == (eligibility.Policy{}) {
		policy = eligibility.DefaultPolicy()
	}
	statuses := []struct {
		subtype string
		status  models.QualificationStatus
		label   string
	}{
		{SubtypeMedical, policy.ExpiryStatus(q.MedicalExpiry, in.DetectedAt), "Visite médicale"},
		{SubtypeLicense, policy.ExpiryStatus(q.LicenseExpiry, in.DetectedAt), "Licence"},
		{SubtypeSimCheck, policy.SimCheckStatus(q.LastSimCheck, in.DetectedAt), "Sim check"},
	}

	var out []models.Alert
	for _, s := range statuses {
		var crit models.Criticality
		var msg string
		switch s.status {
		case models.QualificationExpired:
			crit, msg = models.CriticalityCritical, s.label+": expiré"
		case models.QualificationExpiring:
			crit, msg = models.CriticalityWarning, s.label+": à renouveler"
		default:
			continue
		}
		out = append(out, models.Alert{
			DedupKey:    DedupKey(TypeCurrency, in.CrewID, s.subtype),
			Type:        TypeCurrency,
			EntityID:    in.CrewID,
			Subtype:     s.subtype,
			Criticality: crit,
			Message:     msg,
			DetectedAt:  in.DetectedAt,
		})
	}
	return out
}
