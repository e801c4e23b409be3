package eligibility

import (
	"fmt"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/ftl"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

// Verdict is the eligibility result together with the FTL evaluation it was
// derived from. Compliance is nil when no flight was given.
type Verdict struct {
	Eligibility models.EligibilityResult
	Compliance  *models.ComplianceResult
}

// Validator checks crew eligibility under one currency policy and one set of
// flight time limits. It holds no mutable state.
type Validator struct {
	policy    Policy
	evaluator *ftl.Evaluator
}

// NewValidator rejects an invalid policy. A nil evaluator uses the default limits.
func NewValidator(policy Policy, evaluator *ftl.Evaluator) (*Validator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if evaluator == nil {
		var err error
		if evaluator, err = ftl.NewEvaluator(ftl.DefaultLimits()); err != nil {
			return nil, err
		}
	}
	return &Validator{policy: policy, evaluator: evaluator}, nil
}

// Policy returns the currency thresholds the validator was built with.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Evaluator returns the FTL evaluator used for the flight time check.
func (v *Validator) Evaluator() *ftl.Evaluator {
	return v.evaluator
}

var defaultValidator = mustDefaultValidator()

func mustDefaultValidator() *Validator {
	v, err := NewValidator(DefaultPolicy(), nil)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate runs the default policy and regulatory limits. See Validator.Validate.
func Validate(reference time.Time, member *models.CrewMember, quals *models.Qualifications, priorLogs []models.DutyLog, flight *models.FlightCandidate) (models.EligibilityResult, error) {
	return defaultValidator.Validate(reference, member, quals, priorLogs, flight)
}

// Validate decides whether member may fly flight. Currency is judged at
// reference; flight time limits at the flight's departure day.
func (v *Validator) Validate(reference time.Time, member *models.CrewMember, quals *models.Qualifications, priorLogs []models.DutyLog, flight *models.FlightCandidate) (models.EligibilityResult, error) {
	verdict, err := v.Assess(reference, member, quals, priorLogs, flight)
	return verdict.Eligibility, err
}

// Assess is Validate that also returns the FTL evaluation.
func (v *Validator) Assess(reference time.Time, member *models.CrewMember, quals *models.Qualifications, priorLogs []models.DutyLog, flight *models.FlightCandidate) (Verdict, error) {
	var diags []diagnostic

	if member == nil {
		diags = append(diags, blocker("Fiche membre introuvable"))
	}
	if quals == nil {
		diags = append(diags, blocker("Qualifications manquantes"))
	}

	// the active flag belongs to the member record, so it is checked even
	// without qualifications
	if member != nil {
		in := checkInput{reference: reference, member: member, quals: quals, flight: flight}
		checks := []check{checkActive}
		if quals != nil {
			checks = v.qualificationChecks()
		}
		for _, check := range checks {
			if d := check(in); d != nil {
				diags = append(diags, *d)
			}
		}
	}

	var compliance *models.ComplianceResult
	if flight != nil {
		logs := priorLogs
		if member != nil {
			logs = models.FilterByCrew(priorLogs, member.ID)
		}
		res, err := v.evaluator.Evaluate(logs, flight.DepartureTime, flight.FlightMinutes(), flight.DutyStart, flight.DutyEnd)
		if err != nil {
			return Verdict{}, err
		}
		compliance = &res
		if !res.Compliant {
			diags = append(diags, blocker("FTL: "+res.Reason))
		}
	}

	result := models.EligibilityResult{Blockers: []string{}, Warnings: []string{}}
	for _, d := range diags {
		if d.blocking {
			result.Blockers = append(result.Blockers, d.message)
		} else {
			result.Warnings = append(result.Warnings, d.message)
		}
	}
	result.Valid = len(result.Blockers) == 0

	return Verdict{Eligibility: result, Compliance: compliance}, nil
}

type diagnostic struct {
	blocking bool
	message  string
}

func blocker(msg string) diagnostic {
	return diagnostic{blocking: true, message: msg}
}

func warning(msg string) diagnostic {
	return diagnostic{message: msg}
}

type checkInput struct {
	reference time.Time
	member    *models.CrewMember
	quals     *models.Qualifications
	flight    *models.FlightCandidate
}

type check func(checkInput) *diagnostic

func (v *Validator) qualificationChecks() []check {
	return []check{
		checkActive,
		v.checkMedical,
		v.checkLicense,
		v.checkSimCheck,
		checkTypeRating,
	}
}

func checkActive(in checkInput) *diagnostic {
	if in.member.Active {
		return nil
	}
	d := blocker("Membre inactif")
	return &d
}

func (v *Validator) checkMedical(in checkInput) *diagnostic {
	status, days := v.policy.expiry(in.quals.MedicalExpiry, in.reference)
	switch status {
	case models.QualificationExpired:
		d := blocker("Visite médicale expirée")
		return &d
	case models.QualificationExpiring:
		d := warning(fmt.Sprintf("Visite médicale expire dans %d jour(s)", days))
		return &d
	}
	return nil
}

func (v *Validator) checkLicense(in checkInput) *diagnostic {
	status, days := v.policy.expiry(in.quals.LicenseExpiry, in.reference)
	switch status {
	case models.QualificationExpired:
		d := blocker("Licence expirée")
		return &d
	case models.QualificationExpiring:
		d := warning(fmt.Sprintf("Licence expire dans %d jour(s)", days))
		return &d
	}
	return nil
}

func (v *Validator) checkSimCheck(in checkInput) *diagnostic {
	status, days := v.policy.simCheck(in.quals.LastSimCheck, in.reference)
	switch status {
	case models.QualificationExpired:
		d := blocker("Sim check expiré")
		return &d
	case models.QualificationExpiring:
		d := warning(fmt.Sprintf("Sim check à renouveler (%d jours depuis le dernier)", days))
		return &d
	}
	return nil
}

func checkTypeRating(in checkInput) *diagnostic {
	if in.flight == nil || in.quals.HasTypeRating(in.flight.AircraftType) {
		return nil
	}
	d := blocker(fmt.Sprintf("Qualification de type %s manquante", in.flight.AircraftType))
	return &d
}
