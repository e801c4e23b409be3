// Package eligibility decides whether a crew member may be assigned to a
// flight: qualification currency, type rating and flight time limitations.
package eligibility

import (
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

const (
	DefaultExpiryWarningDays    = 30
	DefaultSimCheckWarningDays  = 150
	DefaultSimCheckValidityDays = 180
)

// Policy holds the currency thresholds, in days. A medical or license
// expiring within ExpiryWarningDays is a warning. A sim check older than
// SimCheckWarningDays is due for renewal and lapses at SimCheckValidityDays.
type Policy struct {
	ExpiryWarningDays    int `yaml:"expiry_warning_days" env:"ELIGIBILITY_EXPIRY_WARNING_DAYS" env-default:"30"`
	SimCheckWarningDays  int `yaml:"sim_check_warning_days" env:"ELIGIBILITY_SIM_CHECK_WARNING_DAYS" env-default:"150"`
	SimCheckValidityDays int `yaml:"sim_check_validity_days" env:"ELIGIBILITY_SIM_CHECK_VALIDITY_DAYS" env-default:"180"`
}

func DefaultPolicy() Policy {
	return Policy{
		ExpiryWarningDays:    DefaultExpiryWarningDays,
		SimCheckWarningDays:  DefaultSimCheckWarningDays,
		SimCheckValidityDays: DefaultSimCheckValidityDays,
	}
}

func (p Policy) Validate() error {
	if p.ExpiryWarningDays < 0 {
		return &PolicyError{Field: "expiry_warning_days"}
	}
	if p.SimCheckWarningDays <= 0 || p.SimCheckValidityDays <= p.SimCheckWarningDays {
		return &PolicyError{Field: "sim_check_validity_days"}
	}
	return nil
}

// ExpiryStatus classifies an expiry date against reference with the default policy.
func ExpiryStatus(date string, reference time.Time) models.QualificationStatus {
	return DefaultPolicy().ExpiryStatus(date, reference)
}

// SimCheckStatus classifies the date of the last sim check with the default policy.
func SimCheckStatus(date string, reference time.Time) models.QualificationStatus {
	return DefaultPolicy().SimCheckStatus(date, reference)
}

// ExpiryStatus: an empty or unparsable date is expired, a past date is
// expired, a date within ExpiryWarningDays (reference day included) is expiring.
func (p Policy) ExpiryStatus(date string, reference time.Time) models.QualificationStatus {
	status, _ := p.expiry(date, reference)
	return status
}

func (p Policy) expiry(date string, reference time.Time) (models.QualificationStatus, int) {
	d, ok := models.ParseDate(date)
	if !ok {
		return models.QualificationExpired, 0
	}
	remaining := models.DaysBetween(reference, d)
	switch {
	case remaining < 0:
		return models.QualificationExpired, remaining
	case remaining <= p.ExpiryWarningDays:
		return models.QualificationExpiring, remaining
	default:
		return models.QualificationValid, remaining
	}
}

func (p Policy) SimCheckStatus(date string, reference time.Time) models.QualificationStatus {
	status, _ := p.simCheck(date, reference)
	return status
}

func (p Policy) simCheck(date string, reference time.Time) (models.QualificationStatus, int) {
	d, ok := models.ParseDate(date)
	if !ok {
		return models.QualificationExpired, 0
	}
	elapsed := models.DaysBetween(d, reference)
	switch {
	case elapsed >= p.SimCheckValidityDays:
		return models.QualificationExpired, elapsed
	case elapsed > p.SimCheckWarningDays:
		return models.QualificationExpiring, elapsed
	default:
		return models.QualificationValid, elapsed
	}
}
