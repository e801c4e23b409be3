package eligibility

import (
	"testing"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

func daysFrom(days int) string {
	return models.FormatDate(reference.AddDate(0, 0, days))
}

func TestExpiryStatus(t *testing.T) {
	for _, tc := range []struct {
		name string
		date string
		want models.QualificationStatus
	}{
		{"missing", "", models.QualificationExpired},
		{"unparsable", "not-a-date", models.QualificationExpired},
		{"yesterday", daysFrom(-1), models.QualificationExpired},
		{"reference day", daysFrom(0), models.QualificationExpiring},
		{"in 30 days", daysFrom(30), models.QualificationExpiring},
		{"in 31 days", daysFrom(31), models.QualificationValid},
		{"next year", daysFrom(365), models.QualificationValid},
		{"rfc3339 instant", "2026-06-20T23:00:00Z", models.QualificationExpiring},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExpiryStatus(tc.date, reference))
		})
	}
}

func TestSimCheckStatus(t *testing.T) {
	for _, tc := range []struct {
		name string
		date string
		want models.QualificationStatus
	}{
		{"missing", "", models.QualificationExpired},
		{"30 days ago", daysFrom(-30), models.QualificationValid},
		{"150 days ago", daysFrom(-150), models.QualificationValid},
		{"151 days ago", daysFrom(-151), models.QualificationExpiring},
		{"160 days ago", daysFrom(-160), models.QualificationExpiring},
		{"179 days ago", daysFrom(-179), models.QualificationExpiring},
		{"180 days ago", daysFrom(-180), models.QualificationExpired},
		{"210 days ago", daysFrom(-210), models.QualificationExpired},
		{"scheduled in the future", daysFrom(10), models.QualificationValid},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SimCheckStatus(tc.date, reference))
		})
	}
}

func TestPolicy_CustomThresholds(t *testing.T) {
	p := Policy{ExpiryWarningDays: 60, SimCheckWarningDays: 90, SimCheckValidityDays: 120}
	require.NoError(t, p.Validate())

	assert.Equal(t, models.QualificationExpiring, p.ExpiryStatus(daysFrom(45), reference))
	assert.Equal(t, models.QualificationExpiring, p.SimCheckStatus(daysFrom(-100), reference))
	assert.Equal(t, models.QualificationExpired, p.SimCheckStatus(daysFrom(-120), reference))
}

func TestPolicy_ValidateRejectsInvertedSimCheckWindow(t *testing.T) {
	p := Policy{ExpiryWarningDays: 30, SimCheckWarningDays: 180, SimCheckValidityDays: 150}

	var perr *PolicyError
	require.ErrorAs(t, p.Validate(), &perr)
	assert.Equal(t, "sim_check_validity_days", perr.Field)
}
