package ftl

import (
	"errors"
	"testing"
	"time"

	derr "github.com/MelvinKr/skybh/crew-compliance/internal/domain/errors"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(t time.Time) *time.Time {
	return &t
}

func TestEvaluate_EmptyHistorySmallFlight(t *testing.T) {
	res, err := Evaluate(nil, reference, 90, nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Compliant)
	assert.Equal(t, models.RiskOK, res.RiskLevel)
	assert.Empty(t, res.Reason)
	assert.InDelta(t, 1.5, res.Counters.FlightHoursToday, 1e-9)
	assert.InDelta(t, 6.5, res.Margins.DailyFlightHours, 1e-9)
	assert.InDelta(t, 58.5, res.Margins.FlightHours7d, 1e-9)
	assert.InDelta(t, 188.5, res.Margins.FlightHours28d, 1e-9)
	assert.Nil(t, res.DutyWindow)
	assert.Nil(t, res.Margins.DutyHours)
}

func TestEvaluate_DailyFlightCeiling(t *testing.T) {
	atLimit, err := Evaluate(nil, reference, 480, nil, nil)
	require.NoError(t, err)
	assert.True(t, atLimit.Compliant)
	assert.Equal(t, models.RiskCritical, atLimit.RiskLevel)

	over, err := Evaluate(nil, reference, 481, nil, nil)
	require.NoError(t, err)
	assert.False(t, over.Compliant)
	assert.Equal(t, models.RiskViolation, over.RiskLevel)
	assert.Contains(t, over.Reason, "journalier")
	assert.Less(t, over.Margins.DailyFlightHours, 0.0)
}

func TestEvaluate_DailyCeilingIncludesEarlierFlightsOfTheDay(t *testing.T) {
	logs := []models.DutyLog{logDaysAgo(0, 300)}

	res, err := Evaluate(logs, reference, 181, nil, nil)
	require.NoError(t, err)
	assert.False(t, res.Compliant)
	assert.Contains(t, res.Reason, "journalier")
}

func TestEvaluate_MinimumRest(t *testing.T) {
	prior := []models.DutyLog{dutyLog(at(14, 8, 0), at(14, 20, 0), 300)}

	exact, err := Evaluate(prior, reference, 120, ptr(at(15, 6, 0)), ptr(at(15, 9, 0)))
	require.NoError(t, err)
	assert.True(t, exact.Compliant)
	assert.NotContains(t, exact.Reason, "Repos")
	require.NotNil(t, exact.Margins.RestHours)
	assert.InDelta(t, 0.0, *exact.Margins.RestHours, 1e-9)

	late := []models.DutyLog{dutyLog(at(15, 0, 0), at(15, 1, 0), 30)}
	short, err := Evaluate(late, reference, 120, ptr(at(15, 6, 0)), ptr(at(15, 9, 0)))
	require.NoError(t, err)
	assert.False(t, short.Compliant)
	assert.Equal(t, models.RiskViolation, short.RiskLevel)
	assert.Contains(t, short.Reason, "Repos")
	assert.InDelta(t, -5.0, *short.Margins.RestHours, 1e-9)
}

func TestEvaluate_DutyCeiling(t *testing.T) {
	prior := []models.DutyLog{dutyLog(at(15, 5, 0), at(15, 11, 0), 200)}

	res, err := Evaluate(prior, reference, 120, ptr(at(15, 10, 0)), ptr(at(15, 19, 0)))
	require.NoError(t, err)
	assert.False(t, res.Compliant)
	assert.Contains(t, res.Reason, "Duty")
	require.NotNil(t, res.Margins.DutyHours)
	assert.InDelta(t, -1.0, *res.Margins.DutyHours, 1e-9)
}

func TestEvaluate_SevenDayCeiling(t *testing.T) {
	var logs []models.DutyLog
	for d := 1; d <= 6; d++ {
		logs = append(logs, logDaysAgo(d, 600))
	}

	atLimit, err := Evaluate(logs, reference, 0, nil, nil)
	require.NoError(t, err)
	assert.True(t, atLimit.Compliant)
	assert.InDelta(t, 60.0, atLimit.Counters.FlightHours7d, 1e-9)

	over, err := Evaluate(logs, reference, 1, nil, nil)
	require.NoError(t, err)
	assert.False(t, over.Compliant)
	assert.Contains(t, over.Reason, "7j")
}

func TestEvaluate_TwentyEightDayCeiling(t *testing.T) {
	var logs []models.DutyLog
	for d := 1; d <= 27; d++ {
		logs = append(logs, logDaysAgo(d, 450))
	}

	res, err := Evaluate(logs, reference, 0, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 202.5, res.Counters.FlightHours28d, 1e-9)
	assert.InDelta(t, 45.0, res.Counters.FlightHours7d, 1e-9)
	assert.False(t, res.Compliant)
	assert.Contains(t, res.Reason, "28j")
	assert.InDelta(t, -12.5, res.Margins.FlightHours28d, 1e-9)
}

func TestEvaluate_ReportsFirstViolationInPriorityOrder(t *testing.T) {
	var logs []models.DutyLog
	for d := 1; d <= 27; d++ {
		logs = append(logs, logDaysAgo(d, 600))
	}
	logs = append(logs, dutyLog(at(15, 0, 0), at(15, 2, 0), 0))

	res, err := Evaluate(logs, reference, 500, ptr(at(15, 6, 0)), ptr(at(15, 20, 0)))
	require.NoError(t, err)
	assert.False(t, res.Compliant)
	assert.Contains(t, res.Reason, "journalier")

	res, err = Evaluate(logs, reference, 60, ptr(at(15, 6, 0)), ptr(at(15, 20, 0)))
	require.NoError(t, err)
	assert.Contains(t, res.Reason, "Duty")

	res, err = Evaluate(logs, reference, 60, ptr(at(15, 6, 0)), ptr(at(15, 10, 0)))
	require.NoError(t, err)
	assert.Contains(t, res.Reason, "Repos")

	res, err = Evaluate(logs, reference, 60, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Reason, "7j")
}

func TestEvaluate_RiskTiers(t *testing.T) {
	for _, tc := range []struct {
		minutes float64
		want    models.RiskLevel
	}{
		{0, models.RiskOK},
		{300, models.RiskOK},
		{360, models.RiskWarning},
		{420, models.RiskWarning},
		{440, models.RiskCritical},
		{480, models.RiskCritical},
	} {
		res, err := Evaluate(nil, reference, tc.minutes, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.RiskLevel, "minutes=%v", tc.minutes)
	}
}

func TestEvaluate_DutyRatioDrivesRiskTier(t *testing.T) {
	res, err := Evaluate(nil, reference, 60, ptr(at(15, 6, 0)), ptr(at(15, 18, 0)))
	require.NoError(t, err)
	assert.True(t, res.Compliant)
	assert.Equal(t, models.RiskCritical, res.RiskLevel)
	assert.InDelta(t, 12.0/13.0, res.UsageRatio, 1e-9)
}

func TestEvaluator_CustomThresholds(t *testing.T) {
	limits := DefaultLimits()
	limits.WarningRatio = 0.5
	limits.CriticalRatio = 0.6

	e, err := NewEvaluator(limits)
	require.NoError(t, err)

	res, err := e.Evaluate(nil, reference, 270, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RiskWarning, res.RiskLevel)

	res, err = e.Evaluate(nil, reference, 300, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RiskCritical, res.RiskLevel)
}

func TestNewEvaluator_RejectsInvalidLimits(t *testing.T) {
	limits := DefaultLimits()
	limits.CriticalRatio = limits.WarningRatio

	_, err := NewEvaluator(limits)
	require.Error(t, err)
	assert.True(t, errors.Is(err, derr.ErrInvalidInput))

	limits = DefaultLimits()
	limits.FlightHours28d = 0
	_, err = NewEvaluator(limits)
	var perr *PreconditionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "flight_hours_28d", perr.Field)
}

func TestEvaluate_PreconditionErrors(t *testing.T) {
	for _, tc := range []struct {
		name      string
		ref       time.Time
		minutes   float64
		start     *time.Time
		end       *time.Time
		wantField string
	}{
		{"zero reference", time.Time{}, 60, nil, nil, "reference"},
		{"negative minutes", reference, -1, nil, nil, "candidate_minutes"},
		{"start without end", reference, 60, ptr(at(15, 6, 0)), nil, "duty_window"},
		{"end before start", reference, 60, ptr(at(15, 10, 0)), ptr(at(15, 6, 0)), "duty_window"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Evaluate(nil, tc.ref, tc.minutes, tc.start, tc.end)
			require.Error(t, err)
			assert.ErrorIs(t, err, derr.ErrInvalidInput)
			var perr *PreconditionError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.wantField, perr.Field)
			assert.Equal(t, models.ComplianceResult{}, res)
		})
	}
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	logs := []models.DutyLog{
		logDaysAgo(0, 120),
		logDaysAgo(2, 400),
		dutyLog(at(14, 6, 0), at(14, 15, 0), 300),
	}

	first, err := Evaluate(logs, reference, 200, ptr(at(15, 7, 0)), ptr(at(15, 13, 0)))
	require.NoError(t, err)
	second, err := Evaluate(logs, reference, 200, ptr(at(15, 7, 0)), ptr(at(15, 13, 0)))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
