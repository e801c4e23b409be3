package ftl

import (
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

// ValidateDutyWindow checks the duty period [start, end] against the daily duty
// ceiling and the minimum rest since the previous duty.
//
// Prior duty periods that overlap or touch the candidate are folded into it
// (earliest start, latest end) before the ceiling is applied. Rest is measured
// from the latest prior duty that ended before the folded span. Logs without a
// complete duty window are ignored.
func ValidateDutyWindow(logs []models.DutyLog, start, end time.Time, limits Limits) models.DutyWindowResult {
	spanStart, spanEnd := start, end
	merged := make([]bool, len(logs))

	for changed := true; changed; {
		changed = false
		for i, l := range logs {
			if merged[i] || !l.HasDutyWindow() {
				continue
			}
			if l.DutyEndUTC.Before(spanStart) || l.DutyStartUTC.After(spanEnd) {
				continue
			}
			merged[i] = true
			changed = true
			if l.DutyStartUTC.Before(spanStart) {
				spanStart = l.DutyStartUTC
			}
			if l.DutyEndUTC.After(spanEnd) {
				spanEnd = l.DutyEndUTC
			}
		}
	}

	duty := spanEnd.Sub(spanStart)
	res := models.DutyWindowResult{
		DutyStartUTC:  spanStart.UTC(),
		DutyEndUTC:    spanEnd.UTC(),
		DutyHours:     duty.Hours(),
		DutyCompliant: duty <= hoursToDuration(limits.DailyDutyHours),
		RestCompliant: true,
	}

	var lastEnd time.Time
	for i, l := range logs {
		if merged[i] || !l.HasDutyWindow() || l.DutyEndUTC.After(spanStart) {
			continue
		}
		if !res.HasPriorDuty || l.DutyEndUTC.After(lastEnd) {
			lastEnd = l.DutyEndUTC
			res.HasPriorDuty = true
		}
	}
	if res.HasPriorDuty {
		rest := spanStart.Sub(lastEnd)
		res.RestHours = rest.Hours()
		res.RestCompliant = rest >= hoursToDuration(limits.MinRestHours)
	}

	return res
}
