package redis

import (
	"strings"
	"testing"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

func TestVerdictKey_TruncatesReferenceToDay(t *testing.T) {
	dep := time.Date(2026, 7, 3, 9, 0, 0, 0, time.UTC)
	flight := models.FlightCandidate{
		FlightID:      "PV210",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(40 * time.Minute),
		AircraftType:  " dhc6 ",
	}

	morning := verdictKey("crew-1", flight, time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC))
	evening := verdictKey("crew-1", flight, time.Date(2026, 7, 1, 22, 0, 0, 0, time.UTC))
	if morning != evening {
		t.Fatalf("same reference day must share a key: %q vs %q", morning, evening)
	}

	want := "eligibility:crew-1:PV210:1783069200:1783071600:DHC6:-:-:2026-07-01"
	if morning != want {
		t.Fatalf("unexpected key: got %q want %q", morning, want)
	}
}

func TestVerdictKey_DutyWindowChangesKey(t *testing.T) {
	dep := time.Date(2026, 7, 3, 9, 0, 0, 0, time.UTC)
	flight := models.FlightCandidate{FlightID: "PV210", DepartureTime: dep, ArrivalTime: dep.Add(time.Hour), AircraftType: "DHC6"}
	ref := time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)

	without := verdictKey("crew-1", flight, ref)

	start, end := dep.Add(-time.Hour), dep.Add(2*time.Hour)
	flight.DutyStart, flight.DutyEnd = &start, &end
	with := verdictKey("crew-1", flight, ref)

	if without == with {
		t.Fatalf("duty window must be part of the key: %q", with)
	}
}

func TestCrewKeyPattern(t *testing.T) {
	tests := []struct {
		crewID string
		want   string
	}{
		{"crew-1", "eligibility:crew-1:*"},
		{" crew-1 ", "eligibility:crew-1:*"},
		{"c*[1]?", `eligibility:c\*\[1\]\?:*`},
	}

	for _, tc := range tests {
		if got := crewKeyPattern(tc.crewID); got != tc.want {
			t.Fatalf("crewKeyPattern(%q): got %q want %q", tc.crewID, got, tc.want)
		}
	}

	dep := time.Date(2026, 7, 3, 9, 0, 0, 0, time.UTC)
	key := verdictKey("crew-1", models.FlightCandidate{FlightID: "PV210", DepartureTime: dep, ArrivalTime: dep}, dep)
	if !strings.HasPrefix(key, strings.TrimSuffix(crewKeyPattern("crew-1"), "*")) {
		t.Fatalf("pattern must cover verdict keys: %q", key)
	}
}
