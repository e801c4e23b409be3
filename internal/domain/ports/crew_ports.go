package ports

import (
	"context"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

type CrewRepository interface {
	GetMember(ctx context.Context, crewID string) (models.CrewMember, error)
	GetQualifications(ctx context.Context, crewID string) (models.Qualifications, error)
}

type DutyLogRepository interface {
	// ListByCrewSince returns the crew member's logs dated on or after since.
	ListByCrewSince(ctx context.Context, crewID string, since time.Time) ([]models.DutyLog, error)
}

type VerdictCache interface {
	Get(ctx context.Context, crewID string, flight models.FlightCandidate, reference time.Time) (models.EligibilityReport, error)
	Set(ctx context.Context, report models.EligibilityReport, flight models.FlightCandidate, ttl time.Duration) error
	// InvalidateCrew drops every cached verdict of crewID.
	InvalidateCrew(ctx context.Context, crewID string) error
}
