package ports

import (
	"context"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

type AssignmentRepository interface {
	// ListUpcoming returns assignments whose flight departs in [from, to).
	ListUpcoming(ctx context.Context, from, to time.Time) ([]models.Assignment, error)
}

type AlertSink interface {
	UpsertAlerts(ctx context.Context, alerts []models.Alert) error
}

type ScanLock interface {
	// Acquire returns a release token, or ok=false when another holder owns the lock.
	Acquire(ctx context.Context, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, token string) error
}
