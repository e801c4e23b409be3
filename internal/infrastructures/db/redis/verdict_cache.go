package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	derr "github.com/MelvinKr/skybh/crew-compliance/internal/domain/errors"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

type VerdictCacheRepository struct {
	redis *redis.Client
}

func NewVerdictCacheRepository(redisClient *redis.Client) *VerdictCacheRepository {
	return &VerdictCacheRepository{redis: redisClient}
}

func (r *VerdictCacheRepository) Get(ctx context.Context, crewID string, flight models.FlightCandidate, reference time.Time) (models.EligibilityReport, error) {
	key := verdictKey(crewID, flight, reference)
	data, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.EligibilityReport{}, derr.ErrVerdictNotFound
		}
		return models.EligibilityReport{}, fmt.Errorf("redis get verdict: %w", err)
	}

	var report models.EligibilityReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return models.EligibilityReport{}, fmt.Errorf("unmarshal cached verdict: %w", err)
	}

	return report, nil
}

func (r *VerdictCacheRepository) Set(ctx context.Context, report models.EligibilityReport, flight models.FlightCandidate, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	key := verdictKey(report.CrewID, flight, report.Reference)
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal verdict for cache: %w", err)
	}

	if err := r.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set verdict: %w", err)
	}

	return nil
}

const invalidateScanCount = 100

func (r *VerdictCacheRepository) InvalidateCrew(ctx context.Context, crewID string) error {
	iter := r.redis.Scan(ctx, 0, crewKeyPattern(crewID), invalidateScanCount).Iterator()

	keys := make([]string, 0, invalidateScanCount)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == invalidateScanCount {
			if err := r.redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del verdicts: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan verdicts: %w", err)
	}
	if len(keys) > 0 {
		if err := r.redis.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis del verdicts: %w", err)
		}
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// crewKeyPattern matches every verdictKey of crewID, with glob characters in
// the id escaped.
func crewKeyPattern(crewID string) string {
	return "eligibility:" + globEscaper.Replace(strings.TrimSpace(crewID)) + ":*"
}

// verdictKey identifies every input of an eligibility verdict. Currency only
// depends on the reference day, so the reference is truncated to it.
func verdictKey(crewID string, flight models.FlightCandidate, reference time.Time) string {
	parts := []string{
		"eligibility",
		strings.TrimSpace(crewID),
		strings.TrimSpace(flight.FlightID),
		strconv.FormatInt(flight.DepartureTime.Unix(), 10),
		strconv.FormatInt(flight.ArrivalTime.Unix(), 10),
		strings.ToUpper(strings.TrimSpace(flight.AircraftType)),
		unixOrDash(flight.DutyStart),
		unixOrDash(flight.DutyEnd),
		models.FormatDate(reference),
	}
	return strings.Join(parts, ":")
}

func unixOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return strconv.FormatInt(t.Unix(), 10)
}
