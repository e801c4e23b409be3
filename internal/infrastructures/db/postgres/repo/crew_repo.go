package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	derr "github.com/MelvinKr/skybh/crew-compliance/internal/domain/errors"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Repository, error) {
	poolCfg, err := buildPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", derr.ErrStorageUnavailable, err)
	}

	return &Repository{db: pool}, nil
}

func buildPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.StatementCacheCapacity = 0
	poolCfg.ConnConfig.DescriptionCacheCapacity = 0

	return poolCfg, nil
}

func (r *Repository) Close() {
	r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", derr.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *Repository) GetMember(ctx context.Context, crewID string) (models.CrewMember, error) {
	const query = `
		SELECT
			crew_id,
			active,
			COALESCE(role, ''),
			COALESCE(name, '')
		FROM crew_members
		WHERE crew_id = $1
	`

	var m models.CrewMember
	err := r.db.QueryRow(ctx, query, crewID).Scan(&m.ID, &m.Active, &m.Role, &m.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CrewMember{}, derr.ErrCrewNotFound
		}
		return models.CrewMember{}, fmt.Errorf("query crew member: %w", err)
	}

	return m, nil
}

func (r *Repository) GetQualifications(ctx context.Context, crewID string) (models.Qualifications, error) {
	const query = `
		SELECT
			q.crew_id,
			q.medical_expiry,
			q.license_expiry,
			q.last_sim_check,
			COALESCE(
				(SELECT array_agg(t.aircraft_type ORDER BY t.aircraft_type)
				 FROM crew_type_ratings t
				 WHERE t.crew_id = q.crew_id),
				'{}'
			)
		FROM crew_qualifications q
		WHERE q.crew_id = $1
	`

	var (
		q                        models.Qualifications
		medical, license, simChk *time.Time
	)
	err := r.db.QueryRow(ctx, query, crewID).Scan(&q.CrewID, &medical, &license, &simChk, &q.TypeRatings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Qualifications{}, derr.ErrQualificationsNotFound
		}
		return models.Qualifications{}, fmt.Errorf("query qualifications: %w", err)
	}

	q.MedicalExpiry = formatNullableDate(medical)
	q.LicenseExpiry = formatNullableDate(license)
	q.LastSimCheck = formatNullableDate(simChk)

	return q, nil
}

func (r *Repository) ListByCrewSince(ctx context.Context, crewID string, since time.Time) ([]models.DutyLog, error) {
	const query = `
		SELECT
			crew_id,
			COALESCE(flight_id, ''),
			duty_date,
			duty_start_utc,
			duty_end_utc,
			flight_minutes
		FROM duty_logs
		WHERE crew_id = $1
		  AND duty_date >= $2
		ORDER BY duty_date ASC, duty_start_utc ASC NULLS FIRST
	`

	rows, err := r.db.Query(ctx, query, crewID, models.Day(since))
	if err != nil {
		return nil, fmt.Errorf("query duty logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.DutyLog, 0, 32)
	for rows.Next() {
		var (
			l          models.DutyLog
			day        time.Time
			start, end *time.Time
		)
		if err := rows.Scan(&l.CrewID, &l.FlightID, &day, &start, &end, &l.FlightMinutes); err != nil {
			return nil, fmt.Errorf("scan duty log: %w", err)
		}
		l.Date = models.FormatDate(day)
		if start != nil {
			l.DutyStartUTC = start.UTC()
		}
		if end != nil {
			l.DutyEndUTC = end.UTC()
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duty logs: %w", err)
	}

	return logs, nil
}

func (r *Repository) ListUpcoming(ctx context.Context, from, to time.Time) ([]models.Assignment, error) {
	const query = `
		SELECT
			a.crew_id,
			f.flight_id,
			f.departure_utc,
			f.arrival_utc,
			f.aircraft_type,
			a.duty_start_utc,
			a.duty_end_utc
		FROM flight_assignments a
		JOIN flights f ON f.flight_id = a.flight_id
		WHERE f.departure_utc >= $1
		  AND f.departure_utc < $2
		ORDER BY f.departure_utc ASC, a.crew_id ASC
	`

	rows, err := r.db.Query(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query upcoming assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]models.Assignment, 0, 64)
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(
			&a.CrewID,
			&a.Flight.FlightID,
			&a.Flight.DepartureTime,
			&a.Flight.ArrivalTime,
			&a.Flight.AircraftType,
			&a.Flight.DutyStart,
			&a.Flight.DutyEnd,
		); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.Flight.DepartureTime = a.Flight.DepartureTime.UTC()
		a.Flight.ArrivalTime = a.Flight.ArrivalTime.UTC()
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return assignments, nil
}

func (r *Repository) UpsertAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	const query = `
		INSERT INTO crew_alerts (
			alert_id,
			dedup_key,
			alert_type,
			entity_id,
			subtype,
			criticality,
			message,
			flight_id,
			time_to_block_minutes,
			detected_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, now())
		ON CONFLICT (dedup_key) DO UPDATE SET
			criticality = EXCLUDED.criticality,
			message = EXCLUDED.message,
			flight_id = EXCLUDED.flight_id,
			time_to_block_minutes = EXCLUDED.time_to_block_minutes,
			updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, a := range alerts {
		batch.Queue(query,
			uuid.NewString(),
			a.DedupKey,
			a.Type,
			a.EntityID,
			a.Subtype,
			string(a.Criticality),
			a.Message,
			a.FlightID,
			a.TimeToBlockMinutes,
			a.DetectedAt.UTC(),
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for _, a := range alerts {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert alert %s: %w", a.DedupKey, err)
		}
	}

	return nil
}

func formatNullableDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return models.FormatDate(*t)
}
