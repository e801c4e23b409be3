package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/alerts"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/eligibility"
	derr "github.com/MelvinKr/skybh/crew-compliance/internal/domain/errors"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/ports"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, crewID string, flight models.FlightCandidate, reference time.Time) (models.EligibilityReport, error)
}

type ScanOptions struct {
	Horizon                time.Duration
	LockTTL                time.Duration
	UtilizationHoursPerDay float64
	Policy                 eligibility.Policy
}

type ScanSummary struct {
	RunID       string    `json:"run_id"`
	Reference   time.Time `json:"reference_time"`
	Assignments int       `json:"assignments"`
	Eligible    int       `json:"eligible"`
	Ineligible  int       `json:"ineligible"`
	Failed      int       `json:"failed"`
	Alerts      int       `json:"alerts"`
}

// FleetScanner re-checks every upcoming assignment and publishes alerts.
// Only one run executes at a time: in-process through mu, across replicas
// through the optional distributed lock.
type FleetScanner struct {
	log         *zap.Logger
	assignments ports.AssignmentRepository
	checker     EligibilityChecker
	sink        ports.AlertSink
	lock        ports.ScanLock
	opts        ScanOptions
	tracer      trace.Tracer
	runs        metric.Int64Counter

	mu sync.Mutex
}

func NewFleetScanner(log *zap.Logger, assignments ports.AssignmentRepository, checker EligibilityChecker, sink ports.AlertSink, lock ports.ScanLock, opts ScanOptions) *FleetScanner {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Horizon <= 0 {
		opts.Horizon = 72 * time.Hour
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	if opts.UtilizationHoursPerDay <= 0 {
		opts.UtilizationHoursPerDay = alerts.DefaultUtilizationHoursPerDay
	}
	if opts.Policy == (eligibility.Policy{}) {
		opts.Policy = eligibility.DefaultPolicy()
	}

	runs, err := otel.Meter("crew-compliance/service").Int64Counter(
		"crew_compliance.scan_runs",
		metric.WithDescription("Fleet scan runs, by outcome"),
	)
	if err != nil {
		log.Warn("failed to create scan run counter", zap.Error(err))
	}

	return &FleetScanner{
		log:         log,
		assignments: assignments,
		checker:     checker,
		sink:        sink,
		lock:        lock,
		opts:        opts,
		tracer:      otel.Tracer("crew-compliance/service"),
		runs:        runs,
	}
}

// Run scans assignments departing within the horizon after reference.
// It returns derr.ErrScanInProgress when another run holds the lock.
func (s *FleetScanner) Run(ctx context.Context, reference time.Time) (ScanSummary, error) {
	summary, err := s.run(ctx, reference)
	s.recordRun(ctx, err)
	return summary, err
}

func (s *FleetScanner) run(ctx context.Context, reference time.Time) (ScanSummary, error) {
	const op = "service.FleetScanner.Run"

	if !s.mu.TryLock() {
		return ScanSummary{}, fmt.Errorf("%s: %w", op, derr.ErrScanInProgress)
	}
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	summary := ScanSummary{
		RunID:     uuid.NewString(),
		Reference: reference.UTC(),
	}
	span.SetAttributes(attribute.String("scan.run_id", summary.RunID))

	logger := s.log.With(
		zap.String("op", op),
		zap.String("run_id", summary.RunID),
	)

	if s.lock != nil {
		token, ok, err := s.lock.Acquire(ctx, s.opts.LockTTL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, "lock acquire failed")
			return ScanSummary{}, fmt.Errorf("%s: acquire lock: %w", op, err)
		}
		if !ok {
			span.SetStatus(otelcodes.Error, "scan in progress")
			return ScanSummary{}, fmt.Errorf("%s: %w", op, derr.ErrScanInProgress)
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := s.lock.Release(releaseCtx, token); err != nil {
				logger.Warn("failed to release scan lock", zap.Error(err))
			}
		}()
	}

	upcoming, err := s.assignments.ListUpcoming(ctx, reference, reference.Add(s.opts.Horizon))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to list assignments")
		return ScanSummary{}, fmt.Errorf("%s: list assignments: %w", op, err)
	}
	summary.Assignments = len(upcoming)

	drafts := newAlertSet()
	for _, a := range upcoming {
		if err := ctx.Err(); err != nil {
			return ScanSummary{}, fmt.Errorf("%s: %w", op, err)
		}

		report, err := s.checker.CheckEligibility(ctx, a.CrewID, a.Flight, reference)
		if err != nil {
			summary.Failed++
			logger.Warn("eligibility check failed",
				zap.String("crew_id", a.CrewID),
				zap.String("flight_id", a.Flight.FlightID),
				zap.Error(err),
			)
			continue
		}

		if report.Eligibility.Valid {
			summary.Eligible++
		} else {
			summary.Ineligible++
		}

		drafts.add(alerts.Draft(alerts.Input{
			CrewID:                 a.CrewID,
			FlightID:               a.Flight.FlightID,
			DetectedAt:             reference,
			Qualifications:         report.Qualifications,
			Compliance:             report.Compliance,
			Policy:                 s.opts.Policy,
			UtilizationHoursPerDay: s.opts.UtilizationHoursPerDay,
		}))
	}

	out := drafts.list()
	summary.Alerts = len(out)
	if len(out) > 0 {
		if err := s.sink.UpsertAlerts(ctx, out); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, "failed to upsert alerts")
			return ScanSummary{}, fmt.Errorf("%s: upsert alerts: %w", op, err)
		}
	}

	span.SetAttributes(
		attribute.Int("scan.assignments", summary.Assignments),
		attribute.Int("scan.alerts", summary.Alerts),
		attribute.Int("scan.failed", summary.Failed),
	)
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("fleet scan completed",
		zap.Int("assignments", summary.Assignments),
		zap.Int("eligible", summary.Eligible),
		zap.Int("ineligible", summary.Ineligible),
		zap.Int("failed", summary.Failed),
		zap.Int("alerts", summary.Alerts),
	)
	return summary, nil
}

// Start runs a scan on every tick until ctx is cancelled. now is read once per tick.
func (s *FleetScanner) Start(ctx context.Context, interval time.Duration, now func() time.Time) {
	const op = "service.FleetScanner.Start"
	logger := s.log.With(zap.String("op", op))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("fleet scanner started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("fleet scanner stopped")
			return
		case <-ticker.C:
			if _, err := s.Run(ctx, now()); err != nil {
				if errors.Is(err, derr.ErrScanInProgress) {
					logger.Info("scan skipped, another run in progress")
					continue
				}
				if ctx.Err() != nil {
					return
				}
				logger.Error("fleet scan failed", zap.Error(err))
			}
		}
	}
}

func (s *FleetScanner) recordRun(ctx context.Context, err error) {
	if s.runs == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, derr.ErrScanInProgress):
		outcome = "skipped"
	case err != nil:
		outcome = "failed"
	}
	s.runs.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// alertSet keeps one alert per dedup key, preferring critical over warning.
// Insertion order is preserved.
type alertSet struct {
	index map[string]int
	items []models.Alert
}

func newAlertSet() *alertSet {
	return &alertSet{index: make(map[string]int)}
}

func (s *alertSet) add(drafts []models.Alert) {
	for _, a := range drafts {
		i, ok := s.index[a.DedupKey]
		if !ok {
			s.index[a.DedupKey] = len(s.items)
			s.items = append(s.items, a)
			continue
		}
		if s.items[i].Criticality != models.CriticalityCritical && a.Criticality == models.CriticalityCritical {
			s.items[i] = a
		}
	}
}

func (s *alertSet) list() []models.Alert {
	return s.items
}
