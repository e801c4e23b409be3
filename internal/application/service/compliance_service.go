package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/eligibility"
	derr "github.com/MelvinKr/skybh/crew-compliance/internal/domain/errors"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// historyDays covers the 28-day window plus the day before it, which may
// hold the duty period that rest is measured from.
const historyDays = 28

type ComplianceService struct {
	log       *zap.Logger
	crew      ports.CrewRepository
	dutyLogs  ports.DutyLogRepository
	cache     ports.VerdictCache
	cacheTTL  time.Duration
	validator *eligibility.Validator
	tracer    trace.Tracer
	verdicts  metric.Int64Counter
}

func NewComplianceService(log *zap.Logger, crew ports.CrewRepository, dutyLogs ports.DutyLogRepository, cache ports.VerdictCache, cacheTTL time.Duration, validator *eligibility.Validator) *ComplianceService {
	if log == nil {
		log = zap.NewNop()
	}

	verdicts, err := otel.Meter("crew-compliance/service").Int64Counter(
		"crew_compliance.verdicts",
		metric.WithDescription("Eligibility verdicts computed, by risk level and validity"),
	)
	if err != nil {
		log.Warn("failed to create verdict counter", zap.Error(err))
	}

	return &ComplianceService{
		log:       log,
		crew:      crew,
		dutyLogs:  dutyLogs,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validator,
		tracer:    otel.Tracer("crew-compliance/service"),
		verdicts:  verdicts,
	}
}

// EvaluateCompliance runs the FTL rules for the flight on its departure day.
func (s *ComplianceService) EvaluateCompliance(ctx context.Context, crewID string, flight models.FlightCandidate) (models.ComplianceResult, error) {
	const op = "service.EvaluateCompliance"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	crewID = strings.TrimSpace(crewID)
	span.SetAttributes(
		attribute.String("crew.id", crewID),
		attribute.String("flight.id", flight.FlightID),
	)

	logger := s.log.With(
		zap.String("op", op),
		zap.String("crew_id", crewID),
		zap.String("flight_id", flight.FlightID),
	)

	if crewID == "" {
		span.SetStatus(otelcodes.Error, "empty crew_id")
		return models.ComplianceResult{}, fmt.Errorf("%s: crew_id is required: %w", op, derr.ErrInvalidInput)
	}

	logs, err := s.loadHistory(ctx, crewID, flight.DepartureTime)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to load duty logs")
		return models.ComplianceResult{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.validator.Evaluator().Evaluate(logs, flight.DepartureTime, flight.FlightMinutes(), flight.DutyStart, flight.DutyEnd)
	if err != nil {
		logger.Warn("invalid compliance request", zap.Error(err))
		span.SetStatus(otelcodes.Error, "invalid input")
		return models.ComplianceResult{}, fmt.Errorf("%s: %w", op, err)
	}

	span.SetAttributes(
		attribute.Bool("ftl.compliant", res.Compliant),
		attribute.String("ftl.risk_level", string(res.RiskLevel)),
	)
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Debug("compliance evaluated",
		zap.Bool("compliant", res.Compliant),
		zap.String("risk_level", string(res.RiskLevel)),
		zap.Int("logs", len(logs)),
	)
	return res, nil
}

// CheckEligibility builds the full report for assigning crewID to flight,
// judging currency at reference. A member or qualification record that does
// not exist becomes a blocker, not an error.
func (s *ComplianceService) CheckEligibility(ctx context.Context, crewID string, flight models.FlightCandidate, reference time.Time) (models.EligibilityReport, error) {
	const op = "service.CheckEligibility"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	crewID = strings.TrimSpace(crewID)
	span.SetAttributes(
		attribute.String("crew.id", crewID),
		attribute.String("flight.id", flight.FlightID),
		attribute.String("flight.aircraft_type", flight.AircraftType),
	)

	logger := s.log.With(
		zap.String("op", op),
		zap.String("crew_id", crewID),
		zap.String("flight_id", flight.FlightID),
	)

	if crewID == "" {
		span.SetStatus(otelcodes.Error, "empty crew_id")
		return models.EligibilityReport{}, fmt.Errorf("%s: crew_id is required: %w", op, derr.ErrInvalidInput)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, crewID, flight, reference)
		if err == nil {
			logger.Debug("verdict cache hit")
			span.AddEvent("verdict.cache.hit")
			return cached, nil
		}
		if errors.Is(err, derr.ErrVerdictNotFound) {
			span.AddEvent("verdict.cache.miss")
		} else {
			logger.Warn("redis cache read failed", zap.Error(err))
			span.RecordError(err)
		}
	}

	member, quals, err := s.loadCrew(ctx, crewID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to load crew")
		return models.EligibilityReport{}, fmt.Errorf("%s: %w", op, err)
	}

	logs, err := s.loadHistory(ctx, crewID, flight.DepartureTime)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to load duty logs")
		return models.EligibilityReport{}, fmt.Errorf("%s: %w", op, err)
	}

	verdict, err := s.validator.Assess(reference, member, quals, logs, &flight)
	if err != nil {
		logger.Warn("invalid eligibility request", zap.Error(err))
		span.SetStatus(otelcodes.Error, "invalid input")
		return models.EligibilityReport{}, fmt.Errorf("%s: %w", op, err)
	}

	report := models.EligibilityReport{
		CrewID:         crewID,
		FlightID:       flight.FlightID,
		Reference:      reference.UTC(),
		Eligibility:    verdict.Eligibility,
		Compliance:     verdict.Compliance,
		Status:         s.validator.Policy().CrewMemberStatus(member, quals, verdict.Compliance, reference),
		Qualifications: quals,
	}

	s.recordVerdict(ctx, report)

	if s.cache != nil {
		if err := s.cache.Set(ctx, report, flight, s.cacheTTL); err != nil {
			logger.Warn("redis cache write failed", zap.Error(err))
			span.RecordError(err)
		}
	}

	span.SetAttributes(
		attribute.Bool("eligibility.valid", report.Eligibility.Valid),
		attribute.Int("eligibility.blockers", len(report.Eligibility.Blockers)),
		attribute.Int("eligibility.warnings", len(report.Eligibility.Warnings)),
	)
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("eligibility checked",
		zap.Bool("valid", report.Eligibility.Valid),
		zap.Strings("blockers", report.Eligibility.Blockers),
		zap.String("status", string(report.Status)),
	)
	return report, nil
}

// CrewStatus reduces the member to a badge at reference, taking FTL usage of
// the reference day into account.
func (s *ComplianceService) CrewStatus(ctx context.Context, crewID string, reference time.Time) (models.CrewStatus, error) {
	const op = "service.CrewStatus"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	crewID = strings.TrimSpace(crewID)
	span.SetAttributes(attribute.String("crew.id", crewID))

	if crewID == "" {
		span.SetStatus(otelcodes.Error, "empty crew_id")
		return "", fmt.Errorf("%s: crew_id is required: %w", op, derr.ErrInvalidInput)
	}

	member, quals, err := s.loadCrew(ctx, crewID)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if member == nil {
		span.SetStatus(otelcodes.Error, "crew not found")
		return "", fmt.Errorf("%s: %w", op, derr.ErrCrewNotFound)
	}

	logs, err := s.loadHistory(ctx, crewID, reference)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.validator.Evaluator().Evaluate(logs, reference, 0, nil, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	status := s.validator.Policy().CrewMemberStatus(member, quals, &res, reference)
	span.SetAttributes(attribute.String("crew.status", string(status)))
	span.SetStatus(otelcodes.Ok, "ok")
	return status, nil
}

// InvalidateVerdicts drops the cached verdicts of crewID. Writers of duty
// logs or qualifications call it so that checks do not serve a verdict
// computed on older history.
func (s *ComplianceService) InvalidateVerdicts(ctx context.Context, crewID string) error {
	const op = "service.InvalidateVerdicts"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	crewID = strings.TrimSpace(crewID)
	span.SetAttributes(attribute.String("crew.id", crewID))

	if crewID == "" {
		span.SetStatus(otelcodes.Error, "empty crew_id")
		return fmt.Errorf("%s: crew_id is required: %w", op, derr.ErrInvalidInput)
	}
	if s.cache == nil {
		return nil
	}

	if err := s.cache.InvalidateCrew(ctx, crewID); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to invalidate verdicts")
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("verdicts invalidated", zap.String("op", op), zap.String("crew_id", crewID))
	span.SetStatus(otelcodes.Ok, "ok")
	return nil
}

func (s *ComplianceService) loadCrew(ctx context.Context, crewID string) (*models.CrewMember, *models.Qualifications, error) {
	var (
		member *models.CrewMember
		quals  *models.Qualifications
	)

	m, err := s.crew.GetMember(ctx, crewID)
	switch {
	case err == nil:
		member = &m
	case errors.Is(err, derr.ErrCrewNotFound):
	default:
		return nil, nil, fmt.Errorf("get crew member: %w", err)
	}

	q, err := s.crew.GetQualifications(ctx, crewID)
	switch {
	case err == nil:
		quals = &q
	case errors.Is(err, derr.ErrQualificationsNotFound):
	default:
		return nil, nil, fmt.Errorf("get qualifications: %w", err)
	}

	return member, quals, nil
}

func (s *ComplianceService) loadHistory(ctx context.Context, crewID string, day time.Time) ([]models.DutyLog, error) {
	since := models.Day(day).AddDate(0, 0, -historyDays)
	logs, err := s.dutyLogs.ListByCrewSince(ctx, crewID, since)
	if err != nil {
		return nil, fmt.Errorf("list duty logs: %w", err)
	}
	return logs, nil
}

func (s *ComplianceService) recordVerdict(ctx context.Context, report models.EligibilityReport) {
	if s.verdicts == nil {
		return
	}
	risk := "none"
	if report.Compliance != nil {
		risk = string(report.Compliance.RiskLevel)
	}
	s.verdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("risk_level", risk),
		attribute.Bool("valid", report.Eligibility.Valid),
	))
}
