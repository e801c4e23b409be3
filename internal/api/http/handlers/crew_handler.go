package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"go.uber.org/zap"
)

const defaultCrewRequestTimeout = 5 * time.Second

type ComplianceService interface {
	EvaluateCompliance(ctx context.Context, crewID string, flight models.FlightCandidate) (models.ComplianceResult, error)
	CheckEligibility(ctx context.Context, crewID string, flight models.FlightCandidate, reference time.Time) (models.EligibilityReport, error)
	CrewStatus(ctx context.Context, crewID string, reference time.Time) (models.CrewStatus, error)
	InvalidateVerdicts(ctx context.Context, crewID string) error
}

type CrewHandler struct {
	log     *zap.Logger
	svc     ComplianceService
	timeout time.Duration
	now     func() time.Time
}

type crewStatusResponse struct {
	CrewID    string            `json:"crew_id"`
	Status    models.CrewStatus `json:"status"`
	Reference time.Time         `json:"reference_time"`
}

func NewCrewHandler(log *zap.Logger, svc ComplianceService, timeout time.Duration) *CrewHandler {
	if timeout <= 0 {
		timeout = defaultCrewRequestTimeout
	}
	return &CrewHandler{
		log:     log,
		svc:     svc,
		timeout: timeout,
		now:     time.Now,
	}
}

// ServeHTTP routes /v1/crew/{id}/... by suffix.
func (h *CrewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/eligibility"):
		h.CheckEligibility(w, r)
	case strings.HasSuffix(r.URL.Path, "/compliance"):
		h.EvaluateCompliance(w, r)
	case strings.HasSuffix(r.URL.Path, "/status"):
		h.GetStatus(w, r)
	case strings.HasSuffix(r.URL.Path, "/verdicts"):
		h.InvalidateVerdicts(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *CrewHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	crewID, ok := parseCrewIDFromPath(r.URL.Path, "/eligibility")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid path, expected /v1/crew/{id}/eligibility")
		return
	}

	req, ok := h.decodeFlight(w, r)
	if !ok {
		return
	}

	reference := h.now().UTC()
	if req.ReferenceTime != nil {
		reference = req.ReferenceTime.UTC()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report, err := h.svc.CheckEligibility(ctx, crewID, req.candidate(), reference)
	if err != nil {
		h.logFailure("check eligibility failed", crewID, err)
		writeError(w, mapHTTPStatus(err), errorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *CrewHandler) EvaluateCompliance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	crewID, ok := parseCrewIDFromPath(r.URL.Path, "/compliance")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid path, expected /v1/crew/{id}/compliance")
		return
	}

	req, ok := h.decodeFlight(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.svc.EvaluateCompliance(ctx, crewID, req.candidate())
	if err != nil {
		h.logFailure("evaluate compliance failed", crewID, err)
		writeError(w, mapHTTPStatus(err), errorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *CrewHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	crewID, ok := parseCrewIDFromPath(r.URL.Path, "/status")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid path, expected /v1/crew/{id}/status")
		return
	}

	reference, ok := parseReferenceQuery(r, h.now)
	if !ok {
		writeError(w, http.StatusBadRequest, "reference_time must be RFC 3339 or YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status, err := h.svc.CrewStatus(ctx, crewID, reference)
	if err != nil {
		h.logFailure("get crew status failed", crewID, err)
		writeError(w, mapHTTPStatus(err), errorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, crewStatusResponse{CrewID: crewID, Status: status, Reference: reference})
}

// InvalidateVerdicts handles DELETE /v1/crew/{id}/verdicts, called by duty log
// and qualification writers after they commit.
func (h *CrewHandler) InvalidateVerdicts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	crewID, ok := parseCrewIDFromPath(r.URL.Path, "/verdicts")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid path, expected /v1/crew/{id}/verdicts")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.svc.InvalidateVerdicts(ctx, crewID); err != nil {
		h.logFailure("invalidate verdicts failed", crewID, err)
		writeError(w, mapHTTPStatus(err), errorMessage(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CrewHandler) decodeFlight(w http.ResponseWriter, r *http.Request) (flightRequest, bool) {
	var req flightRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return flightRequest{}, false
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return flightRequest{}, false
	}
	return req, true
}

func (h *CrewHandler) logFailure(msg, crewID string, err error) {
	if mapHTTPStatus(err) < http.StatusInternalServerError {
		h.log.Warn(msg, zap.String("crew_id", crewID), zap.Error(err))
		return
	}
	h.log.Error(msg, zap.String("crew_id", crewID), zap.Error(err))
}
