package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/application/service"
	derr "github.com/MelvinKr/skybh/crew-compliance/internal/domain/errors"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

type testComplianceService struct {
	report     models.EligibilityReport
	compliance models.ComplianceResult
	status     models.CrewStatus
	err        error

	gotCrewID    string
	gotFlight    models.FlightCandidate
	gotReference time.Time
	invalidated  int
}

func (s *testComplianceService) EvaluateCompliance(ctx context.Context, crewID string, flight models.FlightCandidate) (models.ComplianceResult, error) {
	s.gotCrewID, s.gotFlight = crewID, flight
	return s.compliance, s.err
}

func (s *testComplianceService) CheckEligibility(ctx context.Context, crewID string, flight models.FlightCandidate, reference time.Time) (models.EligibilityReport, error) {
	s.gotCrewID, s.gotFlight, s.gotReference = crewID, flight, reference
	return s.report, s.err
}

func (s *testComplianceService) CrewStatus(ctx context.Context, crewID string, reference time.Time) (models.CrewStatus, error) {
	s.gotCrewID, s.gotReference = crewID, reference
	return s.status, s.err
}

func (s *testComplianceService) InvalidateVerdicts(ctx context.Context, crewID string) error {
	s.gotCrewID = crewID
	s.invalidated++
	return s.err
}

type testScanner struct {
	summary      service.ScanSummary
	err          error
	gotReference time.Time
}

func (s *testScanner) Run(ctx context.Context, reference time.Time) (service.ScanSummary, error) {
	s.gotReference = reference
	return s.summary, s.err
}

func newTestCrewHandler(svc ComplianceService) *CrewHandler {
	h := NewCrewHandler(zap.NewNop(), svc, time.Second)
	h.now = func() time.Time { return fixedNow }
	return h
}

const flightBody = `{"flight_id":"PV210","departure_time":"2026-07-03T09:00:00Z","arrival_time":"2026-07-03T09:40:00Z","aircraft_type":"dhc6"}`

func TestCheckEligibility_DefaultsReferenceToNow(t *testing.T) {
	svc := &testComplianceService{report: models.EligibilityReport{CrewID: "crew-1", Eligibility: models.EligibilityResult{Valid: true}}}
	h := newTestCrewHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/crew/crew-1/eligibility", strings.NewReader(flightBody))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d, body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if svc.gotCrewID != "crew-1" {
		t.Fatalf("unexpected crew id: %q", svc.gotCrewID)
	}
	if !svc.gotReference.Equal(fixedNow) {
		t.Fatalf("unexpected reference: got %v want %v", svc.gotReference, fixedNow)
	}
	if svc.gotFlight.AircraftType != "DHC6" || svc.gotFlight.FlightMinutes() != 40 {
		t.Fatalf("unexpected flight: %+v", svc.gotFlight)
	}

	var got models.EligibilityReport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.Eligibility.Valid {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestCheckEligibility_ExplicitReference(t *testing.T) {
	svc := &testComplianceService{}
	h := newTestCrewHandler(svc)

	body := strings.Replace(flightBody, `"aircraft_type"`, `"reference_time":"2026-06-30T00:00:00Z","aircraft_type"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/v1/crew/crew-1/eligibility", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, body=%s", rec.Code, rec.Body.String())
	}
	want := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	if !svc.gotReference.Equal(want) {
		t.Fatalf("unexpected reference: got %v want %v", svc.gotReference, want)
	}
}

func TestCrewHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "/v1/crew/crew-1/eligibility", "", http.StatusMethodNotAllowed},
		{"missing id", http.MethodPost, "/v1/crew//eligibility", flightBody, http.StatusBadRequest},
		{"invalid json", http.MethodPost, "/v1/crew/crew-1/eligibility", "{", http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/v1/crew/crew-1/compliance", `{"flight":"x"}`, http.StatusBadRequest},
		{"missing flight id", http.MethodPost, "/v1/crew/crew-1/compliance", strings.Replace(flightBody, `"PV210"`, `""`, 1), http.StatusBadRequest},
		{"arrival before departure", http.MethodPost, "/v1/crew/crew-1/compliance", strings.Replace(flightBody, "09:40", "08:40", 1), http.StatusBadRequest},
		{"bad reference", http.MethodGet, "/v1/crew/crew-1/status?reference_time=yesterday", "", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/v1/crew/crew-1/roster", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestCrewHandler(&testComplianceService{})
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("unexpected status: got %d want %d, body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestCrewHandler_MapsServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", derr.ErrInvalidInput, http.StatusBadRequest},
		{"crew not found", derr.ErrCrewNotFound, http.StatusNotFound},
		{"storage down", derr.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestCrewHandler(&testComplianceService{err: tc.err})
			req := httptest.NewRequest(http.MethodGet, "/v1/crew/crew-1/status", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("unexpected status: got %d want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestGetStatus_ParsesDateReference(t *testing.T) {
	svc := &testComplianceService{status: models.CrewStatusWarning}
	h := newTestCrewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/crew/crew-9/status?reference_time=2026-08-01", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, body=%s", rec.Code, rec.Body.String())
	}
	var got crewStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.CrewID != "crew-9" || got.Status != models.CrewStatusWarning {
		t.Fatalf("unexpected response: %+v", got)
	}
	want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !svc.gotReference.Equal(want) {
		t.Fatalf("unexpected reference: got %v want %v", svc.gotReference, want)
	}
}

func TestTriggerScan(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"busy", derr.ErrScanInProgress, http.StatusConflict},
		{"storage down", derr.ErrStorageUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scanner := &testScanner{summary: service.ScanSummary{RunID: "run-1"}, err: tc.err}
			h := NewScanHandler(zap.NewNop(), scanner)
			h.now = func() time.Time { return fixedNow }

			req := httptest.NewRequest(http.MethodPost, "/v1/scan", nil)
			rec := httptest.NewRecorder()
			h.TriggerScan(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("unexpected status: got %d want %d", rec.Code, tc.want)
			}
			if !scanner.gotReference.Equal(fixedNow) {
				t.Fatalf("unexpected reference: got %v want %v", scanner.gotReference, fixedNow)
			}
		})
	}
}

func TestParseCrewIDFromPath(t *testing.T) {
	tests := []struct {
		path   string
		suffix string
		want   string
		wantOK bool
	}{
		{"/v1/crew/crew-1/eligibility", "/eligibility", "crew-1", true},
		{"/v1/crew/crew-1/status", "/status", "crew-1", true},
		{"/v1/crew//status", "/status", "", false},
		{"/v1/crew/a/b/status", "/status", "", false},
		{"/v1/flights/1/status", "/status", "", false},
	}

	for _, tc := range tests {
		got, ok := parseCrewIDFromPath(tc.path, tc.suffix)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("parseCrewIDFromPath(%q): got (%q, %v) want (%q, %v)", tc.path, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestLoggingMiddleware_SetsRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := LoggingMiddleware(zap.NewNop(), next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("request id should be generated")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc" {
		t.Fatalf("unexpected request id: got %q want %q", got, "abc")
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}
}

func TestInvalidateVerdicts(t *testing.T) {
	svc := &testComplianceService{}
	h := newTestCrewHandler(svc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/crew/crew-1/verdicts", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d, body=%s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if svc.invalidated != 1 || svc.gotCrewID != "crew-1" {
		t.Fatalf("unexpected invalidation: calls=%d crew=%q", svc.invalidated, svc.gotCrewID)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/crew/crew-1/verdicts", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusMethodNotAllowed)
	}

	svc.err = derr.ErrStorageUnavailable
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/crew/crew-1/verdicts", nil))
	if rec.Code != mapHTTPStatus(derr.ErrStorageUnavailable) {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, mapHTTPStatus(derr.ErrStorageUnavailable))
	}
}
