package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/application/service"
	"go.uber.org/zap"
)

type FleetScanner interface {
	Run(ctx context.Context, reference time.Time) (service.ScanSummary, error)
}

type ScanHandler struct {
	log     *zap.Logger
	scanner FleetScanner
	now     func() time.Time
}

func NewScanHandler(log *zap.Logger, scanner FleetScanner) *ScanHandler {
	return &ScanHandler{
		log:     log,
		scanner: scanner,
		now:     time.Now,
	}
}

// TriggerScan runs a fleet scan synchronously. A scan already running yields 409.
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reference, ok := parseReferenceQuery(r, h.now)
	if !ok {
		writeError(w, http.StatusBadRequest, "reference_time must be RFC 3339 or YYYY-MM-DD")
		return
	}

	summary, err := h.scanner.Run(r.Context(), reference)
	if err != nil {
		status := mapHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("fleet scan failed", zap.Error(err))
		}
		writeError(w, status, errorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
