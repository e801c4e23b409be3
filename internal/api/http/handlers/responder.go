package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	derr "github.com/MelvinKr/skybh/crew-compliance/internal/domain/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func mapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, derr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, derr.ErrCrewNotFound), errors.Is(err, derr.ErrQualificationsNotFound):
		return http.StatusNotFound
	case errors.Is(err, derr.ErrScanInProgress):
		return http.StatusConflict
	case errors.Is(err, derr.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage exposes domain errors verbatim and hides everything else.
func errorMessage(err error) string {
	if mapHTTPStatus(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
