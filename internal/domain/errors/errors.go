package errors

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrCrewNotFound           = errors.New("crew member not found")
	ErrQualificationsNotFound = errors.New("qualifications not found")
	ErrVerdictNotFound        = errors.New("verdict not found")
	ErrScanInProgress         = errors.New("fleet scan already in progress")
	ErrStorageUnavailable     = errors.New("storage unavailable")
)
