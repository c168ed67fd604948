package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrLockTimeout = errors.New("timed out waiting for reservation lock")
)
