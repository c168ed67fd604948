package errors

import "errors"

var (
	ErrNotFound = errors.New("driver not found")

	ErrInvalidID = errors.New("invalid driver ID format")

	ErrDuplicateCode = errors.New("driver code already exists")
)
