package errors

import "errors"

var (
	ErrNotFound = errors.New("asset not found")

	ErrInvalidID = errors.New("invalid asset ID format")

	ErrDuplicateCode = errors.New("asset code already exists")
)
