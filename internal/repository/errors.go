package repository

import "errors"

var (
	// ErrNotFound is returned when no plot, band, person or setting row
	// matches the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTable is returned by ClearTable for tables outside the
	// resettable set.
	ErrInvalidTable = errors.New("invalid table name")
)
