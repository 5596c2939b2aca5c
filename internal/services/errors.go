package services

import "fmt"

// Service errors
var (
	ErrNoTablesSpecified    = &ServiceError{Message: "no tables specified"}
	ErrBandRequired         = &ServiceError{Message: "band is required"}
	ErrNotATemplate         = &ServiceError{Message: "plot is not a template"}
	ErrBaseURLNotConfigured = &ServiceError{Message: "share_base_url not configured"}
	ErrCatalogUnavailable   = &ServiceError{Message: "equipment catalog is unavailable"}
	ErrEmptyPayload         = &ServiceError{Message: "share payload is empty"}
	ErrInvalidDebounce      = &ServiceError{Message: "write debounce must be between 50 and 10000 ms"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}
