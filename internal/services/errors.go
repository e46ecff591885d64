// internal/services/errors.go
package services

import "errors"

// Sentinel errors shared by all services. Handlers map them onto HTTP
// status codes; anything else is treated as an internal failure.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)
