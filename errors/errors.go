// api/errors/errors.go
package errors

import "errors"

// Error taxonomy shared by every service. Handlers wrap these with
// fmt.Errorf("...: %w", ...) so the transport boundary can map them to a
// status code with errors.Is.
var (
	// ErrInvalidInput marks malformed or missing caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an actor that lacks permission, or a
	// cross-object consistency failure deliberately reported as a
	// permission denial.
	ErrForbidden = errors.New("forbidden")

	// ErrUnknownRole is a fatal configuration invariant violation. It
	// must never occur in a correctly seeded directory.
	ErrUnknownRole = errors.New("unknown user role")

	ErrInternalServer    = errors.New("internal server error")
	ErrDatabaseOperation = errors.New("database operation failed")
)
