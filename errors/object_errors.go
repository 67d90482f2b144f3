// api/errors/object_errors.go
package errors

import "fmt"

var (
	ErrObjectNotFound    = fmt.Errorf("object %w", ErrNotFound)
	ErrInvalidObjectData = fmt.Errorf("invalid object data: %w", ErrInvalidInput)
)
