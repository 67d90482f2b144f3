// api/errors/user_errors.go
package errors

import "fmt"

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrUserConflict    = fmt.Errorf("user already exists: %w", ErrInvalidInput)
	ErrInvalidUserData = fmt.Errorf("invalid user data: %w", ErrInvalidInput)
)
