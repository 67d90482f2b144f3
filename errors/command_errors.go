// api/errors/command_errors.go
package errors

import "fmt"

var (
	ErrInvalidCommandData = fmt.Errorf("invalid command data: %w", ErrInvalidInput)
	ErrUnknownCommandType = fmt.Errorf("unknown command type: %w", ErrInvalidInput)
)
