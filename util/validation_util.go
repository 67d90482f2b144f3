// api/util/validation_util.go

package util

import (
	"fmt"
	"regexp"
	"strings"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	"github.com/afekalocker/ambient/api/model"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

// ValidateCommand rejects a malformed envelope before any execution: blank
// command name, missing target, missing or unresolvable acting user.
func (v *ValidationUtil) ValidateCommand(cmd *model.Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: command cannot be nil", ambient_errors.ErrInvalidCommandData)
	}

	if strings.TrimSpace(cmd.Command) == "" {
		return fmt.Errorf("%w: command type cannot be empty", ambient_errors.ErrInvalidCommandData)
	}

	if cmd.TargetObject == nil {
		return fmt.Errorf("%w: target object cannot be nil", ambient_errors.ErrInvalidCommandData)
	}

	if cmd.InvokedBy == nil || cmd.InvokedBy.UserID == nil {
		return fmt.Errorf("%w: invokedBy user ID cannot be nil", ambient_errors.ErrInvalidCommandData)
	}

	userID := cmd.InvokedBy.UserID
	if strings.TrimSpace(userID.Email) == "" {
		return fmt.Errorf("%w: user email cannot be empty", ambient_errors.ErrInvalidCommandData)
	}
	if strings.TrimSpace(userID.SystemID) == "" {
		return fmt.Errorf("%w: user system ID cannot be empty", ambient_errors.ErrInvalidCommandData)
	}

	return nil
}

// ValidateNewObject enforces the creation invariants: type, alias and
// status are never blank, and the creator must be resolvable.
func (v *ValidationUtil) ValidateNewObject(obj *model.Object) error {
	if obj == nil {
		return fmt.Errorf("%w: object cannot be nil", ambient_errors.ErrInvalidObjectData)
	}
	if strings.TrimSpace(obj.Type) == "" {
		return fmt.Errorf("%w: object type cannot be empty", ambient_errors.ErrInvalidObjectData)
	}
	if strings.TrimSpace(obj.Alias) == "" {
		return fmt.Errorf("%w: object alias cannot be empty", ambient_errors.ErrInvalidObjectData)
	}
	if strings.TrimSpace(obj.Status) == "" {
		return fmt.Errorf("%w: object status cannot be empty", ambient_errors.ErrInvalidObjectData)
	}
	if obj.CreatedBy == nil {
		return fmt.Errorf("%w: createdBy cannot be nil", ambient_errors.ErrInvalidObjectData)
	}
	if strings.TrimSpace(obj.CreatedBy.Email) == "" {
		return fmt.Errorf("%w: creator email cannot be empty", ambient_errors.ErrInvalidObjectData)
	}
	return nil
}

// ValidateObjectPatch enforces the same field invariants on update.
func (v *ValidationUtil) ValidateObjectPatch(patch *model.ObjectPatch) error {
	if patch == nil {
		return fmt.Errorf("%w: update cannot be nil", ambient_errors.ErrInvalidObjectData)
	}
	if strings.TrimSpace(patch.Type) == "" {
		return fmt.Errorf("%w: object type cannot be empty", ambient_errors.ErrInvalidObjectData)
	}
	if strings.TrimSpace(patch.Alias) == "" {
		return fmt.Errorf("%w: object alias cannot be empty", ambient_errors.ErrInvalidObjectData)
	}
	if strings.TrimSpace(patch.Status) == "" {
		return fmt.Errorf("%w: object status cannot be empty", ambient_errors.ErrInvalidObjectData)
	}
	return nil
}

// ValidateNewUser checks the directory creation payload.
func (v *ValidationUtil) ValidateNewUser(user *model.NewUser) error {
	if user == nil {
		return fmt.Errorf("%w: user data cannot be nil", ambient_errors.ErrInvalidUserData)
	}
	if user.Email == "" {
		return fmt.Errorf("%w: email cannot be empty", ambient_errors.ErrInvalidUserData)
	}
	if !emailRegex.MatchString(user.Email) {
		return fmt.Errorf("%w: invalid email format", ambient_errors.ErrInvalidUserData)
	}
	if _, err := model.ParseRole(string(user.Role)); err != nil {
		return fmt.Errorf("%w: %v", ambient_errors.ErrInvalidUserData, err)
	}
	if strings.TrimSpace(user.Username.First) == "" {
		return fmt.Errorf("%w: first name cannot be empty", ambient_errors.ErrInvalidUserData)
	}
	if strings.TrimSpace(user.Username.Last) == "" {
		return fmt.Errorf("%w: last name cannot be empty", ambient_errors.ErrInvalidUserData)
	}
	return nil
}
