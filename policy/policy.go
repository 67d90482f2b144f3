// api/policy/policy.go
package policy

import (
	"fmt"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	"github.com/afekalocker/ambient/api/model"
)

// Operation is the closed set of permission-checked operation kinds.
type Operation string

const (
	// OpReadObjects covers read, search and list access to the object graph.
	OpReadObjects Operation = "READ_OBJECTS"

	// OpWriteObjects covers object creation and update.
	OpWriteObjects Operation = "WRITE_OBJECTS"

	// OpBindObjects covers establishing a parent/child relation.
	OpBindObjects Operation = "BIND_OBJECTS"

	// OpExecuteCommands covers the command channel entry point.
	OpExecuteCommands Operation = "EXECUTE_COMMANDS"

	// OpAdminPurge covers the bulk delete-all operations on users,
	// objects and commands.
	OpAdminPurge Operation = "ADMIN_PURGE"

	// OpReadCommandHistory covers reading the command audit trail.
	OpReadCommandHistory Operation = "READ_COMMAND_HISTORY"

	// OpReadUsers covers listing the user directory.
	OpReadUsers Operation = "READ_USERS"
)

// Decision is the outcome of a policy lookup.
type Decision int

const (
	Deny Decision = iota
	Allow
	// AllowIfActive grants access only to objects whose active flag is set.
	AllowIfActive
)

// decisions is the full role/operation table. ADMIN is an auditing role
// with no operational object access; OPERATOR manages inventory; END_USER
// interacts only through the command channel and only sees active objects.
var decisions = map[model.Role]map[Operation]Decision{
	model.RoleAdmin: {
		OpReadObjects:        Deny,
		OpWriteObjects:       Deny,
		OpBindObjects:        Deny,
		OpExecuteCommands:    Deny,
		OpAdminPurge:         Allow,
		OpReadCommandHistory: Allow,
		OpReadUsers:          Allow,
	},
	model.RoleOperator: {
		OpReadObjects:        Allow,
		OpWriteObjects:       Allow,
		OpBindObjects:        Allow,
		OpExecuteCommands:    Deny,
		OpAdminPurge:         Deny,
		OpReadCommandHistory: Deny,
		OpReadUsers:          Deny,
	},
	model.RoleEndUser: {
		OpReadObjects:        AllowIfActive,
		OpWriteObjects:       Deny,
		OpBindObjects:        Deny,
		OpExecuteCommands:    Allow,
		OpAdminPurge:         Deny,
		OpReadCommandHistory: Deny,
		OpReadUsers:          Deny,
	},
}

// Decide maps (role, operation) to a decision. A role outside the
// enumerated set is a fatal configuration error, never a silent allow.
func Decide(role model.Role, op Operation) (Decision, error) {
	table, ok := decisions[role]
	if !ok {
		return Deny, fmt.Errorf("%w: %q", ambient_errors.ErrUnknownRole, role)
	}
	decision, ok := table[op]
	if !ok {
		return Deny, nil
	}
	return decision, nil
}

// CanSee applies a read decision to a concrete object: AllowIfActive
// grants visibility only when the object's active flag is set.
func CanSee(decision Decision, obj *model.Object) bool {
	switch decision {
	case Allow:
		return true
	case AllowIfActive:
		return obj != nil && obj.IsActive()
	default:
		return false
	}
}
