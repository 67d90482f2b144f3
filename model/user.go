package model

import "fmt"

// Role classifies what a user is allowed to do in the system.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleEndUser  Role = "END_USER"
)

// ParseRole validates a raw role string against the closed enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleOperator, RoleEndUser:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role: %q", raw)
	}
}

// UserID is the composite identifier of a user: the tenant/system the user
// belongs to plus their email. Two IDs are equal iff both components match.
type UserID struct {
	SystemID string `json:"systemID"`
	Email    string `json:"email"`
}

// Key renders the canonical directory key, email first. This is the primary
// key format of the user store.
func (id UserID) Key() string {
	return id.Email + "/" + id.SystemID
}

func (id UserID) Equals(other UserID) bool {
	return id.SystemID == other.SystemID && id.Email == other.Email
}

type Username struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type User struct {
	ID       UserID   `json:"userId"`
	Role     Role     `json:"role"`
	Username Username `json:"username"`
	Avatar   string   `json:"avatar"`
}

// NewUser is the creation payload accepted by the directory; the system ID
// is stamped by the service, not supplied by the caller.
type NewUser struct {
	Email    string   `json:"email"`
	Role     Role     `json:"role"`
	Username Username `json:"username"`
	Avatar   string   `json:"avatar"`
}

// UserUpdate carries the mutable subset of a user record. Nil fields are
// left untouched.
type UserUpdate struct {
	Username *Username `json:"username,omitempty"`
	Avatar   *string   `json:"avatar,omitempty"`
	Role     *Role     `json:"role,omitempty"`
}
