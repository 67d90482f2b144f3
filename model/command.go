package model

import (
	"strings"
	"time"
)

// CommandID identifies a persisted command record.
type CommandID struct {
	SystemID string `json:"systemID"`
	ID       string `json:"id"`
}

// ObjectRef is the nested id carried by a command target.
type ObjectRef struct {
	ObjectID string `json:"objectId"`
}

// TargetObject names the object a command acts on. A wildcard target
// denotes "all objects" or "no specific target" depending on the command.
type TargetObject struct {
	ID *ObjectRef `json:"id"`
}

// IsWildcard reports whether the target's local id is "*" or,
// case-insensitively, "ALL".
func (t TargetObject) IsWildcard() bool {
	if t.ID == nil {
		return false
	}
	return t.ID.ObjectID == "*" || strings.EqualFold(t.ID.ObjectID, "ALL")
}

// Command is the envelope handed to the dispatch engine. Every envelope is
// persisted as an audit record before execution, whatever happens next.
type Command struct {
	ID                  *CommandID             `json:"commandId,omitempty"`
	Command             string                 `json:"command"`
	TargetObject        *TargetObject          `json:"targetObject"`
	InvocationTimestamp time.Time              `json:"invocationTimestamp"`
	InvokedBy           *InvokedBy             `json:"invokedBy"`
	Attributes          map[string]interface{} `json:"commandAttributes,omitempty"`
}

// InvokedBy wraps the acting user's identifier.
type InvokedBy struct {
	UserID *UserID `json:"userId"`
}
