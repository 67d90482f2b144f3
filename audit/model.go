// api/audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// AuditLog is one access-trail entry. Every attempted operation gets an
// entry, granted or not.
type AuditLog struct {
	Timestamp     time.Time       `json:"timestamp"`
	UserID        string          `json:"user_id"`
	Action        string          `json:"action"`
	ObjectID      string          `json:"object_id"`
	AccessGranted bool            `json:"access_granted"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}
