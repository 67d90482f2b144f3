// api/dao/dao.go
package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/afekalocker/ambient/api/audit"
	logger "github.com/afekalocker/ambient/api/logging"
	"github.com/afekalocker/ambient/api/model"
	"go.uber.org/zap"
)

// ObjectRepository is the object graph store contract consumed by the
// services. Results of FindAll and FindChildren are always ordered
// ascending by (creationTimestamp, id); out-of-range pages return an empty
// slice, never an error.
type ObjectRepository interface {
	Save(ctx context.Context, obj *model.Object) (*model.Object, error)
	FindByID(ctx context.Context, objectID string) (*model.Object, error)
	FindAll(ctx context.Context, filter model.ObjectFilter, page model.Page) ([]*model.Object, error)
	FindChildren(ctx context.Context, parentID string, page model.Page) ([]*model.Object, error)
	DeleteAll(ctx context.Context) error
}

// UserRepository is the user directory store contract.
type UserRepository interface {
	Save(ctx context.Context, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, userKey string) (*model.User, error)
	ExistsByID(ctx context.Context, userKey string) (bool, error)
	FindAll(ctx context.Context, page model.Page) ([]*model.User, error)
	DeleteAll(ctx context.Context) error
}

// CommandRepository is the append-mostly command history store. Save is
// called for every attempted command before execution.
type CommandRepository interface {
	Save(ctx context.Context, cmd *model.Command) (*model.Command, error)
	FindAll(ctx context.Context, page model.Page) ([]*model.Command, error)
	DeleteAll(ctx context.Context) error
}

type requestingUserKey struct{}

// WithRequestingUser tags a context with the acting user's key for audit
// trail entries.
func WithRequestingUser(ctx context.Context, userKey string) context.Context {
	return context.WithValue(ctx, requestingUserKey{}, userKey)
}

func requestingUser(ctx context.Context) string {
	if v, ok := ctx.Value(requestingUserKey{}).(string); ok {
		return v
	}
	return "system"
}

func logAudit(ctx context.Context, svc audit.Service, action, objectID string, granted bool, details interface{}) {
	if svc == nil {
		return
	}
	var raw json.RawMessage
	if details != nil {
		raw, _ = json.Marshal(details)
	}
	entry := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        action,
		ObjectID:      objectID,
		AccessGranted: granted,
		ChangeDetails: raw,
	}
	if err := svc.LogAccess(ctx, entry); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err), zap.String("action", action))
	}
}

func paginationParams(page model.Page) map[string]interface{} {
	return map[string]interface{}{
		"offset": page.Offset(),
		"limit":  page.Size,
	}
}

func nodeProps(value interface{}) (map[string]interface{}, bool) {
	node, ok := value.(neo4j.Node)
	if !ok {
		return nil, false
	}
	return node.Props, true
}
