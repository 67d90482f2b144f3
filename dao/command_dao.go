// api/dao/command_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/afekalocker/ambient/api/audit"
	ambient_errors "github.com/afekalocker/ambient/api/errors"
	logger "github.com/afekalocker/ambient/api/logging"
	"github.com/afekalocker/ambient/api/model"
	ambient_neo4j "github.com/afekalocker/ambient/api/model/neo4j"
)

type CommandDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
	SystemID     string
}

var _ CommandRepository = &CommandDAO{}

func NewCommandDAO(driver neo4j.Driver, auditService audit.Service, systemID string) *CommandDAO {
	return &CommandDAO{Driver: driver, AuditService: auditService, SystemID: systemID}
}

// Save persists a command record. The record is written before the command
// executes so attempted-but-failed commands stay on the trail.
func (dao *CommandDAO) Save(ctx context.Context, cmd *model.Command) (*model.Command, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if cmd.ID == nil {
		cmd.ID = &model.CommandID{SystemID: dao.SystemID, ID: uuid.New().String()}
	}
	if cmd.InvocationTimestamp.IsZero() {
		cmd.InvocationTimestamp = time.Now()
	}

	targetJSON, err := json.Marshal(cmd.TargetObject)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command target: %w", err)
	}
	attrsJSON, err := json.Marshal(cmd.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command attributes: %w", err)
	}

	props := map[string]interface{}{
		"systemID":            cmd.ID.SystemID,
		"command":             cmd.Command,
		"targetObject":        string(targetJSON),
		"attributes":          string(attrsJSON),
		"invocationTimestamp": cmd.InvocationTimestamp.UnixNano(),
	}
	if cmd.InvokedBy != nil && cmd.InvokedBy.UserID != nil {
		props["invokedByEmail"] = cmd.InvokedBy.UserID.Email
		props["invokedBySystemID"] = cmd.InvokedBy.UserID.SystemID
	}

	invokerKey := ""
	if cmd.InvokedBy != nil && cmd.InvokedBy.UserID != nil {
		invokerKey = cmd.InvokedBy.UserID.Key()
	}

	query := `
        CREATE (c:` + ambient_neo4j.LabelCommand + ` {id: $id})
        SET c += $props
        WITH c
        OPTIONAL MATCH (u:` + ambient_neo4j.LabelUser + ` {id: $invokerKey})
        FOREACH (_ IN CASE WHEN u IS NULL THEN [] ELSE [1] END |
            CREATE (c)-[:` + ambient_neo4j.RelInvokedBy + `]->(u))
        RETURN c.id AS id
    `

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(query, map[string]interface{}{
			"id":         cmd.ID.ID,
			"props":      props,
			"invokerKey": invokerKey,
		})
		if err != nil {
			return nil, err
		}
		if result.Next() {
			return result.Record().Values[0], nil
		}
		return nil, fmt.Errorf("no results returned")
	})

	if err != nil {
		logger.Error("Failed to save command record", zap.Error(err), zap.String("command", cmd.Command))
		return nil, fmt.Errorf("%w: %v", ambient_errors.ErrDatabaseOperation, err)
	}

	logAudit(ctx, dao.AuditService, "INVOKE_COMMAND", cmd.ID.ID, true, map[string]string{"command": cmd.Command})
	return cmd, nil
}

func (dao *CommandDAO) FindAll(ctx context.Context, page model.Page) ([]*model.Command, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
        MATCH (c:` + ambient_neo4j.LabelCommand + `)
        RETURN c
        ORDER BY c.invocationTimestamp ASC, c.id ASC
        SKIP $offset
        LIMIT $limit
    `

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(query, paginationParams(page))
		if err != nil {
			return nil, err
		}
		var commands []*model.Command
		for result.Next() {
			node, ok := result.Record().Values[0].(neo4j.Node)
			if !ok {
				continue
			}
			cmd, err := commandFromProps(node.Props)
			if err != nil {
				return nil, err
			}
			commands = append(commands, cmd)
		}
		return commands, result.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ambient_errors.ErrDatabaseOperation, err)
	}
	return result.([]*model.Command), nil
}

func (dao *CommandDAO) DeleteAll(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `MATCH (c:` + ambient_neo4j.LabelCommand + `) DETACH DELETE c`
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to delete all commands", zap.Error(err))
		return fmt.Errorf("%w: %v", ambient_errors.ErrDatabaseOperation, err)
	}

	logAudit(ctx, dao.AuditService, "DELETE_ALL_COMMANDS", "*", true, nil)
	return nil
}

func commandFromProps(props map[string]interface{}) (*model.Command, error) {
	cmd := &model.Command{
		ID: &model.CommandID{
			SystemID: stringProp(props, "systemID"),
			ID:       stringProp(props, "id"),
		},
		Command: stringProp(props, "command"),
	}

	if nanos, ok := props["invocationTimestamp"].(int64); ok {
		cmd.InvocationTimestamp = time.Unix(0, nanos)
	}

	if raw := stringProp(props, "targetObject"); raw != "" && raw != "null" {
		var target model.TargetObject
		if err := json.Unmarshal([]byte(raw), &target); err != nil {
			return nil, fmt.Errorf("failed to unmarshal command target: %w", err)
		}
		cmd.TargetObject = &target
	}

	if raw := stringProp(props, "attributes"); raw != "" && raw != "null" {
		attrs := map[string]interface{}{}
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal command attributes: %w", err)
		}
		cmd.Attributes = attrs
	}

	if email := stringProp(props, "invokedByEmail"); email != "" {
		cmd.InvokedBy = &model.InvokedBy{UserID: &model.UserID{
			SystemID: stringProp(props, "invokedBySystemID"),
			Email:    email,
		}}
	}

	return cmd, nil
}
