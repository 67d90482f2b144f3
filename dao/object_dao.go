// api/dao/object_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/afekalocker/ambient/api/audit"
	ambient_errors "github.com/afekalocker/ambient/api/errors"
	logger "github.com/afekalocker/ambient/api/logging"
	"github.com/afekalocker/ambient/api/model"
	ambient_neo4j "github.com/afekalocker/ambient/api/model/neo4j"
)

type ObjectDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

var _ ObjectRepository = &ObjectDAO{}

func NewObjectDAO(driver neo4j.Driver, auditService audit.Service) *ObjectDAO {
	dao := &ObjectDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for AmbientObject", zap.Error(err))
	}
	return dao
}

func (dao *ObjectDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_ambient_object_id IF NOT EXISTS
        FOR (o:` + ambient_neo4j.LabelObject + `) REQUIRE o.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	return err
}

// Save inserts or replaces an object by id, including its weak parent
// link. The details bag is stored as a JSON string property.
func (dao *ObjectDAO) Save(ctx context.Context, obj *model.Object) (*model.Object, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	detailsJSON, err := json.Marshal(obj.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal object details: %w", err)
	}

	props := map[string]interface{}{
		"systemID":          obj.ID.SystemID,
		"type":              obj.Type,
		"alias":             obj.Alias,
		"status":            obj.Status,
		"active":            obj.IsActive(),
		"creationTimestamp": obj.CreationTimestamp.UnixNano(),
		"details":           string(detailsJSON),
	}
	if obj.CreatedBy != nil {
		props["createdByEmail"] = obj.CreatedBy.Email
		props["createdBySystemID"] = obj.CreatedBy.SystemID
	}

	query := `
        MERGE (o:` + ambient_neo4j.LabelObject + ` {id: $id})
        SET o += $props
        WITH o
        OPTIONAL MATCH (o)-[rel:` + ambient_neo4j.RelChildOf + `]->(:` + ambient_neo4j.LabelObject + `)
        DELETE rel
        WITH DISTINCT o
        OPTIONAL MATCH (p:` + ambient_neo4j.LabelObject + ` {id: $parentID})
        FOREACH (_ IN CASE WHEN p IS NOT NULL THEN [1] ELSE [] END |
            CREATE (o)-[:` + ambient_neo4j.RelChildOf + `]->(p)
        )
        RETURN o.id AS id
    `

	params := map[string]interface{}{
		"id":       obj.ID.ID,
		"props":    props,
		"parentID": obj.ParentID,
	}

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, err
		}
		if result.Next() {
			return result.Record().Values[0], nil
		}
		return nil, fmt.Errorf("no results returned")
	})

	if err != nil {
		logger.Error("Failed to save object",
			zap.Error(err),
			zap.String("objectID", obj.ID.ID),
			zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: %v", ambient_errors.ErrDatabaseOperation, err)
	}

	logAudit(ctx, dao.AuditService, "SAVE_OBJECT", obj.ID.ID, true, map[string]string{"alias": obj.Alias, "type": obj.Type})
	return obj, nil
}

func (dao *ObjectDAO) FindByID(ctx context.Context, objectID string) (*model.Object, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
        MATCH (o:` + ambient_neo4j.LabelObject + ` {id: $id})
        OPTIONAL MATCH (o)-[:` + ambient_neo4j.RelChildOf + `]->(p:` + ambient_neo4j.LabelObject + `)
        RETURN o, p.id AS parentID
    `

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(query, map[string]interface{}{"id": objectID})
		if err != nil {
			return nil, err
		}
		if !result.Next() {
			return nil, ambient_errors.ErrObjectNotFound
		}
		record := result.Record()
		props, ok := nodeProps(record.Values[0])
		if !ok {
			return nil, fmt.Errorf("unexpected node shape for object %s", objectID)
		}
		parentID := ""
		if record.Values[1] != nil {
			parentID = record.Values[1].(string)
		}
		return objectFromProps(objectID, props, parentID)
	})

	if err != nil {
		return nil, err
	}
	return result.(*model.Object), nil
}

func (dao *ObjectDAO) FindAll(ctx context.Context, filter model.ObjectFilter, page model.Page) ([]*model.Object, error) {
	where := ""
	params := paginationParams(page)

	switch {
	case filter.Alias != "":
		where = "WHERE o.alias = $alias"
		params["alias"] = filter.Alias
	case filter.AliasPattern != "":
		where = "WHERE o.alias CONTAINS $pattern"
		params["pattern"] = filter.AliasPattern
	case filter.Type != "" && filter.Status != "":
		where = "WHERE o.type = $type AND o.status = $status"
		params["type"] = filter.Type
		params["status"] = filter.Status
	case filter.Type != "":
		where = "WHERE o.type = $type"
		params["type"] = filter.Type
	case filter.Status != "":
		where = "WHERE o.status = $status"
		params["status"] = filter.Status
	case filter.ParentID != "":
		return dao.FindChildren(ctx, filter.ParentID, page)
	}

	query := `
        MATCH (o:` + ambient_neo4j.LabelObject + `)
        ` + where + `
        OPTIONAL MATCH (o)-[:` + ambient_neo4j.RelChildOf + `]->(p:` + ambient_neo4j.LabelObject + `)
        RETURN o, p.id AS parentID
        ORDER BY o.creationTimestamp ASC, o.id ASC
        SKIP $offset
        LIMIT $limit
    `

	return dao.collectObjects(ctx, query, params)
}

func (dao *ObjectDAO) FindChildren(ctx context.Context, parentID string, page model.Page) ([]*model.Object, error) {
	query := `
        MATCH (o:` + ambient_neo4j.LabelObject + `)-[:` + ambient_neo4j.RelChildOf + `]->(p:` + ambient_neo4j.LabelObject + ` {id: $parentID})
        RETURN o, p.id AS parentID
        ORDER BY o.creationTimestamp ASC, o.id ASC
        SKIP $offset
        LIMIT $limit
    `
	params := paginationParams(page)
	params["parentID"] = parentID
	return dao.collectObjects(ctx, query, params)
}

func (dao *ObjectDAO) collectObjects(ctx context.Context, query string, params map[string]interface{}) ([]*model.Object, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, err
		}

		var objects []*model.Object
		for result.Next() {
			record := result.Record()
			node, ok := record.Values[0].(neo4j.Node)
			if !ok {
				continue
			}
			parentID := ""
			if record.Values[1] != nil {
				parentID = record.Values[1].(string)
			}
			id, _ := node.Props["id"].(string)
			if id == "" {
				// constraint guarantees the id prop; MERGE key is authoritative
				id = fmt.Sprintf("%v", node.Props["id"])
			}
			obj, err := objectFromProps(id, node.Props, parentID)
			if err != nil {
				return nil, err
			}
			objects = append(objects, obj)
		}
		return objects, result.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ambient_errors.ErrDatabaseOperation, err)
	}
	return result.([]*model.Object), nil
}

func (dao *ObjectDAO) DeleteAll(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `MATCH (o:` + ambient_neo4j.LabelObject + `) DETACH DELETE o`
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to delete all objects", zap.Error(err))
		return fmt.Errorf("%w: %v", ambient_errors.ErrDatabaseOperation, err)
	}

	logAudit(ctx, dao.AuditService, "DELETE_ALL_OBJECTS", "*", true, nil)
	return nil
}

func objectFromProps(id string, props map[string]interface{}, parentID string) (*model.Object, error) {
	obj := &model.Object{
		ID: model.ObjectID{
			SystemID: stringProp(props, "systemID"),
			ID:       id,
		},
		Type:     stringProp(props, "type"),
		Alias:    stringProp(props, "alias"),
		Status:   stringProp(props, "status"),
		ParentID: parentID,
	}

	if active, ok := props["active"].(bool); ok {
		obj.Active = &active
	}

	if nanos, ok := props["creationTimestamp"].(int64); ok {
		obj.CreationTimestamp = time.Unix(0, nanos)
	}

	if email := stringProp(props, "createdByEmail"); email != "" {
		obj.CreatedBy = &model.UserID{
			SystemID: stringProp(props, "createdBySystemID"),
			Email:    email,
		}
	}

	if raw := stringProp(props, "details"); raw != "" && raw != "null" {
		details := map[string]interface{}{}
		if err := json.Unmarshal([]byte(raw), &details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal details for object %s: %w", id, err)
		}
		obj.Details = details
	}

	return obj, nil
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
