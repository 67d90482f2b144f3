// api/dao/user_dao.go
package dao

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/afekalocker/ambient/api/audit"
	ambient_errors "github.com/afekalocker/ambient/api/errors"
	logger "github.com/afekalocker/ambient/api/logging"
	"github.com/afekalocker/ambient/api/model"
	ambient_neo4j "github.com/afekalocker/ambient/api/model/neo4j"
)

type UserDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

var _ UserRepository = &UserDAO{}

func NewUserDAO(driver neo4j.Driver, auditService audit.Service) *UserDAO {
	dao := &UserDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for User", zap.Error(err))
	}
	return dao
}

func (dao *UserDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_ambient_user_id IF NOT EXISTS
        FOR (u:` + ambient_neo4j.LabelUser + `) REQUIRE u.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	return err
}

func (dao *UserDAO) Save(ctx context.Context, user *model.User) (*model.User, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	query := `
        MERGE (u:` + ambient_neo4j.LabelUser + ` {id: $id})
        SET u += $props
        RETURN u.id AS id
    `
	params := map[string]interface{}{
		"id": user.ID.Key(),
		"props": map[string]interface{}{
			"email":     user.ID.Email,
			"systemID":  user.ID.SystemID,
			"role":      string(user.Role),
			"firstName": user.Username.First,
			"lastName":  user.Username.Last,
			"avatar":    user.Avatar,
		},
	}

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
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
		logger.Error("Failed to save user", zap.Error(err), zap.String("userKey", user.ID.Key()))
		return nil, fmt.Errorf("%w: %v", ambient_errors.ErrDatabaseOperation, err)
	}

	logAudit(ctx, dao.AuditService, "SAVE_USER", user.ID.Key(), true, nil)
	return user, nil
}

func (dao *UserDAO) FindByID(ctx context.Context, userKey string) (*model.User, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `MATCH (u:` + ambient_neo4j.LabelUser + ` {id: $id}) RETURN u`

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(query, map[string]interface{}{"id": userKey})
		if err != nil {
			return nil, err
		}
		if !result.Next() {
			return nil, ambient_errors.ErrUserNotFound
		}
		props, ok := nodeProps(result.Record().Values[0])
		if !ok {
			return nil, fmt.Errorf("unexpected node shape for user %s", userKey)
		}
		return userFromProps(props), nil
	})

	if err != nil {
		return nil, err
	}
	return result.(*model.User), nil
}

func (dao *UserDAO) ExistsByID(ctx context.Context, userKey string) (bool, error) {
	_, err := dao.FindByID(ctx, userKey)
	if err == ambient_errors.ErrUserNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (dao *UserDAO) FindAll(ctx context.Context, page model.Page) ([]*model.User, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
        MATCH (u:` + ambient_neo4j.LabelUser + `)
        RETURN u
        ORDER BY u.lastName ASC, u.firstName ASC, u.id ASC
        SKIP $offset
        LIMIT $limit
    `

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(query, paginationParams(page))
		if err != nil {
			return nil, err
		}
		var users []*model.User
		for result.Next() {
			if props, ok := nodeProps(result.Record().Values[0]); ok {
				users = append(users, userFromProps(props))
			}
		}
		return users, result.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ambient_errors.ErrDatabaseOperation, err)
	}
	return result.([]*model.User), nil
}

func (dao *UserDAO) DeleteAll(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `MATCH (u:` + ambient_neo4j.LabelUser + `) DETACH DELETE u`
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to delete all users", zap.Error(err))
		return fmt.Errorf("%w: %v", ambient_errors.ErrDatabaseOperation, err)
	}

	logAudit(ctx, dao.AuditService, "DELETE_ALL_USERS", "*", true, nil)
	return nil
}

func userFromProps(props map[string]interface{}) *model.User {
	return &model.User{
		ID: model.UserID{
			SystemID: stringProp(props, "systemID"),
			Email:    stringProp(props, "email"),
		},
		Role: model.Role(stringProp(props, "role")),
		Username: model.Username{
			First: stringProp(props, "firstName"),
			Last:  stringProp(props, "lastName"),
		},
		Avatar: stringProp(props, "avatar"),
	}
}
