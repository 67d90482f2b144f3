// api/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/afekalocker/ambient/api/dao"
	ambient_errors "github.com/afekalocker/ambient/api/errors"
	logger "github.com/afekalocker/ambient/api/logging"
	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/policy"
	"github.com/afekalocker/ambient/api/util"
)

// IUserService is the user directory consumed by every other service.
// Login is the single resolution point for acting and target users.
type IUserService interface {
	CreateUser(ctx context.Context, user model.NewUser) (*model.User, error)
	Login(ctx context.Context, systemID, email string) (*model.User, error)
	UpdateUser(ctx context.Context, systemID, email string, update model.UserUpdate) error
	GetAllUsers(ctx context.Context, actor model.UserID, page model.Page) ([]*model.User, error)
	DeleteAllUsers(ctx context.Context, actor model.UserID) error
}

// UserService handles business logic for directory operations
type UserService struct {
	userDAO        dao.UserRepository
	validationUtil *util.ValidationUtil
	cacheService   *util.CacheService
	eventBus       *util.EventBus
	systemID       string
}

var _ IUserService = &UserService{}

// NewUserService creates a new instance of UserService. systemID is the
// tenant id stamped on every user this instance creates.
func NewUserService(userDAO dao.UserRepository, validationUtil *util.ValidationUtil, cacheService *util.CacheService, eventBus *util.EventBus, systemID string) *UserService {
	service := &UserService{
		userDAO:        userDAO,
		validationUtil: validationUtil,
		cacheService:   cacheService,
		eventBus:       eventBus,
		systemID:       systemID,
	}

	// Set up event subscriptions; the handlers keep the cache coherent
	if eventBus != nil {
		eventBus.Subscribe("user.created", service.handleUserCreated)
		eventBus.Subscribe("user.updated", service.handleUserUpdated)
	}

	return service
}

// handleUserCreated warms the cache with the freshly registered user.
func (s *UserService) handleUserCreated(ctx context.Context, event util.Event) error {
	user, ok := event.Payload.(model.User)
	if !ok {
		return fmt.Errorf("unexpected payload for %s event: %T", event.Type, event.Payload)
	}
	if err := s.cacheService.SetUser(ctx, user); err != nil {
		logger.Warn("Failed to cache created user", zap.Error(err), zap.String("userKey", user.ID.Key()))
	}
	return nil
}

// handleUserUpdated evicts the stale cache entry; the next login refetches.
func (s *UserService) handleUserUpdated(ctx context.Context, event util.Event) error {
	user, ok := event.Payload.(model.User)
	if !ok {
		return fmt.Errorf("unexpected payload for %s event: %T", event.Type, event.Payload)
	}
	if err := s.cacheService.DeleteUser(ctx, user.ID.Key()); err != nil {
		logger.Warn("Failed to evict updated user from cache", zap.Error(err), zap.String("userKey", user.ID.Key()))
	}
	return nil
}

// CreateUser registers a new directory user under this instance's system id.
func (s *UserService) CreateUser(ctx context.Context, user model.NewUser) (*model.User, error) {
	if err := s.validationUtil.ValidateNewUser(&user); err != nil {
		logger.Error("Validation for user data failed", zap.Error(err))
		return nil, err
	}

	id := model.UserID{SystemID: s.systemID, Email: user.Email}
	exists, err := s.userDAO.ExistsByID(ctx, id.Key())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ambient_errors.ErrUserConflict, user.Email)
	}

	created := &model.User{
		ID:       id,
		Role:     user.Role,
		Username: user.Username,
		Avatar:   user.Avatar,
	}

	created, err = s.userDAO.Save(ctx, created)
	if err != nil {
		logger.Error("Error creating user", zap.Error(err), zap.String("email", user.Email))
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, "user.created", *created)
	}

	logger.Info("User created successfully", zap.String("userKey", id.Key()), zap.String("role", string(created.Role)))
	return created, nil
}

// Login resolves a user by (systemID, email). An unknown pair yields
// ErrUserNotFound; callers decide how much of that to reveal.
func (s *UserService) Login(ctx context.Context, systemID, email string) (*model.User, error) {
	id := model.UserID{SystemID: systemID, Email: email}

	if cached, err := s.cacheService.GetUser(ctx, id.Key()); err == nil && cached != nil {
		return cached, nil
	}

	user, err := s.userDAO.FindByID(ctx, id.Key())
	if err != nil {
		if errors.Is(err, ambient_errors.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", ambient_errors.ErrUserNotFound, id.Key())
		}
		logger.Error("Error resolving user", zap.Error(err), zap.String("userKey", id.Key()))
		return nil, ambient_errors.ErrInternalServer
	}

	if err := s.cacheService.SetUser(ctx, *user); err != nil {
		logger.Warn("Failed to cache user", zap.Error(err), zap.String("userKey", id.Key()))
	}

	return user, nil
}

// UpdateUser applies the mutable subset (name, avatar, role) in place.
func (s *UserService) UpdateUser(ctx context.Context, systemID, email string, update model.UserUpdate) error {
	id := model.UserID{SystemID: systemID, Email: email}

	existing, err := s.userDAO.FindByID(ctx, id.Key())
	if err != nil {
		if errors.Is(err, ambient_errors.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", ambient_errors.ErrUserNotFound, id.Key())
		}
		return err
	}

	if update.Username != nil {
		if update.Username.First != "" {
			existing.Username.First = update.Username.First
		}
		if update.Username.Last != "" {
			existing.Username.Last = update.Username.Last
		}
	}
	if update.Avatar != nil {
		existing.Avatar = *update.Avatar
	}
	if update.Role != nil {
		if _, err := model.ParseRole(string(*update.Role)); err != nil {
			return fmt.Errorf("%w: %v", ambient_errors.ErrInvalidUserData, err)
		}
		existing.Role = *update.Role
	}

	if _, err := s.userDAO.Save(ctx, existing); err != nil {
		logger.Error("Error updating user", zap.Error(err), zap.String("userKey", id.Key()))
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, "user.updated", *existing)
	}

	logger.Info("User updated successfully", zap.String("userKey", id.Key()))
	return nil
}

// GetAllUsers lists the directory; reserved for the auditing role.
func (s *UserService) GetAllUsers(ctx context.Context, actor model.UserID, page model.Page) ([]*model.User, error) {
	actingUser, err := s.Login(ctx, actor.SystemID, actor.Email)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpReadUsers)
	if err != nil {
		return nil, err
	}
	if decision != policy.Allow {
		return nil, fmt.Errorf("%w: only ADMIN users can retrieve all users", ambient_errors.ErrForbidden)
	}

	return s.userDAO.FindAll(ctx, page)
}

// DeleteAllUsers wipes the directory; reserved for the auditing role.
func (s *UserService) DeleteAllUsers(ctx context.Context, actor model.UserID) error {
	actingUser, err := s.Login(ctx, actor.SystemID, actor.Email)
	if err != nil {
		return err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpAdminPurge)
	if err != nil {
		return err
	}
	if decision != policy.Allow {
		return fmt.Errorf("%w: only ADMIN users can delete all users", ambient_errors.ErrForbidden)
	}

	ctx = dao.WithRequestingUser(ctx, actor.Key())
	if err := s.userDAO.DeleteAll(ctx); err != nil {
		return err
	}

	logger.Info("All users deleted", zap.String("deletedBy", actor.Key()))
	return nil
}
