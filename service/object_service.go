// api/service/object_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/afekalocker/ambient/api/dao"
	ambient_errors "github.com/afekalocker/ambient/api/errors"
	logger "github.com/afekalocker/ambient/api/logging"
	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/policy"
	"github.com/afekalocker/ambient/api/util"
)

// IObjectService owns the object graph: CRUD, parent/child binding and the
// search family. Every operation resolves the acting user and applies the
// role policy before touching results.
type IObjectService interface {
	CreateObject(ctx context.Context, obj *model.Object, fromCommand bool) (*model.Object, error)
	GetObjectByID(ctx context.Context, objectID string, actor model.UserID) (*model.Object, error)
	GetAllObjects(ctx context.Context, actor model.UserID, page model.Page) ([]*model.Object, error)
	UpdateObject(ctx context.Context, objectID string, actor model.UserID, patch *model.ObjectPatch, fromCommand bool) error
	DeleteAllObjects(ctx context.Context, actor model.UserID) error
	BindObjects(ctx context.Context, parentID, childID string, actor model.UserID) error
	GetParent(ctx context.Context, childID string, actor model.UserID, page model.Page) ([]*model.Object, error)
	GetChildren(ctx context.Context, parentID string, actor model.UserID, page model.Page) ([]*model.Object, error)
	SearchByExactAlias(ctx context.Context, alias string, actor model.UserID, page model.Page) ([]*model.Object, error)
	SearchByAliasPattern(ctx context.Context, pattern string, actor model.UserID, page model.Page) ([]*model.Object, error)
	SearchByType(ctx context.Context, objectType string, actor model.UserID, page model.Page) ([]*model.Object, error)
	SearchByStatus(ctx context.Context, status string, actor model.UserID, page model.Page) ([]*model.Object, error)
	SearchByTypeAndStatus(ctx context.Context, objectType, status string, actor model.UserID, page model.Page) ([]*model.Object, error)
}

// ObjectService handles business logic for object graph operations
type ObjectService struct {
	objectDAO      dao.ObjectRepository
	userService    IUserService
	validationUtil *util.ValidationUtil
	cacheService   *util.CacheService
	eventBus       *util.EventBus
	systemID       string
}

var _ IObjectService = &ObjectService{}

// NewObjectService creates a new instance of ObjectService
func NewObjectService(objectDAO dao.ObjectRepository, userService IUserService, validationUtil *util.ValidationUtil, cacheService *util.CacheService, eventBus *util.EventBus, systemID string) *ObjectService {
	service := &ObjectService{
		objectDAO:      objectDAO,
		userService:    userService,
		validationUtil: validationUtil,
		cacheService:   cacheService,
		eventBus:       eventBus,
		systemID:       systemID,
	}

	// Set up event subscriptions; the handlers keep the cache coherent
	if eventBus != nil {
		eventBus.Subscribe("object.created", service.handleObjectCreated)
		eventBus.Subscribe("object.updated", service.handleObjectUpdated)
		eventBus.Subscribe("object.purged", service.handleObjectsPurged)
	}

	return service
}

// handleObjectCreated warms the cache with the freshly persisted object.
func (s *ObjectService) handleObjectCreated(ctx context.Context, event util.Event) error {
	obj, ok := event.Payload.(model.Object)
	if !ok {
		return fmt.Errorf("unexpected payload for %s event: %T", event.Type, event.Payload)
	}
	if err := s.cacheService.SetObject(ctx, obj); err != nil {
		logger.Warn("Failed to cache created object", zap.Error(err), zap.String("objectID", obj.ID.ID))
	}
	return nil
}

// handleObjectUpdated evicts the stale cache entry; readers refetch.
func (s *ObjectService) handleObjectUpdated(ctx context.Context, event util.Event) error {
	obj, ok := event.Payload.(model.Object)
	if !ok {
		return fmt.Errorf("unexpected payload for %s event: %T", event.Type, event.Payload)
	}
	if err := s.cacheService.DeleteObject(ctx, obj.ID.ID); err != nil {
		logger.Warn("Failed to evict updated object from cache", zap.Error(err), zap.String("objectID", obj.ID.ID))
	}
	return nil
}

// handleObjectsPurged drops the whole object cache after a wipe.
func (s *ObjectService) handleObjectsPurged(ctx context.Context, event util.Event) error {
	if err := s.cacheService.FlushObjects(ctx); err != nil {
		logger.Warn("Failed to flush object cache", zap.Error(err))
		return err
	}
	return nil
}

func (s *ObjectService) resolveActor(ctx context.Context, actor model.UserID) (*model.User, error) {
	return s.userService.Login(ctx, actor.SystemID, actor.Email)
}

// CreateObject persists a new object. Untrusted callers must hold the
// inventory role; the command engine passes fromCommand=true because the
// dispatch pipeline has already authorized the invocation.
func (s *ObjectService) CreateObject(ctx context.Context, obj *model.Object, fromCommand bool) (*model.Object, error) {
	if err := s.validationUtil.ValidateNewObject(obj); err != nil {
		logger.Error("Validation for object data failed", zap.Error(err))
		return nil, err
	}

	creator, err := s.userService.Login(ctx, obj.CreatedBy.SystemID, obj.CreatedBy.Email)
	if err != nil {
		return nil, err
	}

	if !fromCommand {
		decision, err := policy.Decide(creator.Role, policy.OpWriteObjects)
		if err != nil {
			return nil, err
		}
		if decision != policy.Allow {
			return nil, fmt.Errorf("%w: cannot create object", ambient_errors.ErrForbidden)
		}
	}

	obj.ID = model.ObjectID{SystemID: s.systemID, ID: uuid.New().String()}
	obj.CreationTimestamp = time.Now()
	if obj.Active == nil {
		active := true
		obj.Active = &active
	}

	ctx = dao.WithRequestingUser(ctx, creator.ID.Key())
	created, err := s.objectDAO.Save(ctx, obj)
	if err != nil {
		logger.Error("Error creating object", zap.Error(err), zap.String("alias", obj.Alias))
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, "object.created", *created)
	}

	logger.Info("Object created successfully",
		zap.String("objectID", created.ID.ID),
		zap.String("type", created.Type),
		zap.String("createdBy", creator.ID.Key()))
	return created, nil
}

// GetObjectByID retrieves a single object with per-role visibility: the
// auditing role never sees inventory, and end users only see active
// objects. Denials surface as "object not found" so callers cannot probe
// for hidden ids.
func (s *ObjectService) GetObjectByID(ctx context.Context, objectID string, actor model.UserID) (*model.Object, error) {
	obj, err := s.fetchObject(ctx, objectID)
	if err != nil {
		return nil, err
	}

	actingUser, err := s.resolveActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpReadObjects)
	if err != nil {
		return nil, err
	}
	if !policy.CanSee(decision, obj) {
		return nil, fmt.Errorf("%w: object not found", ambient_errors.ErrForbidden)
	}

	return obj, nil
}

// GetAllObjects lists objects page by page in creation order. End users
// see the page with inactive objects removed.
func (s *ObjectService) GetAllObjects(ctx context.Context, actor model.UserID, page model.Page) ([]*model.Object, error) {
	actingUser, err := s.resolveActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpReadObjects)
	if err != nil {
		return nil, err
	}
	if decision == policy.Deny {
		return nil, fmt.Errorf("%w: cannot retrieve objects", ambient_errors.ErrForbidden)
	}

	objects, err := s.objectDAO.FindAll(ctx, model.ObjectFilter{}, page)
	if err != nil {
		return nil, err
	}
	return filterVisible(decision, objects), nil
}

// UpdateObject replaces the mutable fields of an existing object. The
// command engine passes fromCommand=true to skip the role gate.
func (s *ObjectService) UpdateObject(ctx context.Context, objectID string, actor model.UserID, patch *model.ObjectPatch, fromCommand bool) error {
	actingUser, err := s.resolveActor(ctx, actor)
	if err != nil {
		return err
	}

	existing, err := s.fetchObject(ctx, objectID)
	if err != nil {
		return err
	}

	if !fromCommand {
		decision, err := policy.Decide(actingUser.Role, policy.OpWriteObjects)
		if err != nil {
			return err
		}
		if decision != policy.Allow {
			return fmt.Errorf("%w: cannot update object", ambient_errors.ErrForbidden)
		}
	}

	if err := s.validationUtil.ValidateObjectPatch(patch); err != nil {
		logger.Error("Validation for object update failed", zap.Error(err))
		return err
	}

	existing.Type = patch.Type
	existing.Alias = patch.Alias
	existing.Status = patch.Status
	if patch.Active != nil {
		existing.Active = patch.Active
	}
	if patch.Details != nil {
		existing.Details = patch.Details
	}

	ctx = dao.WithRequestingUser(ctx, actingUser.ID.Key())
	updated, err := s.objectDAO.Save(ctx, existing)
	if err != nil {
		logger.Error("Error updating object", zap.Error(err), zap.String("objectID", objectID))
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, "object.updated", *updated)
	}

	logger.Info("Object updated successfully", zap.String("objectID", objectID), zap.String("updatedBy", actingUser.ID.Key()))
	return nil
}

// DeleteAllObjects wipes the object graph; reserved for the auditing role.
func (s *ObjectService) DeleteAllObjects(ctx context.Context, actor model.UserID) error {
	actingUser, err := s.resolveActor(ctx, actor)
	if err != nil {
		return err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpAdminPurge)
	if err != nil {
		return err
	}
	if decision != policy.Allow {
		return fmt.Errorf("%w: only ADMIN users can delete all objects", ambient_errors.ErrForbidden)
	}

	ctx = dao.WithRequestingUser(ctx, actor.Key())
	if err := s.objectDAO.DeleteAll(ctx); err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, "object.purged", actor.Key())
	}

	logger.Info("All objects deleted", zap.String("deletedBy", actor.Key()))
	return nil
}

// BindObjects links child under parent, replacing any previous parent.
func (s *ObjectService) BindObjects(ctx context.Context, parentID, childID string, actor model.UserID) error {
	if strings.TrimSpace(parentID) == "" || strings.TrimSpace(childID) == "" {
		return fmt.Errorf("%w: parent and child ids cannot be empty", ambient_errors.ErrInvalidInput)
	}

	actingUser, err := s.resolveActor(ctx, actor)
	if err != nil {
		return err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpBindObjects)
	if err != nil {
		return err
	}
	if decision != policy.Allow {
		return fmt.Errorf("%w: cannot bind objects", ambient_errors.ErrForbidden)
	}

	if _, err := s.fetchObject(ctx, parentID); err != nil {
		return err
	}
	child, err := s.fetchObject(ctx, childID)
	if err != nil {
		return err
	}

	child.ParentID = parentID
	ctx = dao.WithRequestingUser(ctx, actor.Key())
	if _, err := s.objectDAO.Save(ctx, child); err != nil {
		logger.Error("Error binding objects", zap.Error(err),
			zap.String("parentID", parentID), zap.String("childID", childID))
		return err
	}

	if err := s.cacheService.DeleteObject(ctx, childID); err != nil {
		logger.Warn("Failed to evict child from cache", zap.Error(err), zap.String("objectID", childID))
	}

	logger.Info("Objects bound", zap.String("parentID", parentID), zap.String("childID", childID))
	return nil
}

// GetParent returns the parent of childID as a list of zero or one
// elements, honoring pagination so page>0 is always empty.
func (s *ObjectService) GetParent(ctx context.Context, childID string, actor model.UserID, page model.Page) ([]*model.Object, error) {
	actingUser, err := s.resolveActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpReadObjects)
	if err != nil {
		return nil, err
	}
	if decision == policy.Deny {
		return nil, fmt.Errorf("%w: cannot retrieve objects", ambient_errors.ErrForbidden)
	}

	child, err := s.fetchObject(ctx, childID)
	if err != nil {
		return nil, err
	}
	if decision == policy.AllowIfActive && !child.IsActive() {
		return nil, fmt.Errorf("%w: object not found", ambient_errors.ErrForbidden)
	}

	if child.ParentID == "" {
		return []*model.Object{}, nil
	}

	parent, err := s.fetchObject(ctx, child.ParentID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSee(decision, parent) {
		return nil, fmt.Errorf("%w: object not found", ambient_errors.ErrForbidden)
	}

	if page.Page > 0 || page.Size <= 0 {
		return []*model.Object{}, nil
	}
	return []*model.Object{parent}, nil
}

// GetChildren lists the direct children of parentID in creation order.
func (s *ObjectService) GetChildren(ctx context.Context, parentID string, actor model.UserID, page model.Page) ([]*model.Object, error) {
	actingUser, err := s.resolveActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpReadObjects)
	if err != nil {
		return nil, err
	}
	if decision == policy.Deny {
		return nil, fmt.Errorf("%w: cannot retrieve objects", ambient_errors.ErrForbidden)
	}

	parent, err := s.fetchObject(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if decision == policy.AllowIfActive && !parent.IsActive() {
		return nil, fmt.Errorf("%w: object not found", ambient_errors.ErrForbidden)
	}

	children, err := s.objectDAO.FindChildren(ctx, parentID, page)
	if err != nil {
		return nil, err
	}
	return filterVisible(decision, children), nil
}

// SearchByExactAlias finds objects whose alias matches exactly.
func (s *ObjectService) SearchByExactAlias(ctx context.Context, alias string, actor model.UserID, page model.Page) ([]*model.Object, error) {
	if strings.TrimSpace(alias) == "" {
		return nil, fmt.Errorf("%w: alias cannot be empty", ambient_errors.ErrInvalidInput)
	}
	return s.search(ctx, model.ObjectFilter{Alias: alias}, actor, page)
}

// SearchByAliasPattern finds objects whose alias contains the pattern.
func (s *ObjectService) SearchByAliasPattern(ctx context.Context, pattern string, actor model.UserID, page model.Page) ([]*model.Object, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: alias pattern cannot be empty", ambient_errors.ErrInvalidInput)
	}
	return s.search(ctx, model.ObjectFilter{AliasPattern: pattern}, actor, page)
}

// SearchByType finds objects of the given type.
func (s *ObjectService) SearchByType(ctx context.Context, objectType string, actor model.UserID, page model.Page) ([]*model.Object, error) {
	if strings.TrimSpace(objectType) == "" {
		return nil, fmt.Errorf("%w: object type cannot be empty", ambient_errors.ErrInvalidInput)
	}
	return s.search(ctx, model.ObjectFilter{Type: objectType}, actor, page)
}

// SearchByStatus finds objects with the given status.
func (s *ObjectService) SearchByStatus(ctx context.Context, status string, actor model.UserID, page model.Page) ([]*model.Object, error) {
	if strings.TrimSpace(status) == "" {
		return nil, fmt.Errorf("%w: status cannot be empty", ambient_errors.ErrInvalidInput)
	}
	return s.search(ctx, model.ObjectFilter{Status: status}, actor, page)
}

// SearchByTypeAndStatus finds objects matching both type and status.
func (s *ObjectService) SearchByTypeAndStatus(ctx context.Context, objectType, status string, actor model.UserID, page model.Page) ([]*model.Object, error) {
	if strings.TrimSpace(objectType) == "" || strings.TrimSpace(status) == "" {
		return nil, fmt.Errorf("%w: object type and status cannot be empty", ambient_errors.ErrInvalidInput)
	}
	return s.search(ctx, model.ObjectFilter{Type: objectType, Status: status}, actor, page)
}

func (s *ObjectService) search(ctx context.Context, filter model.ObjectFilter, actor model.UserID, page model.Page) ([]*model.Object, error) {
	actingUser, err := s.resolveActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpReadObjects)
	if err != nil {
		return nil, err
	}
	if decision == policy.Deny {
		return nil, fmt.Errorf("%w: cannot retrieve objects", ambient_errors.ErrForbidden)
	}

	objects, err := s.objectDAO.FindAll(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return filterVisible(decision, objects), nil
}

// fetchObject reads through the cache to the store, mapping a miss to
// the object not-found error.
func (s *ObjectService) fetchObject(ctx context.Context, objectID string) (*model.Object, error) {
	if cached, err := s.cacheService.GetObject(ctx, objectID); err == nil && cached != nil {
		return cached, nil
	}

	obj, err := s.objectDAO.FindByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, ambient_errors.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ambient_errors.ErrObjectNotFound, objectID)
		}
		logger.Error("Error fetching object", zap.Error(err), zap.String("objectID", objectID))
		return nil, err
	}

	if err := s.cacheService.SetObject(ctx, *obj); err != nil {
		logger.Warn("Failed to cache object", zap.Error(err), zap.String("objectID", objectID))
	}
	return obj, nil
}

func filterVisible(decision policy.Decision, objects []*model.Object) []*model.Object {
	if decision != policy.AllowIfActive {
		return objects
	}
	visible := make([]*model.Object, 0, len(objects))
	for _, obj := range objects {
		if policy.CanSee(decision, obj) {
			visible = append(visible, obj)
		}
	}
	return visible
}
