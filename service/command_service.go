// api/service/command_service.go
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/afekalocker/ambient/api/dao"
	ambient_errors "github.com/afekalocker/ambient/api/errors"
	logger "github.com/afekalocker/ambient/api/logging"
	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/policy"
	"github.com/afekalocker/ambient/api/util"
)

// Command types recognized by the dispatch switch. Matching is
// case-insensitive; anything else is rejected as invalid input.
const (
	cmdEcho                    = "echo"
	cmdCreate                  = "create"
	cmdUpdate                  = "update"
	cmdDelete                  = "delete"
	cmdGet                     = "get"
	cmdGetAvailableLockers     = "getavailablelockers"
	cmdGetReservationsByStatus = "getreservationsbystatus"
	cmdChangeLockerStatus      = "changelockerstatus"
)

// ICommandService is the single untrusted entry point into the system:
// every end-user interaction arrives as a command envelope and goes
// through the same validate / persist / authorize / resolve / route
// pipeline.
type ICommandService interface {
	InvokeCommand(ctx context.Context, cmd *model.Command) ([]interface{}, error)
	GetAvailableLockersByLocation(ctx context.Context, actor model.UserID, latitude, longitude, radiusKm float64, page model.Page) ([]*model.Object, error)
	GetAllCommandsHistory(ctx context.Context, actor model.UserID, page model.Page) ([]*model.Command, error)
	DeleteAllCommands(ctx context.Context, actor model.UserID) error
}

// CommandService handles business logic for the command channel
type CommandService struct {
	commandDAO     dao.CommandRepository
	objectService  IObjectService
	userService    IUserService
	notifier       util.LockerNotifier
	validationUtil *util.ValidationUtil
	systemID       string
}

var _ ICommandService = &CommandService{}

// NewCommandService creates a new instance of CommandService
func NewCommandService(commandDAO dao.CommandRepository, objectService IObjectService, userService IUserService, notifier util.LockerNotifier, validationUtil *util.ValidationUtil, systemID string) *CommandService {
	return &CommandService{
		commandDAO:     commandDAO,
		objectService:  objectService,
		userService:    userService,
		notifier:       notifier,
		validationUtil: validationUtil,
		systemID:       systemID,
	}
}

// InvokeCommand runs the full dispatch pipeline. The envelope is persisted
// to the command history before authorization or execution, so denied and
// failed invocations leave an audit trail too.
func (s *CommandService) InvokeCommand(ctx context.Context, cmd *model.Command) ([]interface{}, error) {
	if err := s.validationUtil.ValidateCommand(cmd); err != nil {
		logger.Error("Command validation failed", zap.Error(err))
		return nil, err
	}

	cmd.ID = nil
	if cmd.InvocationTimestamp.IsZero() {
		cmd.InvocationTimestamp = time.Now()
	}
	stored, err := s.commandDAO.Save(ctx, cmd)
	if err != nil {
		logger.Error("Failed to persist command record", zap.Error(err), zap.String("command", cmd.Command))
		return nil, err
	}

	actorID := *cmd.InvokedBy.UserID
	actingUser, err := s.userService.Login(ctx, actorID.SystemID, actorID.Email)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpExecuteCommands)
	if err != nil {
		return nil, err
	}
	if decision != policy.Allow {
		return nil, fmt.Errorf("%w: cannot execute commands", ambient_errors.ErrForbidden)
	}

	ctx = dao.WithRequestingUser(ctx, actorID.Key())

	cmdType := strings.ToLower(strings.TrimSpace(cmd.Command))

	// create and the geo search have no pre-existing target; wildcard
	// targets are resolved per handler.
	if cmdType != cmdCreate && cmdType != cmdGetAvailableLockers && !cmd.TargetObject.IsWildcard() {
		targetID, err := targetObjectID(cmd)
		if err != nil {
			return nil, err
		}
		target, err := s.objectService.GetObjectByID(ctx, targetID, actorID)
		if err != nil {
			return nil, err
		}
		if !target.IsActive() {
			return nil, fmt.Errorf("%w: target object is not active", ambient_errors.ErrObjectNotFound)
		}
	}

	result, err := s.route(ctx, cmdType, stored, actorID)
	if err != nil {
		return nil, err
	}

	logger.Info("Command executed",
		zap.String("command", cmdType),
		zap.String("invokedBy", actorID.Key()))
	return normalizeResult(result), nil
}

func (s *CommandService) route(ctx context.Context, cmdType string, cmd *model.Command, actor model.UserID) (interface{}, error) {
	switch cmdType {
	case cmdEcho:
		return s.handleEcho(cmd)
	case cmdCreate:
		return s.handleCreate(ctx, cmd, actor)
	case cmdUpdate:
		return s.handleUpdate(ctx, cmd, actor)
	case cmdDelete:
		return s.handleDelete(ctx, cmd, actor)
	case cmdGet:
		return s.handleGet(ctx, cmd, actor)
	case cmdGetAvailableLockers:
		return s.handleGetAvailableLockers(ctx, cmd, actor)
	case cmdGetReservationsByStatus:
		return s.handleGetReservationsByStatus(ctx, cmd, actor)
	case cmdChangeLockerStatus:
		return s.handleChangeLockerStatus(ctx, cmd, actor)
	default:
		return nil, fmt.Errorf("%w: %s", ambient_errors.ErrUnknownCommandType, cmd.Command)
	}
}

// handleEcho returns the command attributes untouched.
func (s *CommandService) handleEcho(cmd *model.Command) (interface{}, error) {
	if cmd.Attributes == nil {
		return nil, fmt.Errorf("%w: echo command requires attributes", ambient_errors.ErrInvalidCommandData)
	}
	return cmd.Attributes, nil
}

// handleCreate builds an object draft from the attributes and creates it
// on the trusted path, with the invoker recorded as creator.
func (s *CommandService) handleCreate(ctx context.Context, cmd *model.Command, actor model.UserID) (interface{}, error) {
	if len(cmd.Attributes) == 0 {
		return nil, fmt.Errorf("%w: create command requires attributes", ambient_errors.ErrInvalidCommandData)
	}

	draft := objectDraft(cmd.Attributes)
	draft.CreatedBy = &actor

	created, err := s.objectService.CreateObject(ctx, draft, true)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// handleUpdate patches the target object on the trusted path and returns
// no payload.
func (s *CommandService) handleUpdate(ctx context.Context, cmd *model.Command, actor model.UserID) (interface{}, error) {
	targetID, err := targetObjectID(cmd)
	if err != nil {
		return nil, err
	}
	if len(cmd.Attributes) == 0 {
		return nil, fmt.Errorf("%w: update command requires attributes", ambient_errors.ErrInvalidCommandData)
	}

	draft := objectDraft(cmd.Attributes)
	patch := &model.ObjectPatch{
		Type:    draft.Type,
		Alias:   draft.Alias,
		Status:  draft.Status,
		Active:  draft.Active,
		Details: draft.Details,
	}
	if err := s.objectService.UpdateObject(ctx, targetID, actor, patch, true); err != nil {
		return nil, err
	}
	return nil, nil
}

// handleDelete supports only the wildcard form, which defers to the purge
// permission check. Individual deletion is intentionally rejected.
func (s *CommandService) handleDelete(ctx context.Context, cmd *model.Command, actor model.UserID) (interface{}, error) {
	if cmd.TargetObject.IsWildcard() {
		if err := s.objectService.DeleteAllObjects(ctx, actor); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if _, err := targetObjectID(cmd); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: individual object deletion is not supported in this version", ambient_errors.ErrInvalidInput)
}

// handleGet returns the target object, or the first page of all visible
// objects for a wildcard target.
func (s *CommandService) handleGet(ctx context.Context, cmd *model.Command, actor model.UserID) (interface{}, error) {
	if cmd.TargetObject.IsWildcard() {
		return s.objectService.GetAllObjects(ctx, actor, model.Page{Size: 5, Page: 0})
	}
	targetID, err := targetObjectID(cmd)
	if err != nil {
		return nil, err
	}
	return s.objectService.GetObjectByID(ctx, targetID, actor)
}

// GetAllCommandsHistory lists the command audit trail; reserved for the
// auditing role.
func (s *CommandService) GetAllCommandsHistory(ctx context.Context, actor model.UserID, page model.Page) ([]*model.Command, error) {
	actingUser, err := s.userService.Login(ctx, actor.SystemID, actor.Email)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpReadCommandHistory)
	if err != nil {
		return nil, err
	}
	if decision != policy.Allow {
		return nil, fmt.Errorf("%w: only ADMIN users can retrieve command history", ambient_errors.ErrForbidden)
	}

	return s.commandDAO.FindAll(ctx, page)
}

// DeleteAllCommands wipes the command history; reserved for the auditing
// role.
func (s *CommandService) DeleteAllCommands(ctx context.Context, actor model.UserID) error {
	actingUser, err := s.userService.Login(ctx, actor.SystemID, actor.Email)
	if err != nil {
		return err
	}

	decision, err := policy.Decide(actingUser.Role, policy.OpAdminPurge)
	if err != nil {
		return err
	}
	if decision != policy.Allow {
		return fmt.Errorf("%w: only ADMIN users can delete all commands", ambient_errors.ErrForbidden)
	}

	if err := s.commandDAO.DeleteAll(ctx); err != nil {
		return err
	}

	logger.Info("All commands deleted", zap.String("deletedBy", actor.Key()))
	return nil
}

// targetObjectID extracts the target's local id, rejecting an absent or
// blank id as invalid input.
func targetObjectID(cmd *model.Command) (string, error) {
	if cmd.TargetObject == nil || cmd.TargetObject.ID == nil || strings.TrimSpace(cmd.TargetObject.ID.ObjectID) == "" {
		return "", fmt.Errorf("%w: target object id is missing", ambient_errors.ErrInvalidCommandData)
	}
	return cmd.TargetObject.ID.ObjectID, nil
}

// objectDraft maps the well-known attribute keys onto an object draft.
// Unknown keys are ignored.
func objectDraft(attrs map[string]interface{}) *model.Object {
	draft := &model.Object{}
	if v, ok := attrs["type"]; ok {
		draft.Type = fmt.Sprintf("%v", v)
	}
	if v, ok := attrs["alias"]; ok {
		draft.Alias = fmt.Sprintf("%v", v)
	}
	if v, ok := attrs["status"]; ok {
		draft.Status = fmt.Sprintf("%v", v)
	}
	if v, ok := attrs["active"]; ok {
		if b, ok := v.(bool); ok {
			draft.Active = &b
		}
	}
	if v, ok := attrs["objectDetails"]; ok {
		if details, ok := v.(map[string]interface{}); ok {
			draft.Details = details
		}
	}
	return draft
}

// attrFloat reads a numeric attribute that may arrive as a JSON number or
// a string.
func attrFloat(attrs map[string]interface{}, key string) (float64, error) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: attribute %q is required", ambient_errors.ErrInvalidCommandData, key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: attribute %q is not a number", ambient_errors.ErrInvalidCommandData, key)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: attribute %q is not a number", ambient_errors.ErrInvalidCommandData, key)
	}
}

// attrString reads a required non-blank string attribute.
func attrString(attrs map[string]interface{}, key string) (string, error) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: attribute %q is required", ambient_errors.ErrInvalidCommandData, key)
	}
	str := strings.TrimSpace(fmt.Sprintf("%v", v))
	if str == "" {
		return "", fmt.Errorf("%w: attribute %q is required", ambient_errors.ErrInvalidCommandData, key)
	}
	return str, nil
}

// normalizeResult shapes every handler outcome as a list: nil becomes an
// empty list, a slice stays a list, anything else is a singleton.
func normalizeResult(result interface{}) []interface{} {
	switch v := result.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		return v
	case []*model.Object:
		out := make([]interface{}, 0, len(v))
		for _, obj := range v {
			out = append(out, obj)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, 0, len(v))
		for _, m := range v {
			out = append(out, m)
		}
		return out
	default:
		return []interface{}{result}
	}
}
