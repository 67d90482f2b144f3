// api/service/helpers_test.go
package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/service"
	"github.com/afekalocker/ambient/api/test/mock"
	"github.com/afekalocker/ambient/api/util"
)

const testSystemID = "ambient-lockers"

var (
	adminID    = model.UserID{SystemID: testSystemID, Email: "admin@test.com"}
	operatorID = model.UserID{SystemID: testSystemID, Email: "operator@test.com"}
	endUserID  = model.UserID{SystemID: testSystemID, Email: "user@test.com"}
)

type testEnv struct {
	users    *mock.InMemoryUserRepository
	objects  *mock.InMemoryObjectRepository
	commands *mock.InMemoryCommandRepository
	notifier *mock.RecordingNotifier

	userService    service.IUserService
	objectService  service.IObjectService
	commandService service.ICommandService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:    mock.NewInMemoryUserRepository(),
		objects:  mock.NewInMemoryObjectRepository(),
		commands: mock.NewInMemoryCommandRepository(testSystemID),
		notifier: &mock.RecordingNotifier{},
	}

	validationUtil := util.NewValidationUtil()
	cacheService := util.NewCacheService()

	userService := service.NewUserService(env.users, validationUtil, cacheService, nil, testSystemID)
	objectService := service.NewObjectService(env.objects, userService, validationUtil, cacheService, nil, testSystemID)
	commandService := service.NewCommandService(env.commands, objectService, userService, env.notifier, validationUtil, testSystemID)

	env.userService = userService
	env.objectService = objectService
	env.commandService = commandService

	env.seedUser(t, adminID, model.RoleAdmin)
	env.seedUser(t, operatorID, model.RoleOperator)
	env.seedUser(t, endUserID, model.RoleEndUser)

	return env
}

func (env *testEnv) seedUser(t *testing.T, id model.UserID, role model.Role) {
	t.Helper()
	_, err := env.users.Save(context.Background(), &model.User{
		ID:       id,
		Role:     role,
		Username: model.Username{First: "Test", Last: string(role)},
	})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", id.Key(), err)
	}
}

type objectSpec struct {
	id        string
	typ       string
	status    string
	active    bool
	parentID  string
	createdBy *model.UserID
	details   map[string]interface{}
	createdAt time.Time
}

func (env *testEnv) seedObject(t *testing.T, spec objectSpec) *model.Object {
	t.Helper()

	active := spec.active
	createdAt := spec.createdAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	obj := &model.Object{
		ID:                model.ObjectID{SystemID: testSystemID, ID: spec.id},
		Type:              spec.typ,
		Alias:             spec.id,
		Status:            spec.status,
		Active:            &active,
		CreationTimestamp: createdAt,
		CreatedBy:         spec.createdBy,
		Details:           spec.details,
		ParentID:          spec.parentID,
	}
	saved, err := env.objects.Save(context.Background(), obj)
	if err != nil {
		t.Fatalf("failed to seed object %s: %v", spec.id, err)
	}
	return saved
}

func newCommand(cmdType, targetID string, invoker model.UserID, attrs map[string]interface{}) *model.Command {
	return &model.Command{
		Command:      cmdType,
		TargetObject: &model.TargetObject{ID: &model.ObjectRef{ObjectID: targetID}},
		InvokedBy:    &model.InvokedBy{UserID: &invoker},
		Attributes:   attrs,
	}
}
