// api/controller/command_controller_test.go
package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afekalocker/ambient/api/controller"
	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/service"
	"github.com/afekalocker/ambient/api/test/mock"
	"github.com/afekalocker/ambient/api/util"
)

const testSystemID = "ambient-lockers"

type fixture struct {
	router   *gin.Engine
	objects  *mock.InMemoryObjectRepository
	users    *mock.InMemoryUserRepository
	commands *mock.InMemoryCommandRepository
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := mock.NewInMemoryUserRepository()
	objects := mock.NewInMemoryObjectRepository()
	commands := mock.NewInMemoryCommandRepository(testSystemID)

	validationUtil := util.NewValidationUtil()
	cacheService := util.NewCacheService()
	notifier := &mock.RecordingNotifier{}

	userService := service.NewUserService(users, validationUtil, cacheService, nil, testSystemID)
	objectService := service.NewObjectService(objects, userService, validationUtil, cacheService, nil, testSystemID)
	commandService := service.NewCommandService(commands, objectService, userService, notifier, validationUtil, testSystemID)

	controllers := &controller.Controllers{
		User:    controller.NewUserController(userService),
		Object:  controller.NewObjectController(objectService),
		Search:  controller.NewSearchController(objectService),
		Command: controller.NewCommandController(commandService),
		Admin:   controller.NewAdminController(userService, objectService, commandService),
	}

	router := gin.New()
	api := router.Group("/ambient-intelligence")
	controllers.User.RegisterRoutes(api)
	controllers.Object.RegisterRoutes(api)
	controllers.Search.RegisterRoutes(api)
	controllers.Command.RegisterRoutes(api)
	controllers.Admin.RegisterRoutes(api)

	seed := func(id model.UserID, role model.Role) {
		_, err := users.Save(context.Background(), &model.User{
			ID: id, Role: role,
			Username: model.Username{First: "Test", Last: string(role)},
		})
		require.NoError(t, err)
	}
	seed(model.UserID{SystemID: testSystemID, Email: "admin@test.com"}, model.RoleAdmin)
	seed(model.UserID{SystemID: testSystemID, Email: "operator@test.com"}, model.RoleOperator)
	seed(model.UserID{SystemID: testSystemID, Email: "user@test.com"}, model.RoleEndUser)

	return &fixture{router: router, objects: objects, users: users, commands: commands}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func TestCommandEndpoint(t *testing.T) {
	f := setupFixture(t)

	t.Run("EchoReturnsAttributeList", func(t *testing.T) {
		body := `{
			"command": "echo",
			"targetObject": {"id": {"objectId": "*"}},
			"invokedBy": {"userId": {"systemID": "ambient-lockers", "email": "user@test.com"}},
			"commandAttributes": {"ping": "pong"}
		}`
		w := f.do("POST", "/ambient-intelligence/commands", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.Len(t, result, 1)
		assert.Equal(t, "pong", result[0]["ping"])
	})

	t.Run("OperatorIsForbidden", func(t *testing.T) {
		body := `{
			"command": "echo",
			"targetObject": {"id": {"objectId": "*"}},
			"invokedBy": {"userId": {"systemID": "ambient-lockers", "email": "operator@test.com"}},
			"commandAttributes": {"ping": "pong"}
		}`
		w := f.do("POST", "/ambient-intelligence/commands", body)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("UnknownCommandIsBadRequest", func(t *testing.T) {
		body := `{
			"command": "reboot",
			"targetObject": {"id": {"objectId": "*"}},
			"invokedBy": {"userId": {"systemID": "ambient-lockers", "email": "user@test.com"}}
		}`
		w := f.do("POST", "/ambient-intelligence/commands", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MissingTargetIsBadRequest", func(t *testing.T) {
		body := `{
			"command": "echo",
			"invokedBy": {"userId": {"systemID": "ambient-lockers", "email": "user@test.com"}}
		}`
		w := f.do("POST", "/ambient-intelligence/commands", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownTargetIsNotFound", func(t *testing.T) {
		body := `{
			"command": "get",
			"targetObject": {"id": {"objectId": "no-such-object"}},
			"invokedBy": {"userId": {"systemID": "ambient-lockers", "email": "user@test.com"}}
		}`
		w := f.do("POST", "/ambient-intelligence/commands", body)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestObjectEndpoints(t *testing.T) {
	f := setupFixture(t)

	t.Run("OperatorCreatesObject", func(t *testing.T) {
		body := `{
			"type": "locker",
			"alias": "corner unit",
			"status": "available",
			"active": true,
			"createdBy": {"systemID": "ambient-lockers", "email": "operator@test.com"}
		}`
		w := f.do("POST", "/ambient-intelligence/objects", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created model.Object
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID.ID)

		get := f.do("GET", "/ambient-intelligence/objects/"+created.ID.ID+
			"?userSystemID=ambient-lockers&userEmail=operator@test.com", "")
		assert.Equal(t, http.StatusOK, get.Code)
	})

	t.Run("EndUserCreateIsForbidden", func(t *testing.T) {
		body := `{
			"type": "locker",
			"alias": "smuggled",
			"status": "available",
			"active": true,
			"createdBy": {"systemID": "ambient-lockers", "email": "user@test.com"}
		}`
		w := f.do("POST", "/ambient-intelligence/objects", body)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("MissingActorIsBadRequest", func(t *testing.T) {
		w := f.do("GET", "/ambient-intelligence/objects", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("AdminListIsForbidden", func(t *testing.T) {
		w := f.do("GET", "/ambient-intelligence/objects?userSystemID=ambient-lockers&userEmail=admin@test.com", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUserEndpoints(t *testing.T) {
	f := setupFixture(t)

	t.Run("CreateAndLogin", func(t *testing.T) {
		body := `{
			"email": "fresh@test.com",
			"role": "END_USER",
			"username": {"first": "Fresh", "last": "User"}
		}`
		w := f.do("POST", "/ambient-intelligence/users", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		login := f.do("GET", "/ambient-intelligence/users/login/ambient-lockers/fresh@test.com", "")
		require.Equal(t, http.StatusOK, login.Code)

		var user model.User
		require.NoError(t, json.Unmarshal(login.Body.Bytes(), &user))
		assert.Equal(t, model.RoleEndUser, user.Role)
	})

	t.Run("DuplicateIsConflict", func(t *testing.T) {
		body := `{
			"email": "operator@test.com",
			"role": "OPERATOR",
			"username": {"first": "Dup", "last": "User"}
		}`
		w := f.do("POST", "/ambient-intelligence/users", body)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("UnknownLoginIsNotFound", func(t *testing.T) {
		w := f.do("GET", "/ambient-intelligence/users/login/ambient-lockers/ghost@test.com", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminEndpoints(t *testing.T) {
	f := setupFixture(t)

	t.Run("ListUsersRequiresAdmin", func(t *testing.T) {
		w := f.do("GET", "/ambient-intelligence/admin/users?userSystemID=ambient-lockers&userEmail=operator@test.com", "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = f.do("GET", "/ambient-intelligence/admin/users?userSystemID=ambient-lockers&userEmail=admin@test.com", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("PurgeCommandsRequiresAdmin", func(t *testing.T) {
		w := f.do("DELETE", "/ambient-intelligence/admin/commands?userSystemID=ambient-lockers&userEmail=user@test.com", "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = f.do("DELETE", "/ambient-intelligence/admin/commands?userSystemID=ambient-lockers&userEmail=admin@test.com", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
