// api/service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/afekalocker/ambient/api/audit"
	"github.com/afekalocker/ambient/api/dao"
	"github.com/afekalocker/ambient/api/util"
)

type Services struct {
	User    IUserService
	Object  IObjectService
	Command ICommandService
}

func InitializeServices(
	driver neo4j.Driver,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notifier util.LockerNotifier,
	eventBus *util.EventBus,
	systemID string,
) (*Services, error) {
	userDAO := dao.NewUserDAO(driver, auditService)
	objectDAO := dao.NewObjectDAO(driver, auditService)
	commandDAO := dao.NewCommandDAO(driver, auditService, systemID)

	userService := NewUserService(userDAO, validationUtil, cacheService, eventBus, systemID)
	objectService := NewObjectService(objectDAO, userService, validationUtil, cacheService, eventBus, systemID)
	commandService := NewCommandService(commandDAO, objectService, userService, notifier, validationUtil, systemID)

	services := &Services{
		User:    userService,
		Object:  objectService,
		Command: commandService,
	}

	return services, nil
}
