// api/controller/controllers.go
package controller

import (
	"fmt"

	"github.com/gin-gonic/gin"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/service"
)

type Controllers struct {
	User    *UserController
	Object  *ObjectController
	Search  *SearchController
	Command *CommandController
	Admin   *AdminController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		User:    NewUserController(services.User),
		Object:  NewObjectController(services.Object),
		Search:  NewSearchController(services.Object),
		Command: NewCommandController(services.Command),
		Admin:   NewAdminController(services.User, services.Object, services.Command),
	}
}

// actorFromQuery reads the acting user's identity from the userSystemID
// and userEmail query parameters.
func actorFromQuery(c *gin.Context) (model.UserID, error) {
	systemID := c.Query("userSystemID")
	email := c.Query("userEmail")
	if systemID == "" || email == "" {
		return model.UserID{}, fmt.Errorf("%w: userSystemID and userEmail query parameters are required", ambient_errors.ErrInvalidInput)
	}
	return model.UserID{SystemID: systemID, Email: email}, nil
}
