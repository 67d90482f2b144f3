// api/controller/admin_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/afekalocker/ambient/api/service"
	"github.com/afekalocker/ambient/api/util"
	helper_util "github.com/afekalocker/ambient/api/util/helper"
)

// AdminController groups the auditing surface: directory listing, command
// history, and the three purge operations. The services enforce the role
// policy; these endpoints only shape transport.
type AdminController struct {
	userService    service.IUserService
	objectService  service.IObjectService
	commandService service.ICommandService
}

func NewAdminController(userService service.IUserService, objectService service.IObjectService, commandService service.ICommandService) *AdminController {
	return &AdminController{
		userService:    userService,
		objectService:  objectService,
		commandService: commandService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AdminController) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/users", ac.ListUsers)
		admin.DELETE("/users", ac.DeleteAllUsers)
		admin.DELETE("/objects", ac.DeleteAllObjects)
		admin.GET("/commands", ac.ListCommands)
		admin.DELETE("/commands", ac.DeleteAllCommands)
	}
}

// ListUsers endpoint
func (ac *AdminController) ListUsers(c *gin.Context) {
	actor, err := actorFromQuery(c)
	if err != nil {
		util.RespondForError(c, err)
		return
	}
	page, err := helper_util.GetPageParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	users, err := ac.userService.GetAllUsers(c, actor, page)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// DeleteAllUsers endpoint
func (ac *AdminController) DeleteAllUsers(c *gin.Context) {
	actor, err := actorFromQuery(c)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	if err := ac.userService.DeleteAllUsers(c, actor); err != nil {
		util.RespondForError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAllObjects endpoint
func (ac *AdminController) DeleteAllObjects(c *gin.Context) {
	actor, err := actorFromQuery(c)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	if err := ac.objectService.DeleteAllObjects(c, actor); err != nil {
		util.RespondForError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCommands endpoint
func (ac *AdminController) ListCommands(c *gin.Context) {
	actor, err := actorFromQuery(c)
	if err != nil {
		util.RespondForError(c, err)
		return
	}
	page, err := helper_util.GetPageParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	commands, err := ac.commandService.GetAllCommandsHistory(c, actor, page)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusOK, commands)
}

// DeleteAllCommands endpoint
func (ac *AdminController) DeleteAllCommands(c *gin.Context) {
	actor, err := actorFromQuery(c)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	if err := ac.commandService.DeleteAllCommands(c, actor); err != nil {
		util.RespondForError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
