// api/controller/command_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/service"
	"github.com/afekalocker/ambient/api/util"
)

type CommandController struct {
	commandService service.ICommandService
}

func NewCommandController(commandService service.ICommandService) *CommandController {
	return &CommandController{
		commandService: commandService,
	}
}

// RegisterRoutes registers the API routes
func (cc *CommandController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/commands", cc.InvokeCommand)
}

// InvokeCommand endpoint; the single entry point for end users.
func (cc *CommandController) InvokeCommand(c *gin.Context) {
	var cmd model.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid command data", err)
		return
	}

	result, err := cc.commandService.InvokeCommand(c, &cmd)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
