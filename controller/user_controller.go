// api/controller/user_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/service"
	"github.com/afekalocker/ambient/api/util"
)

type UserController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// RegisterRoutes registers the API routes
func (uc *UserController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("", uc.CreateUser)
		users.GET("/login/:systemID/:email", uc.Login)
		users.PUT("/:systemID/:email", uc.UpdateUser)
	}
}

// CreateUser endpoint
func (uc *UserController) CreateUser(c *gin.Context) {
	var user model.NewUser
	if err := c.ShouldBindJSON(&user); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", err)
		return
	}

	createdUser, err := uc.userService.CreateUser(c, user)
	if err != nil {
		if errors.Is(err, ambient_errors.ErrUserConflict) {
			util.RespondWithError(c, http.StatusConflict, "User already exists", err)
			return
		}
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdUser)
}

// Login endpoint
func (uc *UserController) Login(c *gin.Context) {
	systemID := c.Param("systemID")
	email := c.Param("email")

	user, err := uc.userService.Login(c, systemID, email)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser endpoint
func (uc *UserController) UpdateUser(c *gin.Context) {
	systemID := c.Param("systemID")
	email := c.Param("email")

	var update model.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", err)
		return
	}

	if err := uc.userService.UpdateUser(c, systemID, email, update); err != nil {
		util.RespondForError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
