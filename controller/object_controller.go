// api/controller/object_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/service"
	"github.com/afekalocker/ambient/api/util"
	helper_util "github.com/afekalocker/ambient/api/util/helper"
)

type ObjectController struct {
	objectService service.IObjectService
}

func NewObjectController(objectService service.IObjectService) *ObjectController {
	return &ObjectController{
		objectService: objectService,
	}
}

// RegisterRoutes registers the API routes
func (oc *ObjectController) RegisterRoutes(r *gin.RouterGroup) {
	objects := r.Group("/objects")
	{
		objects.POST("", oc.CreateObject)
		objects.GET("", oc.ListObjects)
		objects.GET("/:id", oc.GetObject)
		objects.PUT("/:id", oc.UpdateObject)
		objects.PUT("/:id/children", oc.BindChild)
		objects.GET("/:id/children", oc.GetChildren)
		objects.GET("/:id/parents", oc.GetParents)
	}
}

// CreateObject endpoint
func (oc *ObjectController) CreateObject(c *gin.Context) {
	var obj model.Object
	if err := c.ShouldBindJSON(&obj); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid object data", err)
		return
	}

	created, err := oc.objectService.CreateObject(c, &obj, false)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListObjects endpoint
func (oc *ObjectController) ListObjects(c *gin.Context) {
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

	objects, err := oc.objectService.GetAllObjects(c, actor, page)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusOK, objects)
}

// GetObject endpoint
func (oc *ObjectController) GetObject(c *gin.Context) {
	actor, err := actorFromQuery(c)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	obj, err := oc.objectService.GetObjectByID(c, c.Param("id"), actor)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusOK, obj)
}

// UpdateObject endpoint
func (oc *ObjectController) UpdateObject(c *gin.Context) {
	actor, err := actorFromQuery(c)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	var patch model.ObjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid object data", err)
		return
	}

	if err := oc.objectService.UpdateObject(c, c.Param("id"), actor, &patch, false); err != nil {
		util.RespondForError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BindChild endpoint; the body carries the child's id.
func (oc *ObjectController) BindChild(c *gin.Context) {
	actor, err := actorFromQuery(c)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	var child model.ObjectRef
	if err := c.ShouldBindJSON(&child); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid child reference", err)
		return
	}

	if err := oc.objectService.BindObjects(c, c.Param("id"), child.ObjectID, actor); err != nil {
		util.RespondForError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetChildren endpoint
func (oc *ObjectController) GetChildren(c *gin.Context) {
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

	children, err := oc.objectService.GetChildren(c, c.Param("id"), actor, page)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusOK, children)
}

// GetParents endpoint; at most one parent in this model.
func (oc *ObjectController) GetParents(c *gin.Context) {
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

	parents, err := oc.objectService.GetParent(c, c.Param("id"), actor, page)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusOK, parents)
}
