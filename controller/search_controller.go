// api/controller/search_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/service"
	"github.com/afekalocker/ambient/api/util"
	helper_util "github.com/afekalocker/ambient/api/util/helper"
)

type SearchController struct {
	objectService service.IObjectService
}

func NewSearchController(objectService service.IObjectService) *SearchController {
	return &SearchController{
		objectService: objectService,
	}
}

// RegisterRoutes registers the API routes
func (sc *SearchController) RegisterRoutes(r *gin.RouterGroup) {
	search := r.Group("/objects/search")
	{
		search.GET("/byAlias/:alias", sc.ByAlias)
		search.GET("/byAliasPattern/:pattern", sc.ByAliasPattern)
		search.GET("/byType/:type", sc.ByType)
		search.GET("/byStatus/:status", sc.ByStatus)
		search.GET("/byTypeAndStatus/:type/:status", sc.ByTypeAndStatus)
	}
}

type searchFunc func(c *gin.Context, actor model.UserID, page model.Page) ([]*model.Object, error)

func (sc *SearchController) respond(c *gin.Context, search searchFunc) {
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

	objects, err := search(c, actor, page)
	if err != nil {
		util.RespondForError(c, err)
		return
	}

	c.JSON(http.StatusOK, objects)
}

// ByAlias endpoint
func (sc *SearchController) ByAlias(c *gin.Context) {
	sc.respond(c, func(c *gin.Context, actor model.UserID, page model.Page) ([]*model.Object, error) {
		return sc.objectService.SearchByExactAlias(c, c.Param("alias"), actor, page)
	})
}

// ByAliasPattern endpoint
func (sc *SearchController) ByAliasPattern(c *gin.Context) {
	sc.respond(c, func(c *gin.Context, actor model.UserID, page model.Page) ([]*model.Object, error) {
		return sc.objectService.SearchByAliasPattern(c, c.Param("pattern"), actor, page)
	})
}

// ByType endpoint
func (sc *SearchController) ByType(c *gin.Context) {
	sc.respond(c, func(c *gin.Context, actor model.UserID, page model.Page) ([]*model.Object, error) {
		return sc.objectService.SearchByType(c, c.Param("type"), actor, page)
	})
}

// ByStatus endpoint
func (sc *SearchController) ByStatus(c *gin.Context) {
	sc.respond(c, func(c *gin.Context, actor model.UserID, page model.Page) ([]*model.Object, error) {
		return sc.objectService.SearchByStatus(c, c.Param("status"), actor, page)
	})
}

// ByTypeAndStatus endpoint
func (sc *SearchController) ByTypeAndStatus(c *gin.Context) {
	sc.respond(c, func(c *gin.Context, actor model.UserID, page model.Page) ([]*model.Object, error) {
		return sc.objectService.SearchByTypeAndStatus(c, c.Param("type"), c.Param("status"), actor, page)
	})
}
