// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/afekalocker/ambient/api/controller"
	"github.com/afekalocker/ambient/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	api := router.Group("/ambient-intelligence")

	controllers.User.RegisterRoutes(api)
	controllers.Object.RegisterRoutes(api)
	controllers.Search.RegisterRoutes(api)
	controllers.Command.RegisterRoutes(api)
	controllers.Admin.RegisterRoutes(api)

	return router
}
