package v1

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by handlers that own a route group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// CRUDRouteHandler is the route set shared by the ledger collections.
type CRUDRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
}

// Mount registers a handler under path.
//
// Usage:
//
//	Mount(api, "/sales", handlers.NewSalesHandler(base, salesService))
func Mount(rg *gin.RouterGroup, path string, handler RouteRegistrar) {
	handler.RegisterRoutes(rg.Group(path))
}

// RegisterCRUDRoutes registers list, create, get and delete for a ledger
// collection. Deletes take a JSON body with a reason and confirmation.
func RegisterCRUDRoutes(group *gin.RouterGroup, handler CRUDRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)
}
