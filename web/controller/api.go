package controller

import (
	"github.com/gin-gonic/gin"
)

// APIController mounts every API route under its group.
type APIController struct {
	BaseController
	userController   *UserController
	storeController  *StoreController
	ratingController *RatingController
	ownerController  *OwnerController
	adminController  *AdminController
}

func NewAPIController(g *gin.RouterGroup, deps *Deps) *APIController {
	a := &APIController{BaseController: BaseController{deps: deps}}
	a.initRouter(g)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	g.GET("/health", health)

	a.userController = NewUserController(g, a.deps)
	a.storeController = NewStoreController(g, a.deps)
	a.ratingController = NewRatingController(g, a.deps)
	a.ownerController = NewOwnerController(g, a.deps)
	a.adminController = NewAdminController(g, a.deps, a.userController, a.storeController)
}
