package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/middleware"
	"github.com/storerate/storerate/web/policy"
)

// StoreController serves the public store catalogue and its admin edits.
type StoreController struct {
	BaseController
}

func NewStoreController(g *gin.RouterGroup, deps *Deps) *StoreController {
	a := &StoreController{BaseController{deps: deps}}
	a.initRouter(g)
	return a
}

func (a *StoreController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/stores")

	g.GET("", a.list)
	g.GET("/:id", a.get)
	g.POST("", a.require(policy.CreateStore), a.create)
	g.PUT("/:id", a.require(policy.UpdateStore), a.update)
	g.DELETE("/:id", a.require(policy.DeleteStore), a.delete)
}

func (a *StoreController) list(c *gin.Context) {
	stores, err := a.deps.Stores.List(c.Request.Context())
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

func (a *StoreController) get(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	store, err := a.deps.Stores.Get(c.Request.Context(), id)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

func (a *StoreController) create(c *gin.Context) {
	req := &entity.StoreRequest{}
	if !bindJSON(c, req) {
		return
	}
	store, err := a.deps.Stores.Create(c.Request.Context(), middleware.Subject(c), req)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, store)
}

func (a *StoreController) update(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	req := &entity.StoreRequest{}
	if !bindJSON(c, req) {
		return
	}
	if err := a.deps.Stores.Update(c.Request.Context(), middleware.Subject(c), id, req); err != nil {
		jsonError(c, err)
		return
	}
	jsonMsg(c, http.StatusOK, "store updated")
}

func (a *StoreController) delete(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	if err := a.deps.Stores.Delete(c.Request.Context(), middleware.Subject(c), id); err != nil {
		jsonError(c, err)
		return
	}
	jsonMsg(c, http.StatusOK, "store deleted")
}
