package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/middleware"
	"github.com/storerate/storerate/web/policy"
)

// OwnerController lets store owners read and answer ratings on their stores.
type OwnerController struct {
	BaseController
}

func NewOwnerController(g *gin.RouterGroup, deps *Deps) *OwnerController {
	a := &OwnerController{BaseController{deps: deps}}
	a.initRouter(g)
	return a
}

func (a *OwnerController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/owners")

	g.GET("/ratings", a.require(policy.ViewOwnerRatings), a.ratings)
	g.POST("/ratings/:ratingId/respond", a.require(policy.RespondRating), a.respond)
}

func (a *OwnerController) ratings(c *gin.Context) {
	ratings, err := a.deps.Ratings.OwnerRatings(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

func (a *OwnerController) respond(c *gin.Context) {
	ratingId, ok := paramId(c, "ratingId")
	if !ok {
		return
	}
	req := &entity.RespondRequest{}
	if !bindJSON(c, req) {
		return
	}
	rating, err := a.deps.Ratings.Respond(c.Request.Context(), middleware.Subject(c), ratingId, req)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}
