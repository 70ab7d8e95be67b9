package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/util/metrics"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/middleware"
	"github.com/storerate/storerate/web/policy"
)

type RatingController struct {
	BaseController
}

func NewRatingController(g *gin.RouterGroup, deps *Deps) *RatingController {
	a := &RatingController{BaseController{deps: deps}}
	a.initRouter(g)
	return a
}

func (a *RatingController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/ratings")

	g.POST("", a.require(policy.RateStore), a.submit)
	g.PUT("", a.require(policy.RateStore), a.submit)
	g.GET("/:storeId", a.require(policy.ViewStoreRatings), a.list)
	g.GET("/:storeId/average", a.average)
}

func (a *RatingController) submit(c *gin.Context) {
	req := &entity.RatingRequest{}
	if !bindJSON(c, req) {
		return
	}
	result, err := a.deps.Ratings.CreateOrUpdate(c.Request.Context(), middleware.Subject(c), req)
	if err != nil {
		jsonError(c, err)
		return
	}
	if result.Created {
		metrics.RatingSubmissions.WithLabelValues("created").Inc()
	} else {
		metrics.RatingSubmissions.WithLabelValues("updated").Inc()
	}
	c.JSON(http.StatusCreated, result)
}

func (a *RatingController) list(c *gin.Context) {
	storeId, ok := paramId(c, "storeId")
	if !ok {
		return
	}
	ratings, err := a.deps.Ratings.StoreRatings(c.Request.Context(), middleware.Subject(c), storeId)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

func (a *RatingController) average(c *gin.Context) {
	storeId, ok := paramId(c, "storeId")
	if !ok {
		return
	}
	avg, err := a.deps.Ratings.Average(c.Request.Context(), storeId)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.AverageResponse{Average: *avg})
}
