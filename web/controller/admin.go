package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/logger"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/middleware"
	"github.com/storerate/storerate/web/policy"
	"github.com/storerate/storerate/web/validation"
)

const maxLogCount = 10000

var logLevels = map[string]bool{
	"DEBUG": true, "INFO": true, "NOTICE": true, "WARNING": true, "ERROR": true, "CRITICAL": true,
}

// AdminController groups the admin-only listing and store creation routes.
type AdminController struct {
	BaseController
	users  *UserController
	stores *StoreController
}

func NewAdminController(g *gin.RouterGroup, deps *Deps, users *UserController, stores *StoreController) *AdminController {
	a := &AdminController{BaseController: BaseController{deps: deps}, users: users, stores: stores}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/admin")

	g.POST("/stores", a.require(policy.AdminCreateStore), a.createStore)
	g.GET("/stores", a.require(policy.AdminListStores), a.stores.list)
	g.GET("/users", a.require(policy.ListUsers), a.users.list)
	g.GET("/logs", a.require(policy.ViewLogs), a.logs)
}

// logs returns recent server log lines, newest first, at or above level.
func (a *AdminController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "100"))
	var errs []error
	if err != nil || count < 1 || count > maxLogCount {
		errs = append(errs, validation.Field("count", "must be a number between 1 and "+strconv.Itoa(maxLogCount)))
	}
	level := strings.ToUpper(c.DefaultQuery("level", "INFO"))
	if !logLevels[level] {
		errs = append(errs, validation.Field("level", "must be one of DEBUG, INFO, NOTICE, WARNING, ERROR, CRITICAL"))
	}
	if err := validation.Merge(errs...); err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, logger.GetLogs(count, level))
}

func (a *AdminController) createStore(c *gin.Context) {
	req := &entity.AdminStoreRequest{}
	if !bindJSON(c, req) {
		return
	}
	store, err := a.deps.Stores.AdminCreate(c.Request.Context(), middleware.Subject(c), req)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, store)
}
