package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/logger"
	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/middleware"
	"github.com/storerate/storerate/web/validation"
)

// jsonError writes err with the status its kind maps to.
func jsonError(c *gin.Context, err error) {
	if common.KindOf(err) == common.KindInternal {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	middleware.Abort(c, err)
}

// jsonMsg sends a message-only success body.
func jsonMsg(c *gin.Context, status int, msg string) {
	c.JSON(status, entity.Msg{Success: true, Msg: msg})
}

// bindJSON decodes the request body into dst. Undecodable bodies are
// reported as a validation error on "body".
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		jsonError(c, validation.Field("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// paramId reads a positive integer path parameter.
func paramId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		jsonError(c, validation.Field(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, entity.Msg{Success: true, Msg: "ok"})
}
