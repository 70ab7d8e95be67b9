// Package controller provides the HTTP handlers of the storerate API and
// wires them to routes.
package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/web/middleware"
	"github.com/storerate/storerate/web/policy"
	"github.com/storerate/storerate/web/service"
)

// Deps are the services shared by every controller.
type Deps struct {
	Policy      policy.Policy
	Tokens      *service.TokenService
	Users       *service.UserService
	Stores      *service.StoreService
	Ratings     *service.RatingService
	AuthLimiter *middleware.RateLimiter
}

// BaseController gives controllers the route gate for a policy action.
type BaseController struct {
	deps *Deps
}

// require returns middleware rejecting callers that may not perform act.
func (a *BaseController) require(act policy.Action) gin.HandlerFunc {
	return middleware.RequireAction(a.deps.Policy, act)
}

// limit applies the authentication rate limiter when one is configured.
func (a *BaseController) limit() gin.HandlerFunc {
	if a.deps.AuthLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return a.deps.AuthLimiter.Handler()
}
