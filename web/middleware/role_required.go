package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/web/policy"
)

// RequireAction rejects the request unless the caller's role permits act.
// Ownership is checked later, once the target is loaded.
func RequireAction(p policy.Policy, act policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := p.Authorize(Subject(c), act, policy.Resource{}); err != nil {
			Abort(c, err)
			return
		}
		c.Next()
	}
}
