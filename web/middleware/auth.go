package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/policy"
	"github.com/storerate/storerate/web/service"
)

const (
	subjectKey = "subject"
	tokenKey   = "token"
)

// Authenticate resolves a bearer token into the request subject. Requests
// without an Authorization header continue anonymously; a header carrying a
// bad or expired token is rejected.
func Authenticate(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			Abort(c, common.Unauthenticated("authorization header must be \"Bearer <token>\""))
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			Abort(c, err)
			return
		}
		c.Set(subjectKey, &policy.Subject{Id: claims.Id, Role: claims.Role})
		c.Set(tokenKey, token)
		c.Next()
	}
}

// Subject returns the authenticated caller, or nil for anonymous requests.
func Subject(c *gin.Context) *policy.Subject {
	v, ok := c.Get(subjectKey)
	if !ok {
		return nil
	}
	sub, _ := v.(*policy.Subject)
	return sub
}

// Token returns the raw bearer token of the request.
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// Abort stops the chain and writes err as the response.
func Abort(c *gin.Context, err error) {
	status, body := entity.NewErrorMsg(err)
	c.AbortWithStatusJSON(status, body)
}
