package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/util/common"
)

// DomainValidator rejects requests whose Host is not domain.
func DomainValidator(domain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if !strings.EqualFold(host, domain) {
			Abort(c, common.Forbidden("unknown host"))
			return
		}
		c.Next()
	}
}
