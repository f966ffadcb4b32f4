package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// RequireJSON rejects state-changing requests whose body is not declared as
// JSON. Browsers send text/plain and form bodies cross-origin without a
// preflight, so those never reach a handler.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.ContentType() != binding.MIMEJSON {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": "content type must be application/json",
				})
				return
			}
		}
		c.Next()
	}
}
