package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const CSRFHeader = "X-CSRF-Token"

// CSRFMiddleware enforces a double-submit check on mutating requests: the
// X-CSRF-Token header must equal the csrf claim carried by the session token.
// Runs after AuthMiddleware.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		expected, exists := c.Get("csrf")
		if !exists {
			HTTPHelper.SendUnauthorizedError(c, "CSRF token missing from session", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		provided := c.GetHeader(CSRFHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected.(string))) != 1 {
			HTTPHelper.SendForbiddenError(c, "Invalid CSRF token", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		c.Next()
	}
}
