package middleware

import (
	"net/http"
	"strings"

	"journeygrid/app"
	"journeygrid/domain/core"

	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the parsed session ID
const SessionKey = "journey.session"

// RequireSnapshot rejects requests with 503 until a journey table has been loaded.
// Paths with one of the given prefixes are always let through.
func RequireSnapshot(service *app.JourneyService, open ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, prefix := range open {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		if _, err := service.Snapshot(); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "journey table not loaded yet; POST /api/reload",
			})
			return
		}
		c.Next()
	}
}

// SessionParam parses the :id path parameter into a session ID
func SessionParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseSessionID(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Set(SessionKey, id)
		c.Next()
	}
}

// Session returns the session ID stored by SessionParam
func Session(c *gin.Context) core.SessionID {
	id, _ := c.Get(SessionKey)
	sid, _ := id.(core.SessionID)
	return sid
}
