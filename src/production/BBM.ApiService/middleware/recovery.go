package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
)

// Recovery turns a handler panic into a JSON 500
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Logger.Error().
			Interface("panic", recovered).
			Str("request_id", GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
		})
	})
}
