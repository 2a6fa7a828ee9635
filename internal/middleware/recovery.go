package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery turns a panic into a JSON 500 that carries the request id.
// The stack is only logged.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			rid := GetRequestID(c)
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("route", c.FullPath()).
				Str("method", c.Request.Method).
				Str("request_id", rid).
				Msg("handler panicked")

			body := errorBody("Internal server error")
			if rid != "" {
				body["requestId"] = rid
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}

func errorBody(message string) gin.H {
	return gin.H{"success": false, "message": message}
}
