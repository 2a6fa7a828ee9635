package middleware

import (
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID  = "X-Request-ID"
	HeaderTraceparent = "Traceparent"
	ContextRequestID  = "request_id"

	maxRequestIDLength = 128
)

// RequestID tags every request with an id that is echoed in the response
// header and carried by logs. A caller supplied X-Request-ID is reused only
// when it is a short token of safe characters; failing that, the trace id of
// a W3C traceparent header is used, and a fresh UUID as a last resort.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(HeaderXRequestID))
		if !safeRequestID(rid) {
			rid = traceID(c.GetHeader(HeaderTraceparent))
		}
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "" outside it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}

func safeRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(rid); i++ {
		switch ch := rid[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.', ch == ':':
		default:
			return false
		}
	}
	return true
}

// traceID extracts the 32 hex digit trace id from a "version-trace-parent-flags"
// header. The all-zero id is invalid.
func traceID(traceparent string) string {
	parts := strings.Split(strings.TrimSpace(traceparent), "-")
	if len(parts) != 4 || len(parts[1]) != 32 {
		return ""
	}
	id := strings.ToLower(parts[1])
	if _, err := hex.DecodeString(id); err != nil || strings.Trim(id, "0") == "" {
		return ""
	}
	return id
}
