package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-intake-api/pkg/metrics"
)

type Handler struct {
	metrics *metrics.Metrics
}

func New(m *metrics.Metrics) *Handler {
	return &Handler{metrics: m}
}

// Middleware records request count, latency and errors per route template.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := c.Writer.Status()
		status := strconv.Itoa(code)
		method := c.Request.Method

		h.metrics.RequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		h.metrics.RequestTotal.WithLabelValues(method, path, status).Inc()
		if code >= 500 {
			h.metrics.ErrorTotal.WithLabelValues(method, path, "server").Inc()
		} else if code >= 400 {
			h.metrics.ErrorTotal.WithLabelValues(method, path, "client").Inc()
		}
	}
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(h.metrics.Handler())
}
