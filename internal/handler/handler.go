package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler serves the service descriptor.
type Handler struct {
	name      string
	version   string
	endpoints []string
	started   time.Time
}

func NewHandler(name, version string, endpoints []string) *Handler {
	return &Handler{
		name:      name,
		version:   version,
		endpoints: endpoints,
		started:   time.Now(),
	}
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":      h.name,
		"version":   h.version,
		"status":    "running",
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"endpoints": h.endpoints,
	})
}
