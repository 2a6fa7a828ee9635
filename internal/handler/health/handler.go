package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-intake-api/internal/model"
)

type MailChecker interface {
	IsConfigured() bool
	Verify(ctx context.Context) bool
}

type DatabaseChecker interface {
	HealthCheck(ctx context.Context) model.HealthCheckResult
	Stats(ctx context.Context) (*model.PatientStats, error)
}

type Handler struct {
	mail MailChecker
	db   DatabaseChecker
	now  func() time.Time
}

// NewHandler builds the health endpoints. A nil db reports persistence as disabled.
func NewHandler(mail MailChecker, db DatabaseChecker) *Handler {
	return &Handler{mail: mail, db: db, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.MailHealth)
	r.GET("/db-health", h.DatabaseHealth)
}

// MailHealth always answers 200; delivery readiness is in the body.
func (h *Handler) MailHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Email service is running",
		"timestamp":  h.now().UTC(),
		"configured": h.mail.IsConfigured(),
		"connected":  h.mail.Verify(c.Request.Context()),
	})
}

func (h *Handler) DatabaseHealth(c *gin.Context) {
	ts := h.now().UTC()
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"database":  gin.H{"status": model.HealthStatusDisabled},
			"timestamp": ts,
		})
		return
	}

	ctx := c.Request.Context()
	result := h.db.HealthCheck(ctx)
	stats, err := h.db.Stats(ctx)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"database":  gin.H{"status": model.HealthStatusUnhealthy, "error": err.Error()},
			"timestamp": ts,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"database":   result,
		"statistics": stats,
		"timestamp":  ts,
	})
}
