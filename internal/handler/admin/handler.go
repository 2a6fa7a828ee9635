package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-intake-api/internal/handler"
	"github.com/jwalitptl/dental-intake-api/internal/middleware"
	"github.com/jwalitptl/dental-intake-api/internal/model"
	apperrors "github.com/jwalitptl/dental-intake-api/pkg/errors"
)

type ProfileService interface {
	GetProfile(ctx context.Context, email string) (*model.PatientProfile, error)
}

type Handler struct {
	service ProfileService
}

func NewHandler(service ProfileService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the lookup routes. Callers guard r with AdminAuth.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients", h.GetPatient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, handler.NewErrorResponse("email query parameter is required"))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), email)
	if err != nil {
		handler.AbortWithError(c, err, "Failed to load patient")
		return
	}
	if profile == nil {
		handler.AbortWithError(c, apperrors.NotFound("patient"), "")
		return
	}

	log.Info().
		Str("admin", c.GetString(middleware.ContextAdminSubject)).
		Str("patient_id", profile.ID.String()).
		Msg("patient profile accessed")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}
