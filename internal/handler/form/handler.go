package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-intake-api/internal/handler"
	"github.com/jwalitptl/dental-intake-api/internal/middleware"
	"github.com/jwalitptl/dental-intake-api/internal/model"
	formsvc "github.com/jwalitptl/dental-intake-api/internal/service/form"
)

type Service interface {
	SendMedicalForm(ctx context.Context, req *model.MedicalFormRequest) (*formsvc.MedicalFormResult, error)
	SendPatientQuestionnaire(ctx context.Context, req *model.PatientQuestionnaireRequest) (*formsvc.QuestionnaireResult, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/send-medical-form", h.SendMedicalForm)
	r.POST("/send-patient-questionnaire", h.SendPatientQuestionnaire)
}

func (h *Handler) SendMedicalForm(c *gin.Context) {
	var req model.MedicalFormRequest
	if !bind(c, &req, "Form data is required") {
		return
	}

	res, err := h.service.SendMedicalForm(c.Request.Context(), &req)
	if err != nil {
		handler.AbortWithError(c, err, "Failed to send email")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Form submitted and email sent successfully",
		"messageId": res.MessageID,
	})
}

func (h *Handler) SendPatientQuestionnaire(c *gin.Context) {
	var req model.PatientQuestionnaireRequest
	if !bind(c, &req, "Patient data is required") {
		return
	}

	res, err := h.service.SendPatientQuestionnaire(c.Request.Context(), &req)
	if err != nil {
		handler.AbortWithError(c, err, "Failed to send patient registration email")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Patient registration submitted and email sent successfully",
		"messageId":       res.MessageID,
		"patient":         res.Patient,
		"isNewPatient":    res.IsNewPatient,
		"savedToDatabase": res.SavedToDatabase,
	})
}

// bind decodes the body. A mistyped field inside the form is named in the
// reply; any other decode or presence failure is answered with
// missingMessage. Either way the form never reaches a side effect.
func bind(c *gin.Context, req any, missingMessage string) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	if handler.IsBodyTooLarge(err) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, handler.NewErrorResponse("Request body too large"))
		return false
	}

	log.Debug().
		Err(err).
		Interface("fields", middleware.FieldErrors(err)).
		Str("request_id", middleware.GetRequestID(c)).
		Msg("rejected form submission")
	message := missingMessage
	if field := mistypedField(err); field != "" {
		message = fmt.Sprintf("Invalid value for field %q", field)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, handler.NewErrorResponse(message))
	return false
}

// mistypedField returns the form field path of a type mismatch, without the
// envelope key. A mismatch on the envelope key itself yields "".
func mistypedField(err error) string {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return ""
	}
	_, field, nested := strings.Cut(typeErr.Field, ".")
	if !nested {
		return ""
	}
	return field
}
