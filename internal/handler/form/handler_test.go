package form

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	formsvc "github.com/jwalitptl/dental-intake-api/internal/service/form"
	apperrors "github.com/jwalitptl/dental-intake-api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) SendMedicalForm(ctx context.Context, req *model.MedicalFormRequest) (*formsvc.MedicalFormResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*formsvc.MedicalFormResult)
	return res, args.Error(1)
}

func (m *mockService) SendPatientQuestionnaire(ctx context.Context, req *model.PatientQuestionnaireRequest) (*formsvc.QuestionnaireResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*formsvc.QuestionnaireResult)
	return res, args.Error(1)
}

func newRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendMedicalForm(t *testing.T) {
	t.Run("missing formData", func(t *testing.T) {
		svc := new(mockService)
		for _, body := range []string{`{}`, `{"formData":null}`, `{"formData":"Jane"}`, `not json`} {
			w := post(newRouter(svc), "/api/send-medical-form", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.JSONEq(t, `{"success":false,"message":"Form data is required"}`, w.Body.String())
		}
		svc.AssertNotCalled(t, "SendMedicalForm", mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		svc := new(mockService)
		svc.On("SendMedicalForm", mock.Anything, mock.MatchedBy(func(r *model.MedicalFormRequest) bool {
			return r.FormData.FirstName == "Jane" && r.Lang == "ka"
		})).Return(&formsvc.MedicalFormResult{MessageID: "<abc@clinic.test>"}, nil)

		w := post(newRouter(svc), "/api/send-medical-form", `{"formData":{"firstName":"Jane"},"lang":"ka"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"Form submitted and email sent successfully","messageId":"<abc@clinic.test>"}`, w.Body.String())
	})

	t.Run("loose field types", func(t *testing.T) {
		svc := new(mockService)
		var got *model.MedicalForm
		svc.On("SendMedicalForm", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(*model.MedicalFormRequest).FormData }).
			Return(&formsvc.MedicalFormResult{MessageID: "<abc@clinic.test>"}, nil)

		w := post(newRouter(svc), "/api/send-medical-form", `{"formData":{"firstName":"Jane","allergies":"pollen, dust","epilepsy":"yes"}}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, model.FlexList{"pollen", "dust"}, got.Allergies)
		assert.True(t, got.Epilepsy.True())
	})

	t.Run("mistyped field", func(t *testing.T) {
		svc := new(mockService)
		w := post(newRouter(svc), "/api/send-medical-form", `{"formData":{"firstName":"Jane","phone":5551234}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Invalid value for field \"phone\""}`, w.Body.String())

		w = post(newRouter(svc), "/api/send-medical-form", `{"formData":{"allergies":{"a":1}}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Invalid value for field \"allergies\""}`, w.Body.String())
		svc.AssertNotCalled(t, "SendMedicalForm", mock.Anything, mock.Anything)
	})

	t.Run("transport failure", func(t *testing.T) {
		svc := new(mockService)
		svc.On("SendMedicalForm", mock.Anything, mock.Anything).
			Return(nil, apperrors.Transport("failed to send email", errors.New("535 auth")))

		w := post(newRouter(svc), "/api/send-medical-form", `{"formData":{}}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Failed to send email","error":"failed to send email: 535 auth"}`, w.Body.String())
	})
}

func TestSendPatientQuestionnaire(t *testing.T) {
	t.Run("missing patientData", func(t *testing.T) {
		svc := new(mockService)
		w := post(newRouter(svc), "/api/send-patient-questionnaire", `{"lang":"en"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Patient data is required"}`, w.Body.String())
		svc.AssertNotCalled(t, "SendPatientQuestionnaire", mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		svc := new(mockService)
		svc.On("SendPatientQuestionnaire", mock.Anything, mock.Anything).Return(&formsvc.QuestionnaireResult{
			MessageID:       "<abc@clinic.test>",
			Patient:         &model.Patient{Email: "jane@example.com", IsActive: true},
			IsNewPatient:    true,
			SavedToDatabase: true,
		}, nil)

		w := post(newRouter(svc), "/api/send-patient-questionnaire", `{"patientData":{"email":"jane@example.com"}}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Patient registration submitted and email sent successfully", body["message"])
		assert.Equal(t, true, body["isNewPatient"])
		assert.Equal(t, true, body["savedToDatabase"])
		assert.Equal(t, "jane@example.com", body["patient"].(map[string]any)["email"])
	})

	t.Run("mistyped field", func(t *testing.T) {
		svc := new(mockService)
		w := post(newRouter(svc), "/api/send-patient-questionnaire", `{"patientData":{"email":"jane@example.com","zipCode":12345}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Invalid value for field \"zipCode\""}`, w.Body.String())
		svc.AssertNotCalled(t, "SendPatientQuestionnaire", mock.Anything, mock.Anything)
	})

	t.Run("validation error", func(t *testing.T) {
		svc := new(mockService)
		svc.On("SendPatientQuestionnaire", mock.Anything, mock.Anything).Return(nil, apperrors.Validation("Email is required"))

		w := post(newRouter(svc), "/api/send-patient-questionnaire", `{"patientData":{}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Email is required"}`, w.Body.String())
	})

	t.Run("persistence failure", func(t *testing.T) {
		svc := new(mockService)
		svc.On("SendPatientQuestionnaire", mock.Anything, mock.Anything).
			Return(nil, apperrors.Persistence("failed to create patient", errors.New("duplicate key")))

		w := post(newRouter(svc), "/api/send-patient-questionnaire", `{"patientData":{"email":"jane@example.com"}}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Failed to send patient registration email","error":"failed to create patient: duplicate key"}`, w.Body.String())
	})
}
