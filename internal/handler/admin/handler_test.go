package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	apperrors "github.com/jwalitptl/dental-intake-api/pkg/errors"
)

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetProfile(ctx context.Context, email string) (*model.PatientProfile, error) {
	args := m.Called(ctx, email)
	p, _ := args.Get(0).(*model.PatientProfile)
	return p, args.Error(1)
}

func get(svc ProfileService, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/admin"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGetPatient(t *testing.T) {
	t.Run("missing email", func(t *testing.T) {
		svc := new(mockProfiles)
		w := get(svc, "/api/admin/patients")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(mockProfiles)
		svc.On("GetProfile", mock.Anything, "nobody@example.com").Return(nil, apperrors.NotFound("patient"))
		w := get(svc, "/api/admin/patients?email=Nobody@Example.com")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"patient not found"}`, w.Body.String())
	})

	t.Run("found", func(t *testing.T) {
		id := uuid.New()
		svc := new(mockProfiles)
		svc.On("GetProfile", mock.Anything, "jane@example.com").Return(&model.PatientProfile{
			Patient: &model.Patient{Base: model.Base{ID: id}, Email: "jane@example.com"},
			AuditTrail: []*model.AuditLog{
				{PatientID: id, Action: model.AuditActionCreate, TableName: model.AuditTablePatients},
			},
		}, nil)

		w := get(svc, "/api/admin/patients?email=jane@example.com")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				ID         string           `json:"id"`
				Email      string           `json:"email"`
				AuditTrail []map[string]any `json:"auditTrail"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, id.String(), body.Data.ID)
		assert.Equal(t, "jane@example.com", body.Data.Email)
		assert.Len(t, body.Data.AuditTrail, 1)
	})

	t.Run("lookup failure", func(t *testing.T) {
		svc := new(mockProfiles)
		svc.On("GetProfile", mock.Anything, "jane@example.com").
			Return(nil, apperrors.Persistence("failed to find patient", errors.New("timeout")))
		w := get(svc, "/api/admin/patients?email=jane@example.com")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Failed to load patient","error":"failed to find patient: timeout"}`, w.Body.String())
	})
}
