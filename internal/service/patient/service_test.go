package patient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	"github.com/jwalitptl/dental-intake-api/internal/repository"
	"github.com/jwalitptl/dental-intake-api/internal/service/audit"
	"github.com/jwalitptl/dental-intake-api/pkg/besteffort"
	apperrors "github.com/jwalitptl/dental-intake-api/pkg/errors"
)

type memStore struct {
	mu        sync.Mutex
	patients  map[uuid.UUID]model.Patient
	documents []*model.PatientDocument
	audits    []*model.AuditLog

	auditErr error
	pingErr  error
	statsErr error
}

func newMemStore() *memStore {
	return &memStore{patients: map[uuid.UUID]model.Patient{}}
}

type memPatients struct{ *memStore }

func (m memPatients) Create(_ context.Context, p *model.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.patients {
		if existing.Email == p.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	m.patients[p.ID] = *p
	return nil
}

func (m memPatients) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m memPatients) GetByEmail(_ context.Context, email string) (*model.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, nil
}

func (m memPatients) Update(_ context.Context, p *model.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.ID]; !ok {
		return repository.ErrNotFound
	}
	m.patients[p.ID] = *p
	return nil
}

type memDocuments struct{ *memStore }

func (m memDocuments) Create(_ context.Context, d *model.PatientDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = append(m.documents, d)
	return nil
}

func (m memDocuments) ListByPatient(_ context.Context, id uuid.UUID) ([]*model.PatientDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.PatientDocument{}
	for _, d := range m.documents {
		if d.PatientID == id {
			out = append(out, d)
		}
	}
	return out, nil
}

type memAudits struct{ *memStore }

func (m memAudits) Create(_ context.Context, l *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.auditErr != nil {
		return m.auditErr
	}
	m.audits = append(m.audits, l)
	return nil
}

func (m memAudits) ListByPatient(_ context.Context, id uuid.UUID) ([]*model.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AuditLog
	for _, l := range m.audits {
		if l.PatientID == id {
			out = append(out, l)
		}
	}
	return out, nil
}

type memStats struct{ *memStore }

func (m memStats) Ping(context.Context) error { return m.pingErr }

func (m memStats) Stats(context.Context) (*model.PatientStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return &model.PatientStats{
		TotalPatients:  int64(len(m.patients)),
		ActivePatients: int64(len(m.patients)),
		TotalDocuments: int64(len(m.documents)),
		TotalAuditLogs: int64(len(m.audits)),
	}, nil
}

func newTestService(store *memStore) *Service {
	runner := besteffort.NewRunner(zerolog.Nop(), nil)
	return NewService(memPatients{store}, memDocuments{store}, memStats{store}, audit.NewService(memAudits{store}, runner))
}

func TestCreatePatientAudits(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	p := &model.Patient{FirstName: "Jane", Email: "jane@example.com", IsActive: true}
	require.NoError(t, svc.CreatePatient(context.Background(), p))

	require.Len(t, store.audits, 1)
	entry := store.audits[0]
	assert.Equal(t, model.AuditActionCreate, entry.Action)
	assert.Equal(t, model.AuditTablePatients, entry.TableName)
	assert.Equal(t, p.ID, entry.RecordID)
	assert.Nil(t, entry.OldValues)
	assert.Contains(t, string(entry.NewValues), `"email":"jane@example.com"`)
}

func TestCreatePatientSurvivesAuditFailure(t *testing.T) {
	store := newMemStore()
	store.auditErr = errors.New("audit table missing")
	svc := newTestService(store)

	p := &model.Patient{Email: "jane@example.com"}
	require.NoError(t, svc.CreatePatient(context.Background(), p))

	found, err := svc.FindPatientByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Empty(t, store.audits)
}

func TestCreatePatientDuplicateEmail(t *testing.T) {
	svc := newTestService(newMemStore())

	require.NoError(t, svc.CreatePatient(context.Background(), &model.Patient{Email: "jane@example.com"}))
	err := svc.CreatePatient(context.Background(), &model.Patient{Email: "jane@example.com"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindPersistence))
}

func TestUpdatePatientAuditsBothImages(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	p := &model.Patient{Email: "jane@example.com", Phone: "111"}
	require.NoError(t, svc.CreatePatient(ctx, p))

	updated := &model.Patient{Email: "jane@example.com", Phone: "222"}
	require.NoError(t, svc.UpdatePatient(ctx, p.ID, updated))

	require.Len(t, store.audits, 2)
	entry := store.audits[1]
	assert.Equal(t, model.AuditActionUpdate, entry.Action)
	assert.Contains(t, string(entry.OldValues), `"phone":"111"`)
	assert.Contains(t, string(entry.NewValues), `"phone":"222"`)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)

	err := svc.UpdatePatient(ctx, uuid.New(), &model.Patient{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindPersistence))
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusCode(err))
	assert.Len(t, store.audits, 2)
}

func TestCreateDocumentAndProfile(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	p := &model.Patient{Email: "jane@example.com"}
	require.NoError(t, svc.CreatePatient(ctx, p))

	doc := &model.PatientDocument{DocumentType: model.DocumentTypeSignature, FileName: "signature.png"}
	require.NoError(t, svc.CreateDocument(ctx, p.ID, doc))
	assert.Equal(t, p.ID, doc.PatientID)

	last := store.audits[len(store.audits)-1]
	assert.Equal(t, model.AuditTablePatientDocuments, last.TableName)
	assert.Equal(t, doc.ID, last.RecordID)

	profile, err := svc.GetProfile(ctx, "  JANE@example.com ")
	require.NoError(t, err)
	assert.Len(t, profile.Documents, 1)
	assert.Len(t, profile.AuditTrail, 2)

	_, err = svc.GetProfile(ctx, "nobody@example.com")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestHealthCheck(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	assert.Equal(t, model.HealthStatusHealthy, svc.HealthCheck(context.Background()).Status)

	store.pingErr = errors.New("connection refused")
	res := svc.HealthCheck(context.Background())
	assert.Equal(t, model.HealthStatusUnhealthy, res.Status)
	assert.Equal(t, "connection refused", res.Error)
	assert.False(t, res.Timestamp.IsZero())
}

func TestStats(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	require.NoError(t, svc.CreatePatient(context.Background(), &model.Patient{Email: "a@example.com"}))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalPatients)
	assert.Equal(t, int64(1), stats.TotalAuditLogs)

	store.statsErr = errors.New("timeout")
	_, err = svc.Stats(context.Background())
	assert.True(t, apperrors.IsKind(err, apperrors.KindPersistence))
}
