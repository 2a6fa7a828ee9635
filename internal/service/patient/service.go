package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	"github.com/jwalitptl/dental-intake-api/internal/repository"
	"github.com/jwalitptl/dental-intake-api/internal/service/audit"
	apperrors "github.com/jwalitptl/dental-intake-api/pkg/errors"
)

// PatientService couples each patient and document write with its audit entry.
type PatientService interface {
	FindPatientByEmail(ctx context.Context, email string) (*model.Patient, error)
	CreatePatient(ctx context.Context, patient *model.Patient) error
	UpdatePatient(ctx context.Context, id uuid.UUID, patient *model.Patient) error
	CreateDocument(ctx context.Context, patientID uuid.UUID, doc *model.PatientDocument) error
	GetProfile(ctx context.Context, email string) (*model.PatientProfile, error)
	HealthCheck(ctx context.Context) model.HealthCheckResult
	Stats(ctx context.Context) (*model.PatientStats, error)
}

type Service struct {
	patients  repository.PatientRepository
	documents repository.DocumentRepository
	stats     repository.StatsRepository
	auditor   *audit.Service
	now       func() time.Time
}

func NewService(patients repository.PatientRepository, documents repository.DocumentRepository, stats repository.StatsRepository, auditor *audit.Service) *Service {
	return &Service{
		patients:  patients,
		documents: documents,
		stats:     stats,
		auditor:   auditor,
		now:       time.Now,
	}
}

// FindPatientByEmail returns the patient with its documents, or nil when absent.
func (s *Service) FindPatientByEmail(ctx context.Context, email string) (*model.Patient, error) {
	patient, err := s.patients.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperrors.Persistence("failed to find patient", err)
	}
	if patient == nil {
		return nil, nil
	}

	docs, err := s.documents.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, apperrors.Persistence("failed to load patient documents", err)
	}
	patient.Documents = docs
	return patient, nil
}

func (s *Service) CreatePatient(ctx context.Context, patient *model.Patient) error {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		return apperrors.Persistence("failed to create patient", err)
	}

	s.auditor.Log(ctx, patient.ID, model.AuditActionCreate, model.AuditTablePatients, patient.ID, &audit.LogOptions{
		NewValues: snapshot(patient),
	})
	return nil
}

// UpdatePatient overwrites the stored row and audits the before and after images.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, patient *model.Patient) error {
	old, err := s.patients.Get(ctx, id)
	if err != nil {
		return apperrors.Persistence("failed to load patient", err)
	}
	// Callers update rows they have just read, so a missing row is a
	// storage fault rather than a client error.
	if old == nil {
		return apperrors.Persistence("failed to update patient", repository.ErrNotFound)
	}

	patient.ID = id
	patient.CreatedAt = old.CreatedAt
	if err := s.patients.Update(ctx, patient); err != nil {
		return apperrors.Persistence("failed to update patient", err)
	}

	s.auditor.Log(ctx, id, model.AuditActionUpdate, model.AuditTablePatients, id, &audit.LogOptions{
		OldValues: snapshot(old),
		NewValues: snapshot(patient),
	})
	return nil
}

func (s *Service) CreateDocument(ctx context.Context, patientID uuid.UUID, doc *model.PatientDocument) error {
	doc.PatientID = patientID
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return apperrors.Persistence("failed to create document", err)
	}

	s.auditor.Log(ctx, patientID, model.AuditActionCreate, model.AuditTablePatientDocuments, doc.ID, &audit.LogOptions{
		NewValues: doc,
	})
	return nil
}

// GetProfile returns a patient with documents and audit trail for admin lookups.
func (s *Service) GetProfile(ctx context.Context, email string) (*model.PatientProfile, error) {
	patient, err := s.FindPatientByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient")
	}

	trail, err := s.auditor.List(ctx, patient.ID)
	if err != nil {
		return nil, err
	}
	return &model.PatientProfile{Patient: patient, AuditTrail: trail}, nil
}

// HealthCheck never fails; an unreachable database is reported in the result.
func (s *Service) HealthCheck(ctx context.Context) model.HealthCheckResult {
	result := model.HealthCheckResult{
		Status:    model.HealthStatusHealthy,
		Timestamp: s.now().UTC(),
	}
	if err := s.stats.Ping(ctx); err != nil {
		result.Status = model.HealthStatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

func (s *Service) Stats(ctx context.Context) (*model.PatientStats, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, apperrors.Persistence("failed to get database statistics", err)
	}
	return stats, nil
}

// snapshot copies the patient without its documents for audit images.
func snapshot(p *model.Patient) *model.Patient {
	cp := *p
	cp.Documents = nil
	return &cp
}
