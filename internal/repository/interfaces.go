package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-intake-api/internal/model"
)

var ErrNotFound = errors.New("record not found")

// All repository interfaces in one file
type (
	// PatientRepository stores patients keyed by email.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		// Get and GetByEmail return nil without error when no row matches.
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
	}

	DocumentRepository interface {
		Create(ctx context.Context, doc *model.PatientDocument) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientDocument, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AuditLog, error)
	}

	StatsRepository interface {
		Ping(ctx context.Context) error
		Stats(ctx context.Context) (*model.PatientStats, error)
	}
)
