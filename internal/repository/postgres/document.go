package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	"github.com/jwalitptl/dental-intake-api/internal/repository"
)

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.PatientDocument) error {
	query := `
		INSERT INTO patient_documents (
			id, patient_id, document_type, file_name, original_name, file_type,
			file_size, file_path, is_encrypted, access_level, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.PatientID,
		doc.DocumentType,
		doc.FileName,
		doc.OriginalName,
		doc.FileType,
		doc.FileSize,
		doc.FilePath,
		doc.IsEncrypted,
		doc.AccessLevel,
		doc.Description,
		doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientDocument, error) {
	query := `
		SELECT id, patient_id, document_type, file_name, original_name, file_type,
			file_size, file_path, is_encrypted, access_level, description, created_at
		FROM patient_documents
		WHERE patient_id = $1
		ORDER BY created_at
	`
	docs := []*model.PatientDocument{}
	if err := r.db.SelectContext(ctx, &docs, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}
