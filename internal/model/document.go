package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentTypeSignature = "signature"
	AccessLevelPrivate    = "private"
)

// PatientDocument is an uploaded artifact owned by exactly one patient.
type PatientDocument struct {
	ID           uuid.UUID `json:"id" db:"id"`
	PatientID    uuid.UUID `json:"patientId" db:"patient_id"`
	DocumentType string    `json:"documentType" db:"document_type"`
	FileName     string    `json:"fileName" db:"file_name"`
	OriginalName string    `json:"originalName" db:"original_name"`
	FileType     string    `json:"fileType" db:"file_type"`
	FileSize     int64     `json:"fileSize" db:"file_size"`
	FilePath     string    `json:"filePath" db:"file_path"`
	IsEncrypted  bool      `json:"isEncrypted" db:"is_encrypted"`
	AccessLevel  string    `json:"accessLevel" db:"access_level"`
	Description  string    `json:"description" db:"description"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
