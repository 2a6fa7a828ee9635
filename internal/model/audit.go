package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of a patient mutation.
type AuditLog struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	PatientID   uuid.UUID       `json:"patientId" db:"patient_id"`
	Action      string          `json:"action" db:"action"`
	TableName   string          `json:"tableName" db:"table_name"`
	RecordID    uuid.UUID       `json:"recordId" db:"record_id"`
	OldValues   json.RawMessage `json:"oldValues" db:"old_values"`
	NewValues   json.RawMessage `json:"newValues" db:"new_values"`
	UserID      *string         `json:"userId" db:"user_id"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate = "create"
	AuditActionUpdate = "update"

	// Table names
	AuditTablePatients         = "patients"
	AuditTablePatientDocuments = "patient_documents"
)
