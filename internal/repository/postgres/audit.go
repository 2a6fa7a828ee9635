package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	"github.com/jwalitptl/dental-intake-api/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

// auditRow scans nullable JSONB columns into plain byte slices.
type auditRow struct {
	ID          uuid.UUID `db:"id"`
	PatientID   uuid.UUID `db:"patient_id"`
	Action      string    `db:"action"`
	TableName   string    `db:"table_name"`
	RecordID    uuid.UUID `db:"record_id"`
	OldValues   []byte    `db:"old_values"`
	NewValues   []byte    `db:"new_values"`
	UserID      *string   `db:"user_id"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO patient_audit_logs (
			id, patient_id, action, table_name, record_id,
			old_values, new_values, user_id, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	_, err := r.GetDB().ExecContext(ctx, query,
		log.ID,
		log.PatientID,
		log.Action,
		log.TableName,
		log.RecordID,
		nullableJSON(log.OldValues),
		nullableJSON(log.NewValues),
		log.UserID,
		log.Description,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AuditLog, error) {
	query := `
		SELECT id, patient_id, action, table_name, record_id,
			old_values, new_values, user_id, description, created_at
		FROM patient_audit_logs
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var rows []auditRow
	if err := r.GetDB().SelectContext(ctx, &rows, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	logs := make([]*model.AuditLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, &model.AuditLog{
			ID:          row.ID,
			PatientID:   row.PatientID,
			Action:      row.Action,
			TableName:   row.TableName,
			RecordID:    row.RecordID,
			OldValues:   row.OldValues,
			NewValues:   row.NewValues,
			UserID:      row.UserID,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}
	return logs, nil
}
