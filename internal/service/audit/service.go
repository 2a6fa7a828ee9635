package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	"github.com/jwalitptl/dental-intake-api/internal/repository"
	"github.com/jwalitptl/dental-intake-api/pkg/besteffort"
	apperrors "github.com/jwalitptl/dental-intake-api/pkg/errors"
)

type Service struct {
	repo   repository.AuditRepository
	runner *besteffort.Runner
	now    func() time.Time
}

func NewService(repo repository.AuditRepository, runner *besteffort.Runner) *Service {
	return &Service{repo: repo, runner: runner, now: time.Now}
}

type LogOptions struct {
	// OldValues and NewValues are snapshotted as JSON; nil stays NULL.
	OldValues any
	NewValues any
	UserID    *string
}

// Describe renders the fixed description of an audit entry.
func Describe(action, tableName string) string {
	return fmt.Sprintf("%s operation on %s", strings.ToUpper(action), tableName)
}

// Log appends an audit entry. A failure is logged and counted but never
// returned; the result reports whether the entry was stored.
func (s *Service) Log(ctx context.Context, patientID uuid.UUID, action, tableName string, recordID uuid.UUID, opts *LogOptions) bool {
	return s.runner.Run(ctx, "audit_append", func(ctx context.Context) error {
		entry, err := s.build(patientID, action, tableName, recordID, opts)
		if err != nil {
			return apperrors.AuditLog("failed to build audit entry", err)
		}
		if err := s.repo.Create(ctx, entry); err != nil {
			return apperrors.AuditLog("failed to append audit entry", err)
		}
		return nil
	})
}

func (s *Service) build(patientID uuid.UUID, action, tableName string, recordID uuid.UUID, opts *LogOptions) (*model.AuditLog, error) {
	entry := &model.AuditLog{
		ID:          uuid.New(),
		PatientID:   patientID,
		Action:      action,
		TableName:   tableName,
		RecordID:    recordID,
		Description: Describe(action, tableName),
		CreatedAt:   s.now().UTC(),
	}
	if opts == nil {
		return entry, nil
	}

	var err error
	if entry.OldValues, err = snapshot(opts.OldValues); err != nil {
		return nil, err
	}
	if entry.NewValues, err = snapshot(opts.NewValues); err != nil {
		return nil, err
	}
	entry.UserID = opts.UserID
	return entry, nil
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, patientID uuid.UUID) ([]*model.AuditLog, error) {
	logs, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Persistence("failed to list audit entries", err)
	}
	return logs, nil
}
