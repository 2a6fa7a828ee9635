package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	"github.com/jwalitptl/dental-intake-api/internal/repository"
)

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.GetContext(ctx, &one, `SELECT 1`); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (r *statsRepository) Stats(ctx context.Context) (*model.PatientStats, error) {
	var stats model.PatientStats
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, query string) {
		g.Go(func() error {
			return r.db.GetContext(ctx, dst, query)
		})
	}
	count(&stats.TotalPatients, `SELECT COUNT(*) FROM patients`)
	count(&stats.ActivePatients, `SELECT COUNT(*) FROM patients WHERE is_active = TRUE`)
	count(&stats.TotalDocuments, `SELECT COUNT(*) FROM patient_documents`)
	count(&stats.TotalAuditLogs, `SELECT COUNT(*) FROM patient_audit_logs`)

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}
