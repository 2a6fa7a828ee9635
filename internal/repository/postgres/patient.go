package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	"github.com/jwalitptl/dental-intake-api/internal/repository"
)

const patientColumns = `
	id, first_name, last_name, date_of_birth, gender, phone, email,
	street_address, city, country, zip_code,
	emergency_contact_name, emergency_contact_phone, emergency_contact_relationship,
	referral_channel, referral_channel_details,
	is_hipaa_consent, is_terms_accepted, is_active, created_at, updated_at`

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES (
			:id, :first_name, :last_name, :date_of_birth, :gender, :phone, :email,
			:street_address, :city, :country, :zip_code,
			:emergency_contact_name, :emergency_contact_phone, :emergency_contact_relationship,
			:referral_channel, :referral_channel_details,
			:is_hipaa_consent, :is_terms_accepted, :is_active, :created_at, :updated_at
		)`

	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return r.getOne(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return r.getOne(ctx, `SELECT `+patientColumns+` FROM patients WHERE email = $1`, email)
}

func (r *patientRepository) getOne(ctx context.Context, query string, arg any) (*model.Patient, error) {
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			first_name = :first_name,
			last_name = :last_name,
			date_of_birth = :date_of_birth,
			gender = :gender,
			phone = :phone,
			email = :email,
			street_address = :street_address,
			city = :city,
			country = :country,
			zip_code = :zip_code,
			emergency_contact_name = :emergency_contact_name,
			emergency_contact_phone = :emergency_contact_phone,
			emergency_contact_relationship = :emergency_contact_relationship,
			referral_channel = :referral_channel,
			referral_channel_details = :referral_channel_details,
			is_hipaa_consent = :is_hipaa_consent,
			is_terms_accepted = :is_terms_accepted,
			is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id`

	patient.UpdatedAt = time.Now().UTC()

	result, err := r.db.NamedExecContext(ctx, query, patient)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient %s: %w", patient.ID, repository.ErrNotFound)
	}
	return nil
}
