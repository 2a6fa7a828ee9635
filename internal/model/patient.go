package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is one row per distinct email address.
type Patient struct {
	Base
	FirstName                    string     `json:"firstName" db:"first_name"`
	LastName                     string     `json:"lastName" db:"last_name"`
	DateOfBirth                  *time.Time `json:"dateOfBirth" db:"date_of_birth"`
	Gender                       string     `json:"gender" db:"gender"`
	Phone                        string     `json:"phone" db:"phone"`
	Email                        string     `json:"email" db:"email"`
	StreetAddress                string     `json:"streetAddress" db:"street_address"`
	City                         string     `json:"city" db:"city"`
	Country                      string     `json:"country" db:"country"`
	ZipCode                      string     `json:"zipCode" db:"zip_code"`
	EmergencyContactName         string     `json:"emergencyContactName" db:"emergency_contact_name"`
	EmergencyContactPhone        string     `json:"emergencyContactPhone" db:"emergency_contact_phone"`
	EmergencyContactRelationship string     `json:"emergencyContactRelationship" db:"emergency_contact_relationship"`
	ReferralChannel              string     `json:"referralChannel" db:"referral_channel"`
	ReferralChannelDetails       string     `json:"referralChannelDetails" db:"referral_channel_details"`
	IsHipaaConsent               bool       `json:"isHipaaConsent" db:"is_hipaa_consent"`
	IsTermsAccepted              bool       `json:"isTermsAccepted" db:"is_terms_accepted"`
	IsActive                     bool       `json:"isActive" db:"is_active"`

	Documents []*PatientDocument `json:"documents" db:"-"`
}

// PatientProfile is a patient with its audit trail, returned by admin lookups.
type PatientProfile struct {
	*Patient
	AuditTrail []*AuditLog `json:"auditTrail"`
}

// PatientStats holds aggregate counts across the intake tables.
type PatientStats struct {
	TotalPatients  int64 `json:"totalPatients"`
	ActivePatients int64 `json:"activePatients"`
	TotalDocuments int64 `json:"totalDocuments"`
	TotalAuditLogs int64 `json:"totalAuditLogs"`
}

// HealthStatus values
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
	HealthStatusDisabled  = "disabled"
)

// HealthCheckResult reports database reachability.
type HealthCheckResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// RegistrationResult is returned by the intake workflow.
type RegistrationResult struct {
	Patient      *Patient
	IsNewPatient bool
}

// PatientRegisteredEvent is published after a successful registration.
type PatientRegisteredEvent struct {
	PatientID    uuid.UUID `json:"patientId"`
	Email        string    `json:"email"`
	IsNewPatient bool      `json:"isNewPatient"`
	OccurredAt   time.Time `json:"occurredAt"`
}
