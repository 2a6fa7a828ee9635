package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-intake-api/internal/model"
	"github.com/jwalitptl/dental-intake-api/pkg/besteffort"
	apperrors "github.com/jwalitptl/dental-intake-api/pkg/errors"
	"github.com/jwalitptl/dental-intake-api/pkg/messaging"
)

const signatureDescription = "Patient registration signature"

var dobLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// Gateway is the persistence surface the workflow needs.
type Gateway interface {
	FindPatientByEmail(ctx context.Context, email string) (*model.Patient, error)
	CreatePatient(ctx context.Context, patient *model.Patient) error
	UpdatePatient(ctx context.Context, id uuid.UUID, patient *model.Patient) error
	CreateDocument(ctx context.Context, patientID uuid.UUID, doc *model.PatientDocument) error
}

type Service struct {
	gateway   Gateway
	publisher messaging.Publisher
	runner    *besteffort.Runner
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(gateway Gateway, publisher messaging.Publisher, runner *besteffort.Runner, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		gateway:   gateway,
		publisher: publisher,
		runner:    runner,
		logger:    logger.With().Str("component", "intake").Logger(),
		now:       time.Now,
	}
}

// ProcessRegistration creates or updates the patient identified by the
// questionnaire email, then stores the signature and announces the
// registration. Only the patient write can fail the call.
func (s *Service) ProcessRegistration(ctx context.Context, q *model.PatientQuestionnaire) (*model.RegistrationResult, error) {
	email := strings.ToLower(strings.TrimSpace(q.Email))
	if email == "" {
		return nil, apperrors.Validation("Email is required")
	}
	dob, err := parseDateOfBirth(q.DateOfBirth)
	if err != nil {
		return nil, err
	}

	existing, err := s.gateway.FindPatientByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var (
		patient *model.Patient
		isNew   bool
	)
	if existing == nil {
		patient = fromQuestionnaire(q, email, dob)
		if err := s.gateway.CreatePatient(ctx, patient); err != nil {
			return nil, err
		}
		isNew = true
		s.logger.Info().Str("patient_id", patient.ID.String()).Msg("patient created")
	} else {
		patient = merge(existing, q, dob)
		if err := s.gateway.UpdatePatient(ctx, existing.ID, patient); err != nil {
			return nil, err
		}
		s.logger.Info().Str("patient_id", patient.ID.String()).Msg("patient updated")
	}

	if q.Signature != "" {
		s.storeSignature(ctx, patient, q.Signature)
	}

	s.runner.Run(ctx, "event_publish", func(ctx context.Context) error {
		return s.publisher.Publish(ctx, messaging.EventPatientRegistered, model.PatientRegisteredEvent{
			PatientID:    patient.ID,
			Email:        patient.Email,
			IsNewPatient: isNew,
			OccurredAt:   s.now().UTC(),
		})
	})

	return &model.RegistrationResult{Patient: patient, IsNewPatient: isNew}, nil
}

func (s *Service) storeSignature(ctx context.Context, patient *model.Patient, signature string) {
	name := fmt.Sprintf("signature_%s_%s_%d.png", patient.FirstName, patient.LastName, s.now().UnixMilli())
	doc := &model.PatientDocument{
		DocumentType: model.DocumentTypeSignature,
		FileName:     name,
		OriginalName: name,
		FileType:     "image/png",
		FileSize:     int64(len(signature)),
		FilePath:     fmt.Sprintf("/signatures/%s/", patient.ID),
		IsEncrypted:  false,
		AccessLevel:  model.AccessLevelPrivate,
		Description:  signatureDescription,
	}

	ok := s.runner.Run(ctx, "signature_document", func(ctx context.Context) error {
		return s.gateway.CreateDocument(ctx, patient.ID, doc)
	})
	if ok {
		patient.Documents = append(patient.Documents, doc)
	}
}

func fromQuestionnaire(q *model.PatientQuestionnaire, email string, dob *time.Time) *model.Patient {
	name, phone, relationship := q.EmergencyContact()
	return &model.Patient{
		FirstName:                    q.FirstName,
		LastName:                     q.LastName,
		DateOfBirth:                  dob,
		Gender:                       q.Gender,
		Phone:                        q.Phone,
		Email:                        email,
		StreetAddress:                q.Address,
		City:                         q.City,
		Country:                      q.Country,
		ZipCode:                      q.ZipCode,
		EmergencyContactName:         name,
		EmergencyContactPhone:        phone,
		EmergencyContactRelationship: relationship,
		ReferralChannel:              q.HearAboutUs,
		ReferralChannelDetails:       q.ReferralDetails,
		IsHipaaConsent:               q.HipaaConsent.True(),
		IsTermsAccepted:              q.TreatmentConsent.True(),
		IsActive:                     true,
		Documents:                    []*model.PatientDocument{},
	}
}

// merge overlays the submission on the stored patient. Empty incoming
// values keep the stored value; consents are never revoked by omission.
func merge(existing *model.Patient, q *model.PatientQuestionnaire, dob *time.Time) *model.Patient {
	name, phone, relationship := q.EmergencyContact()

	p := *existing
	p.Documents = append([]*model.PatientDocument{}, existing.Documents...)
	p.FirstName = orElse(q.FirstName, existing.FirstName)
	p.LastName = orElse(q.LastName, existing.LastName)
	if dob != nil {
		p.DateOfBirth = dob
	}
	p.Gender = orElse(q.Gender, existing.Gender)
	p.Phone = orElse(q.Phone, existing.Phone)
	p.StreetAddress = orElse(q.Address, existing.StreetAddress)
	p.City = orElse(q.City, existing.City)
	p.Country = orElse(q.Country, existing.Country)
	p.ZipCode = orElse(q.ZipCode, existing.ZipCode)
	p.EmergencyContactName = orElse(name, existing.EmergencyContactName)
	p.EmergencyContactPhone = orElse(phone, existing.EmergencyContactPhone)
	p.EmergencyContactRelationship = orElse(relationship, existing.EmergencyContactRelationship)
	p.ReferralChannel = orElse(q.HearAboutUs, existing.ReferralChannel)
	p.ReferralChannelDetails = orElse(q.ReferralDetails, existing.ReferralChannelDetails)
	p.IsHipaaConsent = q.HipaaConsent.True() || existing.IsHipaaConsent
	p.IsTermsAccepted = q.TreatmentConsent.True() || existing.IsTermsAccepted
	return &p
}

func orElse(incoming, stored string) string {
	if strings.TrimSpace(incoming) == "" {
		return stored
	}
	return incoming
}

func parseDateOfBirth(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.Validation(fmt.Sprintf("Invalid date of birth: %s", raw))
}
