package form

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-intake-api/internal/email"
	"github.com/jwalitptl/dental-intake-api/internal/model"
	"github.com/jwalitptl/dental-intake-api/internal/template"
)

const defaultLang = "en"

// Registrar persists questionnaire submissions. A nil Registrar disables persistence.
type Registrar interface {
	ProcessRegistration(ctx context.Context, q *model.PatientQuestionnaire) (*model.RegistrationResult, error)
}

type Config struct {
	// Recipient is the clinic inbox.
	Recipient string
	From      string
}

type MedicalFormResult struct {
	MessageID string
}

type QuestionnaireResult struct {
	MessageID       string
	Patient         *model.Patient
	IsNewPatient    bool
	SavedToDatabase bool
}

type Service struct {
	cfg      Config
	renderer *template.Renderer
	mailer   email.Dispatcher
	intake   Registrar
	logger   zerolog.Logger
}

func NewService(cfg Config, renderer *template.Renderer, mailer email.Dispatcher, intake Registrar, logger zerolog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		renderer: renderer,
		mailer:   mailer,
		intake:   intake,
		logger:   logger.With().Str("component", "form").Logger(),
	}
}

// SendMedicalForm emails the rendered medical history form.
func (s *Service) SendMedicalForm(ctx context.Context, req *model.MedicalFormRequest) (*MedicalFormResult, error) {
	f := req.FormData
	html := s.renderer.Render(template.MedicalForm, f.Values(), langOrDefault(req.Lang))

	to := f.Email
	if to == "" {
		to = s.cfg.Recipient
	}

	id, err := s.mailer.Send(ctx, email.Envelope{
		From:    s.cfg.From,
		To:      to,
		Subject: subject("New Dental Medical Form", f.FirstName, f.LastName),
		HTML:    html,
		ReplyTo: s.cfg.Recipient,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("message_id", id).Msg("medical form sent")
	return &MedicalFormResult{MessageID: id}, nil
}

// SendPatientQuestionnaire persists the registration when a store is
// configured, then emails the clinic.
func (s *Service) SendPatientQuestionnaire(ctx context.Context, req *model.PatientQuestionnaireRequest) (*QuestionnaireResult, error) {
	q := req.PatientData
	result := &QuestionnaireResult{}

	if s.intake != nil {
		reg, err := s.intake.ProcessRegistration(ctx, q)
		if err != nil {
			return nil, err
		}
		result.Patient = reg.Patient
		result.IsNewPatient = reg.IsNewPatient
		result.SavedToDatabase = true
	}

	html := s.renderer.Render(template.PatientQuestionnaire, q.Values(), langOrDefault(req.Lang))
	id, err := s.mailer.Send(ctx, email.Envelope{
		From:    s.cfg.From,
		To:      s.cfg.Recipient,
		Subject: subject("New Patient Registration", q.FirstName, q.LastName),
		HTML:    html,
		ReplyTo: q.Email,
	})
	if err != nil {
		return nil, err
	}
	result.MessageID = id

	s.logger.Info().
		Str("message_id", id).
		Bool("saved_to_database", result.SavedToDatabase).
		Bool("is_new_patient", result.IsNewPatient).
		Msg("patient questionnaire sent")
	return result, nil
}

func subject(prefix, first, last string) string {
	if first == "" {
		first = "Unknown"
	}
	if last == "" {
		last = "Patient"
	}
	return fmt.Sprintf("%s - %s %s", prefix, first, last)
}

func langOrDefault(lang string) string {
	if lang == "" {
		return defaultLang
	}
	return lang
}
