package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	apperrors "github.com/jwalitptl/dental-intake-api/pkg/errors"
)

const verifyCacheKey = "smtp_verify"

// Envelope is a single outgoing HTML message.
type Envelope struct {
	From    string
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

type Dispatcher interface {
	// Send delivers the envelope and returns its Message-ID.
	Send(ctx context.Context, env Envelope) (string, error)
	// Verify reports whether the SMTP server accepts our credentials.
	Verify(ctx context.Context) bool
	IsConfigured() bool
}

type Config struct {
	Service        string
	User           string
	Password       string
	Host           string
	Port           int
	VerifyCacheTTL time.Duration
}

// Dialer opens an authenticated SMTP session. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

type Option func(*SMTPDispatcher)

func WithDialer(d Dialer) Option {
	return func(s *SMTPDispatcher) { s.dialer = d }
}

// WithSendCounter records send outcomes labelled by status.
func WithSendCounter(c *prometheus.CounterVec) Option {
	return func(s *SMTPDispatcher) { s.sends = c }
}

type SMTPDispatcher struct {
	cfg      Config
	provider Provider
	dialer   Dialer
	verified *cache.Cache
	sends    *prometheus.CounterVec
	logger   zerolog.Logger
}

func NewSMTPDispatcher(cfg Config, logger zerolog.Logger, opts ...Option) *SMTPDispatcher {
	if cfg.VerifyCacheTTL <= 0 {
		cfg.VerifyCacheTTL = 30 * time.Second
	}

	p := ResolveProvider(cfg.Service, cfg.Host, cfg.Port)
	d := gomail.NewDialer(p.Host, p.Port, cfg.User, cfg.Password)
	d.SSL = p.SSL

	s := &SMTPDispatcher{
		cfg:      cfg,
		provider: p,
		dialer:   d,
		verified: cache.New(cfg.VerifyCacheTTL, 2*cfg.VerifyCacheTTL),
		logger:   logger.With().Str("component", "email").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSendCounter creates the mail_sends_total counter.
func NewSendCounter(namespace string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_sends_total",
		Help:      "Outgoing emails by delivery status",
	}, []string{"status"})
}

func (s *SMTPDispatcher) IsConfigured() bool {
	return s.cfg.User != "" && s.cfg.Password != ""
}

// Sender is the address outgoing mail is sent from.
func (s *SMTPDispatcher) Sender() string {
	return s.cfg.User
}

func (s *SMTPDispatcher) Send(ctx context.Context, env Envelope) (string, error) {
	if env.From == "" {
		env.From = s.cfg.User
	}
	messageID := newMessageID(env.From)

	m := gomail.NewMessage()
	m.SetHeader("From", env.From)
	m.SetHeader("To", env.To)
	m.SetHeader("Subject", env.Subject)
	m.SetHeader("Message-ID", messageID)
	if env.ReplyTo != "" {
		m.SetHeader("Reply-To", env.ReplyTo)
	}
	m.SetBody("text/html", env.HTML)

	err := s.withContext(ctx, func() error {
		sc, err := s.dialer.Dial()
		if err != nil {
			return fmt.Errorf("failed to dial smtp server: %w", err)
		}
		defer sc.Close()
		if err := gomail.Send(sc, m); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
		return nil
	})
	if err != nil {
		s.count("failed")
		s.logger.Error().Err(err).Str("to", env.To).Str("subject", env.Subject).Msg("email delivery failed")
		return "", apperrors.Transport("failed to send email", err)
	}

	s.count("sent")
	s.logger.Info().Str("message_id", messageID).Str("to", env.To).Msg("email sent")
	return messageID, nil
}

func (s *SMTPDispatcher) Verify(ctx context.Context) bool {
	if !s.IsConfigured() {
		return false
	}
	if ok, found := s.verified.Get(verifyCacheKey); found {
		return ok.(bool)
	}

	err := s.withContext(ctx, func() error {
		sc, err := s.dialer.Dial()
		if err != nil {
			return err
		}
		return sc.Close()
	})
	ok := err == nil
	if !ok {
		s.logger.Warn().Err(err).Str("host", s.provider.Host).Msg("smtp verification failed")
	}

	s.verified.SetDefault(verifyCacheKey, ok)
	return ok
}

// withContext runs fn, giving up when ctx ends first. gomail has no context
// support so an abandoned fn finishes in the background.
func (s *SMTPDispatcher) withContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPDispatcher) count(status string) {
	if s.sends != nil {
		s.sends.WithLabelValues(status).Inc()
	}
}

func newMessageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = strings.Trim(from[i+1:], "> ")
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
