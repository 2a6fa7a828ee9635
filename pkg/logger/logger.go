package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level represents logging level
type Level = zerolog.Level

// Config holds logger configuration
type Config struct {
	Level      string
	Console    bool
	TimeFormat string
	Output     io.Writer
}

// New builds a zerolog logger and installs it as the global logger used by
// the request middleware.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := cfg.Output
	if cfg.Console {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat
	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "intake-api").
		Logger()

	log.Logger = logger
	return logger
}

// Nop returns a disabled logger, handy for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
