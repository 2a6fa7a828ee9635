package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-intake-api/internal/config"
	"github.com/jwalitptl/dental-intake-api/internal/email"
	"github.com/jwalitptl/dental-intake-api/internal/handler"
	adminhandler "github.com/jwalitptl/dental-intake-api/internal/handler/admin"
	formhandler "github.com/jwalitptl/dental-intake-api/internal/handler/form"
	healthhandler "github.com/jwalitptl/dental-intake-api/internal/handler/health"
	metricshandler "github.com/jwalitptl/dental-intake-api/internal/handler/metrics"
	"github.com/jwalitptl/dental-intake-api/internal/middleware"
	"github.com/jwalitptl/dental-intake-api/internal/repository/postgres"
	"github.com/jwalitptl/dental-intake-api/internal/router"
	auditService "github.com/jwalitptl/dental-intake-api/internal/service/audit"
	formService "github.com/jwalitptl/dental-intake-api/internal/service/form"
	intakeService "github.com/jwalitptl/dental-intake-api/internal/service/intake"
	patientService "github.com/jwalitptl/dental-intake-api/internal/service/patient"
	"github.com/jwalitptl/dental-intake-api/internal/template"
	"github.com/jwalitptl/dental-intake-api/pkg/besteffort"
	"github.com/jwalitptl/dental-intake-api/pkg/logger"
	"github.com/jwalitptl/dental-intake-api/pkg/messaging"
	"github.com/jwalitptl/dental-intake-api/pkg/messaging/redis"
	"github.com/jwalitptl/dental-intake-api/pkg/metrics"
)

const (
	serviceName    = "intake-api"
	metricsPrefix  = "intake"
	connectTimeout = 10 * time.Second
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Dental clinic intake API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.DatabaseEnabled() {
				return errors.New("DATABASE_URL is not set")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := postgres.NewDB(ctx, dbConfig(cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info().Msg("database schema is up to date")
			return nil
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Console: !cfg.IsProduction(),
	})
	return cfg, nil
}

func dbConfig(cfg *config.Config) postgres.Config {
	return postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	baseLogger := log.Logger

	failures := besteffort.NewFailureCounter(metricsPrefix)
	sends := email.NewSendCounter(metricsPrefix)
	m := metrics.New(metricsPrefix, failures, sends)
	runner := besteffort.NewRunner(baseLogger, failures)

	mailer := email.NewSMTPDispatcher(email.Config{
		Service:        cfg.Email.Service,
		User:           cfg.Email.User,
		Password:       cfg.Email.Password,
		Host:           cfg.Email.Host,
		Port:           cfg.Email.Port,
		VerifyCacheTTL: cfg.Email.VerifyCacheTTL,
	}, baseLogger, email.WithSendCounter(sends))
	if !mailer.IsConfigured() {
		log.Warn().Msg("EMAIL_USER or EMAIL_PASSWORD not set, form submissions will fail to send")
	}

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.RedisEnabled() {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		p, err := redis.NewPublisher(connectCtx, redis.Config{
			URL:          cfg.Redis.URL,
			Prefix:       cfg.Redis.Prefix,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, baseLogger)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("event publishing disabled")
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	// Interface values stay nil when persistence is disabled.
	var (
		registrar formService.Registrar
		dbChecker healthhandler.DatabaseChecker
		adminH    router.Handler
		db        *sqlx.DB
	)
	if cfg.DatabaseEnabled() {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		conn, err := postgres.NewDB(connectCtx, dbConfig(cfg))
		cancel()
		if err != nil {
			return err
		}
		db = conn
		defer db.Close()

		auditor := auditService.NewService(postgres.NewAuditRepository(postgres.NewBaseRepository(db)), runner)
		patientSvc := patientService.NewService(
			postgres.NewPatientRepository(db),
			postgres.NewDocumentRepository(db),
			postgres.NewStatsRepository(db),
			auditor,
		)
		registrar = intakeService.NewService(patientSvc, publisher, runner, baseLogger)
		dbChecker = patientSvc
		if cfg.AdminEnabled() {
			adminH = adminhandler.NewHandler(patientSvc)
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set, patient persistence disabled")
	}

	renderer := template.NewRenderer(template.Options{
		Advanced:           cfg.Render.Advanced,
		IncludeEmptyFields: cfg.Render.IncludeEmpty,
		CompactMode:        cfg.Render.Compact,
		CustomStyles:       cfg.Render.Styled,
	})
	forms := formService.NewService(formService.Config{
		Recipient: cfg.Email.Recipient,
		From:      mailer.Sender(),
	}, renderer, mailer, registrar, baseLogger)

	mode := gin.DebugMode
	if cfg.IsProduction() {
		mode = gin.ReleaseMode
	}
	adminEnabled := adminH != nil
	r := router.NewRouter(
		handler.NewHandler(serviceName, version, router.Endpoints(adminEnabled)),
		formhandler.NewHandler(forms),
		healthhandler.NewHandler(mailer, dbChecker),
		adminH,
		metricshandler.New(m),
		router.RouterConfig{
			Mode: mode,
			RateLimiter: middleware.RateLimiterConfig{
				Rate:  rate.Limit(cfg.RateLimit.RPS),
				Burst: cfg.RateLimit.Burst,
			},
			CORSConfig: middleware.CORSConfig{
				AllowOrigins:        cfg.AllowedOrigins(),
				AllowVercelPreviews: cfg.CORS.AllowVercelPreviews,
			},
			Timeout: middleware.TimeoutConfig{Duration: cfg.Server.RequestTimeout},
			SizeLimit: middleware.SizeLimitConfig{
				MaxBodySize:   cfg.Server.MaxBodyBytes,
				MaxHeaderSize: middleware.DefaultSizeLimitConfig().MaxHeaderSize,
			},
			Security:       securityConfig(cfg),
			TrustedProxies: cfg.Server.TrustedProxies,
			AdminSecret:    []byte(cfg.Admin.JWTSecret),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Bool("persistence", db != nil).
			Bool("admin", adminEnabled).
			Str("recipient", cfg.Email.Recipient).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}

func securityConfig(cfg *config.Config) middleware.SecurityConfig {
	sc := middleware.DefaultSecurityConfig()
	sc.HSTS = cfg.IsProduction()
	return sc
}
