package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Email     EmailConfig     `mapstructure:"email"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Render    RenderConfig    `mapstructure:"render"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`

	// TrustedProxies may set the client IP via forwarding headers. Empty
	// means the socket peer is always the client.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type EmailConfig struct {
	Service        string        `mapstructure:"service"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Recipient      string        `mapstructure:"recipient"`
	VerifyCacheTTL time.Duration `mapstructure:"verify_cache_ttl"`
}

type CORSConfig struct {
	Origins             []string `mapstructure:"origins"`
	FrontendURL         string   `mapstructure:"frontend_url"`
	AllowVercelPreviews bool     `mapstructure:"allow_vercel_previews"`
}

// DatabaseConfig is optional; an empty URL disables persistence.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig is optional; an empty URL disables event publication.
type RedisConfig struct {
	URL          string `mapstructure:"url"`
	Prefix       string `mapstructure:"prefix"`
	MaxRetries   int    `mapstructure:"max_retries"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type AdminConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type RenderConfig struct {
	Advanced     bool `mapstructure:"advanced"`
	IncludeEmpty bool `mapstructure:"include_empty"`
	Compact      bool `mapstructure:"compact"`
	Styled       bool `mapstructure:"styled"`
}

type setting struct {
	key string
	env string
	def any
}

var settings = []setting{
	{"server.port", "PORT", 3001},
	{"server.env", "ENV", "development"},
	{"server.read_timeout", "READ_TIMEOUT", 15 * time.Second},
	{"server.write_timeout", "WRITE_TIMEOUT", 60 * time.Second},
	{"server.shutdown_timeout", "SHUTDOWN_TIMEOUT", 10 * time.Second},
	{"server.request_timeout", "REQUEST_TIMEOUT", 30 * time.Second},
	{"server.max_body_bytes", "MAX_BODY_BYTES", int64(5 << 20)},
	{"server.trusted_proxies", "TRUSTED_PROXIES", []string{}},

	{"log.level", "LOG_LEVEL", "info"},

	{"email.service", "EMAIL_SERVICE", "gmail"},
	{"email.user", "EMAIL_USER", ""},
	{"email.password", "EMAIL_PASSWORD", ""},
	{"email.host", "SMTP_HOST", ""},
	{"email.port", "SMTP_PORT", 0},
	{"email.recipient", "RECIPIENT_EMAIL", "dentist@example.com"},
	{"email.verify_cache_ttl", "MAIL_VERIFY_CACHE_TTL", 30 * time.Second},

	{"cors.origins", "CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}},
	{"cors.frontend_url", "FRONTEND_URL", ""},
	{"cors.allow_vercel_previews", "CORS_ALLOW_VERCEL_PREVIEWS", true},

	{"database.url", "DATABASE_URL", ""},
	{"database.max_open_conns", "DB_MAX_OPEN_CONNS", 10},
	{"database.max_idle_conns", "DB_MAX_IDLE_CONNS", 5},
	{"database.conn_max_lifetime", "DB_CONN_MAX_LIFETIME", 30 * time.Minute},

	{"redis.url", "REDIS_URL", ""},
	{"redis.prefix", "REDIS_CHANNEL_PREFIX", "intake."},
	{"redis.max_retries", "REDIS_MAX_RETRIES", 3},
	{"redis.pool_size", "REDIS_POOL_SIZE", 10},
	{"redis.min_idle_conns", "REDIS_MIN_IDLE_CONNS", 0},

	{"admin.jwt_secret", "ADMIN_JWT_SECRET", ""},

	{"rate_limit.rps", "RATE_LIMIT_RPS", 10.0},
	{"rate_limit.burst", "RATE_LIMIT_BURST", 20},

	{"render.advanced", "RENDER_ADVANCED", false},
	{"render.include_empty", "RENDER_INCLUDE_EMPTY", false},
	{"render.compact", "RENDER_COMPACT", false},
	{"render.styled", "RENDER_STYLED", false},
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", s.env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORS.Origins = splitList(cfg.CORS.Origins)
	cfg.Server.TrustedProxies = splitList(cfg.Server.TrustedProxies)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	if strings.TrimSpace(c.Email.Recipient) == "" {
		errs = append(errs, errors.New("RECIPIENT_EMAIL is required"))
	}
	if c.Email.Port < 0 || c.Email.Port > 65535 {
		errs = append(errs, fmt.Errorf("SMTP_PORT out of range: %d", c.Email.Port))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

func (c *Config) DatabaseEnabled() bool {
	return c.Database.URL != ""
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != ""
}

func (c *Config) AdminEnabled() bool {
	return c.Admin.JWTSecret != ""
}

// AllowedOrigins is the CORS allow-list including FRONTEND_URL.
func (c *Config) AllowedOrigins() []string {
	origins := append([]string{}, c.CORS.Origins...)
	if u := strings.TrimRight(strings.TrimSpace(c.CORS.FrontendURL), "/"); u != "" {
		for _, o := range origins {
			if o == u {
				return origins
			}
		}
		origins = append(origins, u)
	}
	return origins
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
