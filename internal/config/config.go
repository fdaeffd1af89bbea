// Package config provides hierarchical configuration loading.
// Precedence: defaults < YAML file < environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "campushaiti.yaml"

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Session       SessionConfig       `yaml:"session"`
	Tenancy       TenancyConfig       `yaml:"tenancy"`
	Email         EmailConfig         `yaml:"email"`
	Observability ObservabilityConfig `yaml:"observability"`
	Security      SecurityConfig      `yaml:"security"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// SessionConfig holds session and session-cookie configuration.
type SessionConfig struct {
	CookieName     string        `yaml:"cookie_name"`
	CookieDomain   string        `yaml:"cookie_domain"`
	CookiePath     string        `yaml:"cookie_path"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	CookieHTTPOnly bool          `yaml:"cookie_http_only"`
	CookieSameSite string        `yaml:"cookie_same_site"`
	TokenSecret    string        `yaml:"token_secret"`
	Lifetime       time.Duration `yaml:"lifetime"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

// TenancyConfig holds tenant-resolution tuning for the routing layer.
type TenancyConfig struct {
	// SchoolCacheSize bounds the in-process slug lookup cache, in entries.
	SchoolCacheSize int64         `yaml:"school_cache_size"`
	SchoolCacheTTL  time.Duration `yaml:"school_cache_ttl"`
}

// EmailConfig holds outbound email configuration.
type EmailConfig struct {
	// Backend selects the mailer: "console" or "sendgrid".
	Backend     string `yaml:"backend"`
	SendgridKey string `yaml:"sendgrid_key"`
	FromName    string `yaml:"from_name"`
	FromAddress string `yaml:"from_address"`
}

// ObservabilityConfig holds logging and tracing configuration.
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	OTELEnabled    bool   `yaml:"otel_enabled"`
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	Argon2Memory       uint32        `yaml:"argon2_memory"`
	Argon2Iterations   uint32        `yaml:"argon2_iterations"`
	Argon2Parallelism  uint8         `yaml:"argon2_parallelism"`
	Argon2SaltLength   uint32        `yaml:"argon2_salt_length"`
	Argon2KeyLength    uint32        `yaml:"argon2_key_length"`
	LockoutMaxAttempts int           `yaml:"lockout_max_attempts"`
	LockoutDuration    time.Duration `yaml:"lockout_duration"`
	InviteTTL          time.Duration `yaml:"invite_ttl"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Defaults returns the baseline configuration before YAML and env overlays.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "campushaiti",
			Database:        "campushaiti",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Session: SessionConfig{
			CookieName:     "ch_session",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
			Lifetime:       24 * time.Hour,
			IdleTimeout:    30 * time.Minute,
		},
		Tenancy: TenancyConfig{
			SchoolCacheSize: 10_000,
			SchoolCacheTTL:  5 * time.Minute,
		},
		Email: EmailConfig{
			Backend:     "console",
			FromName:    "Campus Haiti",
			FromAddress: "no-reply@campushaiti.org",
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "json",
			ServiceName:    "campushaiti",
			ServiceVersion: "0.1.0",
		},
		Security: SecurityConfig{
			Argon2Memory:       65536,
			Argon2Iterations:   3,
			Argon2Parallelism:  4,
			Argon2SaltLength:   16,
			Argon2KeyLength:    32,
			LockoutMaxAttempts: 5,
			LockoutDuration:    15 * time.Minute,
			InviteTTL:          7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom is Load with an explicit YAML path.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

func loadEnv(cfg *Config) {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setString(&cfg.Server.Port, "SERVER_PORT")
	setDuration(&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT")

	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Database, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setInt(&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS")
	setInt(&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS")
	setDuration(&cfg.Database.ConnMaxLifetime, "DB_CONN_MAX_LIFETIME")

	setString(&cfg.Session.CookieName, "SESSION_COOKIE_NAME")
	setString(&cfg.Session.CookieDomain, "SESSION_COOKIE_DOMAIN")
	setString(&cfg.Session.CookiePath, "SESSION_COOKIE_PATH")
	setBool(&cfg.Session.CookieSecure, "SESSION_COOKIE_SECURE")
	setBool(&cfg.Session.CookieHTTPOnly, "SESSION_COOKIE_HTTP_ONLY")
	setString(&cfg.Session.CookieSameSite, "SESSION_COOKIE_SAME_SITE")
	setString(&cfg.Session.TokenSecret, "SESSION_TOKEN_SECRET")
	setDuration(&cfg.Session.Lifetime, "SESSION_LIFETIME")
	setDuration(&cfg.Session.IdleTimeout, "SESSION_IDLE_TIMEOUT")

	setInt64(&cfg.Tenancy.SchoolCacheSize, "TENANCY_SCHOOL_CACHE_SIZE")
	setDuration(&cfg.Tenancy.SchoolCacheTTL, "TENANCY_SCHOOL_CACHE_TTL")

	setString(&cfg.Email.Backend, "EMAIL_BACKEND")
	setString(&cfg.Email.SendgridKey, "SENDGRID_API_KEY")
	setString(&cfg.Email.FromName, "EMAIL_FROM_NAME")
	setString(&cfg.Email.FromAddress, "EMAIL_FROM_ADDRESS")

	setString(&cfg.Observability.LogLevel, "LOG_LEVEL")
	setString(&cfg.Observability.LogFormat, "LOG_FORMAT")
	setBool(&cfg.Observability.OTELEnabled, "OTEL_ENABLED")
	setString(&cfg.Observability.ServiceName, "OTEL_SERVICE_NAME")
	setString(&cfg.Observability.ServiceVersion, "OTEL_SERVICE_VERSION")

	setUint32(&cfg.Security.Argon2Memory, "ARGON2_MEMORY")
	setUint32(&cfg.Security.Argon2Iterations, "ARGON2_ITERATIONS")
	setUint8(&cfg.Security.Argon2Parallelism, "ARGON2_PARALLELISM")
	setUint32(&cfg.Security.Argon2SaltLength, "ARGON2_SALT_LENGTH")
	setUint32(&cfg.Security.Argon2KeyLength, "ARGON2_KEY_LENGTH")
	setInt(&cfg.Security.LockoutMaxAttempts, "SECURITY_LOCKOUT_MAX_ATTEMPTS")
	setDuration(&cfg.Security.LockoutDuration, "SECURITY_LOCKOUT_DURATION")
	setDuration(&cfg.Security.InviteTTL, "SECURITY_INVITE_TTL")

	setFloat64(&cfg.RateLimit.RequestsPerSecond, "RATELIMIT_RPS")
	setInt(&cfg.RateLimit.Burst, "RATELIMIT_BURST")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Session.TokenSecret == "" {
		return fmt.Errorf("SESSION_TOKEN_SECRET is required")
	}
	switch c.Email.Backend {
	case "console":
	case "sendgrid":
		if c.Email.SendgridKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid email backend")
		}
	default:
		return fmt.Errorf("unknown email backend %q", c.Email.Backend)
	}
	return nil
}

// DSN returns a pgx-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Env overlay helpers. Only non-empty, parseable values override.

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = i
		}
	}
}

func setUint32(dst *uint32, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseUint(v, 10, 32); err == nil {
			*dst = uint32(i)
		}
	}
}

func setUint8(dst *uint8, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseUint(v, 10, 8); err == nil {
			*dst = uint8(i)
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
