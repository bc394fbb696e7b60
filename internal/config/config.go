// Package config loads server configuration.
//
// Values are resolved in three layers, later layers winning:
//  1. built-in local-development defaults,
//  2. an optional YAML file (--config flag or CHECKIN_CONFIG),
//  3. environment variables, including any loaded from a .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Report   ReportConfig   `yaml:"report"`
	Log      LogConfig      `yaml:"log"`
	Seed     SeedConfig     `yaml:"seed"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`

	// WebDir, when set, is served as static files at the root.
	WebDir string `yaml:"web_dir"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Driver is "postgres" or "memory". The memory driver keeps all
	// state in process and is seeded on start.
	Driver string `yaml:"driver"`

	URL            string `yaml:"url"`
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"sslmode"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// AuthConfig controls how callers are identified.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`

	// AllowEmailHeader accepts the bare x-auth-email header as identity.
	AllowEmailHeader bool `yaml:"allow_email_header"`
}

// ReportConfig controls CSV export formatting.
type ReportConfig struct {
	Timezone string `yaml:"timezone"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SeedConfig points at an alternate fixture file.
type SeedConfig struct {
	File string `yaml:"file"`
}

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Default returns the local-development configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:         DriverPostgres,
			Host:           "localhost",
			Port:           "5432",
			User:           "postgres",
			Password:       "postgres",
			Name:           "eventcheckin",
			SSLMode:        "disable",
			MigrateOnStart: true,
		},
		Auth: AuthConfig{
			JWTSecret:        "dev-secret-change-me",
			SessionTTL:       12 * time.Hour,
			AllowEmailHeader: true,
		},
		Report: ReportConfig{Timezone: "UTC"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load resolves configuration from defaults, the optional YAML file at
// path (falling back to CHECKIN_CONFIG), and the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("CHECKIN_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s must be a boolean, got %q", key, v)
		}
		*dst = b
		return nil
	}

	str("PORT", &c.Server.Port)
	str("WEB_DIR", &c.Server.WebDir)
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	str("DB_DRIVER", &c.Database.Driver)
	str("DATABASE_URL", &c.Database.URL)
	str("DB_HOST", &c.Database.Host)
	str("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("DB_SSLMODE", &c.Database.SSLMode)
	if err := boolean("MIGRATE_ON_START", &c.Database.MigrateOnStart); err != nil {
		return err
	}

	str("JWT_SECRET", &c.Auth.JWTSecret)
	if v, ok := lookup("SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: SESSION_TTL invalid duration %q: %w", v, err)
		}
		c.Auth.SessionTTL = d
	}
	if err := boolean("ALLOW_EMAIL_HEADER", &c.Auth.AllowEmailHeader); err != nil {
		return err
	}

	str("REPORT_TIMEZONE", &c.Report.Timezone)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("SEED_FILE", &c.Seed.File)
	return nil
}

// validate applies consistency rules to the merged configuration.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("config: PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("config: PORT must be numeric, got %q", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("config: DB_DRIVER must be postgres or memory, got %q", c.Database.Driver)
	}
	if c.Database.URL != "" {
		parsed, err := url.Parse(c.Database.URL)
		if err != nil {
			return fmt.Errorf("config: DATABASE_URL invalid (%q): %w", c.Database.URL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: DATABASE_URL invalid (%q): missing scheme or host", c.Database.URL)
		}
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive, got %v", c.Auth.SessionTTL)
	}

	if _, err := c.Report.Location(); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a postgres:// URL built
// from the individual parts. The URL form is accepted by both pgx and
// golang-migrate.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Location loads the report timezone.
func (r ReportConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: REPORT_TIMEZONE %q: %w", r.Timezone, err)
	}
	return loc, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
