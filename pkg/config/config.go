// Package config loads the service configuration from .env files and the
// environment. Values already present in the environment win over .env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorePostgres = "postgres"
	StoreMemory   = "memory"

	MailSMTP     = "smtp"
	MailSendGrid = "sendgrid"
	MailSES      = "ses"
	MailStub     = "stub"

	// StubRecipient stands in for EMAIL_TO when the stub provider runs
	// without one.
	StubRecipient = "leads@localhost"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// StoreDriver selects the lead store. "memory" is not durable and loses
	// every lead on restart.
	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32  `mapstructure:"DB_MIN_CONNS"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	MailProvider  string `mapstructure:"MAIL_PROVIDER"`
	EmailUser     string `mapstructure:"EMAIL_USER"`
	EmailPass     string `mapstructure:"EMAIL_PASS"`
	EmailFrom     string `mapstructure:"EMAIL_FROM"`
	EmailFromName string `mapstructure:"EMAIL_FROM_NAME"`
	EmailTo       string `mapstructure:"EMAIL_TO"`
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`

	SendGridAPIKey string `mapstructure:"SENDGRID_API_KEY"`

	AWSRegion           string `mapstructure:"AWS_REGION"`
	AWSAccessKeyID      string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey  string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpointOverride string `mapstructure:"AWS_ENDPOINT_OVERRIDE"`

	NotifyTimezone string        `mapstructure:"NOTIFY_TIMEZONE"`
	NotifyTimeout  time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
	BrandName      string        `mapstructure:"BRAND_NAME"`

	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	MetricsEnabled     bool          `mapstructure:"METRICS_ENABLED"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"PORT":                  "5000",
	"APP_ENV":               EnvDevelopment,
	"LOG_LEVEL":             "info",
	"STORE_DRIVER":          StorePostgres,
	"DATABASE_URL":          "",
	"DB_MAX_CONNS":          10,
	"DB_MIN_CONNS":          2,
	"DB_AUTO_MIGRATE":       true,
	"MAIL_PROVIDER":         MailSMTP,
	"EMAIL_USER":            "",
	"EMAIL_PASS":            "",
	"EMAIL_FROM":            "",
	"EMAIL_FROM_NAME":       "Settlo Leads",
	"EMAIL_TO":              "",
	"SMTP_HOST":             "smtp.gmail.com",
	"SMTP_PORT":             587,
	"SENDGRID_API_KEY":      "",
	"AWS_REGION":            "us-east-1",
	"AWS_ACCESS_KEY_ID":     "",
	"AWS_SECRET_ACCESS_KEY": "",
	"AWS_ENDPOINT_OVERRIDE": "",
	"NOTIFY_TIMEZONE":       "Asia/Kolkata",
	"NOTIFY_TIMEOUT":        "30s",
	"BRAND_NAME":            "Settlo",
	"CORS_ALLOWED_ORIGINS":  "*",
	"METRICS_ENABLED":       true,
	"SHUTDOWN_TIMEOUT":      "10s",
}

// Load reads the given .env files (".env" when none are given), then builds
// and validates Config from the environment. Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	// NODE_ENV is accepted as a fallback for APP_ENV.
	if err := v.BindEnv("APP_ENV", "APP_ENV", "NODE_ENV"); err != nil {
		return nil, fmt.Errorf("config: bind APP_ENV: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.MailProvider = strings.ToLower(strings.TrimSpace(c.MailProvider))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if strings.TrimSpace(c.EmailFrom) == "" {
		c.EmailFrom = c.EmailUser
	}
	if c.MailProvider == MailStub && len(c.Recipients()) == 0 {
		c.EmailTo = StubRecipient
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("config: PORT must be set")
	}

	switch c.StoreDriver {
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}

	switch c.MailProvider {
	case MailSMTP:
		if c.EmailUser == "" || c.EmailPass == "" {
			return errors.New("config: EMAIL_USER and EMAIL_PASS are required when MAIL_PROVIDER=smtp")
		}
		if c.SMTPHost == "" || c.SMTPPort <= 0 {
			return errors.New("config: SMTP_HOST and SMTP_PORT must be set")
		}
	case MailSendGrid:
		if c.SendGridAPIKey == "" {
			return errors.New("config: SENDGRID_API_KEY is required when MAIL_PROVIDER=sendgrid")
		}
	case MailSES:
		if c.AWSRegion == "" {
			return errors.New("config: AWS_REGION is required when MAIL_PROVIDER=ses")
		}
	case MailStub:
	default:
		return fmt.Errorf("config: MAIL_PROVIDER must be one of smtp, sendgrid, ses, stub, got %q", c.MailProvider)
	}
	if c.MailProvider != MailStub {
		if len(c.Recipients()) == 0 {
			return errors.New("config: EMAIL_TO is required unless MAIL_PROVIDER=stub")
		}
		if c.EmailFrom == "" {
			return errors.New("config: EMAIL_FROM (or EMAIL_USER) is required unless MAIL_PROVIDER=stub")
		}
	}

	if _, err := time.LoadLocation(c.NotifyTimezone); err != nil {
		return fmt.Errorf("config: NOTIFY_TIMEZONE: %w", err)
	}
	if c.NotifyTimeout <= 0 {
		return errors.New("config: NOTIFY_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("config: SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether internal error details must be hidden.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Location returns NOTIFY_TIMEZONE as a *time.Location, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.NotifyTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	origins := splitList(c.CORSAllowedOrigins)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Recipients splits EMAIL_TO on commas.
func (c *Config) Recipients() []string {
	return splitList(c.EmailTo)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
